package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verdantops/ecodesk/internal/generator"
	"github.com/verdantops/ecodesk/internal/models"
	"github.com/verdantops/ecodesk/internal/poller"
)

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var (
		baseID    string
		tableID   string
		tableName string
		section   string
		addNav    bool
		yes       bool
		rollback  bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a reference-data module from an external table",
		Long:  "Submits a generation job, polls until the pipeline parks for confirmation, then finalizes or rolls it back.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if baseID == "" || tableID == "" {
				return fmt.Errorf("--base and --table are required")
			}
			if yes && rollback {
				return fmt.Errorf("--yes and --rollback are mutually exclusive")
			}

			ctx, cancel := opts.commandContext()
			defer cancel()

			client, err := opts.login(ctx)
			if err != nil {
				return err
			}

			job, err := client.CreateJob(ctx, models.TargetSpec{
				BaseID:    baseID,
				TableID:   tableID,
				TableName: tableName,
				Section:   section,
			})
			if err != nil {
				return fmt.Errorf("failed to submit job: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Submitted job %s, waiting for the pipeline...\n", job.ID)

			// The verification fallback needs a target name, which can only
			// be derived up front when the table name was given explicitly.
			targetName := ""
			if tableName != "" {
				targetName = generator.DeriveNames(tableName).Pascal
			}

			p := poller.New(client, client, poller.Options{})
			decision, err := p.WaitForDecision(ctx, job.ID, targetName)
			if err != nil {
				if errors.Is(err, poller.ErrPollBudgetExceeded) || errors.Is(err, poller.ErrOutcomeUnknown) {
					return fmt.Errorf("%w; inspect the console before retrying", err)
				}
				return err
			}

			if decision.Verified {
				// The job record is gone; the artifacts on disk are the
				// ground truth now.
				printFiles(out, decision.FilesCreated)
				if decision.AllCreated {
					fmt.Fprintln(out, "Job record expired but every artifact exists; the module was generated.")
					return nil
				}
				return fmt.Errorf("job record expired with an incomplete artifact set; clean up by hand")
			}

			current := decision.Job
			if current.Status == models.StatusFailed {
				return fmt.Errorf("generation failed: %s", current.Error)
			}
			if current.Status != models.StatusAwaitingConfirmation || current.Result == nil {
				return fmt.Errorf("job ended as %s without a result", current.Status)
			}

			result := current.Result
			fmt.Fprintf(out, "Generated %s (route /%s):\n", result.TargetName, result.RoutePath)
			printFiles(out, result.FilesCreated)

			confirm := yes
			if !yes && !rollback {
				confirm, err = promptYesNo(cmd, fmt.Sprintf("Finalize %s?", result.TargetName))
				if err != nil {
					return err
				}
			}

			if confirm {
				finalized, err := client.FinalizeJob(ctx, current.ID, addNav)
				if err != nil {
					return fmt.Errorf("failed to finalize job: %w", err)
				}
				fmt.Fprintf(out, "Job %s %s.\n", finalized.ID, finalized.Status)
				return nil
			}

			cancelled, err := client.CancelJob(ctx, current.ID)
			if err != nil {
				return fmt.Errorf("failed to cancel job: %w", err)
			}
			fmt.Fprintf(out, "Job %s %s; artifacts removed.\n", cancelled.ID, cancelled.Status)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&baseID, "base", "", "external base id (required)")
	flags.StringVar(&tableID, "table", "", "external table id (required)")
	flags.StringVar(&tableName, "table-name", "", "display name override; resolved upstream when empty")
	flags.StringVar(&section, "section", "", "navigation section for the module")
	flags.BoolVar(&addNav, "add-nav", false, "register a navigation entry on finalize")
	flags.BoolVar(&yes, "yes", false, "finalize without prompting")
	flags.BoolVar(&rollback, "rollback", false, "cancel instead of finalizing once the pipeline parks")
	return cmd
}

func promptYesNo(cmd *cobra.Command, question string) (bool, error) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", question)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func printFiles(out io.Writer, files map[models.ArtifactKind]bool) {
	for _, kind := range models.AllArtifactKinds {
		state := "missing"
		if files[kind] {
			state = "created"
		}
		fmt.Fprintf(out, "  %-8s %s\n", kind, state)
	}
}
