package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newFinalizeCmd(opts *rootOptions) *cobra.Command {
	var addNav bool

	cmd := &cobra.Command{
		Use:   "finalize <jobID>",
		Short: "Confirm a generation job that is awaiting confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.commandContext()
			defer cancel()

			client, err := opts.login(ctx)
			if err != nil {
				return err
			}

			job, err := client.FinalizeJob(ctx, args[0], addNav)
			if err != nil {
				return fmt.Errorf("failed to finalize job: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Job %s %s.\n", job.ID, job.Status)
			return nil
		},
	}

	cmd.Flags().BoolVar(&addNav, "add-nav", false, "register a navigation entry for the module")
	return cmd
}

func newCancelCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <jobID>",
		Short: "Reject a parked generation job and delete its artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.commandContext()
			defer cancel()

			client, err := opts.login(ctx)
			if err != nil {
				return err
			}

			job, err := client.CancelJob(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to cancel job: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Job %s %s; artifacts removed.\n", job.ID, job.Status)
			return nil
		},
	}
}
