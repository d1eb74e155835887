package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVerifyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <targetName>",
		Short: "Check which artifacts exist on disk for a target name",
		Long:  "Checks the workspace for a module's artifacts. Works with or without a live job record, which makes it the escape hatch when a job record has expired.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.commandContext()
			defer cancel()

			client, err := opts.login(ctx)
			if err != nil {
				return err
			}

			files, allCreated, err := client.VerifyArtifacts(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to verify artifacts: %w", err)
			}

			out := cmd.OutOrStdout()
			printFiles(out, files)
			if allCreated {
				fmt.Fprintf(out, "All artifacts for %s exist.\n", args[0])
			} else {
				fmt.Fprintf(out, "Artifact set for %s is incomplete.\n", args[0])
			}
			return nil
		},
	}
}

func newManifestCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "manifest",
		Short: "List the routes the console has mounted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := opts.commandContext()
			defer cancel()

			client, err := opts.login(ctx)
			if err != nil {
				return err
			}

			entries, err := client.Manifest(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch manifest: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No routes mounted.")
				return nil
			}
			for _, entry := range entries {
				fmt.Fprintf(out, "/%s -> %s (%s/%s, generator %s)\n",
					entry.RoutePath, entry.TableName, entry.BaseID, entry.TableID, entry.GeneratorVersion)
			}
			return nil
		},
	}
}
