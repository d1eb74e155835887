// Package cli implements the ecodesk command line client. It talks to a
// running console over HTTP and drives the generation workflow end to end:
// submit a job, poll it, then confirm or roll back.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/verdantops/ecodesk/internal/poller"
)

// Execute runs the CLI and returns a process exit code.
func Execute() int {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

type rootOptions struct {
	server   string
	username string
	password string
	timeout  time.Duration
}

// NewRootCmd builds the command tree. Exposed so tests can run commands
// against a fake console.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "ecodesk-cli",
		Short:         "Client for the ecodesk admin console",
		Long:          "Command-line client for the ecodesk console: generate reference-data modules from external tables, confirm or roll them back, and inspect what is mounted.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.server, "server", envOr("ECODESK_SERVER", "http://localhost:8080"), "base URL of the console")
	flags.StringVar(&opts.username, "username", os.Getenv("ECODESK_USERNAME"), "operator username")
	flags.StringVar(&opts.password, "password", os.Getenv("ECODESK_PASSWORD"), "operator password")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Minute, "overall timeout for one command")

	rootCmd.AddCommand(
		newGenerateCmd(opts),
		newFinalizeCmd(opts),
		newCancelCmd(opts),
		newVerifyCmd(opts),
		newManifestCmd(opts),
	)
	return rootCmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// login builds a console client and authenticates it.
func (o *rootOptions) login(ctx context.Context) (*poller.Client, error) {
	if o.username == "" || o.password == "" {
		return nil, fmt.Errorf("credentials required: set --username/--password or ECODESK_USERNAME/ECODESK_PASSWORD")
	}
	client := poller.NewClient(o.server, "")
	if err := client.Login(ctx, o.username, o.password); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return client, nil
}

func (o *rootOptions) commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), o.timeout)
}
