// Package cli implements vaultctl, a command-line caller for the migration and health endpoints.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"ledgervault/internal/migration"
	"ledgervault/internal/model"
)

// ErrPartial is returned by migrate when --fail-on-partial is set and some files failed.
var ErrPartial = errors.New("migration finished with failed files")

type options struct {
	server        string
	output        string
	timeout       time.Duration
	failOnPartial bool
}

// NewRootCmd builds the vaultctl command tree writing results to out.
func NewRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "vaultctl",
		Short: "Drive ledgervault storage health and cloud migration",
		Long: `vaultctl calls a running ledgervault server.

A migration runs in order:
  vaultctl verify    count ledger rows and attachments
  vaultctl backup    upload a database snapshot
  vaultctl migrate   copy attachments to cloud storage

vaultctl run performs all three and stops at the first failed phase.`,
		SilenceUsage: true,
	}
	root.SetOut(out)

	server := os.Getenv("VAULTCTL_SERVER")
	if server == "" {
		server = "http://localhost:8080"
	}
	root.PersistentFlags().StringVarP(&opts.server, "server", "s", server, "ledgervault base URL (env VAULTCTL_SERVER)")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", formatJSON, "output format: json or yaml")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Minute, "request timeout")

	root.AddCommand(
		simpleCmd(opts, "verify", "Count ledger rows and attachment files", http.MethodGet, "/api/migration/verify"),
		backupCmd(opts),
		migrateCmd(opts),
		simpleCmd(opts, "session", "Show the current migration session", http.MethodGet, "/api/migration/session"),
		simpleCmd(opts, "health", "Show local and cloud storage health", http.MethodGet, "/api/storage/health"),
		runCmd(opts),
	)
	return root
}

func (o *options) client() *Client {
	return NewClient(o.server, o.timeout)
}

func simpleCmd(opts *options, use, short, method, path string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := opts.client().Do(cmd.Context(), method, path)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, raw)
		},
	}
}

func backupCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Upload a database snapshot for the verified session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return backup(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
}

func migrateCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "migrate",
		Aliases: []string{"to-cloud"},
		Short:   "Copy verified attachments to cloud storage",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().BoolVar(&opts.failOnPartial, "fail-on-partial", false, "exit non-zero when any file failed")
	return cmd
}

func runCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run verify, backup and migrate in sequence",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, out := cmd.Context(), cmd.OutOrStdout()

			raw, err := opts.client().Do(ctx, http.MethodGet, "/api/migration/verify")
			if err != nil {
				return fmt.Errorf("verify: %w", err)
			}
			if err := render(out, opts.output, raw); err != nil {
				return err
			}

			if err := backup(ctx, out, opts); err != nil {
				return fmt.Errorf("backup: %w", err)
			}
			return migrate(ctx, out, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.failOnPartial, "fail-on-partial", false, "exit non-zero when any file failed")
	return cmd
}

// backup prints the result. An unsuccessful backup is returned as an error so the process
// exits non-zero.
func backup(ctx context.Context, out io.Writer, opts *options) error {
	raw, err := opts.client().Do(ctx, http.MethodPost, "/api/migration/backup")
	if err != nil {
		return err
	}
	if err := render(out, opts.output, raw); err != nil {
		return err
	}
	var res migration.BackupResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return fmt.Errorf("decode backup result: %w", err)
	}
	if !res.Success {
		return fmt.Errorf("backup did not complete: %s", res.Error)
	}
	return nil
}

func migrate(ctx context.Context, out io.Writer, opts *options) error {
	raw, err := opts.client().Do(ctx, http.MethodPost, "/api/migration/to-cloud")
	if err != nil {
		return err
	}
	if err := render(out, opts.output, raw); err != nil {
		return err
	}
	if !opts.failOnPartial {
		return nil
	}
	var res model.MigrationResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return fmt.Errorf("decode migration result: %w", err)
	}
	if res.Status == model.MigrationPartial {
		return fmt.Errorf("%w: %d of %d", ErrPartial, res.FailedFiles, res.TotalFiles)
	}
	return nil
}
