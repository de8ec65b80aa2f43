package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/auditsheet/internal/database"
	"github.com/nao1215/auditsheet/internal/report"
)

// errUnverified is returned when a file matches no recorded export.
var errUnverified = errors.New("file does not match any recorded export")

// NewVerifyCmd creates the verify command.
func NewVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <file>",
		Short: "Check that a file is an unmodified export",
		Long: `Verify computes the BLAKE2b-256 digest of a file and looks it up in the history.

A match proves the file is byte-for-byte identical to a recorded export
and shows which audit it belongs to. Any edit to the file, including
re-saving it from a spreadsheet application, makes verification fail.

Examples:
  auditsheet verify audit_2024-01-15_Jane_Doe.csv`,
		Args: cobra.ExactArgs(1),
		RunE: runVerifyCmd,
	}

	return cmd
}

// runVerifyCmd executes the verify command.
func runVerifyCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogger(cmd, cfg)

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	digest := report.Digest(data)

	db, err := openHistory(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := signalContext(cmd)
	defer cancel()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "blake2b-256 %s\n", digest)

	artifact, err := db.FindArtifactByDigest(ctx, digest)
	if errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("%w: %s", errUnverified, args[0])
	}
	if err != nil {
		return err
	}

	sheet, err := db.GetSheet(ctx, artifact.AuditID)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "OK: matches the %s export of audit %s\n", artifact.Format, sheet.ID)
	fmt.Fprintf(out, "  checklist: %s\n", sheet.Checklist)
	fmt.Fprintf(out, "  auditor:   %s\n", sheet.Header.Auditor)
	fmt.Fprintf(out, "  date:      %s\n", sheet.Header.DateString())
	fmt.Fprintf(out, "  exported:  %s to %s\n", artifact.CreatedAt.Format("2006-01-02 15:04:05"), artifact.Path)
	return nil
}
