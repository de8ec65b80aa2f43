package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/auditsheet/internal/config"
	"github.com/nao1215/auditsheet/internal/pipeline"
)

// NewRebuildCmd creates the rebuild command.
func NewRebuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Re-export recorded audits",
		Long: `Rebuild re-exports audits stored in the history database.

Use it to regenerate lost files or to produce another format (for example
a PDF) for audits exported earlier. Sheets are rebuilt exactly as they
were recorded; the new files are added to each audit's history.
Several sheets are exported concurrently (see --batch).

Audits with the same checklist prefix, date and auditor share a file
name; rebuild them into separate directories if you need every copy.

Examples:
  # Rebuild the 20 most recent audits as CSV
  auditsheet rebuild

  # Produce PDFs for every vendor audit
  auditsheet rebuild --checklist cro-vendor --limit 0 --pdf -o pdf`,
		Args: cobra.NoArgs,
		RunE: runRebuildCmd,
	}

	cmd.Flags().String("checklist", "", "Only rebuild audits of this checklist")
	cmd.Flags().IntP("limit", "n", config.DefaultHistoryLimit, "Maximum number of audits, newest first (0 for all)")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize, "Number of concurrent exports")
	addExportFlags(cmd)

	return cmd
}

// runRebuildCmd executes the rebuild command.
func runRebuildCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("batch") {
		if cfg.BatchSize, err = cmd.Flags().GetInt("batch"); err != nil {
			return err
		}
	}
	if err := applyExportFlags(cmd, cfg); err != nil {
		return err
	}
	logger := setupLogger(cmd, cfg)

	name, err := cmd.Flags().GetString("checklist")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	db, err := openHistory(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	sheets, err := db.LatestSheets(ctx, name, limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(sheets) == 0 {
		fmt.Fprintln(out, "No audits to rebuild.")
		return nil
	}

	opts := exportOptions(cfg, nil, logger)
	if cfg.SaveToDB {
		opts.Store = db
	}

	fmt.Fprintf(out, "Rebuilding %d audits (concurrency: %d)...\n\n", len(sheets), cfg.BatchSize)

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline { return pipeline.DefaultPipeline(opts) },
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	jobs, err := bp.ProcessBatch(ctx, sheets)

	failed := 0
	for i, job := range jobs {
		prefix := fmt.Sprintf("[%d/%d] %s", i+1, len(jobs), shortID(job.Sheet.ID))
		if job.Err != nil {
			failed++
			fmt.Fprintf(out, "%s failed: %v\n", prefix, job.Err)
			continue
		}
		for _, path := range job.Paths() {
			fmt.Fprintf(out, "%s saved %s\n", prefix, path)
		}
		if d := job.Degraded(); d != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s warning: %s\n", prefix, d)
		}
	}

	if err != nil {
		return fmt.Errorf("rebuild interrupted: %w", err)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d audits could not be rebuilt", failed, len(jobs))
	}
	return nil
}
