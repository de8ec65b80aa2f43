package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/auditsheet/internal/checklist"
	"github.com/nao1215/auditsheet/internal/collector"
	"github.com/nao1215/auditsheet/internal/config"
	"github.com/nao1215/auditsheet/internal/pipeline"
	"github.com/nao1215/auditsheet/internal/report"
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [checklist] -r <responses.yaml>",
		Short: "Export a responses file as audit records",
		Long: `Export reads a YAML responses file and writes the audit records.

A CSV file named <prefix>_<date>_<auditor>.csv is always written. Use
--pdf, --markdown and --json to write the other formats as well. Every
file is built before anything is written, so a failed export leaves no
partial output behind.

The checklist can be given as an argument or by the 'checklist' key of
the responses file. Create a responses file with 'auditsheet template'.

Examples:
  # Export the internal audit as CSV
  auditsheet export cro-internal -r responses.yaml

  # Export CSV with a byte order mark and a PDF document
  auditsheet export cro-internal -r responses.yaml --bom --pdf

  # Choose the CSV columns
  auditsheet export -r responses.yaml --columns item_id,status,comment,notes

  # Write into another directory without recording history
  auditsheet export -r responses.yaml -o exports --no-history`,
		Args: cobra.MaximumNArgs(1),
		RunE: runExportCmd,
	}

	cmd.Flags().StringP("responses", "r", "", "Responses file (YAML)")
	_ = cmd.MarkFlagRequired("responses") //nolint:errcheck // flag is defined above
	addExportFlags(cmd)

	return cmd
}

// addExportFlags defines the flags shared by export, fill and rebuild.
func addExportFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("out-dir", "o", config.DefaultOutputDir,
		"Directory to write exported files to (created if needed)")
	cmd.Flags().BoolP("pdf", "p", false, "Also write a PDF document")
	cmd.Flags().BoolP("markdown", "m", false, "Also write a Markdown report")
	cmd.Flags().BoolP("json", "j", false, "Also write a JSON document")
	cmd.Flags().StringSlice("columns", nil,
		"CSV columns in order (default: category,item_title,status,comment)")
	cmd.Flags().Bool("bom", false, "Prepend a UTF-8 byte order mark to the CSV")
	cmd.Flags().StringSlice("font", nil, "TrueType font for the PDF document (repeatable)")
	cmd.Flags().Bool("no-history", false, "Do not record the export in the history database")
}

// applyExportFlags overrides configuration values with the export flags
// the user set explicitly, then validates the result.
func applyExportFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("out-dir") {
		dir, err := flags.GetString("out-dir")
		if err != nil {
			return err
		}
		cfg.OutputDir = dir
	}

	for flag, format := range map[string]string{
		"pdf":      config.FormatPDF,
		"markdown": config.FormatMarkdown,
		"json":     config.FormatJSON,
	} {
		enabled, err := flags.GetBool(flag)
		if err != nil {
			return err
		}
		if enabled && !cfg.HasFormat(format) {
			cfg.Formats = append(cfg.Formats, format)
		}
	}

	if flags.Changed("columns") {
		columns, err := flags.GetStringSlice("columns")
		if err != nil {
			return err
		}
		cfg.Columns = columns
	}

	if flags.Changed("bom") {
		bom, err := flags.GetBool("bom")
		if err != nil {
			return err
		}
		cfg.BOM = bom
	}

	if flags.Changed("font") {
		fonts, err := flags.GetStringSlice("font")
		if err != nil {
			return err
		}
		cfg.FontFiles = append(fonts, cfg.FontFiles...)
	}

	noHistory, err := flags.GetBool("no-history")
	if err != nil {
		return err
	}
	if noHistory {
		cfg.SaveToDB = false
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	return nil
}

// runExportCmd executes the export command.
func runExportCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyExportFlags(cmd, cfg); err != nil {
		return err
	}
	logger := setupLogger(cmd, cfg)

	responsesPath, err := cmd.Flags().GetString("responses")
	if err != nil {
		return err
	}
	rf, err := collector.LoadResponses(responsesPath)
	if err != nil {
		return fmt.Errorf("failed to read responses: %w", err)
	}

	name, err := checklistName(args, rf.Checklist)
	if err != nil {
		return err
	}

	def, err := lookupChecklist(cfg, name)
	if err != nil {
		return err
	}

	col := collector.New(def)
	header, err := rf.Apply(col)
	if err != nil {
		return fmt.Errorf("invalid responses in %s: %w", responsesPath, err)
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	return runExport(ctx, cmd, cfg, logger, pipeline.NewJob(def, col, header))
}

// checklistName picks the checklist from the argument or the responses
// file. When both are given they must agree.
func checklistName(args []string, fromFile string) (string, error) {
	fromFile = strings.TrimSpace(fromFile)
	switch {
	case len(args) == 0 && fromFile == "":
		return "", errors.New("no checklist given (pass it as an argument or set 'checklist' in the responses file)")
	case len(args) == 0:
		return fromFile, nil
	case fromFile != "" && fromFile != args[0]:
		return "", fmt.Errorf("responses file is for checklist %q, not %q", fromFile, args[0])
	default:
		return args[0], nil
	}
}

// exportOptions converts the configuration into pipeline options.
func exportOptions(cfg *config.Config, store pipeline.Store, logger *slog.Logger) pipeline.ExportOptions {
	fonts := make([]report.FontSource, 0, len(cfg.FontFiles))
	for _, path := range cfg.FontFiles {
		base := filepath.Base(path)
		fonts = append(fonts, report.FontSource{
			Name: strings.TrimSuffix(base, filepath.Ext(base)),
			Path: path,
		})
	}

	return pipeline.ExportOptions{
		OutputDir: cfg.OutputDir,
		Columns:   cfg.Columns,
		BOM:       cfg.BOM,
		PDF:       cfg.HasFormat(config.FormatPDF),
		Markdown:  cfg.HasFormat(config.FormatMarkdown),
		JSON:      cfg.HasFormat(config.FormatJSON),
		Fonts:     fonts,
		Store:     store,
		Logger:    logger,
	}
}

// runExport runs the export pipeline for one job and reports the result.
func runExport(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, job *pipeline.Job) error {
	opts := exportOptions(cfg, nil, logger)
	if cfg.SaveToDB {
		db, err := openHistory(cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		opts.Store = db
	}

	if err := pipeline.DefaultPipeline(opts).Execute(ctx, job); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	printExportResult(cmd.OutOrStdout(), cmd.ErrOrStderr(), job)
	return nil
}

// printExportResult lists the written files and any PDF font warning.
func printExportResult(out, errOut io.Writer, job *pipeline.Job) {
	for _, a := range job.Artifacts {
		if a.Path != "" {
			fmt.Fprintf(out, "Saved %s\n", a.Path)
		}
	}

	sheet := job.Sheet
	if sheet != nil {
		fmt.Fprintf(out, "%d/%d items answered", sheet.Answered(), len(sheet.Records))
		if sheet.ID != "" {
			fmt.Fprintf(out, ", audit ID %s", sheet.ID)
		}
		fmt.Fprintln(out)
	}

	if d := job.Degraded(); d != nil {
		fmt.Fprintf(errOut, "Warning: %s\n", d)
	}
}

// lookupChecklist finds a built-in or configured checklist by name.
func lookupChecklist(cfg *config.Config, name string) (*checklist.Definition, error) {
	reg, err := registry(cfg)
	if err != nil {
		return nil, err
	}
	return reg.Lookup(name)
}
