package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/auditsheet/internal/collector"
	"github.com/nao1215/auditsheet/internal/form"
	"github.com/nao1215/auditsheet/internal/model"
	"github.com/nao1215/auditsheet/internal/pipeline"
)

// runForm shows the interactive form. Tests replace it.
var runForm = form.Run

// NewFillCmd creates the fill command.
func NewFillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fill <checklist>",
		Short: "Fill in a checklist interactively and export it",
		Long: `Fill opens an interactive form for a checklist in the terminal.

Enter the auditor, the audit date (today by default) and any notes, then
go through the items: space cycles an item's status, enter edits its
comment. Press ctrl+s to save and export, or q to quit without exporting.

The export writes the same files as 'auditsheet export'.

Examples:
  # Fill in the internal audit checklist
  auditsheet fill cro-internal

  # Continue from a responses file and also write a PDF
  auditsheet fill cro-vendor -r responses.yaml --pdf`,
		Args: cobra.ExactArgs(1),
		RunE: runFillCmd,
	}

	cmd.Flags().StringP("responses", "r", "", "Responses file (YAML) to pre-fill the form with")
	addExportFlags(cmd)

	return cmd
}

// runFillCmd executes the fill command.
func runFillCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyExportFlags(cmd, cfg); err != nil {
		return err
	}
	logger := setupLogger(cmd, cfg)

	def, err := lookupChecklist(cfg, args[0])
	if err != nil {
		return err
	}
	col := collector.New(def)

	var formOpts []form.Option
	responsesPath, err := cmd.Flags().GetString("responses")
	if err != nil {
		return err
	}
	if responsesPath != "" {
		header, err := prefill(col, responsesPath, def.Name())
		if err != nil {
			return err
		}
		formOpts = append(formOpts, form.WithHeader(header))
	}

	header, err := runForm(col,
		form.WithIO(cmd.InOrStdin(), cmd.OutOrStdout()),
		form.WithFormOptions(formOpts...),
	)
	if errors.Is(err, form.ErrCancelled) {
		fmt.Fprintln(cmd.OutOrStdout(), "Form closed without saving; nothing was exported.")
		return nil
	}
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	return runExport(ctx, cmd, cfg, logger, pipeline.NewJob(def, col, header))
}

// prefill applies a responses file to the collector and returns its header.
func prefill(col *collector.Collector, path, name string) (model.Header, error) {
	rf, err := collector.LoadResponses(path)
	if err != nil {
		return model.Header{}, fmt.Errorf("failed to read responses: %w", err)
	}
	if _, err := checklistName([]string{name}, rf.Checklist); err != nil {
		return model.Header{}, err
	}
	header, err := rf.Apply(col)
	if err != nil {
		return model.Header{}, fmt.Errorf("invalid responses in %s: %w", path, err)
	}
	return header, nil
}
