package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/auditsheet/internal/collector"
	"github.com/nao1215/auditsheet/internal/report"
)

// NewTemplateCmd creates the template command.
func NewTemplateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template <checklist>",
		Short: "Write a blank responses file for a checklist",
		Long: `Template writes a YAML responses file listing every item of a checklist.

Fill in the auditor, the statuses and the comments, then export it with
'auditsheet export <checklist> -r <file>'. The date defaults to today.

Examples:
  # Print a template for the internal audit checklist
  auditsheet template cro-internal

  # Write it to a file
  auditsheet template cro-internal -o responses.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: runTemplateCmd,
	}

	cmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolP("force", "f", false, "Overwrite an existing file")

	return cmd
}

// runTemplateCmd executes the template command.
func runTemplateCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	setupLogger(cmd, cfg)

	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	def, err := lookupChecklist(cfg, args[0])
	if err != nil {
		return err
	}

	data, err := collector.Skeleton(def, time.Now()).Marshal(def)
	if err != nil {
		return fmt.Errorf("failed to encode template: %w", err)
	}

	if outputPath == "" || outputPath == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("file already exists: %s (use -f to overwrite)", outputPath)
		}
	}
	if err := report.SaveFile(outputPath, data); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created responses template: %s\n", outputPath)
	return nil
}
