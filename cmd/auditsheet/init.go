package main

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/auditsheet/internal/config"
	"github.com/nao1215/auditsheet/internal/report"
)

// starterConfig is the commented YAML written by `auditsheet init`.
//
//go:embed templates/auditsheet.yaml
var starterConfig []byte

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter .auditsheet configuration file",
		Long: `Init writes a commented configuration file that lists every setting
with its default value: output directory, extra export formats, CSV
columns, PDF fonts, history and rebuild batch size. It also shows how to
define a custom checklist.

Examples:
  # Write .auditsheet in the current directory
  auditsheet init

  # Write the file somewhere else
  auditsheet init -o ~/audits/auditsheet.yaml

  # Replace an existing file
  auditsheet init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile, "Path of the file to write")
	cmd.Flags().BoolP("force", "f", false, "Replace the file if it already exists")
	return cmd
}

func runInitCmd(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("output")
	force, _ := cmd.Flags().GetBool("force")

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use -f to replace it)", path)
	}
	if err := report.SaveFile(path, starterConfig); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\nAdd your own checklists under \"checklists:\" and run `auditsheet checklists` to see them.\n", path)
	return nil
}
