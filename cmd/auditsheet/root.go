package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/auditsheet/internal/checklist"
	"github.com/nao1215/auditsheet/internal/config"
	"github.com/nao1215/auditsheet/internal/database"
	applog "github.com/nao1215/auditsheet/internal/log"
)

// NewRootCmd creates the root command for auditsheet.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auditsheet",
		Short: "Export audit checklists as traceable records",
		Long: `auditsheet fills in audit checklists and exports them as records.

Each export writes a CSV file named <prefix>_<date>_<auditor>.csv and,
optionally, a PDF document, a Markdown report and a JSON document.
Exports are recorded in a local history database so they can be listed,
compared, rebuilt and verified later.

Built-in checklists cover imaging CRO internal audits and vendor audits.
Custom checklists can be defined in the .auditsheet configuration file,
in shared YAML files listed under checklist_files, or with --checklist-file.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging (includes audit comments)")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .auditsheet in current or home directory)")
	cmd.PersistentFlags().StringArray("checklist-file", nil,
		"YAML file with additional checklists (repeatable)")

	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewChecklistsCmd())
	cmd.AddCommand(NewTemplateCmd())
	cmd.AddCommand(NewFillCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewRebuildCmd())
	cmd.AddCommand(NewVerifyCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getConfigFlag retrieves the config file path from the command or its parent.
func getConfigFlag(cmd *cobra.Command) string {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		path, err = cmd.Root().PersistentFlags().GetString("config")
		if err != nil {
			return ""
		}
	}
	return path
}

// loadConfig loads the configuration file selected by the global flags.
// Command specific flags are applied by the caller, which then validates.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(getConfigFlag(cmd))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.Verbose = getVerboseFlag(cmd)
	files, _ := cmd.Flags().GetStringArray("checklist-file")
	cfg.AddChecklistFiles(files...)
	return cfg, nil
}

// setupLogger creates the structured logger for a command and installs it
// as the default. Audit comments and notes are redacted unless verbose.
func setupLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	logger := applog.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)
	slog.SetDefault(logger)
	return logger
}

// signalContext returns the command context cancelled on SIGINT/SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// registry returns the built-in checklists plus the configured ones.
func registry(cfg *config.Config) (*checklist.Registry, error) {
	reg, err := cfg.File.Registry()
	if err != nil {
		return nil, fmt.Errorf("invalid checklist configuration: %w", err)
	}
	return reg, nil
}

// openHistory opens the history database in the configured directory.
func openHistory(cfg *config.Config, logger *slog.Logger) (*database.AuditDB, error) {
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	logger.Debug("history database opened", "path", db.Path())
	return db, nil
}
