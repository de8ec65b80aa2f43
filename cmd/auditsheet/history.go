package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"

	"github.com/nao1215/auditsheet/internal/config"
	"github.com/nao1215/auditsheet/internal/database"
	"github.com/nao1215/auditsheet/internal/model"
	"github.com/nao1215/auditsheet/internal/report"
)

// shortIDLength is how much of an audit id the listing shows.
// Any unique prefix is accepted wherever an id is expected.
const shortIDLength = 8

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [audit-id]",
		Short: "List exported audits or show one of them",
		Long: `History lists the audits recorded in the history database, newest first.

Given an audit id (or a unique prefix of one), it shows that audit and
the files exported from it.

Examples:
  # List the 20 most recent audits
  auditsheet history

  # Only vendor audits by one auditor
  auditsheet history --checklist cro-vendor --auditor "Jane Doe"

  # Show one audit with every item
  auditsheet history 3f2a9c1e --all

  # Output as JSON
  auditsheet history --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().String("checklist", "", "Only list audits of this checklist")
	cmd.Flags().String("auditor", "", "Only list audits by this auditor")
	cmd.Flags().IntP("limit", "n", config.DefaultHistoryLimit, "Maximum number of audits to list (0 for all)")
	cmd.Flags().BoolP("all", "a", false, "When showing an audit, list every item")
	cmd.Flags().BoolP("json", "j", false, "Output as JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false, "Output as Markdown (mutually exclusive with --json)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyOutputFlags(cmd, cfg); err != nil {
		return err
	}
	logger := setupLogger(cmd, cfg)

	db, err := openHistory(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if len(args) == 1 {
		showAll, err := cmd.Flags().GetBool("all")
		if err != nil {
			return err
		}
		return showAudit(ctx, cmd.OutOrStdout(), db, cfg, args[0], showAll)
	}

	var filter database.Filter
	if filter.Checklist, err = cmd.Flags().GetString("checklist"); err != nil {
		return err
	}
	if filter.Auditor, err = cmd.Flags().GetString("auditor"); err != nil {
		return err
	}
	if filter.Limit, err = cmd.Flags().GetInt("limit"); err != nil {
		return err
	}

	audits, err := db.ListAudits(ctx, filter)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case cfg.JSONOutput:
		if audits == nil {
			audits = []database.AuditSummary{}
		}
		_, err = report.NewJSONWriter(out, report.WithPrettyPrint()).WriteValue(audits)
		return err
	case cfg.MarkdownOutput:
		return writeHistoryMarkdown(out, audits)
	default:
		writeHistoryText(out, audits)
		return nil
	}
}

// applyOutputFlags reads --json/--markdown into the configuration and
// validates it.
func applyOutputFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error
	if cfg.JSONOutput, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownOutput, err = cmd.Flags().GetBool("markdown"); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	return nil
}

// writeHistoryText prints the audit listing with colors on a terminal.
func writeHistoryText(out io.Writer, audits []database.AuditSummary) {
	if len(audits) == 0 {
		fmt.Fprintln(out, "No audits found in the history.")
		fmt.Fprintln(out, "\nUse 'auditsheet export' or 'auditsheet fill' to record one.")
		return
	}

	idColor := color.New(color.FgCyan).SprintFunc()
	doneColor := color.New(color.FgGreen).SprintFunc()
	openColor := color.New(color.FgYellow).SprintFunc()
	header := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(out, "Audit history (%d):\n\n", len(audits))
	fmt.Fprintf(out, "  %s\n", header(fmt.Sprintf("%-8s  %-10s  %-16s  %-20s  %s", "ID", "Date", "Checklist", "Auditor", "Answered")))

	for _, a := range audits {
		answered := fmt.Sprintf("%d/%d", a.Answered, a.Items)
		if a.Answered == a.Items {
			answered = doneColor(answered)
		} else {
			answered = openColor(answered)
		}
		fmt.Fprintf(out, "  %s  %-10s  %-16s  %-20s  %s\n",
			idColor(shortID(a.ID)), a.AuditDate, a.Checklist, a.Auditor, answered)
	}

	fmt.Fprintln(out, "\nUse 'auditsheet history <id>' to show an audit.")
}

// writeHistoryMarkdown prints the audit listing as a Markdown table.
func writeHistoryMarkdown(out io.Writer, audits []database.AuditSummary) error {
	md := markdown.NewMarkdown(out)
	md.H1("Audit History")
	md.PlainText("")

	if len(audits) == 0 {
		md.PlainText("No audits found.")
		return md.Build()
	}

	rows := make([][]string, len(audits))
	for i, a := range audits {
		rows[i] = []string{
			"`" + shortID(a.ID) + "`",
			a.AuditDate,
			a.Checklist,
			a.Auditor,
			strconv.Itoa(a.Answered) + "/" + strconv.Itoa(a.Items),
			a.CreatedAt.Format("2006-01-02 15:04"),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"ID", "Audit Date", "Checklist", "Auditor", "Answered", "Exported"},
		Rows:   rows,
	})

	return md.Build()
}

// showAudit prints one stored audit and its exported files.
func showAudit(ctx context.Context, out io.Writer, db *database.AuditDB, cfg *config.Config, id string, showAll bool) error {
	sheet, err := db.GetSheet(ctx, id)
	if err != nil {
		return err
	}
	artifacts, err := db.Artifacts(ctx, sheet.ID)
	if err != nil {
		return err
	}

	switch {
	case cfg.JSONOutput:
		if artifacts == nil {
			artifacts = []database.Artifact{}
		}
		_, err := report.NewJSONWriter(out, report.WithPrettyPrint()).WriteValue(struct {
			Sheet     *model.Sheet        `json:"sheet"`
			Artifacts []database.Artifact `json:"artifacts"`
		}{sheet, artifacts})
		return err
	case cfg.MarkdownOutput:
		_, err := report.NewMarkdownWriter(out).Write(sheet)
		return err
	}

	w := report.NewMultiWriter(
		report.NewSimpleWriter(out, report.WithShowAll(showAll)),
		report.WriterFunc(func(*model.Sheet) (int, error) {
			return writeArtifacts(out, artifacts)
		}),
	)
	_, err = w.Write(sheet)
	return err
}

// writeArtifacts prints the files exported from an audit with their digests.
func writeArtifacts(out io.Writer, artifacts []database.Artifact) (int, error) {
	var b strings.Builder
	b.WriteString("\nEXPORTED FILES\n--------------\n")
	if len(artifacts) == 0 {
		b.WriteString("  (none recorded)\n")
	}
	for _, a := range artifacts {
		fmt.Fprintf(&b, "  %-4s %s\n", a.Format, a.Path)
		fmt.Fprintf(&b, "       blake2b-256 %s\n", a.Digest)
	}
	return io.WriteString(out, b.String())
}

// shortID returns the listing form of an audit id.
func shortID(id string) string {
	if len(id) > shortIDLength {
		return id[:shortIDLength]
	}
	return id
}
