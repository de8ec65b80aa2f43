package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"

	"github.com/nao1215/auditsheet/internal/database"
	"github.com/nao1215/auditsheet/internal/model"
	"github.com/nao1215/auditsheet/internal/report"
)

// Kinds of item change between two audits.
const (
	changeModified = "changed"
	changeAdded    = "added"
	changeRemoved  = "removed"
)

// NewCompareCmd creates the compare command.
// This command compares two audits stored in the history database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [previous-id current-id]",
		Short: "Compare two recorded audits item by item",
		Long: `Compare shows how the responses changed between two audits of the same checklist.

For every item it reports a changed status or comment. Items present in
only one of the audits (because the checklist definition changed between
them) are listed as added or removed.

Audit ids come from 'auditsheet history'; any unique prefix is accepted.
Without ids, --checklist compares the latest two audits of that checklist.

Examples:
  # Compare two audits
  auditsheet compare 3f2a9c1e 8b41d07a

  # Compare the latest two internal audits
  auditsheet compare --checklist cro-internal

  # Output comparison in Markdown format
  auditsheet compare --markdown 3f2a9c1e 8b41d07a`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("compare needs two audit ids, got %d", len(args))
			}
			return nil
		},
		RunE: runCompareCmd,
	}

	cmd.Flags().String("checklist", "", "Compare the latest two audits of this checklist")
	cmd.Flags().BoolP("json", "j", false, "Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false, "Output comparison result in Markdown format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	name, err := cmd.Flags().GetString("checklist")
	if err != nil {
		return err
	}
	// Validate arguments before opening the database.
	if len(args) == 0 && name == "" {
		return errors.New("give two audit ids or --checklist (use 'auditsheet history' to see audit ids)")
	}

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

	previous, current, err := loadComparedSheets(ctx, db, args, name)
	if err != nil {
		return err
	}

	result, err := compareSheets(previous, current)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case cfg.JSONOutput:
		_, err := report.NewJSONWriter(out, report.WithPrettyPrint()).WriteValue(result)
		return err
	case cfg.MarkdownOutput:
		return outputComparisonMarkdown(out, result)
	default:
		outputComparisonText(out, result)
		return nil
	}
}

// loadComparedSheets returns the previous and current sheets, either by
// id or as the latest two audits of a checklist.
func loadComparedSheets(ctx context.Context, db *database.AuditDB, args []string, name string) (*model.Sheet, *model.Sheet, error) {
	if len(args) == 2 {
		previous, err := db.GetSheet(ctx, args[0])
		if err != nil {
			return nil, nil, err
		}
		current, err := db.GetSheet(ctx, args[1])
		if err != nil {
			return nil, nil, err
		}
		return previous, current, nil
	}

	sheets, err := db.LatestSheets(ctx, name, 2)
	if err != nil {
		return nil, nil, err
	}
	if len(sheets) < 2 {
		return nil, nil, fmt.Errorf("at least 2 audits of %s are required for comparison (found %d)", name, len(sheets))
	}
	return sheets[1], sheets[0], nil
}

// ComparisonResult holds the result of comparing two audits.
type ComparisonResult struct {
	// Checklist is the name of the compared checklist.
	Checklist string `json:"checklist"`

	// Title is the checklist title of the current audit.
	Title string `json:"title"`

	// Previous describes the older audit.
	Previous AuditRef `json:"previous"`

	// Current describes the newer audit.
	Current AuditRef `json:"current"`

	// Changes lists the items that differ, in checklist order; removed
	// items follow the others.
	Changes []ItemChange `json:"changes"`

	// UnchangedCount is the number of items with the same status and comment.
	UnchangedCount int `json:"unchanged_count"`

	// NotesChanged reports whether the notes differ.
	NotesChanged bool `json:"notes_changed"`
}

// AuditRef identifies one side of a comparison.
type AuditRef struct {
	ID        string    `json:"id"`
	Auditor   string    `json:"auditor"`
	AuditDate string    `json:"audit_date"`
	Answered  int       `json:"answered"`
	Items     int       `json:"items"`
	CreatedAt time.Time `json:"created_at"`
}

// ItemChange is the difference for one checklist item.
type ItemChange struct {
	Kind            string       `json:"kind"`
	ItemID          string       `json:"item_id"`
	ItemTitle       string       `json:"item_title"`
	Category        string       `json:"category,omitempty"`
	PreviousStatus  model.Status `json:"previous_status"`
	CurrentStatus   model.Status `json:"current_status"`
	PreviousComment string       `json:"previous_comment"`
	CurrentComment  string       `json:"current_comment"`
}

// compareSheets compares two audits of the same checklist.
func compareSheets(previous, current *model.Sheet) (*ComparisonResult, error) {
	if previous.Checklist != current.Checklist {
		return nil, fmt.Errorf("cannot compare audits of different checklists (%s and %s)", previous.Checklist, current.Checklist)
	}

	result := &ComparisonResult{
		Checklist:    current.Checklist,
		Title:        current.Title,
		Previous:     auditRef(previous),
		Current:      auditRef(current),
		Changes:      []ItemChange{},
		NotesChanged: strings.TrimSpace(previous.Header.Notes) != strings.TrimSpace(current.Header.Notes),
	}

	before := make(map[string]model.Record, len(previous.Records))
	for _, r := range previous.Records {
		before[r.ItemID] = r
	}
	seen := make(map[string]bool, len(current.Records))

	for _, r := range current.Records {
		seen[r.ItemID] = true
		old, ok := before[r.ItemID]
		if !ok {
			result.Changes = append(result.Changes, ItemChange{
				Kind:           changeAdded,
				ItemID:         r.ItemID,
				ItemTitle:      r.ItemTitle,
				Category:       r.Category,
				CurrentStatus:  r.Status,
				CurrentComment: r.Comment,
			})
			continue
		}
		if old.Status == r.Status && old.Comment == r.Comment {
			result.UnchangedCount++
			continue
		}
		result.Changes = append(result.Changes, ItemChange{
			Kind:            changeModified,
			ItemID:          r.ItemID,
			ItemTitle:       r.ItemTitle,
			Category:        r.Category,
			PreviousStatus:  old.Status,
			CurrentStatus:   r.Status,
			PreviousComment: old.Comment,
			CurrentComment:  r.Comment,
		})
	}

	for _, r := range previous.Records {
		if seen[r.ItemID] {
			continue
		}
		result.Changes = append(result.Changes, ItemChange{
			Kind:            changeRemoved,
			ItemID:          r.ItemID,
			ItemTitle:       r.ItemTitle,
			Category:        r.Category,
			PreviousStatus:  r.Status,
			PreviousComment: r.Comment,
		})
	}

	return result, nil
}

func auditRef(s *model.Sheet) AuditRef {
	return AuditRef{
		ID:        s.ID,
		Auditor:   s.Header.Auditor,
		AuditDate: s.Header.DateString(),
		Answered:  s.Answered(),
		Items:     len(s.Records),
		CreatedAt: s.CreatedAt,
	}
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(out io.Writer, result *ComparisonResult) {
	fmt.Fprintf(out, "Audit Comparison: %s\n", result.Title)
	fmt.Fprintln(out, strings.Repeat("=", 60))

	fmt.Fprintf(out, "\nPrevious: %s  %s  %s  (%d/%d answered)\n",
		shortID(result.Previous.ID), result.Previous.AuditDate, result.Previous.Auditor,
		result.Previous.Answered, result.Previous.Items)
	fmt.Fprintf(out, "Current:  %s  %s  %s  (%d/%d answered)\n",
		shortID(result.Current.ID), result.Current.AuditDate, result.Current.Auditor,
		result.Current.Answered, result.Current.Items)

	if len(result.Changes) == 0 {
		fmt.Fprintln(out, "\nNo item changed.")
	} else {
		fmt.Fprintf(out, "\nChanges (%d):\n", len(result.Changes))
	}
	for _, c := range result.Changes {
		switch c.Kind {
		case changeAdded:
			fmt.Fprintf(out, "  [+] %s %s: %s\n", c.ItemID, c.ItemTitle, c.CurrentStatus.Label())
		case changeRemoved:
			fmt.Fprintf(out, "  [-] %s %s: %s\n", c.ItemID, c.ItemTitle, c.PreviousStatus.Label())
		default:
			fmt.Fprintf(out, "  [~] %s %s\n", c.ItemID, c.ItemTitle)
			if c.PreviousStatus != c.CurrentStatus {
				fmt.Fprintf(out, "      status:  %s -> %s\n", c.PreviousStatus.Label(), c.CurrentStatus.Label())
			}
			if c.PreviousComment != c.CurrentComment {
				fmt.Fprintf(out, "      comment: %q -> %q\n", c.PreviousComment, c.CurrentComment)
			}
		}
	}

	if result.NotesChanged {
		fmt.Fprintln(out, "\nNotes changed.")
	}
	if result.UnchangedCount > 0 {
		fmt.Fprintf(out, "\nUnchanged: %d items\n", result.UnchangedCount)
	}
}

// outputComparisonMarkdown outputs the comparison result in Markdown format.
func outputComparisonMarkdown(out io.Writer, result *ComparisonResult) error {
	md := markdown.NewMarkdown(out)

	md.H1("Audit Comparison: " + result.Title)
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"", "Previous", "Current"},
		Rows: [][]string{
			{"Audit ID", "`" + shortID(result.Previous.ID) + "`", "`" + shortID(result.Current.ID) + "`"},
			{"Audit Date", result.Previous.AuditDate, result.Current.AuditDate},
			{"Auditor", cellText(result.Previous.Auditor), cellText(result.Current.Auditor)},
			{"Answered", ratio(result.Previous.Answered, result.Previous.Items), ratio(result.Current.Answered, result.Current.Items)},
		},
	})
	md.PlainText("")

	md.H2("Changes")
	md.PlainText("")
	if len(result.Changes) == 0 {
		md.Note("No item changed.")
	} else {
		rows := make([][]string, len(result.Changes))
		for i, c := range result.Changes {
			rows[i] = []string{
				c.Kind,
				c.ItemID,
				cellText(c.ItemTitle),
				c.PreviousStatus.Label() + " → " + c.CurrentStatus.Label(),
				cellText(c.PreviousComment) + " → " + cellText(c.CurrentComment),
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Change", "ID", "Item", "Status", "Comment"},
			Rows:   rows,
		})
	}
	md.PlainText("")

	if result.NotesChanged {
		md.Importantf("The notes differ between the two audits.")
		md.PlainText("")
	}
	if result.UnchangedCount > 0 {
		md.HorizontalRule()
		md.PlainText("")
		md.PlainTextf("*%d items unchanged*", result.UnchangedCount)
	}

	return md.Build()
}

// cellText flattens text for a Markdown table cell.
func cellText(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "-"
	}
	return s
}

func ratio(n, total int) string {
	return strconv.Itoa(n) + "/" + strconv.Itoa(total)
}
