package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/auditsheet/internal/checklist"
	"github.com/nao1215/auditsheet/internal/report"
)

// checklistInfo is the JSON form of a checklist listing entry.
type checklistInfo struct {
	Name       string   `json:"name"`
	Title      string   `json:"title"`
	Prefix     string   `json:"prefix"`
	Statuses   []string `json:"statuses"`
	Categories int      `json:"categories"`
	Items      int      `json:"items"`
}

// NewChecklistsCmd creates the checklists command.
func NewChecklistsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checklists",
		Short: "List available checklists",
		Long: `List the built-in checklists and the ones defined in the configuration file.

Examples:
  # List checklists
  auditsheet checklists

  # Show every item of one checklist
  auditsheet checklists --items cro-vendor

  # Output as JSON
  auditsheet checklists --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runChecklistsCmd,
	}

	cmd.Flags().BoolP("json", "j", false, "Output as JSON")
	cmd.Flags().BoolP("items", "i", false, "List the items of each checklist")

	return cmd
}

// runChecklistsCmd executes the checklists command.
func runChecklistsCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	setupLogger(cmd, cfg)

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	showItems, err := cmd.Flags().GetBool("items")
	if err != nil {
		return err
	}

	reg, err := registry(cfg)
	if err != nil {
		return err
	}

	defs := reg.All()
	if len(args) == 1 {
		def, err := reg.Lookup(args[0])
		if err != nil {
			return err
		}
		defs = []*checklist.Definition{def}
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		infos := make([]checklistInfo, len(defs))
		for i, d := range defs {
			infos[i] = describeChecklist(d)
		}
		_, err := report.NewJSONWriter(out, report.WithPrettyPrint()).WriteValue(infos)
		return err
	}

	for _, d := range defs {
		info := describeChecklist(d)
		fmt.Fprintf(out, "%-16s %s\n", info.Name, info.Title)
		fmt.Fprintf(out, "%-16s %d items, statuses: %s\n", "", info.Items, strings.Join(info.Statuses, ", "))
		if showItems {
			category := "\x00"
			for _, e := range d.Entries() {
				if e.Category != category {
					category = e.Category
					if category != "" {
						fmt.Fprintf(out, "%-16s %s\n", "", category)
					}
				}
				fmt.Fprintf(out, "%-16s   %-6s %s\n", "", e.Item.ID, e.Item.Title)
			}
		}
	}

	return nil
}

func describeChecklist(d *checklist.Definition) checklistInfo {
	statuses := make([]string, 0, len(d.Statuses()))
	for _, s := range d.Statuses() {
		statuses = append(statuses, s.String())
	}
	return checklistInfo{
		Name:       d.Name(),
		Title:      d.Title(),
		Prefix:     d.Prefix(),
		Statuses:   statuses,
		Categories: len(d.Categories()),
		Items:      d.Len(),
	}
}
