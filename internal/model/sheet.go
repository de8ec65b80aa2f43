package model

import "time"

// Sheet is a complete audit ready for export: the checklist it was taken
// against, its header, and one record per checklist item in definition
// order.
//
// Design decision: Writers receive a Sheet rather than loose records so
// that every output format (CSV, PDF, Markdown, JSON) sees the same
// title and header, and so the history database can store and restore
// an audit as a single JSON document.
type Sheet struct {
	// ID is assigned when the sheet is saved to the history database.
	// Empty for sheets that have not been stored.
	ID string `json:"id,omitempty"`

	// Checklist is the name of the checklist definition.
	Checklist string `json:"checklist"`

	// Title is the human-readable checklist title.
	Title string `json:"title"`

	// Prefix is the output file name prefix (e.g. "audit").
	Prefix string `json:"prefix"`

	// Header holds auditor, date and notes.
	Header Header `json:"header"`

	// Records holds one row per checklist item.
	Records []Record `json:"records"`

	// CreatedAt is when the sheet was exported.
	CreatedAt time.Time `json:"created_at"`
}

// StatusCounts returns the number of records per status label.
// Unset statuses are counted under "-".
func (s *Sheet) StatusCounts() map[string]int {
	counts := make(map[string]int)
	for _, r := range s.Records {
		counts[r.Status.Label()]++
	}
	return counts
}

// Answered returns the number of records with a set status.
func (s *Sheet) Answered() int {
	n := 0
	for _, r := range s.Records {
		if r.Status.IsSet() {
			n++
		}
	}
	return n
}

// Categories returns the category names in record order, without
// duplicates.
func (s *Sheet) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range s.Records {
		if seen[r.Category] {
			continue
		}
		seen[r.Category] = true
		out = append(out, r.Category)
	}
	return out
}

// RecordsIn returns the records belonging to the named category.
func (s *Sheet) RecordsIn(category string) []Record {
	var out []Record
	for _, r := range s.Records {
		if r.Category == category {
			out = append(out, r)
		}
	}
	return out
}
