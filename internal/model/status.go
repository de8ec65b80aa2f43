package model

import "strings"

// Status is the value recorded for a checklist item.
// Checkbox checklists use "true"/"false"; enumerated checklists use
// whatever choices their definition offers (e.g. "confirmed").
//
// Design decision: We use a string type rather than an iota enum because
// the set of choices comes from the checklist definition, which is data.
// Only required-field presence is validated, so any string is accepted.
type Status string

const (
	// StatusUnset is the status of an item nobody has answered yet.
	StatusUnset Status = ""

	// StatusTrue is the checked state of a checkbox item.
	StatusTrue Status = "true"

	// StatusFalse is the unchecked state of a checkbox item.
	StatusFalse Status = "false"
)

// IsSet reports whether the status has been answered.
func (s Status) IsSet() bool {
	return strings.TrimSpace(string(s)) != ""
}

// String returns the status text.
func (s Status) String() string {
	return string(s)
}

// Label returns the status text for human-readable output.
// Unset statuses are shown as "-".
func (s Status) Label() string {
	if !s.IsSet() {
		return "-"
	}
	return string(s)
}
