package model

import "time"

// DateLayout is the ISO-8601 calendar date layout used for audit dates
// in file names, CSV cells and responses files.
const DateLayout = "2006-01-02"

// Response is the user-entered answer for one checklist item.
type Response struct {
	// ItemID identifies the checklist item this response belongs to.
	ItemID string `json:"item_id"`

	// Status is the recorded status; StatusUnset until answered.
	Status Status `json:"status"`

	// Comment is free-text commentary for the item.
	Comment string `json:"comment"`
}

// NewResponse returns the default response for an item:
// unset status and empty comment.
func NewResponse(itemID string) Response {
	return Response{ItemID: itemID, Status: StatusUnset}
}

// Header holds the metadata recorded once per audit.
type Header struct {
	// Auditor is the name of the person performing the audit. Required.
	Auditor string `json:"auditor"`

	// Date is the audit date. The zero value means the date is absent.
	// Only the calendar date is meaningful.
	Date time.Time `json:"date"`

	// Notes is the optional free-text "special notes" block.
	Notes string `json:"notes,omitempty"`
}

// DateString returns the audit date formatted as YYYY-MM-DD,
// or an empty string if the date is absent.
func (h Header) DateString() string {
	if h.Date.IsZero() {
		return ""
	}
	return h.Date.Format(DateLayout)
}

// ParseDate parses an audit date in YYYY-MM-DD form.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
