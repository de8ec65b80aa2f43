package model

// Column names accepted by the tabular exporter.
// They match the field names of Record one-to-one.
const (
	ColumnCategory        = "category"
	ColumnItemID          = "item_id"
	ColumnItemTitle       = "item_title"
	ColumnItemDescription = "item_description"
	ColumnStatus          = "status"
	ColumnComment         = "comment"
	ColumnAuditor         = "auditor"
	ColumnAuditDate       = "audit_date"
	ColumnNotes           = "notes"
)

// AllColumns lists every column in Record field order.
var AllColumns = []string{
	ColumnCategory,
	ColumnItemID,
	ColumnItemTitle,
	ColumnItemDescription,
	ColumnStatus,
	ColumnComment,
	ColumnAuditor,
	ColumnAuditDate,
	ColumnNotes,
}

// DefaultColumns is the column set written when the caller does not
// choose one. Header fields live in the file name, so they are omitted.
var DefaultColumns = []string{
	ColumnCategory,
	ColumnItemTitle,
	ColumnStatus,
	ColumnComment,
}

// Record is one flattened output row: a checklist item, its response and
// the audit header merged together.
type Record struct {
	Category        string `json:"category"`
	ItemID          string `json:"item_id"`
	ItemTitle       string `json:"item_title"`
	ItemDescription string `json:"item_description,omitempty"`
	Status          Status `json:"status"`
	Comment         string `json:"comment"`
	Auditor         string `json:"auditor"`
	AuditDate       string `json:"audit_date"`
	Notes           string `json:"notes,omitempty"`
}

// Field returns the value of the named column.
// The second return value is false if the column does not exist.
func (r Record) Field(column string) (string, bool) {
	switch column {
	case ColumnCategory:
		return r.Category, true
	case ColumnItemID:
		return r.ItemID, true
	case ColumnItemTitle:
		return r.ItemTitle, true
	case ColumnItemDescription:
		return r.ItemDescription, true
	case ColumnStatus:
		return string(r.Status), true
	case ColumnComment:
		return r.Comment, true
	case ColumnAuditor:
		return r.Auditor, true
	case ColumnAuditDate:
		return r.AuditDate, true
	case ColumnNotes:
		return r.Notes, true
	default:
		return "", false
	}
}

// IsColumn reports whether name is a known column.
func IsColumn(name string) bool {
	_, ok := Record{}.Field(name)
	return ok
}
