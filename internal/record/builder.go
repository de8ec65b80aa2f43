// Package record flattens a checklist, its collected responses and the
// audit header into ordered output rows.
//
// Build is a pure projection: it reads the definition and the collector,
// never modifies them, and returns the same records for the same input.
// Exporters call it once per save.
package record

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/nao1215/auditsheet/internal/checklist"
	"github.com/nao1215/auditsheet/internal/collector"
	"github.com/nao1215/auditsheet/internal/model"
)

// Header fields that must be present for traceability.
const (
	FieldAuditor   = "auditor"
	FieldAuditDate = "audit_date"
)

// ErrMissingHeader is matched by every *MissingHeaderError.
var ErrMissingHeader = errors.New("missing required header field")

// ErrCollectorMismatch is returned when the collector holds responses for
// a different checklist than the one being built.
var ErrCollectorMismatch = errors.New("collector is bound to another checklist")

// MissingHeaderError is returned when a required header field is empty.
type MissingHeaderError struct {
	Field string
}

// Error implements the error interface.
func (e *MissingHeaderError) Error() string {
	return fmt.Sprintf("%v: %s", ErrMissingHeader, e.Field)
}

// Is reports whether target is ErrMissingHeader.
func (e *MissingHeaderError) Is(target error) bool {
	return target == ErrMissingHeader
}

// ValidateHeader checks the required header fields.
// The auditor must be non-blank and the date must be present.
func ValidateHeader(h model.Header) error {
	if strings.TrimSpace(h.Auditor) == "" {
		return &MissingHeaderError{Field: FieldAuditor}
	}
	if h.Date.IsZero() {
		return &MissingHeaderError{Field: FieldAuditDate}
	}
	return nil
}

// Build returns one record per checklist item, in definition order.
// Each record carries the item, the collector's response for it, and the
// header fields. Text is NFC-normalized so that the same answer typed on
// different systems exports byte-identically. The collector must be bound
// to def.
func Build(def *checklist.Definition, col *collector.Collector, header model.Header) ([]model.Record, error) {
	if col.Definition() != def {
		return nil, fmt.Errorf("%w: %q, not %q",
			ErrCollectorMismatch, col.Definition().Name(), def.Name())
	}
	if err := ValidateHeader(header); err != nil {
		return nil, err
	}

	auditor := normalize(strings.TrimSpace(header.Auditor))
	date := header.DateString()
	notes := normalize(header.Notes)

	entries := def.Entries()
	records := make([]model.Record, 0, len(entries))
	for _, e := range entries {
		resp := col.Get(e.Item.ID)
		records = append(records, model.Record{
			Category:        normalize(e.Category),
			ItemID:          e.Item.ID,
			ItemTitle:       normalize(e.Item.Title),
			ItemDescription: normalize(e.Item.Description),
			Status:          model.Status(normalize(strings.TrimSpace(string(resp.Status)))),
			Comment:         normalize(resp.Comment),
			Auditor:         auditor,
			AuditDate:       date,
			Notes:           notes,
		})
	}

	return records, nil
}

// NewSheet builds the records for an audit and wraps them with the
// checklist's name, title and file prefix.
func NewSheet(def *checklist.Definition, col *collector.Collector, header model.Header, now time.Time) (*model.Sheet, error) {
	records, err := Build(def, col, header)
	if err != nil {
		return nil, err
	}

	header.Auditor = normalize(strings.TrimSpace(header.Auditor))
	header.Notes = normalize(header.Notes)

	return &model.Sheet{
		Checklist: def.Name(),
		Title:     normalize(def.Title()),
		Prefix:    def.Prefix(),
		Header:    header,
		Records:   records,
		CreatedAt: now,
	}, nil
}

func normalize(s string) string {
	return norm.NFC.String(s)
}
