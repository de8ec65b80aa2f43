package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/auditsheet/internal/model"
)

// createTestSheet creates a sheet with sample data for testing.
func createTestSheet() *model.Sheet {
	header := model.Header{
		Auditor: "Jane Doe",
		Date:    time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Notes:   "Follow up on archive retention.",
	}
	rec := func(category, id, title string, status model.Status, comment string) model.Record {
		return model.Record{
			Category:  category,
			ItemID:    id,
			ItemTitle: title,
			Status:    status,
			Comment:   comment,
			Auditor:   header.Auditor,
			AuditDate: header.DateString(),
			Notes:     header.Notes,
		}
	}

	return &model.Sheet{
		ID:        "0b6f7c0e-1d2a-4c3b-9f10-aabbccddeeff",
		Checklist: "test",
		Title:     "Test Checklist",
		Prefix:    "audit",
		Header:    header,
		Records: []model.Record{
			rec("Docs", "1.1", "Backup policy", "confirmed", "ok, see log"),
			rec("Docs", "1.2", "Retention schedule", "finding", ""),
			rec("Access", "2.1", "Badge review", model.StatusUnset, ""),
		},
		CreatedAt: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
	}
}

// TestSimpleWriter tests the human-readable summary writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestSheet()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"Test Checklist", "Jane Doe", "2024-01-15", "STATUS SUMMARY"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("lists only items needing attention by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestSheet()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Backup policy") {
			t.Error("expected commented item to be listed")
		}
		if !strings.Contains(output, "[-] 2.1 Badge review") {
			t.Error("expected unanswered item to be listed")
		}
		if strings.Contains(output, "Retention schedule") {
			t.Error("expected answered item without comment to be omitted")
		}
	})

	t.Run("lists every item with show all", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithShowAll(true)).Write(createTestSheet()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "Retention schedule") {
			t.Error("expected every item to be listed")
		}
	})

	t.Run("writes notes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestSheet()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "Follow up on archive retention.") {
			t.Error("expected notes in output")
		}
	})
}

// TestJSONWriter tests the JSON writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes valid JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestSheet()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got model.Sheet
		if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if len(got.Records) != 3 {
			t.Errorf("expected 3 records, got %d", len(got.Records))
		}
		if got.Header.Auditor != "Jane Doe" {
			t.Errorf("expected auditor Jane Doe, got %q", got.Header.Auditor)
		}
	})

	t.Run("compact output is a single line", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestSheet()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Count(buf.String(), "\n") != 1 {
			t.Errorf("expected one trailing newline, got %q", buf.String())
		}
	})

	t.Run("pretty print indents", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestSheet()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"checklist\"") {
			t.Error("expected indented output")
		}
	})
}

// TestMarkdownWriter tests the Markdown writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf).Write(createTestSheet()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	tests := []struct {
		name string
		want string
	}{
		{name: "title", want: "# Test Checklist"},
		{name: "category heading", want: "### Docs"},
		{name: "second category", want: "### Access"},
		{name: "item title", want: "Backup policy"},
		{name: "summary", want: "## Summary"},
		{name: "unanswered warning", want: "1 of 3 item(s) have no status recorded."},
		{name: "notes", want: "Follow up on archive retention."},
	}
	for _, tt := range tests {
		if !strings.Contains(output, tt.want) {
			t.Errorf("%s: expected output to contain %q", tt.name, tt.want)
		}
	}
}

// TestCell tests table cell flattening.
func TestCell(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: "-"},
		{in: "   ", want: "-"},
		{in: "one line", want: "one line"},
		{in: "two\nlines", want: "two lines"},
	}
	for _, tt := range tests {
		if got := cell(tt.in); got != tt.want {
			t.Errorf("cell(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

type failingWriter struct{}

func (failingWriter) Write(*model.Sheet) (int, error) {
	return 0, errors.New("boom")
}

// TestMultiWriter tests writing to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var a, b bytes.Buffer
		m := NewMultiWriter(NewSimpleWriter(&a), NewJSONWriter(&b))
		n, err := m.Write(createTestSheet())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.Len() == 0 || b.Len() == 0 {
			t.Error("expected both writers to receive output")
		}
		if n != a.Len()+b.Len() {
			t.Errorf("expected %d bytes, got %d", a.Len()+b.Len(), n)
		}
	})

	t.Run("combines a format with a WriterFunc", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		var seen string
		trailer := WriterFunc(func(sheet *model.Sheet) (int, error) {
			seen = sheet.Checklist
			return buf.WriteString("TRAILER\n")
		})
		n, err := NewMultiWriter(NewSimpleWriter(&buf), trailer).Write(createTestSheet())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("expected %d bytes, got %d", buf.Len(), n)
		}
		if seen != createTestSheet().Checklist {
			t.Errorf("expected WriterFunc to receive the sheet, got checklist %q", seen)
		}
		if !strings.HasSuffix(buf.String(), "TRAILER\n") {
			t.Errorf("expected trailer after the summary, got %q", buf.String())
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var after bytes.Buffer
		m := NewMultiWriter(failingWriter{}, NewSimpleWriter(&after))
		if _, err := m.Write(createTestSheet()); err == nil {
			t.Fatal("expected error")
		}
		if after.Len() != 0 {
			t.Error("expected later writers to be skipped")
		}
	})
}
