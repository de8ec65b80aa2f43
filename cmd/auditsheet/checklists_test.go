package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/auditsheet/internal/checklist"
	"github.com/nao1215/auditsheet/internal/collector"
)

func TestChecklistsCmd(t *testing.T) {
	env := newTestEnv(t)

	t.Run("lists built-in and configured checklists", func(t *testing.T) {
		stdout, _, err := env.run(t, "checklists")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{checklist.CROInternal, checklist.CROVendor, "docs", "Documentation", "confirmed, finding"} {
			if !strings.Contains(stdout, want) {
				t.Errorf("expected output to contain %q, got %q", want, stdout)
			}
		}
	})

	t.Run("adds checklists from --checklist-file", func(t *testing.T) {
		path := env.writeResponses(t, "shared.yaml", `checklists:
  - name: shared-vendor
    title: Shared vendor list
    items:
      - title: Contract on file
`)
		stdout, _, err := env.run(t, "--checklist-file", path, "checklists", "--items", "shared-vendor")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, want := range []string{"Shared vendor list", "1.1", "Contract on file"} {
			if !strings.Contains(stdout, want) {
				t.Errorf("expected output to contain %q, got %q", want, stdout)
			}
		}
	})

	t.Run("lists items of one checklist", func(t *testing.T) {
		stdout, _, err := env.run(t, "checklists", "--items", "docs")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(stdout, checklist.CROInternal) {
			t.Error("expected only the requested checklist")
		}
		for _, want := range []string{"Docs", "a1", "Backup policy", "a2"} {
			if !strings.Contains(stdout, want) {
				t.Errorf("expected output to contain %q, got %q", want, stdout)
			}
		}
	})

	t.Run("outputs JSON", func(t *testing.T) {
		stdout, _, err := env.run(t, "checklists", "--json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var infos []checklistInfo
		if err := json.Unmarshal([]byte(stdout), &infos); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(infos) != 3 {
			t.Fatalf("expected 3 checklists, got %d", len(infos))
		}
		last := infos[len(infos)-1]
		if last.Name != "docs" || last.Items != 2 || last.Prefix != checklist.DefaultPrefix {
			t.Errorf("unexpected custom checklist info: %+v", last)
		}
	})

	t.Run("unknown checklist", func(t *testing.T) {
		_, _, err := env.run(t, "checklists", "nope")
		if err == nil || !strings.Contains(err.Error(), "unknown checklist") {
			t.Errorf("expected unknown checklist error, got %v", err)
		}
	})
}

func TestTemplateCmd(t *testing.T) {
	env := newTestEnv(t)

	t.Run("prints a responses skeleton", func(t *testing.T) {
		stdout, _, err := env.run(t, "template", "docs")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		rf, err := collector.ParseResponses([]byte(stdout))
		if err != nil {
			t.Fatalf("template is not a responses file: %v", err)
		}
		if rf.Checklist != "docs" {
			t.Errorf("expected checklist docs, got %q", rf.Checklist)
		}
		if rf.Date == "" {
			t.Error("expected the date to default to today")
		}
		if len(rf.Responses) != 2 || rf.Responses["a1"].Title != "Backup policy" {
			t.Errorf("unexpected responses: %+v", rf.Responses)
		}
		if strings.Index(stdout, `"a1"`) > strings.Index(stdout, `"a2"`) {
			t.Error("expected items in checklist order")
		}
	})

	t.Run("writes to a file", func(t *testing.T) {
		path := filepath.Join(env.dir, "tpl", "responses.yaml")

		if _, _, err := env.run(t, "template", "docs", "-o", path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected file to be written: %v", err)
		}

		_, _, err := env.run(t, "template", "docs", "-o", path)
		if err == nil || !strings.Contains(err.Error(), "already exists") {
			t.Errorf("expected 'already exists' error, got %v", err)
		}

		if _, _, err := env.run(t, "template", "docs", "-o", path, "-f"); err != nil {
			t.Errorf("expected overwrite with -f, got %v", err)
		}
	})
}
