package main

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

// testEnv is a configuration file pointing output and history into a
// temporary directory, with a small custom checklist.
type testEnv struct {
	dir        string
	configPath string
	outDir     string
	dbDir      string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	env := &testEnv{
		dir:        dir,
		configPath: filepath.Join(dir, ".auditsheet"),
		outDir:     filepath.Join(dir, "out"),
		dbDir:      filepath.Join(dir, "db"),
	}

	content := "output_dir: " + env.outDir + "\n" +
		"db_dir: " + env.dbDir + "\n" +
		`checklists:
  - name: docs
    title: Documentation
    statuses: [confirmed, finding]
    categories:
      - name: Docs
        items:
          - id: a1
            title: Backup policy
          - id: a2
            title: Retention schedule
`
	if err := os.WriteFile(env.configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return env
}

// writeResponses writes a responses file into the environment directory.
func (e *testEnv) writeResponses(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(e.dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write responses: %v", err)
	}
	return path
}

// run executes the root command with the environment's configuration.
func (e *testEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return execute(t, append([]string{"-c", e.configPath}, args...)...)
}

// execute runs the root command and captures its output.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(bytes.NewReader(nil))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

const janeResponses = `checklist: docs
auditor: Jane Doe
date: "2024-01-15"
notes: Follow-up planned
responses:
  a1:
    status: confirmed
    comment: ok, see log
`

var auditIDPattern = regexp.MustCompile(`audit ID ([0-9a-f-]{36})`)

// auditID extracts the audit id printed by an export.
func auditID(t *testing.T, stdout string) string {
	t.Helper()

	m := auditIDPattern.FindStringSubmatch(stdout)
	if m == nil {
		t.Fatalf("no audit id in output: %q", stdout)
	}
	return m[1]
}
