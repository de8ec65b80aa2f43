package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/auditsheet/internal/model"
)

// FileName is the name of the database file inside the database directory.
const FileName = "auditsheet.db"

var (
	// ErrNotFound is returned when no audit or artifact matches a lookup.
	ErrNotFound = errors.New("not found in audit history")

	// ErrAmbiguousID is returned when an id prefix matches several audits.
	ErrAmbiguousID = errors.New("ambiguous audit id")
)

// AuditDB provides SQLite-based storage for exported audit sheets.
//
// Design decision: Sheets are stored whole as JSON next to a few indexed
// columns. The JSON is what the re-export and compare commands need, and
// the columns are what the history listing filters on, so neither needs a
// table per record.
type AuditDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures AuditDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates an AuditDB in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*AuditDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	adb := &AuditDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := adb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return adb, nil
}

// Path returns the database file path.
func (adb *AuditDB) Path() string {
	return adb.dbPath
}

// Close closes the database connection.
func (adb *AuditDB) Close() error {
	return adb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (adb *AuditDB) createTables() error {
	schema := `
	-- Audits store complete sheets as JSON
	CREATE TABLE IF NOT EXISTS audits (
		id TEXT PRIMARY KEY,
		checklist TEXT NOT NULL,
		title TEXT NOT NULL,
		prefix TEXT NOT NULL,
		auditor TEXT NOT NULL,
		audit_date TEXT NOT NULL,
		notes TEXT,
		item_count INTEGER NOT NULL,
		answered INTEGER NOT NULL,
		sheet_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audits_checklist ON audits(checklist);
	CREATE INDEX IF NOT EXISTS idx_audits_auditor ON audits(auditor);
	CREATE INDEX IF NOT EXISTS idx_audits_created ON audits(created_at);

	-- Artifacts record every file written for an audit
	CREATE TABLE IF NOT EXISTS artifacts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		audit_id TEXT NOT NULL REFERENCES audits(id),
		format TEXT NOT NULL,
		path TEXT NOT NULL,
		digest TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_artifacts_audit ON artifacts(audit_id);
	CREATE INDEX IF NOT EXISTS idx_artifacts_digest ON artifacts(digest);
	`

	_, err := adb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveSheet stores a sheet and returns its id.
// A sheet without an ID is given a new UUID, which is also written back
// into sheet.ID so that later artifacts can reference it.
func (adb *AuditDB) SaveSheet(ctx context.Context, sheet *model.Sheet) (string, error) {
	if sheet.ID == "" {
		sheet.ID = uuid.NewString()
	}
	if sheet.CreatedAt.IsZero() {
		sheet.CreatedAt = time.Now()
	}

	sheetJSON, err := json.Marshal(sheet)
	if err != nil {
		return "", fmt.Errorf("failed to serialize sheet: %w", err)
	}

	query := `
	INSERT INTO audits (id, checklist, title, prefix, auditor, audit_date, notes, item_count, answered, sheet_json, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = adb.db.ExecContext(ctx, query,
		sheet.ID,
		sheet.Checklist,
		sheet.Title,
		sheet.Prefix,
		sheet.Header.Auditor,
		sheet.Header.DateString(),
		sheet.Header.Notes,
		len(sheet.Records),
		sheet.Answered(),
		string(sheetJSON),
		formatTimestamp(sheet.CreatedAt),
	)
	if err != nil {
		return "", fmt.Errorf("failed to save sheet: %w", err)
	}

	return sheet.ID, nil
}

// Artifact is one file produced by an export.
type Artifact struct {
	AuditID   string    `json:"audit_id"`
	Format    string    `json:"format"`
	Path      string    `json:"path"`
	Digest    string    `json:"digest"`
	CreatedAt time.Time `json:"created_at"`
}

// SaveArtifact records a file produced for a stored audit.
func (adb *AuditDB) SaveArtifact(ctx context.Context, a Artifact) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	query := `
	INSERT INTO artifacts (audit_id, format, path, digest, created_at)
	VALUES (?, ?, ?, ?, ?)
	`

	_, err := adb.db.ExecContext(ctx, query, a.AuditID, a.Format, a.Path, a.Digest, formatTimestamp(a.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save artifact: %w", err)
	}
	return nil
}

// GetSheet retrieves a stored sheet by id or by a unique id prefix.
// It returns ErrNotFound when nothing matches and ErrAmbiguousID when the
// prefix matches several audits.
func (adb *AuditDB) GetSheet(ctx context.Context, id string) (*model.Sheet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: empty audit id", ErrNotFound)
	}

	query := `
	SELECT sheet_json FROM audits
	WHERE id = ? OR id LIKE ? ESCAPE '\'
	ORDER BY id = ? DESC
	LIMIT 2
	`

	rows, err := adb.db.QueryContext(ctx, query, id, escapeLike(id)+"%", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get sheet: %w", err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var sheetJSON string
		if err := rows.Scan(&sheetJSON); err != nil {
			return nil, fmt.Errorf("failed to scan sheet: %w", err)
		}
		matches = append(matches, sheetJSON)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get sheet: %w", err)
	}

	switch {
	case len(matches) == 0:
		return nil, fmt.Errorf("%w: audit %q", ErrNotFound, id)
	case len(matches) > 1:
		// An exact match sorts first and wins over longer ids sharing it
		// as a prefix.
		var first model.Sheet
		if err := json.Unmarshal([]byte(matches[0]), &first); err == nil && first.ID == id {
			return &first, nil
		}
		return nil, fmt.Errorf("%w: %q", ErrAmbiguousID, id)
	}

	return decodeSheet(matches[0])
}

// AuditSummary is the listing form of a stored audit.
type AuditSummary struct {
	ID        string    `json:"id"`
	Checklist string    `json:"checklist"`
	Title     string    `json:"title"`
	Auditor   string    `json:"auditor"`
	AuditDate string    `json:"audit_date"`
	Items     int       `json:"items"`
	Answered  int       `json:"answered"`
	CreatedAt time.Time `json:"created_at"`
}

// Filter narrows ListAudits results. Zero fields do not filter.
type Filter struct {
	Checklist string
	Auditor   string
	Limit     int
}

// ListAudits returns stored audits, newest first.
func (adb *AuditDB) ListAudits(ctx context.Context, f Filter) ([]AuditSummary, error) {
	var (
		where []string
		args  []any
	)
	if f.Checklist != "" {
		where = append(where, "checklist = ?")
		args = append(args, f.Checklist)
	}
	if f.Auditor != "" {
		where = append(where, "auditor = ?")
		args = append(args, f.Auditor)
	}

	query := `SELECT id, checklist, title, auditor, audit_date, item_count, answered, created_at FROM audits`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := adb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audits: %w", err)
	}
	defer rows.Close()

	var results []AuditSummary
	for rows.Next() {
		var s AuditSummary
		var createdAt string
		if err := rows.Scan(&s.ID, &s.Checklist, &s.Title, &s.Auditor, &s.AuditDate, &s.Items, &s.Answered, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit: %w", err)
		}
		s.CreatedAt = parseTimestamp(createdAt)
		results = append(results, s)
	}

	return results, rows.Err()
}

// Artifacts returns the files recorded for an audit, oldest first.
func (adb *AuditDB) Artifacts(ctx context.Context, auditID string) ([]Artifact, error) {
	query := `
	SELECT audit_id, format, path, digest, created_at FROM artifacts
	WHERE audit_id = ?
	ORDER BY id
	`

	rows, err := adb.db.QueryContext(ctx, query, auditID)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer rows.Close()

	var results []Artifact
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, a)
	}

	return results, rows.Err()
}

// FindArtifactByDigest returns the most recent artifact with the digest.
// It returns ErrNotFound when no artifact matches.
func (adb *AuditDB) FindArtifactByDigest(ctx context.Context, digest string) (*Artifact, error) {
	query := `
	SELECT audit_id, format, path, digest, created_at FROM artifacts
	WHERE digest = ?
	ORDER BY id DESC
	LIMIT 1
	`

	a, err := scanArtifact(adb.db.QueryRowContext(ctx, query, digest))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: digest %s", ErrNotFound, digest)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// LatestSheets returns up to n stored sheets, newest first.
// An empty checklist name matches every checklist; n <= 0 means no limit.
func (adb *AuditDB) LatestSheets(ctx context.Context, checklist string, n int) ([]*model.Sheet, error) {
	query := `SELECT sheet_json FROM audits`
	var args []any
	if checklist != "" {
		query += " WHERE checklist = ?"
		args = append(args, checklist)
	}
	query += " ORDER BY created_at DESC, id"
	if n > 0 {
		query += " LIMIT ?"
		args = append(args, n)
	}

	rows, err := adb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load sheets: %w", err)
	}
	defer rows.Close()

	var results []*model.Sheet
	for rows.Next() {
		var sheetJSON string
		if err := rows.Scan(&sheetJSON); err != nil {
			return nil, fmt.Errorf("failed to scan sheet: %w", err)
		}
		sheet, err := decodeSheet(sheetJSON)
		if err != nil {
			return nil, err
		}
		results = append(results, sheet)
	}

	return results, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanArtifact(row rowScanner) (Artifact, error) {
	var a Artifact
	var createdAt string
	if err := row.Scan(&a.AuditID, &a.Format, &a.Path, &a.Digest, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return a, err
		}
		return a, fmt.Errorf("failed to scan artifact: %w", err)
	}
	a.CreatedAt = parseTimestamp(createdAt)
	return a, nil
}

func decodeSheet(sheetJSON string) (*model.Sheet, error) {
	var sheet model.Sheet
	if err := json.Unmarshal([]byte(sheetJSON), &sheet); err != nil {
		return nil, fmt.Errorf("failed to parse sheet: %w", err)
	}
	return &sheet, nil
}

// escapeLike escapes LIKE wildcards so an id prefix matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// formatTimestamp stores times in UTC with nanoseconds so that text order
// matches time order.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z")
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02T15:04:05.000000000Z", // formatTimestamp
	"2006-01-02 15:04:05",            // SQLite default datetime format
	time.RFC3339Nano,
	time.RFC3339,
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
