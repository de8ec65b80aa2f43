package config

import (
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/nao1215/auditsheet/internal/model"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "auditsheet"

	// DefaultOutputDir is where exported files are written.
	// The current directory matches the download behaviour of a browser
	// form, where the file lands next to the user.
	DefaultOutputDir = "."

	// DefaultBatchSize of 4 concurrent re-exports keeps PDF rendering,
	// which holds a whole document in memory, within a modest footprint.
	DefaultBatchSize = 4

	// DefaultHistoryLimit is the number of audits listed by the history
	// command when no limit is given.
	DefaultHistoryLimit = 20
)

// Output formats that can be exported in addition to CSV.
const (
	FormatPDF      = "pdf"
	FormatMarkdown = "md"
	FormatJSON     = "json"
)

// knownFormats are the values accepted in Formats.
var knownFormats = map[string]bool{
	FormatPDF:      true,
	FormatMarkdown: true,
	FormatJSON:     true,
}

// Config holds all configuration options for auditsheet.
// This struct is populated from defaults, the config file and CLI flags
// (in that order) and passed through the application via dependency
// injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// for simplicity. The number of options is manageable, and nesting would
// add complexity without significant benefit.
type Config struct {
	// Verbose enables detailed log output using slog.LevelDebug and
	// disables redaction of audit comments in logs.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .auditsheet in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// File holds the loaded configuration file, or nil if none was found.
	File *File

	// OutputDir is the directory exported files are written to.
	// Directories are created automatically if they don't exist.
	OutputDir string

	// Formats lists the formats exported alongside CSV ("pdf", "md", "json").
	// CSV is always exported.
	Formats []string

	// Columns selects and orders the CSV columns.
	// Empty means model.DefaultColumns.
	Columns []string

	// BOM prepends a UTF-8 byte order mark to CSV output.
	BOM bool

	// FontFiles are TrueType fonts tried, in order, before the well-known
	// system fonts when rendering PDF documents.
	FontFiles []string

	// JSONOutput prints command output (history, compare) as JSON.
	// Mutually exclusive with MarkdownOutput.
	JSONOutput bool

	// MarkdownOutput prints command output (history, compare) as Markdown.
	// Mutually exclusive with JSONOutput.
	MarkdownOutput bool

	// DBDir is the directory path for storing the SQLite history database.
	// Defaults to XDG data directory (~/.local/share/auditsheet on Linux).
	DBDir string

	// SaveToDB indicates whether exported sheets are stored in the
	// history database.
	SaveToDB bool

	// BatchSize is the number of concurrent re-exports in the rebuild
	// command.
	BatchSize int
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because several defaults are non-zero (output directory,
// batch size, history). This also serves as documentation of what the
// defaults are.
func NewConfig() *Config {
	return &Config{
		OutputDir: DefaultOutputDir,
		DBDir:     XDGDataDir(),
		SaveToDB:  true,
		BatchSize: DefaultBatchSize,
	}
}

// AddChecklistFiles makes extra checklist files available, after the ones
// named in the configuration file.
func (c *Config) AddChecklistFiles(paths ...string) {
	if len(paths) == 0 {
		return
	}
	if c.File == nil {
		c.File = &File{}
	}
	c.File.ChecklistFiles = append(c.File.ChecklistFiles, paths...)
}

// ApplyFile copies the settings present in the configuration file into
// the config. Zero values in the file leave the current setting alone.
// Call it before applying explicitly set CLI flags so that flags win.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	c.File = f

	if f.OutputDir != "" {
		c.OutputDir = f.OutputDir
	}
	if len(f.Formats) > 0 {
		c.Formats = append([]string(nil), f.Formats...)
	}
	if len(f.Columns) > 0 {
		c.Columns = append([]string(nil), f.Columns...)
	}
	if f.BOM {
		c.BOM = true
	}
	if len(f.Fonts) > 0 {
		c.FontFiles = append([]string(nil), f.Fonts...)
	}
	if f.DBDir != "" {
		c.DBDir = f.DBDir
	}
	if f.History != nil {
		c.SaveToDB = *f.History
	}
	if f.BatchSize != 0 {
		c.BatchSize = f.BatchSize
	}
}

// HasFormat reports whether the given additional format is enabled.
func (c *Config) HasFormat(format string) bool {
	for _, f := range c.Formats {
		if f == format {
			return true
		}
	}
	return false
}

// XDGDataDir returns the XDG data directory for auditsheet.
// On Linux: ~/.local/share/auditsheet
// On macOS: ~/Library/Application Support/auditsheet
// On Windows: %LOCALAPPDATA%\auditsheet
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for auditsheet.
// On Linux: ~/.config/auditsheet
// On macOS: ~/Library/Application Support/auditsheet
// On Windows: %APPDATA%\auditsheet
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast, before any record is built or any file is
// written. The first error found is returned because fixing one error
// often makes others irrelevant.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return ErrEmptyOutputDir
	}

	for _, col := range c.Columns {
		if !model.IsColumn(col) {
			return fmt.Errorf("%w: %q (available: %v)", ErrInvalidColumns, col, model.AllColumns)
		}
	}

	for _, f := range c.Formats {
		if !knownFormats[f] {
			return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
		}
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.JSONOutput && c.MarkdownOutput {
		return ErrConflictingFormats
	}

	return nil
}
