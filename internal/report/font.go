package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-pdf/fpdf"
)

// CoreFont is the font used when no font file can be embedded.
// It is built into every PDF reader but only covers Latin-1 text, so
// Japanese checklist text will not render faithfully with it.
const CoreFont = "Helvetica"

// FontSource is one candidate font file for the PDF document.
type FontSource struct {
	// Name is the font family name registered in the document.
	Name string

	// Path is the TrueType font file to embed.
	Path string
}

// DefaultFontSources are well-known locations of TrueType fonts with
// Japanese coverage, tried in order after any configured font.
var DefaultFontSources = []FontSource{
	{Name: "IPAexGothic", Path: "/usr/share/fonts/opentype/ipaexfont-gothic/ipaexg.ttf"},
	{Name: "IPAexGothic", Path: "/usr/share/fonts/truetype/ipaexfont/ipaexg.ttf"},
	{Name: "IPAGothic", Path: "/usr/share/fonts/opentype/ipafont-gothic/ipag.ttf"},
	{Name: "TakaoGothic", Path: "/usr/share/fonts/truetype/takao-gothic/TakaoGothic.ttf"},
	{Name: "NotoSansJP", Path: "/usr/share/fonts/truetype/noto/NotoSansJP-Regular.ttf"},
	{Name: "ArialUnicode", Path: "/Library/Fonts/Arial Unicode.ttf"},
	{Name: "DejaVuSans", Path: "/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf"},
}

// FontOutcome is the result of probing one FontSource.
type FontOutcome int

const (
	// FontUnavailable means the source could not be used.
	FontUnavailable FontOutcome = iota

	// FontUsable means the source was read and parsed successfully.
	FontUsable
)

// String returns a human-readable representation of the outcome.
func (o FontOutcome) String() string {
	switch o {
	case FontUsable:
		return "usable"
	case FontUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// FontAttempt records the outcome of probing one FontSource.
type FontAttempt struct {
	Source  FontSource
	Outcome FontOutcome
	// Reason explains why the source was unavailable.
	Reason string
}

// RenderDegraded reports that no font file was usable and the document
// was rendered with CoreFont instead. It is a warning, not an error: the
// document is complete, but non-Latin text may not be legible.
type RenderDegraded struct {
	Attempts []FontAttempt
	Fallback string
}

// String summarizes the failed attempts.
func (d *RenderDegraded) String() string {
	if len(d.Attempts) == 0 {
		return fmt.Sprintf("no font files configured; rendered with %s", d.Fallback)
	}
	reasons := make([]string, len(d.Attempts))
	for i, a := range d.Attempts {
		reasons[i] = fmt.Sprintf("%s (%s): %s", a.Source.Name, a.Source.Path, a.Reason)
	}
	return fmt.Sprintf("no usable font file; rendered with %s; tried %s",
		d.Fallback, strings.Join(reasons, "; "))
}

// fontChoice is the font selected by resolveFont.
type fontChoice struct {
	name string
	data []byte
}

// resolveFont probes sources in order and returns the first usable one.
// Every probe is recorded. A nil choice means the caller must use CoreFont.
func resolveFont(sources []FontSource) (*fontChoice, []FontAttempt) {
	attempts := make([]FontAttempt, 0, len(sources))
	seen := make(map[string]bool)

	for _, src := range sources {
		if src.Path == "" || seen[src.Path] {
			continue
		}
		seen[src.Path] = true

		data, attempt := probeFont(src)
		attempts = append(attempts, attempt)
		if attempt.Outcome == FontUsable {
			return &fontChoice{name: src.Name, data: data}, attempts
		}
	}

	return nil, attempts
}

// probeFont reads a font file and checks that fpdf can embed it.
func probeFont(src FontSource) (data []byte, attempt FontAttempt) {
	attempt = FontAttempt{Source: src, Outcome: FontUnavailable}

	data, err := os.ReadFile(src.Path)
	if err != nil {
		attempt.Reason = err.Error()
		return nil, attempt
	}
	if !isTrueType(data) {
		attempt.Reason = "not a TrueType font file"
		return nil, attempt
	}

	// fpdf's TrueType parser indexes into the file without bounds checks,
	// so a truncated file can panic.
	defer func() {
		if r := recover(); r != nil {
			data = nil
			attempt.Outcome = FontUnavailable
			attempt.Reason = fmt.Sprintf("failed to parse font: %v", r)
		}
	}()

	// A font that fails to parse is silently not registered, so the probe
	// selects it and renders a line to surface the failure.
	probe := fpdf.New("P", "mm", "A4", "")
	probe.AddUTF8FontFromBytes(src.Name, "", data)
	probe.AddPage()
	probe.SetFont(src.Name, "", 10)
	probe.Cell(0, 5, "probe")
	if err := probe.Output(io.Discard); err != nil {
		attempt.Reason = err.Error()
		return nil, attempt
	}

	attempt.Outcome = FontUsable
	return data, attempt
}

// isTrueType reports whether data starts with a TrueType sfnt version tag.
func isTrueType(data []byte) bool {
	if len(data) < 12 {
		return false
	}
	switch string(data[:4]) {
	case "\x00\x01\x00\x00", "true":
		return true
	}
	return false
}
