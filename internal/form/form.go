// Package form is the interactive terminal form for filling in a checklist.
//
// The form writes statuses and comments into a collector.Collector and
// returns the audit header once the user saves. It never exports anything
// itself; the caller hands the filled collector to the export pipeline.
package form

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nao1215/auditsheet/internal/checklist"
	"github.com/nao1215/auditsheet/internal/collector"
	"github.com/nao1215/auditsheet/internal/model"
	"github.com/nao1215/auditsheet/internal/record"
)

// ErrCancelled is returned by Run when the user quits without saving.
var ErrCancelled = errors.New("form closed without saving")

// Header field rows, in display order.
const (
	fieldAuditor = iota
	fieldDate
	fieldNotes
	headerRows
)

var fieldLabels = [headerRows]string{"Auditor", "Date", "Notes"}

// Key bindings shown in the help line.
var (
	keyUp     = key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up"))
	keyDown   = key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down"))
	keyCycle  = key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "status"))
	keyClear  = key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear"))
	keyEdit   = key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("enter", "edit"))
	keySave   = key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save"))
	keyQuit   = key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit"))
	keyCommit = key.NewBinding(key.WithKeys("enter"))
	keyAbort  = key.NewBinding(key.WithKeys("esc"))
)

// Model is the Bubble Tea model of the checklist form.
//
// Rows are the three header fields followed by one row per checklist
// item. The cursor moves over all of them; enter edits the row under the
// cursor and space cycles an item's status through the checklist's
// choices.
type Model struct {
	def     *checklist.Definition
	col     *collector.Collector
	entries []checklist.Entry

	// header holds one text input per header field.
	header [headerRows]textinput.Model

	// comment is the input used while editing an item comment.
	comment textinput.Model

	cursor  int
	editing bool

	// before is the value of the edited input when editing started, so
	// esc can restore it.
	before string

	saved     bool
	cancelled bool
	errMsg    string
}

// Option configures a Model.
type Option func(*Model)

// WithHeader pre-fills the header fields.
func WithHeader(h model.Header) Option {
	return func(m *Model) {
		m.header[fieldAuditor].SetValue(h.Auditor)
		if !h.Date.IsZero() {
			m.header[fieldDate].SetValue(h.DateString())
		}
		m.header[fieldNotes].SetValue(h.Notes)
	}
}

// WithToday sets the date the date field defaults to.
func WithToday(today time.Time) Option {
	return func(m *Model) {
		m.header[fieldDate].SetValue(today.Format(model.DateLayout))
	}
}

// New creates a form for the collector's checklist.
// The date field defaults to today.
func New(col *collector.Collector, opts ...Option) Model {
	def := col.Definition()
	m := Model{
		def:     def,
		col:     col,
		entries: def.Entries(),
	}

	for i := range m.header {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 200
		m.header[i] = ti
	}
	m.header[fieldAuditor].Placeholder = "name"
	m.header[fieldDate].Placeholder = model.DateLayout
	m.header[fieldDate].CharLimit = len(model.DateLayout)
	m.header[fieldNotes].Placeholder = "special notes"
	m.header[fieldNotes].CharLimit = 2000
	m.header[fieldDate].SetValue(time.Now().Format(model.DateLayout))

	m.comment = textinput.New()
	m.comment.Prompt = "> "
	m.comment.Placeholder = "comment"
	m.comment.CharLimit = 2000

	for _, opt := range opts {
		opt(&m)
	}

	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.editing {
		return m.updateEditing(keyMsg)
	}

	m.errMsg = ""
	switch {
	case key.Matches(keyMsg, keySave):
		return m.save()
	case key.Matches(keyMsg, keyQuit):
		m.cancelled = true
		return m, tea.Quit
	case key.Matches(keyMsg, keyUp):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, keyDown):
		if m.cursor < m.rows()-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, keyCycle):
		if e, ok := m.currentEntry(); ok {
			next := nextStatus(m.def.Statuses(), m.col.Get(e.Item.ID).Status)
			_ = m.col.SetStatus(e.Item.ID, next)
		}
	case key.Matches(keyMsg, keyClear):
		if e, ok := m.currentEntry(); ok {
			_ = m.col.SetStatus(e.Item.ID, model.StatusUnset)
		}
	case key.Matches(keyMsg, keyEdit):
		return m.startEditing()
	}

	return m, nil
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keySave):
		m = m.commit()
		return m.save()
	case key.Matches(msg, keyCommit):
		return m.commit(), nil
	case key.Matches(msg, keyAbort):
		m.input().SetValue(m.before)
		return m.stopEditing(), nil
	}

	var cmd tea.Cmd
	in := m.input()
	*in, cmd = in.Update(msg)
	return m, cmd
}

func (m Model) startEditing() (tea.Model, tea.Cmd) {
	if e, ok := m.currentEntry(); ok {
		m.comment.SetValue(m.col.Get(e.Item.ID).Comment)
	}
	in := m.input()
	m.before = in.Value()
	in.CursorEnd()
	cmd := in.Focus()
	m.editing = true
	return m, cmd
}

// commit stores the edited value and leaves editing mode.
func (m Model) commit() Model {
	if e, ok := m.currentEntry(); ok {
		_ = m.col.SetComment(e.Item.ID, m.comment.Value())
	}
	return m.stopEditing()
}

func (m Model) stopEditing() Model {
	m.input().Blur()
	m.editing = false
	return m
}

// save validates the header and quits when it is complete.
func (m Model) save() (tea.Model, tea.Cmd) {
	if _, err := m.Header(); err != nil {
		m.errMsg = err.Error()
		return m, nil
	}
	m.saved = true
	return m, tea.Quit
}

// input returns the text input for the row under the cursor.
func (m *Model) input() *textinput.Model {
	if m.cursor < headerRows {
		return &m.header[m.cursor]
	}
	return &m.comment
}

func (m Model) rows() int {
	return headerRows + len(m.entries)
}

func (m Model) currentEntry() (checklist.Entry, bool) {
	i := m.cursor - headerRows
	if i < 0 || i >= len(m.entries) {
		return checklist.Entry{}, false
	}
	return m.entries[i], true
}

// nextStatus returns the status after current in the cycle
// unset -> choices[0] -> ... -> choices[n-1] -> unset.
// A status that is not one of the choices restarts the cycle.
func nextStatus(choices []model.Status, current model.Status) model.Status {
	if !current.IsSet() {
		if len(choices) == 0 {
			return model.StatusUnset
		}
		return choices[0]
	}
	for i, c := range choices {
		if c == current {
			if i+1 < len(choices) {
				return choices[i+1]
			}
			return model.StatusUnset
		}
	}
	if len(choices) == 0 {
		return model.StatusUnset
	}
	return choices[0]
}

// Header returns the header entered in the form.
// It fails with *record.MissingHeaderError when the auditor is blank or
// the date is missing, and with a parse error for a malformed date.
func (m Model) Header() (model.Header, error) {
	h := model.Header{
		Auditor: strings.TrimSpace(m.header[fieldAuditor].Value()),
		Notes:   strings.TrimSpace(m.header[fieldNotes].Value()),
	}

	if date := strings.TrimSpace(m.header[fieldDate].Value()); date != "" {
		d, err := model.ParseDate(date)
		if err != nil {
			return h, fmt.Errorf("invalid audit date %q (want YYYY-MM-DD)", date)
		}
		h.Date = d
	}

	return h, record.ValidateHeader(h)
}

// Saved reports whether the user saved the form.
func (m Model) Saved() bool {
	return m.saved
}

// View implements tea.Model.
func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(m.def.Title()))
	fmt.Fprintf(&sb, "   %s\n\n", mutedStyle.Render(fmt.Sprintf("%d/%d answered", m.col.Answered(), len(m.entries))))

	for i := 0; i < headerRows; i++ {
		value := m.header[i].View()
		if !(m.editing && m.cursor == i) {
			value = m.header[i].Value()
			if value == "" {
				value = mutedStyle.Render("-")
			}
		}
		sb.WriteString(m.prefix(i))
		fmt.Fprintf(&sb, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-8s", fieldLabels[i]+":")), value)
	}

	category := "\x00"
	for i, e := range m.entries {
		if e.Category != category {
			category = e.Category
			sb.WriteString("\n")
			if category != "" {
				sb.WriteString(categoryStyle.Render(category))
				sb.WriteString("\n")
			}
		}

		row := headerRows + i
		resp := m.col.Get(e.Item.ID)
		sb.WriteString(m.prefix(row))
		fmt.Fprintf(&sb, "%s %s", statusBadge(resp.Status.Label()), e.Item.Title)
		if resp.Comment != "" && !(m.editing && m.cursor == row) {
			fmt.Fprintf(&sb, "  %s", mutedStyle.Render(resp.Comment))
		}
		sb.WriteString("\n")
		if m.editing && m.cursor == row {
			fmt.Fprintf(&sb, "    %s\n", m.comment.View())
		} else if m.cursor == row && e.Item.Description != "" {
			fmt.Fprintf(&sb, "    %s\n", mutedStyle.Render(e.Item.Description))
		}
	}

	sb.WriteString("\n")
	if m.errMsg != "" {
		sb.WriteString(errorStyle.Render("✖ " + m.errMsg))
		sb.WriteString("\n")
	}
	sb.WriteString(helpStyle.Render(m.helpLine()))

	return panelStyle.Render(sb.String())
}

func (m Model) prefix(row int) string {
	if row == m.cursor {
		return selectedStyle.Render(">") + " "
	}
	return "  "
}

func (m Model) helpLine() string {
	if m.editing {
		return "enter confirm • esc discard • ctrl+s save"
	}
	bindings := []key.Binding{keyUp, keyDown, keyCycle, keyClear, keyEdit, keySave, keyQuit}
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		h := b.Help()
		parts[i] = h.Key + " " + h.Desc
	}
	return strings.Join(parts, " • ")
}

// runConfig holds Run options.
type runConfig struct {
	input  io.Reader
	output io.Writer
	opts   []Option
}

// RunOption configures Run.
type RunOption func(*runConfig)

// WithIO sets the terminal input and output. The default is the process
// terminal.
func WithIO(in io.Reader, out io.Writer) RunOption {
	return func(c *runConfig) {
		c.input = in
		c.output = out
	}
}

// WithFormOptions passes options to New.
func WithFormOptions(opts ...Option) RunOption {
	return func(c *runConfig) {
		c.opts = append(c.opts, opts...)
	}
}

// Run shows the form until the user saves or quits.
// On save the collector holds the entered responses and the header is
// returned. Quitting returns ErrCancelled; the collector then holds
// whatever was entered so far.
func Run(col *collector.Collector, opts ...RunOption) (model.Header, error) {
	cfg := runConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	programOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.input != nil {
		programOpts = append(programOpts, tea.WithInput(cfg.input))
	}
	if cfg.output != nil {
		programOpts = append(programOpts, tea.WithOutput(cfg.output))
	}

	final, err := tea.NewProgram(New(col, cfg.opts...), programOpts...).Run()
	if err != nil {
		return model.Header{}, fmt.Errorf("failed to run form: %w", err)
	}

	fm, ok := final.(Model)
	if !ok || !fm.Saved() {
		return model.Header{}, ErrCancelled
	}
	return fm.Header()
}
