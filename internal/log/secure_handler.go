package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// MaskValue replaces attribute values that look like secrets.
const MaskValue = "***REDACTED***"

// attrClass tells the handler what to do with one attribute.
type attrClass int

const (
	classPlain attrClass = iota
	classSecret
	classContent
)

// secretKeys are attribute names masked no matter what value they hold.
// An export run rarely sees secrets, but a config dump at debug level can.
var secretKeys = []string{
	"authorization", "api_key", "apikey", "access_token", "private_key",
}

// secretFragments mask any attribute whose name contains them, so that
// "db_password" or "smtp_token" are caught too. A bare "key" is not listed:
// item keys and checklist keys are ordinary identifiers.
var secretFragments = []string{
	"password", "passwd", "secret", "token", "credential",
}

// contentKeys carry free text typed by the auditor.
var contentKeys = []string{"comment", "comments", "note", "notes"}

// secretValues recognise secrets by shape when the key gives no hint.
var secretValues = []*regexp.Regexp{
	// JWT
	regexp.MustCompile(`^eyJ[\w-]*\.eyJ[\w-]*\.[\w-]*$`),
	// HTTP bearer credentials
	regexp.MustCompile(`(?i)^bearer\s+\S`),
	// AWS access key id
	regexp.MustCompile(`^AKIA[0-9A-Z]{16}$`),
	// PEM block
	regexp.MustCompile(`(?i)-----BEGIN [A-Z ]*(PRIVATE|SECRET) KEY`),
}

// SecureHandler is a slog.Handler middleware that filters every attribute
// before it reaches the wrapped handler. Secret-looking attributes become
// MaskValue. Audit comments and notes become a character count unless the
// handler reveals content.
//
// Design decision: filtering lives in a handler instead of at call sites,
// so packages log with plain slog attributes and cannot forget to redact.
type SecureHandler struct {
	next          slog.Handler
	revealContent bool
}

// HandlerOption configures a SecureHandler.
type HandlerOption func(*SecureHandler)

// WithRevealContent logs audit comments and notes verbatim when reveal is
// true. Secrets are masked either way.
func WithRevealContent(reveal bool) HandlerOption {
	return func(h *SecureHandler) { h.revealContent = reveal }
}

// NewSecureHandler wraps next. A nil next falls back to the handler of
// slog.Default().
func NewSecureHandler(next slog.Handler, opts ...HandlerOption) *SecureHandler {
	if next == nil {
		next = slog.Default().Handler()
	}
	h := &SecureHandler{next: next}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Enabled implements slog.Handler.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler. The record is rebuilt because slog.Record
// offers no way to replace attributes in place.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.filter(a))
		return true
	})
	return h.next.Handle(ctx, out)
}

// WithAttrs implements slog.Handler.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.derive(h.next.WithAttrs(h.filterAll(attrs)))
}

// WithGroup implements slog.Handler.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return h.derive(h.next.WithGroup(name))
}

func (h *SecureHandler) derive(next slog.Handler) *SecureHandler {
	return &SecureHandler{next: next, revealContent: h.revealContent}
}

func (h *SecureHandler) filterAll(attrs []slog.Attr) []slog.Attr {
	out := make([]slog.Attr, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, h.filter(a))
	}
	return out
}

func (h *SecureHandler) filter(a slog.Attr) slog.Attr {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(h.filterAll(v.Group())...)}
	}

	switch classify(a.Key, v) {
	case classSecret:
		return slog.String(a.Key, MaskValue)
	case classContent:
		if !h.revealContent {
			return slog.String(a.Key, charCount(v.String()))
		}
	}
	return slog.Attr{Key: a.Key, Value: v}
}

func classify(key string, v slog.Value) attrClass {
	name := strings.ToLower(key)
	if containsAny(secretKeys, func(k string) bool { return name == k }) ||
		containsAny(secretFragments, func(f string) bool { return strings.Contains(name, f) }) {
		return classSecret
	}
	if v.Kind() != slog.KindString {
		return classPlain
	}
	s := v.String()
	for _, re := range secretValues {
		if re.MatchString(s) {
			return classSecret
		}
	}
	if containsAny(contentKeys, func(k string) bool { return name == k }) {
		return classContent
	}
	return classPlain
}

func containsAny(list []string, match func(string) bool) bool {
	for _, s := range list {
		if match(s) {
			return true
		}
	}
	return false
}

// charCount keeps the fact that a comment was written without its text.
func charCount(s string) string {
	if s == "" {
		return ""
	}
	return fmt.Sprintf("[%d chars]", len([]rune(s)))
}

// NewSecureLogger returns a text logger on w. Verbose mode lowers the level
// to Debug and reveals audit content; otherwise only warnings and errors
// are written.
func NewSecureLogger(w io.Writer, verbose bool) *slog.Logger {
	return newLogger(slog.NewTextHandler(w, levelFor(verbose)), verbose)
}

// NewSecureJSONLogger is NewSecureLogger with JSON lines output.
func NewSecureJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	return newLogger(slog.NewJSONHandler(w, levelFor(verbose)), verbose)
}

func newLogger(base slog.Handler, verbose bool) *slog.Logger {
	return slog.New(NewSecureHandler(base, WithRevealContent(verbose)))
}

func levelFor(verbose bool) *slog.HandlerOptions {
	if verbose {
		return &slog.HandlerOptions{Level: slog.LevelDebug}
	}
	return &slog.HandlerOptions{Level: slog.LevelWarn}
}
