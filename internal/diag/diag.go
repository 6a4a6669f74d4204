// Package diag implements the diagnostic sink shared by every stage of the
// COIL/HOIL toolchain (the front end, the binary codec, the optimizer, and
// the translator). Every component that can fail accepts a *Sink by
// reference and reports through it instead of returning bare errors, so a
// single pipeline run can accumulate more than one diagnostic.
package diag

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Severity is the importance of a reported diagnostic.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
	Internal
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}

// Category groups diagnostics by the component that raised them, and
// determines which hundred-range a diagnostic's numeric Code falls in (see
// spec.md §6.4).
type Category int

const (
	General Category = iota
	Parser
	Type
	Semantic
	Codegen
	Binary
	Assembler
	System
)

func (c Category) String() string {
	switch c {
	case General:
		return "general"
	case Parser:
		return "parser"
	case Type:
		return "type"
	case Semantic:
		return "semantic"
	case Codegen:
		return "codegen"
	case Binary:
		return "binary"
	case Assembler:
		return "assembler"
	case System:
		return "system"
	default:
		return "unknown"
	}
}

// Location is a position in a HOIL source file. Line and column are
// 1-based; Line == 0 means "no location".
type Location struct {
	File   string
	Line   int
	Column int
}

// Diagnostic is a single severity-tagged message with an optional source
// location, mirroring the teacher's SentraError but keyed by a stable
// numeric Code rather than a free-form error string.
type Diagnostic struct {
	Severity Severity
	Category Category
	Code     int
	Message  string
	Location Location
}

func (d *Diagnostic) Error() string {
	if d.Location.File == "" {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s:%d:%d: %s", d.Severity, d.Location.File, d.Location.Line, d.Location.Column, d.Message)
}

// Callback receives every diagnostic reported through a Sink, in the order
// it was reported. Callbacks are invoked synchronously and in registration
// order, per spec.md §4.1.
type Callback func(*Diagnostic)

const historyLimit = 16

// Sink collects diagnostics for one pipeline run. The zero value is not
// usable; use NewSink.
type Sink struct {
	callbacks []Callback
	history   []*Diagnostic
	counts    [4]int
	writer    io.Writer
}

// NewSink creates a sink with no registered callbacks. Until a callback is
// registered, Report falls back to the default stderr formatter.
func NewSink() *Sink {
	return &Sink{writer: os.Stderr}
}

// RegisterCallback appends fn to the list of callbacks invoked by Report.
func (s *Sink) RegisterCallback(fn Callback) {
	s.callbacks = append(s.callbacks, fn)
}

// Report records a diagnostic and fans it out to every registered callback
// in registration order. When no callback is registered, the default
// formatter writes "<severity>: <file>:<line>:<col>: <message>" to stderr.
func (s *Sink) Report(severity Severity, category Category, code int, message string, loc Location) *Diagnostic {
	d := &Diagnostic{Severity: severity, Category: category, Code: code, Message: message, Location: loc}

	s.counts[severity]++
	s.history = append(s.history, d)
	if len(s.history) > historyLimit {
		s.history = s.history[len(s.history)-historyLimit:]
	}

	if len(s.callbacks) == 0 {
		s.writeDefault(d)
		return d
	}
	for _, cb := range s.callbacks {
		cb(d)
	}
	return d
}

func (s *Sink) writeDefault(d *Diagnostic) {
	w := s.writer
	if w == nil {
		w = os.Stderr
	}

	line := d.Error() + "\n"
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		line = colorize(d.Severity) + line + reset
	}
	io.WriteString(w, line)
}

const reset = "\x1b[0m"

func colorize(s Severity) string {
	switch s {
	case Warning:
		return "\x1b[33m"
	case Error, Internal:
		return "\x1b[31m"
	default:
		return "\x1b[0m"
	}
}

// ErrorCount returns the number of diagnostics reported at severity so far.
func (s *Sink) ErrorCount(severity Severity) int {
	return s.counts[severity]
}

// HadErrors reports whether any Error or Internal diagnostic has been
// reported since the last Clear, matching the driver-visible behavior
// described in spec.md §7.
func (s *Sink) HadErrors() bool {
	return s.counts[Error] > 0 || s.counts[Internal] > 0
}

// Clear resets every counter and the bounded history.
func (s *Sink) Clear() {
	s.counts = [4]int{}
	s.history = nil
}

// Last returns up to n most recent diagnostics, most recent last.
func (s *Sink) Last(n int) []*Diagnostic {
	if n > len(s.history) {
		n = len(s.history)
	}
	return append([]*Diagnostic(nil), s.history[len(s.history)-n:]...)
}

// Summary renders a one-line count of diagnostics by severity, used by the
// driver to report "N errors, M warnings" before a non-zero exit.
func (s *Sink) Summary() string {
	var parts []string
	if s.counts[Error]+s.counts[Internal] > 0 {
		parts = append(parts, fmt.Sprintf("%d error(s)", s.counts[Error]+s.counts[Internal]))
	}
	if s.counts[Warning] > 0 {
		parts = append(parts, fmt.Sprintf("%d warning(s)", s.counts[Warning]))
	}
	if len(parts) == 0 {
		return "no diagnostics"
	}
	return strings.Join(parts, ", ")
}

// Error code ranges from spec.md §6.4.
const (
	CodeGeneralBase   = 0
	CodeParserBase    = 100
	CodeTypeBase      = 200
	CodeSemanticBase  = 300
	CodeCodegenBase   = 400
	CodeBinaryBase    = 500
	CodeAssemblerBase = 600
	CodeSystemBase    = 700
)

// Stable diagnostic codes referenced by name elsewhere in the toolchain.
const (
	ErrParserUnexpectedToken = CodeParserBase + 1
	ErrParserUnterminated    = CodeParserBase + 2

	ErrSemanticRedefined      = CodeSemanticBase + 1
	ErrSemanticInvalidControl = CodeSemanticBase + 3
	ErrSemanticInvalidOperand = CodeSemanticBase + 4
	ErrSemanticUndefined      = CodeSemanticBase + 5
	ErrSemanticBadArity       = CodeSemanticBase + 6

	ErrBinaryInvalidFormat  = CodeBinaryBase + 0
	ErrBinaryUnsupportedVer = CodeBinaryBase + 1
	ErrBinaryCorrupt        = CodeBinaryBase + 2

	ErrCodegenUnsupported = CodeCodegenBase + 1

	ErrAssemblerBadMapping = CodeAssemblerBase + 1

	ErrSystemIO = CodeSystemBase + 1
)
