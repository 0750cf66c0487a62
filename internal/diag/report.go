package diag

import (
	"encoding/json"
	"errors"
)

// Span is a lightweight source-location range, independent of any one
// phase's node representation.
type Span struct {
	File        string `json:"file"`
	StartLine   int    `json:"start_line"`
	StartColumn int    `json:"start_column"`
	EndLine     int    `json:"end_line"`
	EndColumn   int    `json:"end_column"`
}

// Fix is an optional machine-suggested remedy attached to a Report.
type Fix struct {
	Description string `json:"description"`
	Replacement string `json:"replacement,omitempty"`
}

// Priority mirrors spec.md's node::ErrorPriority: some diagnostics are
// informational unless nothing else explains a failure.
type Priority int

const (
	PriorityNormal Priority = iota
	PriorityLow
	PriorityHigh
)

// Report is the canonical structured diagnostic type for hiltigo. Every
// CompilationDiagnostic in spec.md §7 is represented as a *Report attached
// to the offending node's error list (see internal/ast.Node.Errors).
type Report struct {
	Schema   string         `json:"schema"`
	Code     string         `json:"code"`
	Phase    string         `json:"phase"`
	Message  string         `json:"message"`
	Span     *Span          `json:"span,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
	Fix      *Fix           `json:"fix,omitempty"`
	Priority Priority       `json:"priority"`
}

// ReportError wraps a Report as an error so it survives errors.As unwrapping
// through ordinary Go error-handling code.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown diagnostic"
	}
	return e.Rep.Code + ": " + e.Rep.Message
}

// AsReport extracts a *Report from an error chain, if present.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// Wrap wraps a Report as an error.
func Wrap(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// New builds a Report for a code and message, taking the phase from the
// code taxonomy (empty for an unregistered code).
func New(code, message string) *Report {
	phase := ""
	if info, ok := GetInfo(code); ok {
		phase = info.Phase
	}
	return &Report{
		Schema:  "hiltigo.diag/v1",
		Code:    code,
		Phase:   phase,
		Message: message,
		Data:    map[string]any{},
	}
}

// WithSpan attaches a source span and returns the receiver for chaining.
func (r *Report) WithSpan(s Span) *Report {
	r.Span = &s
	return r
}

// WithData attaches a structured data key/value and returns the receiver.
func (r *Report) WithData(key string, value any) *Report {
	if r.Data == nil {
		r.Data = map[string]any{}
	}
	r.Data[key] = value
	return r
}

// WithFix attaches a suggested fix and returns the receiver.
func (r *Report) WithFix(f Fix) *Report {
	r.Fix = &f
	return r
}

// WithPriority sets the report's priority and returns the receiver.
func (r *Report) WithPriority(p Priority) *Report {
	r.Priority = p
	return r
}

// ToJSON renders the report as deterministic JSON (sorted map keys, Go's
// encoding/json default for map[string]any).
func (r *Report) ToJSON(compact bool) (string, error) {
	var data []byte
	var err error
	if compact {
		data, err = json.Marshal(r)
	} else {
		data, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// NewInternal builds a Report for an internal-error-class failure: an
// invariant violation that per spec.md §7 should abort the process with a
// backtrace rather than participate in ordinary error recovery. Callers
// still get a Report for logging purposes before they panic.
func NewInternal(phase, message string) *Report {
	return &Report{
		Schema:   "hiltigo.diag/v1",
		Code:     "INTERNAL",
		Phase:    phase,
		Message:  message,
		Data:     map[string]any{},
		Priority: PriorityHigh,
	}
}
