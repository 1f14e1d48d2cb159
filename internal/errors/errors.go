// Package errors defines the diagnostic taxonomy shared across the
// mkTools pipeline: lexer, parser, modeller, generators, and edit
// operations all report through the same Kind/Location/Severity shape so
// callers can treat "where did this come from" uniformly.
package errors

import (
	"fmt"
)

// Kind is a closed set of diagnostic categories, one per row of spec.md §7.
type Kind string

const (
	KindLex          Kind = "lex_error"
	KindParse        Kind = "parse_error"
	KindIO           Kind = "io_error"
	KindEnvMissing   Kind = "env_missing"
	KindModel        Kind = "model_error"
	KindLimitWarning Kind = "limit_warning"
	KindDeprecation  Kind = "deprecation"
)

// Severity distinguishes diagnostics that abort the run from ones that
// merely accumulate on stderr.
type Severity int

const (
	SeverityFatal Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

func defaultSeverity(k Kind) Severity {
	switch k {
	case KindLimitWarning, KindDeprecation:
		return SeverityWarning
	default:
		return SeverityFatal
	}
}

// Location is the (file, line, column) triple every token and model
// entity can provide for diagnostic reporting (spec.md Invariant 10).
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	if l.File == "" {
		return "<unknown>"
	}
	if l.Line == 0 {
		return l.File
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Diagnostic is the single carrier type used throughout the pipeline in
// place of exceptions (design note: "Exceptions for control flow").
type Diagnostic struct {
	Kind       Kind
	Severity   Severity
	Location   Location
	Message    string
	Underlying error
}

// New builds a diagnostic with the kind's default severity.
func New(kind Kind, loc Location, message string) *Diagnostic {
	return &Diagnostic{Kind: kind, Severity: defaultSeverity(kind), Location: loc, Message: message}
}

// Wrap attaches an underlying error to a new diagnostic of the given kind.
func Wrap(kind Kind, loc Location, message string, underlying error) *Diagnostic {
	d := New(kind, loc, message)
	d.Underlying = underlying
	return d
}

func (d *Diagnostic) Error() string {
	if d.Underlying != nil {
		return fmt.Sprintf("%s: %s: %s: %v", d.Location, d.Kind, d.Message, d.Underlying)
	}
	return fmt.Sprintf("%s: %s: %s", d.Location, d.Kind, d.Message)
}

func (d *Diagnostic) Unwrap() error { return d.Underlying }

// IsFatal reports whether this diagnostic should abort the compilation.
func (d *Diagnostic) IsFatal() bool { return d.Severity == SeverityFatal }

// Bag accumulates diagnostics over the course of one pipeline run. Fatal
// diagnostics are also returned as an error from whichever call produced
// them; Bag exists so warnings (which never abort) can be collected and
// flushed together at the end, matching spec.md §7's propagation policy.
type Bag struct {
	items []*Diagnostic
}

func (b *Bag) Add(d *Diagnostic) {
	if d == nil {
		return
	}
	b.items = append(b.items, d)
}

func (b *Bag) Warnings() []*Diagnostic {
	var out []*Diagnostic
	for _, d := range b.items {
		if !d.IsFatal() {
			out = append(out, d)
		}
	}
	return out
}

func (b *Bag) All() []*Diagnostic { return b.items }

func (b *Bag) HasFatal() bool {
	for _, d := range b.items {
		if d.IsFatal() {
			return true
		}
	}
	return false
}

// Convenience constructors used throughout the pipeline.

func Lex(loc Location, format string, args ...any) *Diagnostic {
	return New(KindLex, loc, fmt.Sprintf(format, args...))
}

func Parse(loc Location, format string, args ...any) *Diagnostic {
	return New(KindParse, loc, fmt.Sprintf(format, args...))
}

func IO(loc Location, op string, err error) *Diagnostic {
	return Wrap(KindIO, loc, op, err)
}

func EnvMissing(name string) *Diagnostic {
	return New(KindEnvMissing, Location{}, fmt.Sprintf("required environment variable %q is not set", name))
}

func Model(loc Location, format string, args ...any) *Diagnostic {
	return New(KindModel, loc, fmt.Sprintf(format, args...))
}

func LimitWarning(loc Location, format string, args ...any) *Diagnostic {
	return New(KindLimitWarning, loc, fmt.Sprintf(format, args...))
}

func Deprecation(loc Location, format string, args ...any) *Diagnostic {
	return New(KindDeprecation, loc, fmt.Sprintf(format, args...))
}
