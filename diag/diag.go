// Package diag collects compiler diagnostics.
//
// The semantic core never formats user-facing messages itself; it hands
// a kind, a source location, and short context strings to a Sink. The
// default Collector keeps everything in order of arrival so that one
// pass over a unit can surface many problems.
package diag

import (
	"fmt"

	"go.uber.org/multierr"
)

// Loc identifies a position in a source file.
type Loc struct {
	File string
	Line int
	Col  int
}

// String returns "file:line:col", omitting empty parts.
func (l Loc) String() string {
	if l.File == "" {
		if l.Line == 0 {
			return "<unknown>"
		}
		return fmt.Sprintf("%d:%d", l.Line, l.Col)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Col)
}

// Severity classifies a diagnostic.
type Severity uint8

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

// String returns the lowercase severity name.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return "unknown"
	}
}

// Message is one reported diagnostic.
type Message struct {
	Severity Severity
	Loc      Loc
	Text     string
	Context  string // offending token or symbol, may be empty
}

// Error implements the error interface.
func (m Message) Error() string {
	if m.Context != "" {
		return fmt.Sprintf("%s: %s: %s: %q", m.Loc, m.Severity, m.Text, m.Context)
	}
	return fmt.Sprintf("%s: %s: %s", m.Loc, m.Severity, m.Text)
}

// Sink receives diagnostics from the core. Implementations must be
// usable from a single goroutine only; each compilation unit owns its
// own sink.
type Sink interface {
	Error(loc Loc, text, context string)
	Warn(loc Loc, text, context string)
	Note(loc Loc, text, context string)
}

// Collector is the standard Sink: an append-only list of messages with
// severity counters.
type Collector struct {
	Messages []Message

	numErrors   int
	numWarnings int
}

var _ Sink = (*Collector)(nil)

// Error records an error diagnostic.
func (c *Collector) Error(loc Loc, text, context string) {
	c.numErrors++
	c.Messages = append(c.Messages, Message{Severity: SeverityError, Loc: loc, Text: text, Context: context})
}

// Warn records a warning diagnostic.
func (c *Collector) Warn(loc Loc, text, context string) {
	c.numWarnings++
	c.Messages = append(c.Messages, Message{Severity: SeverityWarning, Loc: loc, Text: text, Context: context})
}

// Note records an informational diagnostic.
func (c *Collector) Note(loc Loc, text, context string) {
	c.Messages = append(c.Messages, Message{Severity: SeverityNote, Loc: loc, Text: text, Context: context})
}

// NumErrors returns the number of errors recorded so far. Callers check
// this before handing a unit to code generation.
func (c *Collector) NumErrors() int { return c.numErrors }

// NumWarnings returns the number of warnings recorded so far.
func (c *Collector) NumWarnings() int { return c.numWarnings }

// Err combines every recorded error-severity message into a single
// error, or returns nil if none were recorded.
func (c *Collector) Err() error {
	var err error
	for _, m := range c.Messages {
		if m.Severity == SeverityError {
			err = multierr.Append(err, m)
		}
	}
	return err
}
