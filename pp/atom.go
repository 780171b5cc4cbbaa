// Package pp implements the macro-expansion record/replay machinery
// used by the preprocessor: a compact byte encoding of a macro body's
// tokens, a resettable replay cursor with one-token lookahead, and the
// input stack the tokenizer drains during expansion.
package pp

// EndOfInput is returned by stream reads once the cursor passes the
// last recorded subtoken.
const EndOfInput = -1

// MaxTokenLength bounds the backing name of a replayed token. Longer
// names are truncated with a diagnostic.
const MaxTokenLength = 1024

// Atoms below 128 are the literal character codes of single-character
// operators ('#', '+', ...). Multi-character operators, identifiers and
// literal classes occupy the upper half of the byte range so every atom
// fits the one-byte stream encoding.
const (
	AtomIdentifier = 128 + iota
	AtomConstString
	AtomConstInt
	AtomConstUint
	AtomConstInt64
	AtomConstUint64
	AtomConstInt16
	AtomConstUint16
	AtomConstFloat
	AtomConstDouble
	AtomConstFloat16
	AtomPaste // ##
)

// AtomPound is the single '#' character atom.
const AtomPound = '#'

// AtomSpace separates tokens inside a recorded macro body.
const AtomSpace = ' '

// SaveName reports whether tokens of this atom class carry a backing
// name string in the recorded stream. Numeric literals keep their
// original spelling alongside the value.
func SaveName(atom int) bool {
	switch atom {
	case AtomIdentifier,
		AtomConstString,
		AtomConstInt,
		AtomConstUint,
		AtomConstInt64,
		AtomConstUint64,
		AtomConstInt16,
		AtomConstUint16,
		AtomConstFloat,
		AtomConstDouble,
		AtomConstFloat16:
		return true
	default:
		return false
	}
}

// SaveValue reports whether tokens of this atom class carry a 64-bit
// numeric payload in the recorded stream.
func SaveValue(atom int) bool {
	switch atom {
	case AtomConstInt,
		AtomConstUint,
		AtomConstInt64,
		AtomConstUint64,
		AtomConstInt16,
		AtomConstUint16,
		AtomConstFloat,
		AtomConstDouble,
		AtomConstFloat16:
		return true
	default:
		return false
	}
}
