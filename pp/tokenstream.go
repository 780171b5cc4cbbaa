package pp

import (
	"encoding/binary"

	"github.com/gogpu/glslang/diag"
)

// Token is one reconstructed macro token: an atom code plus the
// optional backing name and 64-bit numeric payload its class requires.
type Token struct {
	Atom  int
	Name  string
	Value uint64 // raw bits of the numeric literal payload
	Loc   diag.Loc
}

// Reporter is the slice of the parse context the replay side needs:
// the current source location for relocated tokens, and an error sink
// for overlong names.
type Reporter interface {
	CurrentLoc() diag.Loc
	Error(loc diag.Loc, text, context string)
}

// TokenStream records the tokens of a macro body once and replays them
// any number of times. Recording appends to a byte buffer; replay only
// moves a cursor, never mutating the buffer.
//
// Encoding, per token: the atom byte, then the NUL-terminated backing
// name if SaveName(atom), then the 8 raw little-endian payload bytes if
// SaveValue(atom).
type TokenStream struct {
	data    []byte
	current int
}

// Reset rewinds the replay cursor to the start of the stream.
func (ts *TokenStream) Reset() {
	ts.current = 0
}

// putSubtoken appends one byte to the stream.
func (ts *TokenStream) putSubtoken(subtoken byte) {
	ts.data = append(ts.data, subtoken)
}

// getSubtoken returns the next byte, or EndOfInput past the end.
func (ts *TokenStream) getSubtoken() int {
	if ts.current < len(ts.data) {
		b := ts.data[ts.current]
		ts.current++
		return int(b)
	}
	return EndOfInput
}

// ungetSubtoken backs the cursor up one position.
func (ts *TokenStream) ungetSubtoken() {
	if ts.current > 0 {
		ts.current--
	}
}

// PutToken appends one complete token, including its backing name and
// numeric payload when the atom class requires them.
func (ts *TokenStream) PutToken(atom int, tok *Token) {
	ts.putSubtoken(byte(atom))

	if SaveName(atom) {
		for i := 0; i < len(tok.Name); i++ {
			ts.putSubtoken(tok.Name[i])
		}
		ts.putSubtoken(0)
	}

	if SaveValue(atom) {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], tok.Value)
		for _, b := range buf {
			ts.putSubtoken(b)
		}
	}
}

// GetToken reads the next token from the stream, reversing PutToken.
// It returns the atom, or EndOfInput once the stream is exhausted.
//
// A '#' followed immediately by a second '#' is re-tokenized as the
// paste operator; a lone trailing '#' is left alone by pushing the
// lookahead subtoken back. Names longer than MaxTokenLength are
// truncated with a diagnostic and replay continues.
func (ts *TokenStream) GetToken(parseContext Reporter, tok *Token) int {
	atom := ts.getSubtoken()
	if atom == EndOfInput {
		return atom
	}

	*tok = Token{Atom: atom, Loc: parseContext.CurrentLoc()}

	if SaveName(atom) {
		name := make([]byte, 0, 16)
		overlong := false
		for {
			ch := ts.getSubtoken()
			if ch == 0 || ch == EndOfInput {
				break
			}
			if len(name) < MaxTokenLength {
				name = append(name, byte(ch))
			} else if !overlong {
				parseContext.Error(tok.Loc, "token too long", "")
				overlong = true
			}
		}
		tok.Name = string(name)
	}

	// Check for ##, unless the current # is the last subtoken.
	if atom == AtomPound && ts.current < len(ts.data) {
		if ts.getSubtoken() == AtomPound {
			atom = AtomPaste
			tok.Atom = AtomPaste
		} else {
			ts.ungetSubtoken()
		}
	}

	if SaveValue(atom) {
		var buf [8]byte
		for i := range buf {
			ch := ts.getSubtoken()
			if ch == EndOfInput {
				break
			}
			buf[i] = byte(ch)
		}
		tok.Value = binary.LittleEndian.Uint64(buf[:])
	}

	return atom
}

// PeekTokenizedPasting reports whether the token about to be replayed
// pastes: either the next non-space subtoken in this stream is the
// paste operator, or the macro as a whole pastes at its end
// (lastTokenPastes) and the cursor is already at the last non-space
// token. The cursor is always restored.
func (ts *TokenStream) PeekTokenizedPasting(lastTokenPastes bool) bool {
	// 1. preceding ##?
	savePos := ts.current
	var subtoken int
	for {
		subtoken = ts.getSubtoken()
		if subtoken != AtomSpace {
			break
		}
	}
	ts.current = savePos
	if subtoken == AtomPaste {
		return true
	}

	// 2. last token, and the caller says a ## follows the macro.
	if !lastTokenPastes {
		return false
	}

	savePos = ts.current
	moreTokens := false
	for {
		subtoken = ts.getSubtoken()
		if subtoken == EndOfInput {
			break
		}
		if subtoken != AtomSpace {
			moreTokens = true
			break
		}
	}
	ts.current = savePos

	return !moreTokens
}

// PeekUntokenizedPasting reports whether the raw next two non-space
// characters are "##", checked before tokenization. The cursor is
// always restored.
func (ts *TokenStream) PeekUntokenizedPasting() bool {
	savePos := ts.current

	var subtoken int
	for {
		subtoken = ts.getSubtoken()
		if subtoken != AtomSpace {
			break
		}
	}

	pasting := false
	if subtoken == AtomPound && ts.getSubtoken() == AtomPound {
		pasting = true
	}

	ts.current = savePos

	return pasting
}
