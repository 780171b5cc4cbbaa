package pp

// Input is one source of tokens on the preprocessor's input stack. The
// tokenizer drains the top input until it reports EndOfInput, then pops
// back to the one below.
type Input interface {
	// Scan produces the next token, returning its atom or EndOfInput.
	Scan(tok *Token) int

	// Prepasting reports whether the tokens from this input feed a
	// pending paste operation.
	Prepasting() bool
}

// Context owns the input stack consumed during macro expansion.
type Context struct {
	parseContext Reporter
	inputs       []Input
}

// NewContext creates an input-stack context reporting through the
// given parse context.
func NewContext(parseContext Reporter) *Context {
	return &Context{parseContext: parseContext}
}

// PushInput makes in the active token source.
func (c *Context) PushInput(in Input) {
	c.inputs = append(c.inputs, in)
}

// PopInput removes the active token source.
func (c *Context) PopInput() {
	if len(c.inputs) > 0 {
		c.inputs = c.inputs[:len(c.inputs)-1]
	}
}

// Scan returns the next token from the active input, popping exhausted
// inputs. Returns EndOfInput when the whole stack is drained.
func (c *Context) Scan(tok *Token) int {
	for len(c.inputs) > 0 {
		top := c.inputs[len(c.inputs)-1]
		atom := top.Scan(tok)
		if atom != EndOfInput {
			return atom
		}
		c.PopInput()
	}
	return EndOfInput
}

// PushTokenStreamInput integrates a recorded macro token stream into
// the input stack, rewinding it so replay starts from the beginning.
func (c *Context) PushTokenStreamInput(ts *TokenStream, prepasting bool) {
	c.PushInput(&tokenInput{parseContext: c.parseContext, stream: ts, prepasting: prepasting})
	ts.Reset()
}

// UngetToken pushes one already-scanned token back so it is the next
// token produced.
func (c *Context) UngetToken(atom int, tok *Token) {
	c.PushInput(&ungotTokenInput{atom: atom, lval: *tok})
}

// tokenInput replays a recorded TokenStream.
type tokenInput struct {
	parseContext Reporter
	stream       *TokenStream
	prepasting   bool
}

func (t *tokenInput) Scan(tok *Token) int {
	return t.stream.GetToken(t.parseContext, tok)
}

func (t *tokenInput) Prepasting() bool { return t.prepasting }

// ungotTokenInput replays exactly one pushed-back token.
type ungotTokenInput struct {
	atom int
	lval Token
	done bool
}

func (u *ungotTokenInput) Scan(tok *Token) int {
	if u.done {
		return EndOfInput
	}
	*tok = u.lval
	u.done = true
	return u.atom
}

func (u *ungotTokenInput) Prepasting() bool { return false }
