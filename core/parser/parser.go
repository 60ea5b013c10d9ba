package parser

import (
	"errors"
	"strconv"
	"strings"

	"github.com/rzshell/rz/core/lexer"
)

// ErrSyntax is returned for any malformed construct. The partial command
// list is discarded on error.
var ErrSyntax = errors.New("syntax error")

type parser struct {
	src  string
	toks []lexer.Token
	pos  int
}

// Parse lexes and parses a whole source string into a command list.
func Parse(src string) ([]Command, error) {
	p := &parser{src: src, toks: lexer.Tokens(src)}
	return p.parseCommands(false)
}

func (p *parser) peek() lexer.Token {
	return p.toks[p.pos]
}

func (p *parser) peekAt(off int) lexer.Token {
	if p.pos+off >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF sentinel
	}
	return p.toks[p.pos+off]
}

func (p *parser) next() lexer.Token {
	t := p.toks[p.pos]
	if t.Kind != lexer.EOF {
		p.pos++
	}
	return t
}

func (p *parser) text(t lexer.Token) string {
	return t.Text(p.src)
}

func (p *parser) skipWhitespace() {
	for p.peek().Kind == lexer.Whitespace {
		p.pos++
	}
}

// span returns the source between byte offsets with surrounding blanks
// removed. Command spans are re-parsed when pipelines fork, so they must be
// valid source on their own.
func (p *parser) span(start, end int) string {
	return strings.Trim(p.src[start:end], " \t\r\n")
}

// isWordKind reports tokens that behave as plain words in argument
// position. Reserved identifiers only have special meaning at the start of
// a statement.
func isWordKind(k lexer.Kind) bool {
	switch k {
	case lexer.Word, lexer.KeywordCase, lexer.KeywordElse, lexer.KeywordFor,
		lexer.KeywordIf, lexer.KeywordIn, lexer.KeywordSwitch, lexer.KeywordWhile:
		return true
	}
	return false
}

func startsArgument(k lexer.Kind) bool {
	if isWordKind(k) {
		return true
	}
	switch k {
	case lexer.QuotedWord, lexer.Variable, lexer.VariableCount,
		lexer.VariableString, lexer.LeftParen, lexer.BacktickBrace, lexer.Equal:
		return true
	}
	return false
}

// parseCommands runs the top-level loop. With inGroup set it consumes the
// matching right brace and returns; at the outer level a right brace is an
// error.
func (p *parser) parseCommands(inGroup bool) ([]Command, error) {
	var cmds []Command
	var pending Command // lhs of a pipe awaiting its right side

	emit := func(c Command) {
		if pending != nil {
			c = &Pipe{
				Lhs: pending,
				Rhs: c,
				Src: pending.Source() + " | " + c.Source(),
			}
			pending = nil
		}
		cmds = append(cmds, c)
	}

	for {
		t := p.peek()
		switch t.Kind {
		case lexer.EOF:
			if inGroup || pending != nil {
				return nil, ErrSyntax
			}
			return cmds, nil

		case lexer.Whitespace, lexer.Comment, lexer.Newline, lexer.Semicolon:
			p.next()

		case lexer.RightBrace:
			if !inGroup || pending != nil {
				return nil, ErrSyntax
			}
			p.next()
			return cmds, nil

		case lexer.LeftBrace:
			start := p.next().Start
			body, err := p.parseCommands(true)
			if err != nil {
				return nil, err
			}
			end := p.toks[p.pos-1].End
			emit(&Group{Body: body, Src: p.src[start:end]})

		case lexer.KeywordFn:
			fn, err := p.parseFunction()
			if err != nil {
				return nil, err
			}
			emit(fn)

		case lexer.AndAnd:
			p.next()
			cmds = append(cmds, &IfZero{})

		case lexer.OrOr:
			p.next()
			cmds = append(cmds, &IfNonZero{})

		case lexer.Pipe:
			if pending != nil || len(cmds) == 0 {
				return nil, ErrSyntax
			}
			pending = cmds[len(cmds)-1]
			cmds = cmds[:len(cmds)-1]
			p.next()

		case lexer.KeywordIf, lexer.KeywordElse, lexer.KeywordFor, lexer.KeywordIn,
			lexer.KeywordWhile, lexer.KeywordSwitch, lexer.KeywordCase:
			// Reserved; no productions exist for these yet.
			return nil, ErrSyntax

		default:
			if !startsArgument(t.Kind) && t.Kind != lexer.Less &&
				t.Kind != lexer.Greater && t.Kind != lexer.GreaterGreater {
				return nil, ErrSyntax
			}
			stmt, err := p.parseStatement()
			if err != nil {
				return nil, err
			}
			for _, c := range stmt {
				emit(c)
			}
		}
	}
}

// parseStatement parses one simple command, possibly prefixed by
// assignments. Assignments with no following command in the statement are
// promoted to top-level assignment commands.
func (p *parser) parseStatement() ([]Command, error) {
	start := p.peek().Start
	assigns, err := p.parseAssignments()
	if err != nil {
		return nil, err
	}

	var args []Argument
	var redirs []Redirection

loop:
	for {
		t := p.peek()
		switch {
		case t.Kind == lexer.Whitespace:
			p.next()

		case t.Kind == lexer.EOF, t.Kind == lexer.Newline, t.Kind == lexer.Semicolon,
			t.Kind == lexer.Comment, t.Kind == lexer.AndAnd, t.Kind == lexer.OrOr,
			t.Kind == lexer.Pipe, t.Kind == lexer.RightBrace:
			break loop

		case t.Kind == lexer.Less, t.Kind == lexer.Greater, t.Kind == lexer.GreaterGreater:
			r, err := p.parseRedirection()
			if err != nil {
				return nil, err
			}
			redirs = append(redirs, r)

		case startsArgument(t.Kind):
			a, err := p.nextArgument()
			if err != nil {
				return nil, err
			}
			args = append(args, a)

		default:
			return nil, ErrSyntax
		}
	}

	src := p.span(start, p.peek().Start)

	if len(args) == 0 && len(redirs) == 0 {
		if len(assigns) == 0 {
			return nil, ErrSyntax
		}
		var out []Command
		for i := range assigns {
			a := assigns[i]
			a.Src = src
			out = append(out, &a)
		}
		return out, nil
	}

	return []Command{&Simple{
		Args:    args,
		Redirs:  redirs,
		Assigns: assigns,
		Src:     src,
	}}, nil
}

// parseAssignments consumes WORD '=' Argument tuples separated by
// whitespace. On a mismatch the cursor rewinds to the start of the failed
// tuple and the assignments collected so far are returned.
func (p *parser) parseAssignments() ([]Assignment, error) {
	var assigns []Assignment
	for {
		mark := p.pos
		p.skipWhitespace()
		key := p.peek()
		if key.Kind != lexer.Word || p.peekAt(1).Kind != lexer.Equal {
			p.pos = mark
			return assigns, nil
		}
		p.next() // key
		p.next() // =

		var value Argument
		if startsArgument(p.peek().Kind) {
			v, err := p.nextArgument()
			if err != nil {
				return nil, err
			}
			value = v
		} else {
			value = &List{} // key= clears the binding
		}

		assigns = append(assigns, Assignment{Key: p.text(key), Value: value})
	}
}

// nextArgument parses one argument, folding concatenations. Explicit carets
// are eaten greedily between primaries and associate left; an implicit
// adjacency (the free-caret rule) recurses, leaving the tree right-leaning
// at the variable boundary.
func (p *parser) nextArgument() (Argument, error) {
	lhs, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		caret := false
		for p.peek().Kind == lexer.Caret {
			p.next()
			caret = true
		}

		if caret {
			rhs, err := p.parsePrimary()
			if err != nil {
				return nil, err
			}
			lhs = &Concat{Lhs: lhs, Rhs: rhs}
			continue
		}

		if !p.continues(lhs) {
			return lhs, nil
		}
		rhs, err := p.nextArgument()
		if err != nil {
			return nil, err
		}
		return &Concat{Lhs: lhs, Rhs: rhs}, nil
	}
}

// continues applies the free-caret rule: the next token extends the current
// argument when it is a word, quoted word, variable form or =. A list only
// continues a word or quoted word; after a variable it would be a
// subscript, which parsePrimary already consumed.
func (p *parser) continues(lhs Argument) bool {
	k := p.peek().Kind
	if isWordKind(k) || k == lexer.QuotedWord || k == lexer.Equal ||
		k == lexer.Variable || k == lexer.VariableCount || k == lexer.VariableString {
		return true
	}
	if k == lexer.LeftParen {
		switch lhs.(type) {
		case *Word, *QuotedWord:
			return true
		}
	}
	return false
}

func (p *parser) parsePrimary() (Argument, error) {
	t := p.peek()
	switch {
	case isWordKind(t.Kind):
		p.next()
		return &Word{Text: p.text(t)}, nil

	case t.Kind == lexer.Equal:
		p.next()
		return &Word{Text: "="}, nil

	case t.Kind == lexer.QuotedWord:
		p.next()
		return &QuotedWord{Text: p.text(t)}, nil

	case t.Kind == lexer.Variable:
		p.next()
		name := t.Name(p.src)
		if p.peek().Kind == lexer.LeftParen {
			fields, err := p.parseList()
			if err != nil {
				return nil, err
			}
			return &VariableSubscript{Key: name, Fields: fields}, nil
		}
		return &Variable{Name: name}, nil

	case t.Kind == lexer.VariableCount:
		p.next()
		return &VariableCount{Name: t.Name(p.src)}, nil

	case t.Kind == lexer.VariableString:
		p.next()
		return &VariableString{Name: t.Name(p.src)}, nil

	case t.Kind == lexer.LeftParen:
		return p.parseList()

	case t.Kind == lexer.BacktickBrace:
		p.next()
		body, err := p.parseCommands(true)
		if err != nil {
			return nil, err
		}
		return &Substitution{Body: body}, nil
	}
	return nil, ErrSyntax
}

// parseList consumes ( ... ) with whitespace-separated elements. Nested
// lists are flattened into the containing list.
func (p *parser) parseList() (Argument, error) {
	if p.peek().Kind != lexer.LeftParen {
		return nil, ErrSyntax
	}
	p.next()

	list := &List{}
	for {
		switch p.peek().Kind {
		case lexer.Whitespace, lexer.Newline:
			p.next()
		case lexer.RightParen:
			p.next()
			return list, nil
		case lexer.EOF:
			return nil, ErrSyntax
		default:
			a, err := p.nextArgument()
			if err != nil {
				return nil, err
			}
			if nested, ok := a.(*List); ok {
				list.Elems = append(list.Elems, nested.Elems...)
			} else {
				list.Elems = append(list.Elems, a)
			}
		}
	}
}

// parseRedirection handles <, > and >>. An fd target like >[2] is decoded
// here when the bracketed word directly follows the operator; the aliasing
// form >[2=1] lexes as several tokens and reaches the interpreter as a
// concatenated file argument instead.
func (p *parser) parseRedirection() (Redirection, error) {
	op := p.next()

	r := Redirection{}
	switch op.Kind {
	case lexer.Less:
		r.Dir = RedirIn
		r.Fd = 0
	case lexer.Greater:
		r.Dir = RedirOut
		r.Fd = 1
	case lexer.GreaterGreater:
		r.Dir = RedirOut
		r.Append = true
		r.Fd = 1
	default:
		return r, ErrSyntax
	}

	if t := p.peek(); t.Kind == lexer.Word && t.Start == op.End {
		if fd, ok := fdTarget(p.text(t)); ok {
			r.Fd = fd
			p.next()
		}
	}
	p.skipWhitespace()

	if !startsArgument(p.peek().Kind) {
		return r, ErrSyntax
	}
	file, err := p.nextArgument()
	if err != nil {
		return r, err
	}
	r.File = file
	return r, nil
}

// fdTarget decodes a complete "[n]" word into a file descriptor number.
func fdTarget(text string) (int, bool) {
	if len(text) < 3 || text[0] != '[' || text[len(text)-1] != ']' {
		return 0, false
	}
	fd, err := strconv.Atoi(text[1 : len(text)-1])
	if err != nil || fd < 0 {
		return 0, false
	}
	return fd, true
}

// parseFunction handles fn NAME { ... }. The body is the raw source slice
// between the braces; it is not parsed until the function is called.
func (p *parser) parseFunction() (Command, error) {
	start := p.next().Start // fn
	p.skipWhitespace()

	name := p.peek()
	if name.Kind != lexer.Word {
		return nil, ErrSyntax
	}
	p.next()
	p.skipWhitespace()

	open := p.peek()
	if open.Kind != lexer.LeftBrace {
		return nil, ErrSyntax
	}
	p.next()

	depth := 1
	for depth > 0 {
		t := p.next()
		switch t.Kind {
		case lexer.LeftBrace, lexer.BacktickBrace, lexer.LessBrace,
			lexer.GreaterBrace, lexer.LessGreaterBrace:
			depth++
		case lexer.RightBrace:
			depth--
			if depth == 0 {
				return &Function{
					Name: p.text(name),
					Body: p.src[open.End:t.Start],
					Src:  p.src[start:t.End],
				}, nil
			}
		case lexer.EOF:
			return nil, ErrSyntax
		}
	}
	return nil, ErrSyntax
}
