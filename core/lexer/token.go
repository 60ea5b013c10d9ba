package lexer

import "fmt"

// Kind tags a token. The token itself only carries a byte range into the
// source; the text is recovered by slicing.
type Kind int

const (
	EOF Kind = iota
	Whitespace
	Comment
	Newline
	Word
	QuotedWord
	Variable       // $name
	VariableCount  // $#name
	VariableString // $"name
	Caret
	Amp
	AndAnd
	Pipe
	OrOr
	Semicolon
	Backtick
	BacktickBrace // `{
	LeftBrace
	RightBrace
	LeftParen
	RightParen
	Less             // <
	LessLess         // <<
	LessBrace        // <{
	LessGreaterBrace // <>{
	Greater          // >
	GreaterGreater   // >>
	GreaterBrace     // >{
	Equal
	Tilde
	Bang
	At
	KeywordFn
	KeywordIf
	KeywordElse
	KeywordFor
	KeywordIn
	KeywordWhile
	KeywordSwitch
	KeywordCase
)

var kindNames = map[Kind]string{
	EOF:              "eof",
	Whitespace:       "whitespace",
	Comment:          "comment",
	Newline:          "newline",
	Word:             "word",
	QuotedWord:       "quoted-word",
	Variable:         "variable",
	VariableCount:    "variable-count",
	VariableString:   "variable-string",
	Caret:            "caret",
	Amp:              "amp",
	AndAnd:           "and-and",
	Pipe:             "pipe",
	OrOr:             "or-or",
	Semicolon:        "semicolon",
	Backtick:         "backtick",
	BacktickBrace:    "backtick-brace",
	LeftBrace:        "left-brace",
	RightBrace:       "right-brace",
	LeftParen:        "left-paren",
	RightParen:       "right-paren",
	Less:             "less",
	LessLess:         "less-less",
	LessBrace:        "less-brace",
	LessGreaterBrace: "less-greater-brace",
	Greater:          "greater",
	GreaterGreater:   "greater-greater",
	GreaterBrace:     "greater-brace",
	Equal:            "equal",
	Tilde:            "tilde",
	Bang:             "bang",
	At:               "at",
	KeywordFn:        "fn",
	KeywordIf:        "if",
	KeywordElse:      "else",
	KeywordFor:       "for",
	KeywordIn:        "in",
	KeywordWhile:     "while",
	KeywordSwitch:    "switch",
	KeywordCase:      "case",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// keywords maps reserved identifiers to their token kinds. Reclassification
// happens only on exact matches after a word token has been formed.
var keywords = map[string]Kind{
	"case":   KeywordCase,
	"else":   KeywordElse,
	"fn":     KeywordFn,
	"for":    KeywordFor,
	"if":     KeywordIf,
	"in":     KeywordIn,
	"switch": KeywordSwitch,
	"while":  KeywordWhile,
}

// Token is a tag plus a half-open byte range [Start, End) into the source.
type Token struct {
	Kind  Kind
	Start int
	End   int
}

// Text returns the token's bytes from the source it was lexed from.
func (t Token) Text(src string) string {
	return src[t.Start:t.End]
}

// Name returns the variable name for the three variable token forms,
// trimming the $, $# or $" prefix.
func (t Token) Name(src string) string {
	switch t.Kind {
	case Variable:
		return src[t.Start+1 : t.End]
	case VariableCount, VariableString:
		return src[t.Start+2 : t.End]
	default:
		return t.Text(src)
	}
}
