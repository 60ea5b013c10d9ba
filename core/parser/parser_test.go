package parser

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// firstSimple parses src and returns its only command as a Simple.
func firstSimple(t *testing.T, src string) *Simple {
	t.Helper()
	cmds, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	simple, ok := cmds[0].(*Simple)
	require.True(t, ok, "want *Simple, got %T", cmds[0])
	return simple
}

func TestAssignmentStatement(t *testing.T) {
	cmds, err := Parse("foo=bar")
	require.NoError(t, err)
	require.Len(t, cmds, 1)

	assign, ok := cmds[0].(*Assignment)
	require.True(t, ok)
	assert.Equal(t, "foo", assign.Key)
	assert.Equal(t, &Word{Text: "bar"}, assign.Value)
	assert.Equal(t, "foo=bar", assign.Source())
}

func TestMultipleTrailingAssignments(t *testing.T) {
	cmds, err := Parse("a=1 b=2")
	require.NoError(t, err)
	require.Len(t, cmds, 2)

	first := cmds[0].(*Assignment)
	second := cmds[1].(*Assignment)
	assert.Equal(t, "a", first.Key)
	assert.Equal(t, "b", second.Key)
}

func TestLocalAssignmentPrefix(t *testing.T) {
	simple := firstSimple(t, "k=v cmd arg")

	require.Len(t, simple.Assigns, 1)
	assert.Equal(t, "k", simple.Assigns[0].Key)
	assert.Equal(t, &Word{Text: "v"}, simple.Assigns[0].Value)
	assert.Equal(t, []Argument{&Word{Text: "cmd"}, &Word{Text: "arg"}}, simple.Args)
}

func TestClearingAssignment(t *testing.T) {
	cmds, err := Parse("k=")
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	assert.Equal(t, &List{}, cmds[0].(*Assignment).Value)
}

func TestAssignmentNeverWordArgument(t *testing.T) {
	// a=b at statement start is an assignment even when an argument-looking
	// word follows on the next statement.
	cmds, err := Parse("a=b; echo a=b")
	require.NoError(t, err)
	require.Len(t, cmds, 2)

	_, ok := cmds[0].(*Assignment)
	assert.True(t, ok)

	simple := cmds[1].(*Simple)
	// In argument position a=b is a concatenation across the equal sign.
	require.Len(t, simple.Args, 2)
	assert.Equal(t,
		&Concat{
			Lhs: &Word{Text: "a"},
			Rhs: &Concat{Lhs: &Word{Text: "="}, Rhs: &Word{Text: "b"}},
		},
		simple.Args[1])
}

func TestFreeCaretShapes(t *testing.T) {
	cases := map[string]struct {
		src  string
		want Argument
	}{
		"implicit-variable": {
			"echo foo$bar",
			&Concat{Lhs: &Word{Text: "foo"}, Rhs: &Variable{Name: "bar"}},
		},
		"explicit": {
			"echo foo^bar",
			&Concat{Lhs: &Word{Text: "foo"}, Rhs: &Word{Text: "bar"}},
		},
		"explicit-left-associated": {
			"echo foo^$bar^.c",
			&Concat{
				Lhs: &Concat{Lhs: &Word{Text: "foo"}, Rhs: &Variable{Name: "bar"}},
				Rhs: &Word{Text: ".c"},
			},
		},
		"implicit-right-leaning": {
			"echo foo$bar.c",
			&Concat{
				Lhs: &Word{Text: "foo"},
				Rhs: &Concat{Lhs: &Variable{Name: "bar"}, Rhs: &Word{Text: ".c"}},
			},
		},
		"quoted-then-word": {
			"echo 'a b'c",
			&Concat{Lhs: &QuotedWord{Text: "'a b'"}, Rhs: &Word{Text: "c"}},
		},
		"word-then-list": {
			"echo x(a b)",
			&Concat{
				Lhs: &Word{Text: "x"},
				Rhs: &List{Elems: []Argument{&Word{Text: "a"}, &Word{Text: "b"}}},
			},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			simple := firstSimple(t, tc.src)
			require.Len(t, simple.Args, 2)
			assert.Equal(t, tc.want, simple.Args[1])
		})
	}
}

func TestListFlattening(t *testing.T) {
	simple := firstSimple(t, "echo (a (b c) d)")
	require.Len(t, simple.Args, 2)
	assert.Equal(t, &List{Elems: []Argument{
		&Word{Text: "a"},
		&Word{Text: "b"},
		&Word{Text: "c"},
		&Word{Text: "d"},
	}}, simple.Args[1])
}

func TestVariableForms(t *testing.T) {
	simple := firstSimple(t, `echo $#xs $"xs $xs(2)`)
	require.Len(t, simple.Args, 4)
	assert.Equal(t, &VariableCount{Name: "xs"}, simple.Args[1])
	assert.Equal(t, &VariableString{Name: "xs"}, simple.Args[2])
	assert.Equal(t, &VariableSubscript{
		Key:    "xs",
		Fields: &List{Elems: []Argument{&Word{Text: "2"}}},
	}, simple.Args[3])
}

func TestPipe(t *testing.T) {
	cmds, err := Parse("echo x | tr x y")
	require.NoError(t, err)
	require.Len(t, cmds, 1)

	pipe, ok := cmds[0].(*Pipe)
	require.True(t, ok)
	assert.Equal(t, []Argument{&Word{Text: "echo"}, &Word{Text: "x"}}, pipe.Lhs.(*Simple).Args)
	assert.Equal(t, []Argument{&Word{Text: "tr"}, &Word{Text: "x"}, &Word{Text: "y"}}, pipe.Rhs.(*Simple).Args)
	assert.Equal(t, "echo x | tr x y", pipe.Source())
}

func TestPipeLeftAssociates(t *testing.T) {
	cmds, err := Parse("a | b | c")
	require.NoError(t, err)
	require.Len(t, cmds, 1)

	outer := cmds[0].(*Pipe)
	inner, ok := outer.Lhs.(*Pipe)
	require.True(t, ok)
	assert.Equal(t, "a", inner.Lhs.Source())
	assert.Equal(t, "b", inner.Rhs.Source())
	assert.Equal(t, "c", outer.Rhs.Source())
}

func TestShortCircuitSentinels(t *testing.T) {
	cmds, err := Parse("a && b || c")
	require.NoError(t, err)
	require.Len(t, cmds, 5)

	_, ok := cmds[1].(*IfZero)
	assert.True(t, ok)
	_, ok = cmds[3].(*IfNonZero)
	assert.True(t, ok)
}

func TestGroup(t *testing.T) {
	cmds, err := Parse("{ a; b }")
	require.NoError(t, err)
	require.Len(t, cmds, 1)

	group, ok := cmds[0].(*Group)
	require.True(t, ok)
	require.Len(t, group.Body, 2)
	assert.Equal(t, "{ a; b }", group.Source())
}

func TestFunction(t *testing.T) {
	cmds, err := Parse("fn g { echo $1 }")
	require.NoError(t, err)
	require.Len(t, cmds, 1)

	fn, ok := cmds[0].(*Function)
	require.True(t, ok)
	assert.Equal(t, "g", fn.Name)
	assert.Equal(t, " echo $1 ", fn.Body)
	assert.Equal(t, "fn g { echo $1 }", fn.Source())
}

func TestFunctionNestedBraces(t *testing.T) {
	cmds, err := Parse("fn f { { a } }")
	require.NoError(t, err)
	fn := cmds[0].(*Function)
	assert.Equal(t, " { a } ", fn.Body)
}

func TestFunctionBodyNotParsed(t *testing.T) {
	// The body is stored as raw source even when it would not parse.
	cmds, err := Parse("fn f { ))) }")
	require.NoError(t, err)
	assert.Equal(t, " ))) ", cmds[0].(*Function).Body)
}

func TestRedirections(t *testing.T) {
	t.Run("out", func(t *testing.T) {
		simple := firstSimple(t, "echo one > /tmp/rz_t")
		require.Len(t, simple.Redirs, 1)
		r := simple.Redirs[0]
		assert.Equal(t, RedirOut, r.Dir)
		assert.False(t, r.Append)
		assert.Equal(t, 1, r.Fd)
		assert.Equal(t, &Word{Text: "/tmp/rz_t"}, r.File)
	})

	t.Run("in", func(t *testing.T) {
		simple := firstSimple(t, "cat < input")
		r := simple.Redirs[0]
		assert.Equal(t, RedirIn, r.Dir)
		assert.Equal(t, 0, r.Fd)
	})

	t.Run("append", func(t *testing.T) {
		simple := firstSimple(t, "echo x >> log")
		assert.True(t, simple.Redirs[0].Append)
	})

	t.Run("fd-target", func(t *testing.T) {
		simple := firstSimple(t, "cmd >[2] err.log")
		r := simple.Redirs[0]
		assert.Equal(t, 2, r.Fd)
		assert.Equal(t, &Word{Text: "err.log"}, r.File)
	})

	t.Run("fd-alias-stays-encoded", func(t *testing.T) {
		// >[2=1] is not decoded by the parser; it reaches the interpreter
		// as a concatenated file argument.
		simple := firstSimple(t, "cmd >[2=1]")
		r := simple.Redirs[0]
		assert.Equal(t, 1, r.Fd)
		assert.Equal(t, &Concat{
			Lhs: &Word{Text: "[2"},
			Rhs: &Concat{Lhs: &Word{Text: "="}, Rhs: &Word{Text: "1]"}},
		}, r.File)
	})
}

func TestSubstitution(t *testing.T) {
	simple := firstSimple(t, "echo `{ls -l}")
	require.Len(t, simple.Args, 2)

	sub, ok := simple.Args[1].(*Substitution)
	require.True(t, ok)
	require.Len(t, sub.Body, 1)
	assert.Equal(t, []Argument{&Word{Text: "ls"}, &Word{Text: "-l"}}, sub.Body[0].(*Simple).Args)
}

func TestSyntaxErrors(t *testing.T) {
	cases := map[string]string{
		"unclosed-group":    "{ a",
		"stray-close":       "}",
		"stray-paren":       ")",
		"dangling-pipe":     "a |",
		"leading-pipe":      "| a",
		"fn-missing-name":   "fn { }",
		"fn-missing-brace":  "fn g echo",
		"redir-no-file":     "echo >",
		"unclosed-list":     "echo (a b",
		"keyword-statement": "while true",
	}

	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			cmds, err := Parse(src)
			assert.ErrorIs(t, err, ErrSyntax)
			assert.Nil(t, cmds)
		})
	}
}

func TestCommentsAndNewlines(t *testing.T) {
	cmds, err := Parse("a # trailing\nb\n")
	require.NoError(t, err)
	require.Len(t, cmds, 2)
	assert.Equal(t, "a", cmds[0].Source())
	assert.Equal(t, "b", cmds[1].Source())
}

func TestDump(t *testing.T) {
	cmds, err := Parse("xs=(a b c)\necho $#xs `{cat f} | tr a b > out\n")
	require.NoError(t, err)

	var buf bytes.Buffer
	Fprint(&buf, cmds)

	g := goldie.New(t)
	g.Assert(t, "ast_dump", buf.Bytes())
}
