package interp

import (
	"strconv"
	"strings"

	"github.com/rzshell/rz/core/env"
	"github.com/rzshell/rz/core/parser"
)

// resolve maps an AST argument to its ordered list of byte strings.
func (i *Interp) resolve(a parser.Argument) ([]string, error) {
	switch a := a.(type) {
	case *parser.Word:
		return []string{a.Text}, nil

	case *parser.QuotedWord:
		if len(a.Text) < 2 {
			return nil, nil
		}
		return []string{unquote(a.Text)}, nil

	case *parser.Variable:
		// $1, $2, ... are positionals: shorthand for $*(n).
		if isDecimal(a.Name) {
			return i.positional(a.Name), nil
		}
		value, ok := i.env.LookupEnv(a.Name)
		if !ok {
			return nil, nil
		}
		return env.Split(value), nil

	case *parser.VariableCount:
		value, ok := i.env.LookupEnv(a.Name)
		if !ok {
			return []string{"0"}, nil
		}
		return []string{strconv.Itoa(strings.Count(value, env.ListSep) + 1)}, nil

	case *parser.VariableString:
		value, ok := i.env.LookupEnv(a.Name)
		if !ok {
			return nil, nil
		}
		return []string{strings.ReplaceAll(value, env.ListSep, " ")}, nil

	case *parser.VariableSubscript:
		return i.subscript(a)

	case *parser.Concat:
		return i.concat(a)

	case *parser.List:
		var out []string
		for _, elem := range a.Elems {
			elems, err := i.resolve(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, elems...)
		}
		return out, nil

	case *parser.Substitution:
		return i.commandSubst(a)
	}
	return nil, nil
}

func (i *Interp) positional(name string) []string {
	n, err := strconv.Atoi(name)
	if err != nil {
		return nil
	}
	list := env.GetList(i.env, "*")
	if n >= 1 && n <= len(list) {
		return []string{list[n-1]}
	}
	return nil
}

// subscript selects 1-based indices out of the named list. Index 0 and
// out-of-range indices are silently skipped; a non-numeric index is a
// syntax error.
func (i *Interp) subscript(a *parser.VariableSubscript) ([]string, error) {
	fields, err := i.resolve(a.Fields)
	if err != nil {
		return nil, err
	}
	list := env.GetList(i.env, a.Key)

	var out []string
	for _, field := range fields {
		n, err := strconv.Atoi(field)
		if err != nil || n < 0 {
			return nil, badSubscript(field)
		}
		if n >= 1 && n <= len(list) {
			out = append(out, list[n-1])
		}
	}
	return out, nil
}

// concat cross-joins the two sides. Equal lengths join pairwise, a
// singleton side distributes over the other, and an empty side is a syntax
// error. Multi-element sides of unequal length have no defined product and
// resolve to nothing.
func (i *Interp) concat(a *parser.Concat) ([]string, error) {
	lhs, err := i.resolve(a.Lhs)
	if err != nil {
		return nil, err
	}
	rhs, err := i.resolve(a.Rhs)
	if err != nil {
		return nil, err
	}
	if len(lhs) == 0 || len(rhs) == 0 {
		return nil, errEmptyConcat
	}

	switch {
	case len(lhs) == len(rhs):
		out := make([]string, len(lhs))
		for n := range lhs {
			out[n] = lhs[n] + rhs[n]
		}
		return out, nil

	case len(rhs) == 1:
		out := make([]string, len(lhs))
		for n := range lhs {
			out[n] = lhs[n] + rhs[0]
		}
		return out, nil

	case len(lhs) == 1:
		out := make([]string, len(rhs))
		for n := range rhs {
			out[n] = lhs[0] + rhs[n]
		}
		return out, nil
	}
	return nil, nil
}
