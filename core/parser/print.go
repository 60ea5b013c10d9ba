package parser

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes a line-oriented dump of the command tree, one node per
// line, indented two spaces per level.
func Fprint(w io.Writer, cmds []Command) {
	for _, c := range cmds {
		printCommand(w, c, 0)
	}
}

func indent(w io.Writer, depth int) {
	io.WriteString(w, strings.Repeat("  ", depth))
}

func printCommand(w io.Writer, c Command, depth int) {
	indent(w, depth)
	switch c := c.(type) {
	case *Simple:
		fmt.Fprintln(w, "simple")
		for _, a := range c.Assigns {
			indent(w, depth+1)
			fmt.Fprintf(w, "local %s=\n", a.Key)
			printArgument(w, a.Value, depth+2)
		}
		for _, a := range c.Args {
			printArgument(w, a, depth+1)
		}
		for _, r := range c.Redirs {
			indent(w, depth+1)
			dir := "in"
			if r.Dir == RedirOut {
				dir = "out"
			}
			fmt.Fprintf(w, "redirect %s fd=%d append=%v\n", dir, r.Fd, r.Append)
			printArgument(w, r.File, depth+2)
		}
	case *Function:
		fmt.Fprintf(w, "fn %s %q\n", c.Name, c.Body)
	case *Assignment:
		fmt.Fprintf(w, "assign %s=\n", c.Key)
		printArgument(w, c.Value, depth+1)
	case *Group:
		fmt.Fprintln(w, "group")
		for _, b := range c.Body {
			printCommand(w, b, depth+1)
		}
	case *IfZero:
		fmt.Fprintln(w, "if-zero")
	case *IfNonZero:
		fmt.Fprintln(w, "if-nonzero")
	case *Pipe:
		fmt.Fprintln(w, "pipe")
		printCommand(w, c.Lhs, depth+1)
		printCommand(w, c.Rhs, depth+1)
	}
}

func printArgument(w io.Writer, a Argument, depth int) {
	indent(w, depth)
	switch a := a.(type) {
	case *Word:
		fmt.Fprintf(w, "word %q\n", a.Text)
	case *QuotedWord:
		fmt.Fprintf(w, "quoted %q\n", a.Text)
	case *Variable:
		fmt.Fprintf(w, "var $%s\n", a.Name)
	case *VariableCount:
		fmt.Fprintf(w, "var-count $%s\n", a.Name)
	case *VariableString:
		fmt.Fprintf(w, "var-string $%s\n", a.Name)
	case *VariableSubscript:
		fmt.Fprintf(w, "var-subscript $%s\n", a.Key)
		printArgument(w, a.Fields, depth+1)
	case *Concat:
		fmt.Fprintln(w, "concat")
		printArgument(w, a.Lhs, depth+1)
		printArgument(w, a.Rhs, depth+1)
	case *List:
		fmt.Fprintln(w, "list")
		for _, e := range a.Elems {
			printArgument(w, e, depth+1)
		}
	case *Substitution:
		fmt.Fprintln(w, "substitution")
		for _, c := range a.Body {
			printCommand(w, c, depth+1)
		}
	}
}
