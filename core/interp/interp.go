// Package interp walks rz command trees and executes them against the real
// process: environment bindings, fd redirection, child processes, pipelines
// and command substitution.
package interp

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rzshell/rz/core/env"
	"github.com/rzshell/rz/core/logger"
	"github.com/rzshell/rz/core/parser"
)

// Statuses with fixed meanings at the top level.
const (
	StatusCommandNotFound = 127
	StatusSyntaxError     = 255
)

type Interp struct {
	env env.Env
	log *logger.Log

	// promptMode suppresses $status updates while the prompt function
	// runs, so the prompt does not clobber the user-visible exit code.
	promptMode bool

	// maxFd is the highest fd a redirection of the current simple command
	// has touched; children inherit fds 0..maxFd.
	maxFd int
}

func New(e env.Env, log *logger.Log) *Interp {
	if log == nil {
		log = logger.Nop()
	}
	return &Interp{env: e, log: log, maxFd: 2}
}

// Env exposes the interpreter's environment handle.
func (i *Interp) Env() env.Env { return i.env }

// ExecSource parses and executes source, returning the final status. This
// is the top-level entry: stdin/stdout/stderr are saved before and restored
// after, and a parse failure yields 255.
func (i *Interp) ExecSource(source string) int {
	i.promptMode = false

	cmds, err := parser.Parse(source)
	if err != nil {
		i.log.SyntaxError(source, err)
		fmt.Fprintf(os.Stderr, "rz: %v\n", err)
		return StatusSyntaxError
	}

	scope, err := pushFds()
	if err != nil {
		fmt.Fprintf(os.Stderr, "rz: %v\n", err)
		return 1
	}
	defer scope.restore()

	return i.Exec(cmds)
}

// Exec runs a command sequence in source order. The && and || sentinels
// read the current $status to decide whether the following command runs.
func (i *Interp) Exec(cmds []parser.Command) int {
	status := 0
	for idx := 0; idx < len(cmds); idx++ {
		switch cmds[idx].(type) {
		case *parser.IfZero:
			if i.env.Getenv("status") != "0" {
				idx++
			}
			continue
		case *parser.IfNonZero:
			if i.env.Getenv("status") == "0" {
				idx++
			}
			continue
		}

		status = i.execCommand(cmds[idx])

		switch cmds[idx].(type) {
		case *parser.Assignment, *parser.Function:
			// $status keeps the last real command's exit code.
		default:
			if !i.promptMode {
				i.env.Setenv("status", strconv.Itoa(status))
			}
		}
	}
	return status
}

func (i *Interp) execCommand(cmd parser.Command) int {
	switch c := cmd.(type) {
	case *parser.Assignment:
		if err := i.assign(c.Key, c.Value); err != nil {
			fmt.Fprintf(os.Stderr, "rz: %s: %v\n", c.Key, err)
			return 1
		}
		return 0

	case *parser.Function:
		i.env.Setenv(env.FnPrefix+c.Name, c.Body)
		return 0

	case *parser.Group:
		return i.Exec(c.Body)

	case *parser.Pipe:
		return i.runPipeline(c)

	case *parser.Simple:
		return i.execSimple(c)
	}
	return 0
}

// assign resolves the value and stores it under key with list encoding. An
// empty resolution removes the key, keeping "empty list means absent".
func (i *Interp) assign(key string, value parser.Argument) error {
	elems, err := i.resolve(value)
	if err != nil {
		return err
	}
	return env.SetList(i.env, key, elems)
}

type savedBinding struct {
	key     string
	value   string
	present bool
}

func (i *Interp) execSimple(c *parser.Simple) int {
	// Command-scoped assignments, undone on every exit path.
	var saved []savedBinding
	defer func() {
		for n := len(saved) - 1; n >= 0; n-- {
			b := saved[n]
			if b.present {
				i.env.Setenv(b.key, b.value)
			} else {
				i.env.Unsetenv(b.key)
			}
		}
	}()
	for _, a := range c.Assigns {
		value, present := i.env.LookupEnv(a.Key)
		saved = append(saved, savedBinding{key: a.Key, value: value, present: present})
		if err := i.assign(a.Key, a.Value); err != nil {
			fmt.Fprintf(os.Stderr, "rz: %s: %v\n", a.Key, err)
			return 1
		}
	}

	var argv []string
	for _, a := range c.Args {
		elems, err := i.resolve(a)
		if err != nil {
			i.log.SyntaxError(c.Src, err)
			fmt.Fprintf(os.Stderr, "rz: %v\n", err)
			return 1
		}
		argv = append(argv, elems...)
	}
	if len(argv) == 0 {
		return 0
	}

	scope, err := pushFds()
	if err != nil {
		fmt.Fprintf(os.Stderr, "rz: %v\n", err)
		return 1
	}
	defer scope.restore()
	defer func() { i.maxFd = 2 }()

	for _, r := range c.Redirs {
		if err := i.applyRedirection(r, scope); err != nil {
			fmt.Fprintf(os.Stderr, "rz: %v\n", err)
			return 1
		}
	}

	// Prompt mode holds until the end of the top-level invocation so the
	// prompt never clobbers the user-visible exit code.
	if argv[0] == "prompt" {
		i.promptMode = true
	}

	if argv[0] == "builtin" {
		return i.dispatchBuiltin(argv[1:])
	}

	if body, ok := i.env.LookupEnv(env.FnPrefix + argv[0]); ok {
		return i.callFunction(argv, body)
	}

	if code, ok := i.runBuiltin(argv); ok {
		return code
	}

	return i.spawn(argv)
}

// callFunction executes a stored function body with $* bound to the call's
// tail arguments. The previous binding of $* is restored on return.
func (i *Interp) callFunction(argv []string, body string) int {
	prev, present := i.env.LookupEnv("*")
	defer func() {
		if present {
			i.env.Setenv("*", prev)
		} else {
			i.env.Unsetenv("*")
		}
	}()
	env.SetList(i.env, "*", argv[1:])

	cmds, err := parser.Parse(body)
	if err != nil {
		i.log.SyntaxError(body, err)
		fmt.Fprintf(os.Stderr, "rz: %s: %v\n", argv[0], err)
		return 1
	}
	return i.Exec(cmds)
}

// dispatchBuiltin handles the "builtin" escape: the function lookup is
// skipped and the rest of the argument vector goes straight to builtin
// dispatch.
func (i *Interp) dispatchBuiltin(argv []string) int {
	if len(argv) == 0 {
		return 0
	}
	if code, ok := i.runBuiltin(argv); ok {
		return code
	}
	fmt.Fprintf(os.Stderr, "rz: %s: no such builtin\n", argv[0])
	return 1
}

func isDecimal(s string) bool {
	if s == "" {
		return false
	}
	for n := 0; n < len(s); n++ {
		if s[n] < '0' || s[n] > '9' {
			return false
		}
	}
	return true
}

var errEmptyConcat = fmt.Errorf("empty side of concatenation: %w", parser.ErrSyntax)

func badSubscript(field string) error {
	return fmt.Errorf("bad subscript %q: %w", field, parser.ErrSyntax)
}

// IsSyntaxError reports whether err came from parsing or from malformed
// argument resolution.
func IsSyntaxError(err error) bool {
	return errors.Is(err, parser.ErrSyntax)
}

// unquote strips one pair of enclosing quotes and collapses doubled
// interior quotes.
func unquote(text string) string {
	inner := text[1 : len(text)-1]
	return strings.ReplaceAll(inner, "''", "'")
}
