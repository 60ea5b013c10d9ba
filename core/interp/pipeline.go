package interp

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/rzshell/rz/core/parser"
)

// runPipeline executes A | B as two concurrent children, each a re-exec of
// the shell evaluating one side's source. Environment mutations inside a
// half stay in that half, matching fork semantics. The pipeline's status is
// the right-hand side's exit code.
func (i *Interp) runPipeline(p *parser.Pipe) int {
	read, write, err := os.Pipe()
	if err != nil {
		fmt.Fprintf(os.Stderr, "rz: pipe: %v\n", err)
		return 1
	}

	lhs, err := i.forkExec(p.Lhs.Source(), nil, write)
	if err != nil {
		read.Close()
		write.Close()
		fmt.Fprintf(os.Stderr, "rz: %v\n", err)
		return 1
	}

	rhs, err := i.forkExec(p.Rhs.Source(), read, nil)
	read.Close()
	write.Close()
	if err != nil {
		lhs.Wait()
		fmt.Fprintf(os.Stderr, "rz: %v\n", err)
		return 1
	}

	lhs.Wait()
	rhs.Wait()
	if state := rhs.ProcessState; state != nil && state.ExitCode() >= 0 {
		return state.ExitCode()
	}
	return 1
}

// forkExec starts a child shell evaluating source, with stdin or stdout
// replaced by a pipe end. The other descriptors are the interpreter's
// current ones.
func (i *Interp) forkExec(source string, stdin, stdout *os.File) (*exec.Cmd, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(exe, "-c", source)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if stdin != nil {
		cmd.Stdin = stdin
	}
	if stdout != nil {
		cmd.Stdout = stdout
	}
	cmd.Env = i.env.Environ()

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return cmd, nil
}
