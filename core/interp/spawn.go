package interp

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rzshell/rz/core/env"
)

// spawn runs argv as a child process with the current environment and fd
// layout, waits for it and maps the exit to a status code.
func (i *Interp) spawn(argv []string) int {
	path, err := i.lookPath(argv[0])
	switch {
	case errors.Is(err, exec.ErrNotFound):
		i.log.UnknownCommand(argv, err)
		fmt.Fprintf(os.Stderr, "rz: %s: command not found\n", argv[0])
		return StatusCommandNotFound
	case err != nil:
		i.log.SpawnError(argv, err)
		fmt.Fprintf(os.Stderr, "rz: %s: %v\n", argv[0], err)
		return 1
	}

	i.log.RunCommand(argv)

	pid, _, err := syscall.StartProcess(path, argv, &syscall.ProcAttr{
		Env:   i.env.Environ(),
		Files: i.procFiles(),
	})
	if err != nil {
		i.log.SpawnError(argv, err)
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "rz: %s: command not found\n", argv[0])
			return StatusCommandNotFound
		}
		fmt.Fprintf(os.Stderr, "rz: %s: %v\n", argv[0], err)
		return 1
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return 1
	}
	state, err := proc.Wait()
	if err != nil {
		return 1
	}
	if code := state.ExitCode(); code >= 0 {
		return code
	}
	return 1 // killed by a signal or other abnormal exit
}

// lookPath resolves a command name against $path, the list mirror of PATH.
// Names containing a slash bypass the search.
func (i *Interp) lookPath(name string) (string, error) {
	if strings.Contains(name, "/") {
		if isExecutable(name) {
			return name, nil
		}
		return "", exec.ErrNotFound
	}

	dirs := env.GetList(i.env, "path")
	if dirs == nil {
		dirs = strings.Split(i.env.Getenv("PATH"), ":")
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, name)
		if isExecutable(path) {
			return path, nil
		}
	}
	return "", exec.ErrNotFound
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Mode().Perm()&0111 != 0
}
