package interp

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/rzshell/rz/core/parser"
)

// fdScope saves stdin/stdout/stderr so any redirection can be undone. The
// saved copies are dup'd with CLOEXEC set so they never leak into children.
type fdScope struct {
	saved [3]int
	extra []int // fds above 2 opened by redirections
}

func pushFds() (*fdScope, error) {
	s := &fdScope{saved: [3]int{-1, -1, -1}}
	for fd := 0; fd < 3; fd++ {
		dup, err := unix.FcntlInt(uintptr(fd), unix.F_DUPFD_CLOEXEC, 10)
		if err != nil {
			s.restore()
			return nil, fmt.Errorf("saving fd %d: %w", fd, err)
		}
		s.saved[fd] = dup
	}
	return s, nil
}

// restore puts the saved triple back and closes everything the scope
// opened. Safe to call on a partially initialized scope.
func (s *fdScope) restore() {
	for fd := 2; fd >= 0; fd-- {
		if s.saved[fd] < 0 {
			continue
		}
		dup2(s.saved[fd], fd)
		unix.Close(s.saved[fd])
		s.saved[fd] = -1
	}
	for _, fd := range s.extra {
		unix.Close(fd)
	}
	s.extra = nil
}

// track records an fd above the standard triple for close-on-restore.
func (s *fdScope) track(fd int) {
	if fd > 2 {
		s.extra = append(s.extra, fd)
	}
}

func dup2(oldfd, newfd int) error {
	if oldfd == newfd {
		return nil
	}
	return unix.Dup3(oldfd, newfd, 0)
}

// applyRedirection resolves the file argument and mutates the fd table. A
// resolved word of the form [n=m] aliases fd n to m, [n=] and [n] close n;
// anything else opens a file and dups it over the redirection's fd.
func (i *Interp) applyRedirection(r parser.Redirection, scope *fdScope) error {
	elems, err := i.resolve(r.File)
	if err != nil {
		return err
	}
	if len(elems) != 1 {
		return fmt.Errorf("redirection needs one file, got %d: %w", len(elems), parser.ErrSyntax)
	}
	target := elems[0]

	if strings.HasPrefix(target, "[") && strings.HasSuffix(target, "]") {
		return i.applyFdOp(target[1:len(target)-1], scope)
	}

	// Raw descriptors, so no os.File finalizer can close a redirected fd
	// behind the shell's back.
	var fd int
	switch {
	case r.Dir == parser.RedirIn:
		fd, err = unix.Open(target, unix.O_RDONLY, 0)
	case r.Append:
		fd, err = unix.Open(target, unix.O_WRONLY|unix.O_CREAT|unix.O_APPEND, 0666)
	default:
		fd, err = unix.Open(target, unix.O_WRONLY|unix.O_CREAT|unix.O_TRUNC, 0666)
	}
	if err != nil {
		return fmt.Errorf("open %s: %w", target, err)
	}

	if fd != r.Fd {
		if err := dup2(fd, r.Fd); err != nil {
			unix.Close(fd)
			return err
		}
		unix.Close(fd)
	}
	scope.track(r.Fd)
	if r.Fd > i.maxFd {
		i.maxFd = r.Fd
	}
	return nil
}

// applyFdOp decodes the inside of a bracketed redirection target: "n=m"
// dups m onto n, "n=" and "n" close n.
func (i *Interp) applyFdOp(spec string, scope *fdScope) error {
	lhsText, rhsText, hasRhs := strings.Cut(spec, "=")
	lhs, err := strconv.Atoi(lhsText)
	if err != nil || lhs < 0 {
		return fmt.Errorf("bad fd %q: %w", lhsText, parser.ErrSyntax)
	}

	if !hasRhs || rhsText == "" {
		return unix.Close(lhs)
	}

	rhs, err := strconv.Atoi(rhsText)
	if err != nil || rhs < 0 {
		return fmt.Errorf("bad fd %q: %w", rhsText, parser.ErrSyntax)
	}
	if err := dup2(rhs, lhs); err != nil {
		return err
	}
	scope.track(lhs)
	if lhs > i.maxFd {
		i.maxFd = lhs
	}
	return nil
}

// procFiles builds the fd layout a child inherits: every fd up to the
// highest one redirections have touched, passed by number so no *os.File
// finalizer can close the shell's own descriptors.
func (i *Interp) procFiles() []uintptr {
	files := make([]uintptr, i.maxFd+1)
	for fd := 0; fd <= i.maxFd; fd++ {
		files[fd] = uintptr(fd)
	}
	return files
}
