package interp

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/rzshell/rz/core/env"
	"github.com/rzshell/rz/core/parser"
)

// commandSubst runs the substituted commands inline with stdout captured by
// a pipe, then splits the output into words on the $ifs separators.
func (i *Interp) commandSubst(s *parser.Substitution) ([]string, error) {
	read, write, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	defer read.Close()

	// The read end must not block once the inline commands are done. The
	// descriptor is taken once: every read.Fd() call resets it to blocking.
	rfd := int(read.Fd())
	if err := unix.SetNonblock(rfd, true); err != nil {
		write.Close()
		return nil, err
	}

	scope, err := pushFds()
	if err != nil {
		write.Close()
		return nil, err
	}

	if err := dup2(int(write.Fd()), 1); err != nil {
		scope.restore()
		write.Close()
		return nil, err
	}
	write.Close()

	i.Exec(s.Body)

	// Restoring stdout drops the last write-end reference, so the drain
	// below sees EOF once the output is consumed.
	scope.restore()

	var out []byte
	buf := make([]byte, 4096)
	for {
		n, err := unix.Read(rfd, buf)
		if n > 0 {
			out = append(out, buf[:n]...)
		}
		if err != nil || n <= 0 {
			break
		}
	}

	return i.splitFields(string(out)), nil
}

// splitFields breaks captured output into words on the $ifs bytes. Each
// element of $ifs must be a single byte; malformed elements are skipped.
func (i *Interp) splitFields(raw string) []string {
	seps := make(map[byte]bool)
	for _, elem := range env.GetList(i.env, "ifs") {
		if len(elem) != 1 {
			i.log.BadIFS(elem)
			continue
		}
		seps[elem[0]] = true
	}

	var fields []string
	start := -1
	for n := 0; n <= len(raw); n++ {
		if n < len(raw) && !seps[raw[n]] {
			if start < 0 {
				start = n
			}
			continue
		}
		if start >= 0 {
			fields = append(fields, raw[start:n])
			start = -1
		}
	}
	return fields
}
