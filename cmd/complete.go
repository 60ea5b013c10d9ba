package cmd

import (
	"os/exec"
	"strings"

	"github.com/abiosoft/readline"
	shlex "github.com/anmitsu/go-shlex"
)

// externalCompleter asks a user-configured program for completion
// candidates. The program receives the word under the cursor as its last
// argument and prints one candidate per line.
type externalCompleter struct {
	argv []string
}

// newCompleter splits the configured completer command line. An empty spec
// disables completion.
func newCompleter(spec string) (readline.AutoCompleter, error) {
	if spec == "" {
		return nil, nil
	}
	argv, err := shlex.Split(spec, true)
	if err != nil || len(argv) == 0 {
		return nil, err
	}
	return &externalCompleter{argv: argv}, nil
}

func (c *externalCompleter) Do(line []rune, pos int) ([][]rune, int) {
	prefix := currentWord(line, pos)

	args := append(append([]string(nil), c.argv[1:]...), prefix)
	out, err := exec.Command(c.argv[0], args...).Output()
	if err != nil {
		return nil, 0
	}

	var candidates [][]rune
	for _, cand := range strings.Split(string(out), "\n") {
		if cand == "" || !strings.HasPrefix(cand, prefix) {
			continue
		}
		candidates = append(candidates, []rune(cand[len(prefix):]))
	}
	return candidates, len(prefix)
}

// currentWord returns the run of non-space characters ending at pos.
func currentWord(line []rune, pos int) string {
	start := pos
	for start > 0 && line[start-1] != ' ' && line[start-1] != '\t' {
		start--
	}
	return string(line[start:pos])
}
