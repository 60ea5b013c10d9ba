// Package logger is a newline-delimited JSON event log for the shell.
package logger

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Entry is one logged event.
type Entry struct {
	Time    time.Time `json:"ts"`
	Event   string    `json:"event"`
	Command []string  `json:"command,omitempty"`
	Error   string    `json:"error,omitempty"`
	Detail  string    `json:"detail,omitempty"`
}

// Log appends entries to a writer, one JSON object per line. A nil Log and
// the Nop log discard everything.
type Log struct {
	mu  sync.Mutex
	enc *json.Encoder
	now func() time.Time
}

func New(w io.Writer) *Log {
	return &Log{enc: json.NewEncoder(w), now: time.Now}
}

// Nop returns a log that discards all entries.
func Nop() *Log {
	return &Log{}
}

func (l *Log) emit(e Entry) {
	if l == nil || l.enc == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	e.Time = l.now()
	l.enc.Encode(e)
}

func (l *Log) SessionStart() {
	l.emit(Entry{Event: "session_start"})
}

func (l *Log) RunCommand(argv []string) {
	l.emit(Entry{Event: "run_command", Command: argv})
}

func (l *Log) UnknownCommand(argv []string, err error) {
	l.emit(Entry{Event: "unknown_command", Command: argv, Error: errString(err)})
}

func (l *Log) SyntaxError(source string, err error) {
	l.emit(Entry{Event: "syntax_error", Detail: source, Error: errString(err)})
}

func (l *Log) SpawnError(argv []string, err error) {
	l.emit(Entry{Event: "spawn_error", Command: argv, Error: errString(err)})
}

// BadIFS records a malformed (multi-byte) $ifs element that was skipped.
func (l *Log) BadIFS(element string) {
	l.emit(Entry{Event: "bad_ifs", Detail: element})
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// ReadLog parses a newline delimited JSON log.
func ReadLog(r io.Reader, handler func(e *Entry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var entry Entry
		if err := decoder.Decode(&entry); err != nil {
			return err
		}
		handler(&entry)
	}
	return nil
}
