// Package config resolves the shell's startup scripts and loads the
// driver's optional settings file.
package config

import (
	"errors"
	"io/fs"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"

	"github.com/rzshell/rz/core/env"
)

const (
	// SettingsName is the driver settings file inside the user config dir.
	SettingsName = "rz.yaml"
	// ScriptName is the shell script run at startup.
	ScriptName = "config.rz"
	// AppLogName is the JSON-lines event log.
	AppLogName = "rz.log"
)

// Settings configures the interactive driver, not the language: the
// interpreter itself is configured through config.rz.
type Settings struct {
	// HistoryFile overrides where readline history is kept.
	HistoryFile string `json:"history_file"`
	// Completer is a command line producing completion candidates; it
	// receives the word under the cursor as its final argument.
	Completer string `json:"completer"`
	// Color enables colored driver diagnostics.
	Color bool `json:"color"`
	// MaxHistory bounds the history file length.
	MaxHistory int `json:"max_history" validate:"gte=0"`
}

// Validate the settings for basic semantic errors.
func (s *Settings) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(s)
}

// HistoryPath resolves the history file, defaulting into the config dir.
func (s *Settings) HistoryPath(e env.Env) string {
	if s.HistoryFile != "" {
		return s.HistoryFile
	}
	dir := UserConfigDir(e)
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "history")
}

// DefaultSettings returns the settings used when no rz.yaml exists.
func DefaultSettings() *Settings {
	return &Settings{
		Color:      true,
		MaxHistory: 1000,
	}
}

// LoadSettings reads and validates rz.yaml from dir. A missing file yields
// the defaults.
func LoadSettings(afs afero.Fs, dir string) (*Settings, error) {
	out := DefaultSettings()
	if dir == "" {
		return out, nil
	}

	raw, err := afero.ReadFile(afs, filepath.Join(dir, SettingsName))
	if errors.Is(err, fs.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}

	if err := yaml.UnmarshalStrict(raw, out); err != nil {
		return nil, err
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// UserConfigDir is $XDG_CONFIG_HOME/rz, falling back to ~/.config/rz.
func UserConfigDir(e env.Env) string {
	if dir := e.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "rz")
	}
	if home := e.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".config", "rz")
	}
	return ""
}
