package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/abiosoft/readline"
	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rzshell/rz/core/config"
	"github.com/rzshell/rz/core/env"
	"github.com/rzshell/rz/core/interp"
	"github.com/rzshell/rz/core/logger"
)

var commandSource string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:           "rz [script]",
	Short:         "An rc-flavored command shell",
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		e := env.OSEnv{}
		env.Init(e)

		lg := openLog(e)
		in := interp.New(e, lg)

		// -c evaluates one source string and exits. Pipelines re-enter
		// the shell through this path, so startup scripts are skipped.
		if commandSource != "" {
			os.Exit(in.ExecSource(commandSource))
		}

		runStartupScripts(in, e)

		if len(args) == 1 {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			os.Exit(in.ExecSource(string(source)))
		}

		if !term.IsTerminal(int(os.Stdin.Fd())) {
			source, err := io.ReadAll(os.Stdin)
			if err != nil {
				return err
			}
			os.Exit(in.ExecSource(string(source)))
		}

		lg.SessionStart()
		os.Exit(repl(in, e))
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "rz: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&commandSource, "command", "c", "", "evaluate the given source and exit")
}

// runStartupScripts executes each existing config.rz in the documented
// search order, skipping missing files.
func runStartupScripts(in *interp.Interp, e env.Env) {
	for _, path := range config.StartupScripts(e) {
		source, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		in.ExecSource(string(source))
	}
}

func openLog(e env.Env) *logger.Log {
	dir := config.UserConfigDir(e)
	if dir == "" {
		return logger.Nop()
	}
	os.MkdirAll(dir, 0700)
	fd, err := os.OpenFile(filepath.Join(dir, config.AppLogName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return logger.Nop()
	}
	return logger.New(fd)
}

// repl drives the interactive loop: run the prompt function if one is
// defined, show the left prompt segment, evaluate the line.
func repl(in *interp.Interp, e env.Env) int {
	settings, err := config.LoadSettings(afero.NewOsFs(), config.UserConfigDir(e))
	if err != nil {
		printError(true, "rz: %v", err)
		settings = config.DefaultSettings()
	}

	cfg := &readline.Config{
		HistoryFile:  settings.HistoryPath(e),
		HistoryLimit: settings.MaxHistory,
	}
	if completer, err := newCompleter(settings.Completer); err == nil && completer != nil {
		cfg.AutoComplete = completer
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		printError(settings.Color, "rz: %v", err)
		return 1
	}
	defer rl.Close()

	status := 0
	for {
		if _, ok := e.LookupEnv(env.FnPrefix + "prompt"); ok {
			in.ExecSource("prompt")
		}
		rl.SetPrompt(leftPrompt(e))

		line, err := rl.Readline()
		switch {
		case err == io.EOF:
			return status
		case err == readline.ErrInterrupt:
			continue
		case err != nil:
			printError(settings.Color, "rz: %v", err)
			continue
		case len(strings.TrimSpace(line)) == 0:
			continue
		}

		status = in.ExecSource(line)
		if status == interp.StatusSyntaxError {
			printError(settings.Color, "rz: syntax error")
		}
	}
}

// leftPrompt returns the first segment of the four-way $prompt value.
func leftPrompt(e env.Env) string {
	return env.Split(e.Getenv("prompt"))[0]
}

func printError(colored bool, format string, args ...interface{}) {
	if colored {
		color.New(color.FgRed).Fprintf(os.Stderr, format+"\n", args...)
		return
	}
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
