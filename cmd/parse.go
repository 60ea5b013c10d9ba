package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rzshell/rz/core/lexer"
	"github.com/rzshell/rz/core/parser"
)

var dumpTokens bool

// parseCmd dumps the token stream or command tree for a piece of source,
// for debugging the grammar.
var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Dump the token stream or AST of rz source",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var source []byte
		var err error
		switch {
		case commandSource != "":
			source = []byte(commandSource)
		case len(args) == 1:
			source, err = os.ReadFile(args[0])
		default:
			source, err = io.ReadAll(os.Stdin)
		}
		if err != nil {
			return err
		}

		if dumpTokens {
			writeTokens(os.Stdout, string(source))
			return nil
		}

		cmds, err := parser.Parse(string(source))
		if err != nil {
			return err
		}
		parser.Fprint(os.Stdout, cmds)
		return nil
	},
}

func init() {
	parseCmd.Flags().BoolVar(&dumpTokens, "tokens", false, "dump tokens instead of the AST")
	rootCmd.AddCommand(parseCmd)
}

func writeTokens(w io.Writer, source string) {
	for _, tok := range lexer.Tokens(source) {
		fmt.Fprintf(w, "%s %d:%d %q\n", tok.Kind, tok.Start, tok.End, tok.Text(source))
	}
}
