package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens <program.rcl>",
	Short: "Prints the token stream of a program",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := readProgram(args[0])
		if err != nil {
			return err
		}

		tokens, err := newEngine().Tokenize(src)
		if err != nil {
			fmt.Println(compileDiagnostic(args[0], err))
			return errReported
		}

		for _, tok := range tokens {
			fmt.Printf("%4d:%-4d %-20s %q\n", tok.Line, tok.Column, tok.String(), tok.Value)
		}
		return nil
	},
}

var astCmd = &cobra.Command{
	Use:   "ast <program.rcl>",
	Short: "Prints the syntax tree of a program",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := readProgram(args[0])
		if err != nil {
			return err
		}

		prog, err := newEngine().Parse(src)
		if err != nil {
			fmt.Println(compileDiagnostic(args[0], err))
			return errReported
		}

		fmt.Println(prog.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokensCmd)
	rootCmd.AddCommand(astCmd)
}
