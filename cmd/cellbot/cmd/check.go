package cmd

import (
	"fmt"
	"os"
	"strings"

	mdwerror "github.com/msto63/cellbot/foundation/core/error"
	"github.com/msto63/cellbot/foundation/rcl/semantic"
	"github.com/msto63/cellbot/internal/render"
	"github.com/spf13/cobra"
)

var checkQuiet bool

var checkCmd = &cobra.Command{
	Use:   "check <program.rcl>...",
	Short: "Checks RCL programs without running them",
	Long: `Lexes, parses and type-checks RCL programs. Errors are reported as
file:line:column: message. The exit code is non-zero if any program
is rejected.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVarP(&checkQuiet, "quiet", "q", false, "only print errors")
}

func runCheck(cmd *cobra.Command, args []string) error {
	engine := newEngine()
	renderer := render.New(true)
	failed := 0

	for _, path := range args {
		src, err := readProgram(path)
		if err != nil {
			return err
		}

		prog, err := engine.Compile(src)
		if err != nil {
			failed++
			fmt.Fprintln(os.Stderr, renderer.Diagnostic(compileDiagnostic(path, err)))
			continue
		}
		if checkQuiet {
			continue
		}

		fmt.Printf("%s: ok\n", path)
		printSymbols(prog.Symbols)
	}

	if failed > 0 {
		return errReported
	}
	return nil
}

// compileDiagnostic formats err as path:line:column: message
func compileDiagnostic(path string, err error) string {
	var line, col int
	if mdwErr, ok := err.(*mdwerror.Error); ok {
		if v, ok := mdwErr.Detail("line"); ok {
			line, _ = v.(int)
		}
		if v, ok := mdwErr.Detail("column"); ok {
			col, _ = v.(int)
		}
	}
	code := mdwerror.GetCode(err)
	if line > 0 {
		return fmt.Sprintf("%s:%d:%d: %v [%s]", path, line, col, err, code)
	}
	return fmt.Sprintf("%s: %v [%s]", path, err, code)
}

// printSymbols lists tasks and global variables
func printSymbols(symbols *semantic.Result) {
	if len(symbols.Tasks) > 0 {
		fmt.Println("  Tasks:")
		for _, name := range render.SortedKeys(symbols.Tasks) {
			task := symbols.Tasks[name]
			fmt.Printf("    %-20s (%s) -> %s  [%s]\n", name, strings.Join(task.Params, ", "), task.Result, task.Pos)
		}
	}

	if len(symbols.Globals) > 0 {
		fmt.Println("  Globals:")
		for _, name := range render.SortedKeys(symbols.Globals) {
			sym := symbols.Globals[name]
			fmt.Printf("    %-20s %s  [%s]\n", name, sym.Type, sym.Pos)
		}
	}
}
