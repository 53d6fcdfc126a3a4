package cmd

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/msto63/cellbot/internal/maze"
	"github.com/msto63/cellbot/internal/render"
	"github.com/spf13/cobra"
)

var (
	mazePlain  bool
	convertTo  string
	convertOut string
)

var mazeCmd = &cobra.Command{
	Use:   "maze",
	Short: "Inspects and converts maze files",
	Long: `Maze files come in four formats, chosen by extension:
  .json         {"width":..,"height":..,"start":[r,c],"walls":[[r,c]..],"exits":[[r,c]..]}
  .yaml, .yml   the same document in YAML
  .toml         the same document in TOML
  .txt, .maze   a character grid: '#' wall, '.' free, 'S' start, 'E' exit`,
}

var mazeShowCmd = &cobra.Command{
	Use:   "show <maze>",
	Short: "Draws a maze",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := maze.Load(args[0])
		if err != nil {
			return err
		}

		renderer := render.New(mazePlain || !isatty.IsTerminal(os.Stdout.Fd()))
		scene := render.Scene{Maze: m, Position: m.Start(), Facing: "N"}
		fmt.Println(renderer.Maze(scene, m.Name()))
		fmt.Printf("%dx%d, start %s, %d exit(s), %d wall(s)\n",
			m.Width(), m.Height(), m.Start(), len(m.Exits()), len(m.Walls()))
		return nil
	},
}

var mazeConvertCmd = &cobra.Command{
	Use:   "convert <maze>",
	Short: "Converts a maze to another format",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := maze.ParseFormat(convertTo)
		if err != nil {
			return err
		}
		m, err := maze.Load(args[0])
		if err != nil {
			return err
		}

		data, err := m.Document().Marshal(format)
		if err != nil {
			return err
		}

		if convertOut == "" || convertOut == "-" {
			_, err = os.Stdout.Write(data)
			return err
		}
		if err := os.WriteFile(convertOut, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", convertOut, err)
		}
		logger.Info(fmt.Sprintf("Maze written to %s (%s)", convertOut, format))
		return nil
	},
}

var mazeSolveCmd = &cobra.Command{
	Use:   "solve <maze>",
	Short: "Prints the length of the shortest path to an exit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := maze.Load(args[0])
		if err != nil {
			return err
		}

		steps, ok := m.ShortestPath()
		if !ok {
			fmt.Printf("%s: no exit reachable from %s\n", m.Name(), m.Start())
			return errReported
		}
		fmt.Printf("%s: %d move(s) from %s\n", m.Name(), steps, m.Start())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mazeCmd)
	mazeCmd.AddCommand(mazeShowCmd)
	mazeCmd.AddCommand(mazeConvertCmd)
	mazeCmd.AddCommand(mazeSolveCmd)

	mazeShowCmd.Flags().BoolVar(&mazePlain, "plain", false, "ASCII output without colors")
	mazeConvertCmd.Flags().StringVar(&convertTo, "to", "json", "target format (json, yaml, toml, grid)")
	mazeConvertCmd.Flags().StringVarP(&convertOut, "output", "o", "", "output file (default: stdout)")
}
