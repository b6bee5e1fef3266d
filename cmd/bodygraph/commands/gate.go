package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/openfroyo/bodygraph/pkg/engine"
)

func newGateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "gate <degree>",
		Short: "Show the gate and line at a zodiac degree",
		Example: `  bodygraph gate 100
  bodygraph gate 354.375 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			degree, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid degree %q: %w", args[0], err)
			}

			gate, line, err := engine.MapDegree(degree)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, map[string]any{
					"degree": degree,
					"gate":   int(gate),
					"line":   int(line),
					"name":   gate.Label(),
					"sign":   engine.ZodiacSign(degree),
					"center": engine.CenterOf(gate),
				})
			}

			pos := engine.PositionAt(degree)
			_, err = fmt.Fprintf(out, "%d.%d %s (%.3f° %s, %s)\n",
				gate, line, gate.Label(), pos.DegreeInSign, pos.Sign, engine.CenterOf(gate))
			return err
		},
	}
}
