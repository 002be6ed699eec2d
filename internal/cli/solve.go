package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/njchilds90/odekit/ode"
	"github.com/njchilds90/odekit/parse"
)

func newSolveCmd(root *rootOptions) *cobra.Command {
	var (
		optionsFile string
		spanStart   float64
		spanEnd     float64
		points      int
		y0          []float64
	)
	cmd := &cobra.Command{
		Use:   "solve \"<equation>\"",
		Short: "Classify and solve one ODE",
		Example: `  odekit solve "y'' - 3y' + 2y = 0"
  odekit solve --format json "y' = y^2"
  odekit solve --options numeric.yaml "x*y'' - 3y' + 2y = 0"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			opts, err := loadSolveOptions(optionsFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("span-start") {
				opts.SpanStart = spanStart
			}
			if cmd.Flags().Changed("span-end") {
				opts.SpanEnd = spanEnd
			}
			if cmd.Flags().Changed("points") {
				opts.Points = points
			}
			if cmd.Flags().Changed("y0") {
				opts.Y0 = y0
			}

			root.logger.Debug("parsing equation", "input", input)
			expr, err := parse.Equation(input)
			if err != nil {
				return err
			}
			res, err := ode.Solve(expr, "y", "x", opts)
			if err != nil {
				return err
			}
			res.Input = input

			switch root.format {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			case "text":
				fmt.Fprint(cmd.OutOrStdout(), renderText(res))
				return nil
			default:
				return fmt.Errorf("unknown format %q", root.format)
			}
		},
	}
	cmd.Flags().StringVarP(&optionsFile, "options", "o", "", "YAML file with numeric solve options")
	cmd.Flags().Float64Var(&spanStart, "span-start", -10, "left end of the numeric span")
	cmd.Flags().Float64Var(&spanEnd, "span-end", 10, "right end of the numeric span")
	cmd.Flags().IntVar(&points, "points", 400, "number of numeric sample points")
	cmd.Flags().Float64SliceVar(&y0, "y0", nil, "initial state y(x0), y'(x0), ...")
	return cmd
}

// loadSolveOptions reads the YAML options file, or hands back zero
// options so Solve applies its defaults.
func loadSolveOptions(path string) (ode.SolveOptions, error) {
	var opts ode.SolveOptions
	if path == "" {
		return opts, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("reading options file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &opts); err != nil {
		return opts, fmt.Errorf("parsing options file %s: %w", path, err)
	}
	return opts, nil
}

func renderText(res *ode.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "equation:     %s\n", res.Input)
	fmt.Fprintf(&b, "order:        %d\n", res.Order)
	fmt.Fprintf(&b, "linear:       %t\n", res.IsLinear)
	if res.CoefficientType != "" {
		fmt.Fprintf(&b, "coefficients: %s\n", res.CoefficientType)
	}
	if res.Auxiliary != "" {
		fmt.Fprintf(&b, "auxiliary:    %s\n", res.Auxiliary)
	}
	for _, r := range res.Roots {
		fmt.Fprintf(&b, "root:         %s\n", formatRoot(r))
	}
	switch {
	case res.Solution != "":
		fmt.Fprintf(&b, "solution:     %s\n", res.Solution)
	case res.Numeric != nil:
		n := res.Numeric
		fmt.Fprintf(&b, "numeric:      %d samples on [%g, %g] (%s, %d steps)\n",
			len(n.X), n.X[0], n.X[len(n.X)-1], n.Status, n.Stats.StepCount)
	case res.Failure != "":
		fmt.Fprintf(&b, "failure:      %s\n", res.Failure)
	}
	return b.String()
}

func formatRoot(r ode.RootInfo) string {
	var s string
	switch {
	case r.Kind == "real":
		s = fmt.Sprintf("r = %g", r.Re)
	case r.Im >= 0:
		s = fmt.Sprintf("r = %g + %gi", r.Re, r.Im)
	default:
		s = fmt.Sprintf("r = %g - %gi", r.Re, -r.Im)
	}
	if r.Multiplicity > 1 {
		s += fmt.Sprintf(" (multiplicity %d)", r.Multiplicity)
	}
	return s
}
