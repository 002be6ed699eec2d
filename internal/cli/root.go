// Package cli wires the odekit commands: solve for one-shot
// classification and solving, serve for the HTTP endpoint.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	format  string
	verbose bool
	logger  *slog.Logger
}

// NewRootCmd builds the odekit command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "odekit",
		Short: "Classify and solve ordinary differential equations",
		Long: `odekit reads an ODE in one unknown y(x), reports its order,
linearity and coefficient structure, and produces a closed-form general
solution where one of the built-in strategies applies. Equations without
a closed form are integrated numerically.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if opts.verbose {
				level = slog.LevelDebug
			}
			opts.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			return nil
		},
	}
	cmd.PersistentFlags().StringVarP(&opts.format, "format", "f", "text", "output format: text or json")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newSolveCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	return cmd
}

// Execute runs the command tree and reports the exit code.
func Execute() int {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		slog.New(slog.NewTextHandler(os.Stderr, nil)).Error("odekit failed", "error", err)
		return 1
	}
	return 0
}
