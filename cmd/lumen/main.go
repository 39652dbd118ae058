package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/lumen/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╦  ┬ ┬┌┬┐┌─┐┌┐┌
  ║  │ ││││├┤ │││
  ╩═╝└─┘┴ ┴└─┘┘└┘
`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if e, ok := err.(*errors.Error); ok {
			fmt.Fprint(os.Stderr, e.Format())
		} else {
			fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lumen",
		Short: "Reactive signals and frame driving for retained-mode UIs",
		Long: `Lumen ties application state to layout and redraw.

Signals hold state and derived values, notifications insert update
flags, and a frame driver turns those flags into update, layout and
draw passes. The run command drives a headless demo application.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default: ./lumen.yaml)")

	rootCmd.AddCommand(
		runCmd(),
		configCmd(),
		errorsCmd(),
		versionCmd(),
	)
	return rootCmd
}

// printBanner prints the ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
