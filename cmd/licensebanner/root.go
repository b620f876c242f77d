package licensebanner

import (
	"errors"
	"fmt"
	"os"

	"github.com/redactyl/licensebanner/internal/report"
	"github.com/spf13/cobra"
)

var (
	flagNoColor bool
	flagDebug   bool
	flagConfig  string

	version = "0.1.0"
)

// rootCmd is the base Cobra command for the licensebanner CLI.
var rootCmd = &cobra.Command{
	Use:           "licensebanner",
	Short:         "Stamp bundles with license banners",
	Long:          "licensebanner finds the third-party packages a JavaScript bundle pulls in, prepends a license banner to each chunk and writes a summary of every license involved.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI. It should be called by the main package. A license
// policy failure exits with 1; any other error exits with 2.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.Is(err, report.ErrPolicyViolation) {
			os.Exit(1)
		}
		os.Exit(2)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "log every scanned module and rendered chunk")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "options file layered over the global and project config")
}
