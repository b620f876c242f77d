package licensebanner

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/redactyl/licensebanner/internal/cache"
	"github.com/redactyl/licensebanner/internal/config"
	"github.com/redactyl/licensebanner/internal/report"
	"github.com/redactyl/licensebanner/internal/tui"
	"github.com/redactyl/licensebanner/internal/types"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func init() {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse dependencies and their licenses interactively",
		RunE:  runBrowse,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVarP(&flagPath, "path", "p", ".", "project root")
	cmd.Flags().StringVar(&flagInclude, "include", "", "comma-separated module include globs")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "comma-separated module exclude globs")
	cmd.Flags().StringVar(&flagChunks, "chunks", "", "comma-separated globs of built chunks to leave out of the walk")
	cmd.Flags().BoolVar(&flagLast, "last", false, "browse the dependencies recorded by the last scan --write")
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) { //nolint:gosec // fd fits in int
		return errors.New("browse needs an interactive terminal; use report instead")
	}
	root, err := filepath.Abs(flagPath)
	if err != nil {
		return err
	}
	raw, err := loadOptions(root, config.RawOptions{})
	if err != nil {
		return err
	}
	var deps []types.Dependency
	var policy report.Policy
	if flagLast {
		s, err := cache.LoadSummary(root)
		if err != nil {
			return err
		}
		deps = s.Dependencies
		if opts, _, err := config.Load(raw); err == nil && opts.ThirdParty != nil {
			policy = opts.ThirdParty.Allow
		}
	} else {
		e, err := collect(cmd, root, raw)
		if err != nil {
			return err
		}
		deps = e.Dependencies()
		if t := e.Options().ThirdParty; t != nil {
			policy = t.Allow
		}
	}
	return tui.Run(deps, policy.Check(deps))
}
