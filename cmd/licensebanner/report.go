package licensebanner

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/redactyl/licensebanner/internal/cache"
	"github.com/redactyl/licensebanner/internal/config"
	"github.com/redactyl/licensebanner/internal/report"
	"github.com/redactyl/licensebanner/internal/types"
	"github.com/spf13/cobra"
)

var (
	flagLast     bool
	flagFormat   string
	flagGroup    bool
	flagOutput   string
	flagPrivate  bool
	flagEncoding string
)

func init() {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a license summary without touching build output",
		Long:  "report renders the dependencies of the project, or of the last written build with --last, in any summary format.",
		RunE:  runReport,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVarP(&flagPath, "path", "p", ".", "project root")
	cmd.Flags().StringVar(&flagInclude, "include", "", "comma-separated module include globs")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "comma-separated module exclude globs")
	cmd.Flags().StringVar(&flagChunks, "chunks", "", "comma-separated globs of built chunks to leave out of the walk")
	cmd.Flags().BoolVar(&flagLast, "last", false, "use the dependencies recorded by the last scan --write")
	cmd.Flags().StringVarP(&flagFormat, "format", "f", "table", "text | json | table | cyclonedx")
	cmd.Flags().BoolVar(&flagGroup, "group", false, "group dependencies by license")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "write to this file instead of stdout")
	cmd.Flags().BoolVar(&flagPrivate, "include-private", false, "list private packages too")
	cmd.Flags().StringVar(&flagEncoding, "encoding", "", "output encoding (default utf-8)")
}

func runReport(cmd *cobra.Command, _ []string) error {
	root, err := filepath.Abs(flagPath)
	if err != nil {
		return err
	}
	var deps []types.Dependency
	if flagLast {
		s, err := cache.LoadSummary(root)
		if err != nil {
			return fmt.Errorf("no previous build recorded in %s: %w", root, err)
		}
		deps = s.Dependencies
	} else {
		raw, err := loadOptions(root, config.RawOptions{})
		if err != nil {
			return err
		}
		e, err := collect(cmd, root, raw)
		if err != nil {
			return err
		}
		deps = e.Dependencies()
	}

	f, err := report.ParseFormat(flagFormat)
	if err != nil {
		return err
	}
	x, err := report.NewExporter(report.ExportConfig{
		Output:         flagOutput,
		Format:         f,
		GroupByLicense: flagGroup,
		IncludePrivate: flagPrivate,
		EmitEmpty:      true,
		Encoding:       flagEncoding,
		ToolVersion:    version,
	})
	if err != nil {
		return err
	}
	art, err := x.Export(slices.Values(deps))
	if err != nil {
		return err
	}
	if flagOutput == "" {
		_, err = cmd.OutOrStdout().Write(append(art.Content, '\n'))
		return err
	}
	if err := os.WriteFile(flagOutput, art.Content, 0o644); err != nil { //nolint:gosec // summaries are public
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d dependencies)\n", flagOutput, art.Count)
	return nil
}
