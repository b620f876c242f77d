package licensebanner

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/redactyl/licensebanner/internal/audit"
	"github.com/redactyl/licensebanner/internal/config"
	"github.com/redactyl/licensebanner/internal/driver"
	"github.com/redactyl/licensebanner/internal/engine"
	"github.com/redactyl/licensebanner/internal/git"
	"github.com/redactyl/licensebanner/internal/report"
	"github.com/redactyl/licensebanner/internal/types"
	"github.com/spf13/cobra"
)

var (
	flagPath       string
	flagInclude    string
	flagExclude    string
	flagMetafile   string
	flagChunks     string
	flagWrite      bool
	flagNoCache    bool
	flagJSON       bool
	flagBanner     string
	flagThirdParty string
	flagSourcemap  bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Collect dependencies and stamp built chunks",
		Long:  "scan walks the project (or reads an esbuild metafile), records every third-party package, prepends the banner to built chunks and writes the license summary. Nothing is written without --write.",
		RunE:  runScan,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVarP(&flagPath, "path", "p", ".", "project root")
	cmd.Flags().StringVar(&flagInclude, "include", "", "comma-separated module include globs")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "comma-separated module exclude globs")
	cmd.Flags().StringVar(&flagMetafile, "metafile", "", "esbuild metafile listing the bundled inputs")
	cmd.Flags().StringVar(&flagChunks, "chunks", "", "comma-separated globs of built chunks (default dist/**/*.{js,mjs,cjs})")
	cmd.Flags().BoolVarP(&flagWrite, "write", "w", false, "write stamped chunks, shifted source maps and the summary")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "restamp every chunk and skip the last-build record")
	cmd.Flags().BoolVar(&flagJSON, "json", false, "emit JSON")
	cmd.Flags().StringVar(&flagBanner, "banner", "", "banner template, overrides banner.content")
	cmd.Flags().StringVar(&flagThirdParty, "third-party", "", "summary output path, overrides thirdParty.output")
	cmd.Flags().BoolVar(&flagSourcemap, "sourcemap", true, "shift existing source maps past the banner")
}

// scanFlags turns changed flags into an options overlay.
func scanFlags(cmd *cobra.Command, base config.RawOptions) config.RawOptions {
	var over config.RawOptions
	if cmd.Flags().Changed("sourcemap") {
		over.Sourcemap = ptrBool(flagSourcemap)
	}
	if cmd.Flags().Changed("banner") {
		b := config.RawBanner{}
		if base.Banner != nil {
			b = *base.Banner
		}
		b.Content = ptrString(flagBanner)
		b.File = nil
		over.Banner = &b
	}
	if cmd.Flags().Changed("third-party") {
		t := config.RawThirdParty{}
		if base.ThirdParty != nil {
			t = *base.ThirdParty
		}
		t.Output = ptrString(flagThirdParty)
		over.ThirdParty = &t
	}
	return over
}

type scanOutput struct {
	Root         string               `json:"root"`
	Commit       string               `json:"commit,omitempty"`
	Modules      int                  `json:"modules"`
	Dependencies []types.Dependency   `json:"dependencies"`
	Chunks       []driver.ChunkResult `json:"chunks"`
	Artifacts    []string             `json:"artifacts,omitempty"`
	Violations   []string             `json:"violations,omitempty"`
	LateWrites   int                  `json:"lateWrites,omitempty"`
}

func runScan(cmd *cobra.Command, _ []string) error {
	root, err := filepath.Abs(flagPath)
	if err != nil {
		return err
	}
	base, err := loadOptions(root, config.RawOptions{})
	if err != nil {
		return err
	}
	raw := config.Overlay(base, scanFlags(cmd, base))

	sink := newSink()
	e, err := engine.New(raw, sink, engine.WithToolVersion(version))
	if err != nil {
		return err
	}
	md, err := git.RepoMetadata(root)
	if err != nil && !errors.Is(err, git.ErrNoRepo) {
		sink.Warn("cannot read git metadata", "err", err)
	}

	res, runErr := driver.Run(cmd.Context(), e, driver.Config{
		Root:     root,
		Include:  driver.ParseGlobs(flagInclude),
		Exclude:  driver.ParseGlobs(flagExclude),
		Metafile: flagMetafile,
		Chunks:   driver.ParseGlobs(flagChunks),
		Write:    flagWrite,
		NoCache:  flagNoCache,
		Commit:   md.Commit,
	})
	if runErr != nil && !errors.Is(runErr, report.ErrPolicyViolation) {
		return runErr
	}

	deps := e.Dependencies()
	var violations []report.Violation
	if t := e.Options().ThirdParty; t != nil {
		violations = t.Allow.Check(visible(deps, t.IncludePrivate))
	}
	out := scanOutput{
		Root:         root,
		Commit:       md.Commit,
		Modules:      res.Modules,
		Dependencies: deps,
		Chunks:       res.Chunks,
		LateWrites:   e.LateWrites(),
	}
	for _, a := range res.Artifacts {
		out.Artifacts = append(out.Artifacts, a.Path)
	}
	for _, v := range violations {
		out.Violations = append(out.Violations, v.String())
	}
	if flagWrite && !flagNoCache {
		rec := audit.NewRecord(root, md.Commit, deps, violations, len(res.Chunks), res.Duration)
		if err := audit.NewLog(root).LogBuild(rec); err != nil {
			sink.Warn("cannot record build history", "err", err)
		}
	}

	w := cmd.OutOrStdout()
	if flagJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
		return runErr
	}
	report.PrintSummary(w, deps, report.SummaryOptions{NoColor: !colorEnabled(os.Stdout), Violations: violations})
	printChunks(w, res, flagWrite)
	return runErr
}

func printChunks(w io.Writer, res driver.Result, wrote bool) {
	stamped, skipped := 0, 0
	for _, c := range res.Chunks {
		if c.Skipped {
			skipped++
		} else {
			stamped++
		}
	}
	verb := "would stamp"
	if wrote {
		verb = "stamped"
	}
	fmt.Fprintf(w, "Chunks: %s %d, unchanged %d (%d modules in %s)\n", verb, stamped, skipped, res.Modules, res.Duration.Round(time.Millisecond))
	for _, a := range res.Artifacts {
		if wrote {
			fmt.Fprintf(w, "Summary: %s (%d dependencies)\n", a.Path, a.Count)
		} else {
			fmt.Fprintf(w, "Summary: %s (not written)\n", a.Path)
		}
	}
}

func visible(deps []types.Dependency, includePrivate bool) []types.Dependency {
	if includePrivate {
		return deps
	}
	out := make([]types.Dependency, 0, len(deps))
	for _, d := range deps {
		if !d.Private {
			out = append(out, d)
		}
	}
	return out
}
