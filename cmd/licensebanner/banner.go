package licensebanner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/atotto/clipboard"
	"github.com/redactyl/licensebanner/internal/config"
	"github.com/redactyl/licensebanner/internal/driver"
	"github.com/redactyl/licensebanner/internal/engine"
	"github.com/spf13/cobra"
)

var flagCopy bool

func init() {
	cmd := &cobra.Command{
		Use:   "banner",
		Short: "Print the banner the current dependencies would produce",
		RunE:  runBanner,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVarP(&flagPath, "path", "p", ".", "project root")
	cmd.Flags().StringVar(&flagInclude, "include", "", "comma-separated module include globs")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "comma-separated module exclude globs")
	cmd.Flags().StringVar(&flagChunks, "chunks", "", "comma-separated globs of built chunks to leave out of the walk")
	cmd.Flags().BoolVar(&flagCopy, "copy", false, "copy the banner to the clipboard")
}

// collect walks root and feeds every module to a fresh engine without
// rendering anything.
func collect(cmd *cobra.Command, root string, raw config.RawOptions) (*engine.Engine, error) {
	e, err := engine.New(raw, newSink(), engine.WithToolVersion(version))
	if err != nil {
		return nil, err
	}
	chunks := driver.ParseGlobs(flagChunks)
	if len(chunks) == 0 {
		chunks = driver.DefaultChunkGlobs
	}
	exclude := append(driver.ParseGlobs(flagExclude), chunks...)
	err = driver.Walk(cmd.Context(), root, driver.ParseGlobs(flagInclude), exclude, func(rel string) {
		e.OnModuleLoad(filepath.Join(root, filepath.FromSlash(rel)))
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

func runBanner(cmd *cobra.Command, _ []string) error {
	root, err := filepath.Abs(flagPath)
	if err != nil {
		return err
	}
	raw, err := loadOptions(root, config.RawOptions{})
	if err != nil {
		return err
	}
	e, err := collect(cmd, root, raw)
	if err != nil {
		return err
	}
	if e.Options().Banner == nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "no banner configured")
		return nil
	}
	res, err := e.OnChunkRender("", engine.ChunkMeta{FileName: "banner"}, engine.OutputOptions{})
	if err != nil {
		return err
	}
	text := strings.TrimSuffix(res.Code, "\n")
	if text == "" {
		fmt.Fprintln(cmd.ErrOrStderr(), "banner is empty")
		return nil
	}

	w := cmd.OutOrStdout()
	if w == os.Stdout && colorEnabled(os.Stdout) {
		if err := quick.Highlight(w, text+"\n", "javascript", "terminal256", "monokai"); err != nil {
			fmt.Fprintln(w, text)
		}
	} else {
		fmt.Fprintln(w, text)
	}
	if flagCopy {
		if err := clipboard.WriteAll(text); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "banner copied to clipboard")
	}
	return nil
}
