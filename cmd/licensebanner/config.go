package licensebanner

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/redactyl/licensebanner/internal/audit"
	"github.com/redactyl/licensebanner/internal/cache"
	"github.com/redactyl/licensebanner/internal/config"
	"github.com/redactyl/licensebanner/internal/files"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// sampleBanner lists every bundled dependency under the project header.
const sampleBanner = `{{(pkg).Name}} {{(pkg).Version}}

Third-party dependencies ({{count}}):
{{range dependencies}}
- {{.Name}} {{.Version}} ({{.License}}){{end}}`

var (
	cfgOutput       string
	cfgSummary      string
	cfgFormat       string
	cfgStyle        string
	cfgGroup        bool
	cfgAllow        []string
	cfgForce        bool
	cfgGitignore    bool
	cfgShowRaw      bool
	cfgShowWarnings bool
)

func init() {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}
	rootCmd.AddCommand(cfgCmd)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a .licensebanner.yml with a sample banner and summary",
		RunE:  runConfigInit,
	}
	cfgCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&cfgOutput, "output", config.LocalNames[0], "output file path")
	initCmd.Flags().StringVar(&cfgSummary, "summary", "dist/THIRD_PARTY_LICENSES.txt", "summary output path")
	initCmd.Flags().StringVar(&cfgFormat, "format", "text", "summary format: text | json | table | cyclonedx")
	initCmd.Flags().StringVar(&cfgStyle, "comment-style", "regular", "banner comment style: regular | ignored | slash | none")
	initCmd.Flags().BoolVar(&cfgGroup, "group", false, "group the summary by license")
	initCmd.Flags().StringSliceVar(&cfgAllow, "allow", nil, "SPDX license ids allowed by the summary policy")
	initCmd.Flags().BoolVar(&cfgForce, "force", false, "overwrite an existing file")
	initCmd.Flags().BoolVar(&cfgGitignore, "gitignore", true, "add the chunk and last-build records to .gitignore")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the options a scan in --path would use",
		RunE:  runConfigShow,
	}
	cfgCmd.AddCommand(showCmd)
	showCmd.Flags().StringVarP(&flagPath, "path", "p", ".", "project root")
	showCmd.Flags().BoolVar(&cfgShowRaw, "raw", false, "print the merged file options before defaults are applied")
	showCmd.Flags().BoolVar(&cfgShowWarnings, "warnings", true, "print normalization warnings to stderr")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	if _, err := os.Stat(cfgOutput); err == nil && !cfgForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgOutput)
	}
	raw := config.RawOptions{
		Sourcemap: ptrBool(true),
		Banner: &config.RawBanner{
			Content:      ptrString(sampleBanner),
			CommentStyle: ptrString(cfgStyle),
		},
		ThirdParty: &config.RawThirdParty{
			Output:         ptrString(cfgSummary),
			Format:         ptrString(cfgFormat),
			GroupByLicense: ptrBool(cfgGroup),
		},
	}
	if len(cfgAllow) > 0 {
		raw.ThirdParty.Allow = &config.RawAllow{Licenses: cfgAllow, FailOnViolation: ptrBool(true)}
	}
	// refuse to write a file the loader would reject
	if _, _, err := config.Load(raw); err != nil {
		return err
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(cfgOutput); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(cfgOutput, b, 0o644); err != nil { //nolint:gosec // config is meant to be committed
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", cfgOutput)
	if cfgGitignore {
		n, err := files.AppendIgnore(filepath.Dir(cfgOutput), append(cache.IgnorePatterns, audit.IgnorePattern)...)
		if err != nil {
			return err
		}
		if n > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "added %d entries to .gitignore\n", n)
		}
	}
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	root, err := filepath.Abs(flagPath)
	if err != nil {
		return err
	}
	raw, err := loadOptions(root, config.RawOptions{})
	if err != nil {
		return err
	}
	var v any = raw
	if !cfgShowRaw {
		opts, warnings, err := config.Load(raw)
		if err != nil {
			return err
		}
		if cfgShowWarnings {
			for _, w := range warnings {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning:", w)
			}
		}
		v = opts
	}
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
