package licensebanner

import (
	"fmt"
	"runtime/debug"

	semver "github.com/blang/semver/v4"
	"github.com/redactyl/licensebanner/internal/update"
	"github.com/spf13/cobra"
)

var flagCheckUpdate bool

func init() {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the licensebanner version",
		RunE:  runVersion,
	}
	rootCmd.AddCommand(cmd)
	cmd.Flags().BoolVar(&flagCheckUpdate, "check", false, "look up the latest release")
}

func runVersion(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, buildVersion())
	if !flagCheckUpdate {
		return nil
	}
	latest, newer, err := update.NewChecker().Check(version, false)
	if err != nil {
		return fmt.Errorf("update check: %w", err)
	}
	if newer {
		fmt.Fprintf(w, "licensebanner v%s is available\n", latest)
	}
	return nil
}

// buildVersion returns the release version, with the VCS revision appended
// for development builds.
func buildVersion() string {
	v, err := semver.ParseTolerant(version)
	if err != nil {
		v = semver.MustParse("0.0.0")
	}
	s := "v" + v.String()
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, kv := range info.Settings {
			if kv.Key == "vcs.revision" && len(kv.Value) >= 7 {
				s += "+" + kv.Value[:7]
			}
		}
	}
	return s
}
