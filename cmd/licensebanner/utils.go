package licensebanner

import (
	"errors"
	"os"

	"github.com/redactyl/licensebanner/internal/config"
	"github.com/redactyl/licensebanner/internal/diag"
	"golang.org/x/term"
)

// loadOptions layers the global config, the project config in root, the
// --config file and finally flags. Missing files are skipped.
func loadOptions(root string, flags config.RawOptions) (config.RawOptions, error) {
	var out config.RawOptions
	global, err := config.LoadGlobal()
	if err != nil && !errors.Is(err, config.ErrNoConfig) {
		return out, err
	}
	out = config.Overlay(out, global)
	local, err := config.LoadLocal(root)
	if err != nil && !errors.Is(err, config.ErrNoConfig) {
		return out, err
	}
	out = config.Overlay(out, local)
	if flagConfig != "" {
		explicit, err := config.LoadFile(flagConfig)
		if err != nil {
			return out, err
		}
		out = config.Overlay(out, explicit)
	}
	if flagDebug {
		flags.Debug = ptrBool(true)
	}
	out = config.Overlay(out, flags)
	if out.Cwd == nil {
		out.Cwd = ptrString(root)
	}
	return out, nil
}

func newSink() diag.Sink {
	return diag.NewLogger(os.Stderr, flagDebug)
}

// colorEnabled reports whether f is a terminal and colors were not disabled.
func colorEnabled(f *os.File) bool {
	if flagNoColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int
}

func ptrBool(b bool) *bool       { return &b }
func ptrString(s string) *string { return &s }
