package config

import (
	"os"
	"path/filepath"

	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var (
	// ErrConfig marks every invalid-option error; it aborts plugin setup.
	ErrConfig = zerr.New("invalid configuration")
	// ErrNoConfig is returned by the loaders when no file exists.
	ErrNoConfig = zerr.New("no config file")
)

// RawOptions is the user-facing option shape, as written in YAML or built by
// a host. Pointer fields keep "unset" apart from the zero value.
type RawOptions struct {
	Sourcemap *bool `yaml:"sourcemap,omitempty"`
	// SourceMap is the deprecated spelling of Sourcemap.
	SourceMap      *bool          `yaml:"sourceMap,omitempty"`
	Cwd            *string        `yaml:"cwd,omitempty"`
	Debug          *bool          `yaml:"debug,omitempty"`
	Banner         *RawBanner     `yaml:"banner,omitempty"`
	ThirdParty     *RawThirdParty `yaml:"thirdParty,omitempty"`
	ThirdPartyDirs []string       `yaml:"thirdPartyDirs,omitempty"`
}

// RawBanner accepts either a template string or a mapping.
type RawBanner struct {
	Content      *string `yaml:"content,omitempty"`
	File         *string `yaml:"file,omitempty"`
	Encoding     *string `yaml:"encoding,omitempty"`
	CommentStyle *string `yaml:"commentStyle,omitempty"`
}

// UnmarshalYAML lets "banner: some text" stand for {content: some text}.
func (b *RawBanner) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		s := n.Value
		*b = RawBanner{Content: &s}
		return nil
	}
	type plain RawBanner
	var p plain
	if err := n.Decode(&p); err != nil {
		return err
	}
	*b = RawBanner(p)
	return nil
}

// RawAllow is the license allow policy of the summary.
type RawAllow struct {
	Licenses         []string `yaml:"licenses,omitempty"`
	FailOnUnlicensed *bool    `yaml:"failOnUnlicensed,omitempty"`
	FailOnViolation  *bool    `yaml:"failOnViolation,omitempty"`
}

// RawThirdParty accepts either an output path or a mapping.
type RawThirdParty struct {
	Output         *string   `yaml:"output,omitempty"`
	Format         *string   `yaml:"format,omitempty"`
	GroupByLicense *bool     `yaml:"groupByLicense,omitempty"`
	IncludePrivate *bool     `yaml:"includePrivate,omitempty"`
	EmitEmpty      *bool     `yaml:"emitEmpty,omitempty"`
	Encoding       *string   `yaml:"encoding,omitempty"`
	Template       *string   `yaml:"template,omitempty"`
	Allow          *RawAllow `yaml:"allow,omitempty"`
}

// UnmarshalYAML lets "thirdParty: path" stand for {output: path}.
func (t *RawThirdParty) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		s := n.Value
		*t = RawThirdParty{Output: &s}
		return nil
	}
	type plain RawThirdParty
	var p plain
	if err := n.Decode(&p); err != nil {
		return err
	}
	*t = RawThirdParty(p)
	return nil
}

// Overlay returns base with every field set in over replacing it. Nested
// banner and thirdParty blocks are replaced whole.
func Overlay(base, over RawOptions) RawOptions {
	out := base
	if over.Sourcemap != nil {
		out.Sourcemap = over.Sourcemap
	}
	if over.SourceMap != nil {
		out.SourceMap = over.SourceMap
	}
	if over.Cwd != nil {
		out.Cwd = over.Cwd
	}
	if over.Debug != nil {
		out.Debug = over.Debug
	}
	if over.Banner != nil {
		out.Banner = over.Banner
	}
	if over.ThirdParty != nil {
		out.ThirdParty = over.ThirdParty
	}
	if over.ThirdPartyDirs != nil {
		out.ThirdPartyDirs = over.ThirdPartyDirs
	}
	return out
}

// LoadFile reads a YAML options file.
func LoadFile(path string) (RawOptions, error) {
	var cfg RawOptions
	b, err := os.ReadFile(path) //nolint:gosec // config path is chosen by the user
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, zerr.With(zerr.Wrap(ErrConfig, err.Error()), "file", path)
	}
	return cfg, nil
}

// LocalNames are the project-level file names LoadLocal looks for, in order.
var LocalNames = []string{".licensebanner.yml", ".licensebanner.yaml", "licensebanner.yml", "licensebanner.yaml"}

// LoadLocal searches root for a project config file.
func LoadLocal(root string) (RawOptions, error) {
	for _, name := range LocalNames {
		p := filepath.Join(root, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return RawOptions{}, zerr.With(zerr.Wrap(ErrNoConfig, ""), "root", root)
}

// LoadGlobal loads licensebanner/config.yml from the XDG config directory,
// falling back to ~/.config.
func LoadGlobal() (RawOptions, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return RawOptions{}, zerr.With(zerr.Wrap(ErrNoConfig, ""), "reason", "no config dir")
	}
	p := filepath.Join(base, "licensebanner", "config.yml")
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return RawOptions{}, zerr.With(zerr.Wrap(ErrNoConfig, ""), "file", p)
}
