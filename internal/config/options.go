package config

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/github/go-spdx/v2/spdxexp"
	"github.com/redactyl/licensebanner/internal/banner"
	"github.com/redactyl/licensebanner/internal/charset"
	"github.com/redactyl/licensebanner/internal/report"
	"go.trai.ch/zerr"
)

// DeprecatedSourceMap is the warning emitted whenever the legacy key is used.
const DeprecatedSourceMap = "sourceMap has been deprecated, please use sourcemap instead."

// Options is the canonical, normalized option set.
type Options struct {
	Sourcemap      bool
	Cwd            string
	Debug          bool
	Banner         *BannerOptions
	ThirdParty     *ThirdPartyOptions
	ThirdPartyDirs []string
}

// BannerOptions configure the banner renderer. Content and File are
// mutually exclusive.
type BannerOptions struct {
	Content      string
	File         string
	Encoding     string
	CommentStyle string
}

// ThirdPartyOptions configure the summary export.
type ThirdPartyOptions struct {
	Output         string
	Format         string
	GroupByLicense bool
	IncludePrivate bool
	EmitEmpty      bool
	Encoding       string
	Template       string
	Allow          report.Policy
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func flag(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// Normalize maps raw options to their canonical form. When the legacy
// sourceMap key is present a deprecation warning is returned; the modern key
// wins when both are set. Normalize has no side effects.
func Normalize(raw RawOptions) (Options, []string) {
	var warnings []string
	sourcemap := raw.Sourcemap
	if raw.SourceMap != nil {
		warnings = append(warnings, DeprecatedSourceMap)
		if sourcemap == nil {
			sourcemap = raw.SourceMap
		}
	}

	opts := Options{
		Sourcemap: flag(sourcemap, true),
		Cwd:       str(raw.Cwd),
		Debug:     flag(raw.Debug, false),
	}
	if len(raw.ThirdPartyDirs) > 0 {
		opts.ThirdPartyDirs = append([]string(nil), raw.ThirdPartyDirs...)
	}
	if b := raw.Banner; b != nil {
		opts.Banner = &BannerOptions{
			Content:      str(b.Content),
			File:         str(b.File),
			Encoding:     str(b.Encoding),
			CommentStyle: str(b.CommentStyle),
		}
	}
	if t := raw.ThirdParty; t != nil {
		tp := &ThirdPartyOptions{
			Output:         str(t.Output),
			Format:         str(t.Format),
			GroupByLicense: flag(t.GroupByLicense, false),
			IncludePrivate: flag(t.IncludePrivate, false),
			EmitEmpty:      flag(t.EmitEmpty, false),
			Encoding:       str(t.Encoding),
			Template:       str(t.Template),
		}
		if a := t.Allow; a != nil {
			tp.Allow = report.Policy{
				Licenses:         append([]string(nil), a.Licenses...),
				FailOnUnlicensed: flag(a.FailOnUnlicensed, false),
				FailOnViolation:  flag(a.FailOnViolation, false),
			}
		}
		opts.ThirdParty = tp
	}
	return opts, warnings
}

func invalid(field, msg string) error {
	return zerr.With(zerr.Wrap(ErrConfig, field+": "+msg), "option", field)
}

// Validate checks normalized options. Every error wraps ErrConfig.
func Validate(opts Options) error {
	if b := opts.Banner; b != nil {
		if b.Content != "" && b.File != "" {
			return invalid("banner", "content and file are mutually exclusive")
		}
		if _, err := banner.ParseCommentStyle(b.CommentStyle); err != nil {
			return invalid("banner.commentStyle", err.Error())
		}
		if err := charset.Validate(b.Encoding); err != nil {
			return invalid("banner.encoding", err.Error())
		}
	}
	if t := opts.ThirdParty; t != nil {
		if strings.TrimSpace(t.Output) == "" {
			return invalid("thirdParty.output", "output path is required")
		}
		f, err := report.ParseFormat(t.Format)
		if err != nil {
			return invalid("thirdParty.format", err.Error())
		}
		if f == report.FormatTemplate && strings.TrimSpace(t.Template) == "" {
			return invalid("thirdParty.template", "template format needs a template")
		}
		if err := charset.Validate(t.Encoding); err != nil {
			return invalid("thirdParty.encoding", err.Error())
		}
		if len(t.Allow.Licenses) > 0 {
			if ok, bad := spdxexp.ValidateLicenses(t.Allow.Licenses); !ok {
				return invalid("thirdParty.allow.licenses", "not SPDX identifiers: "+strings.Join(bad, ", "))
			}
		}
	}
	for _, p := range opts.ThirdPartyDirs {
		if !doublestar.ValidatePattern(p) {
			return invalid("thirdPartyDirs", "bad pattern "+p)
		}
	}
	return nil
}

// Load normalizes and validates raw in one step.
func Load(raw RawOptions) (Options, []string, error) {
	opts, warnings := Normalize(raw)
	if err := Validate(opts); err != nil {
		return Options{}, warnings, err
	}
	return opts, warnings, nil
}
