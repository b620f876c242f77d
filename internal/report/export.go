// Package report turns the collected dependencies into the third-party
// summary written next to the bundle, and prints human summaries for the CLI.
package report

import (
	"bytes"
	"encoding/json"
	"iter"
	"slices"
	"strings"
	"text/template"

	"github.com/redactyl/licensebanner/internal/charset"
	"github.com/redactyl/licensebanner/internal/types"
	"go.trai.ch/zerr"
)

// Format names an export layout.
type Format string

const (
	FormatText      Format = "text"
	FormatJSON      Format = "json"
	FormatTable     Format = "table"
	FormatCycloneDX Format = "cyclonedx"
	FormatTemplate  Format = "template"
)

// EmptyText is written instead of a summary when nothing was collected and
// empty exports are requested.
const EmptyText = "No third parties dependencies"

// UnknownLicense labels the group of dependencies without license info.
const UnknownLicense = "Unknown"

var (
	// ErrFormat is returned for unknown format names.
	ErrFormat = zerr.New("unknown export format")
	// ErrExport is returned when the summary cannot be produced.
	ErrExport = zerr.New("export failed")
)

// ParseFormat validates a format name; "" means text.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatTable, FormatCycloneDX, FormatTemplate:
		return Format(s), nil
	}
	return "", zerr.With(zerr.Wrap(ErrFormat, ""), "format", s)
}

// ExportConfig controls one summary export.
type ExportConfig struct {
	Output         string
	Format         Format
	GroupByLicense bool
	IncludePrivate bool
	EmitEmpty      bool
	Encoding       string
	// Template is used with FormatTemplate.
	Template string
	Allow    Policy
	// ToolVersion is recorded in CycloneDX metadata.
	ToolVersion string
}

// Artifact is a rendered summary ready to be written to Path.
type Artifact struct {
	Path       string
	Content    []byte
	Count      int
	Violations []Violation
}

// Group is the set of dependencies sharing one license expression.
type Group struct {
	License      string
	Dependencies []types.Dependency
}

// TemplateData is passed to summary templates.
type TemplateData struct {
	Count        int
	Dependencies []types.Dependency
	Groups       []Group
}

// Exporter renders summaries. It never mutates what it is given.
type Exporter struct {
	cfg  ExportConfig
	tmpl *template.Template
}

// NewExporter validates cfg and parses the summary template, if any.
func NewExporter(cfg ExportConfig) (*Exporter, error) {
	f, err := ParseFormat(string(cfg.Format))
	if err != nil {
		return nil, err
	}
	cfg.Format = f
	if err := charset.Validate(cfg.Encoding); err != nil {
		return nil, err
	}
	e := &Exporter{cfg: cfg}
	if f == FormatTemplate {
		if strings.TrimSpace(cfg.Template) == "" {
			return nil, zerr.With(zerr.Wrap(ErrExport, ""), "reason", "template format needs a template")
		}
		e.tmpl, err = template.New("summary").Parse(cfg.Template)
		if err != nil {
			return nil, zerr.Wrap(ErrExport, err.Error())
		}
	}
	return e, nil
}

// Export renders deps, in the order given, into an artifact. It returns nil
// when nothing is left to report and empty exports are disabled. A policy
// violation with a fail flag set yields ErrPolicyViolation along with the
// artifact, so the caller can still show what was found.
func (e *Exporter) Export(deps iter.Seq[types.Dependency]) (*Artifact, error) {
	var list []types.Dependency
	for d := range deps {
		if d.Private && !e.cfg.IncludePrivate {
			continue
		}
		list = append(list, d)
	}
	if len(list) == 0 && !e.cfg.EmitEmpty {
		return nil, nil
	}

	var body []byte
	var err error
	if len(list) == 0 {
		body = []byte(EmptyText)
	} else {
		body, err = e.render(list)
		if err != nil {
			return nil, err
		}
	}
	content, err := charset.Encode(e.cfg.Encoding, string(body))
	if err != nil {
		return nil, zerr.Wrap(ErrExport, err.Error())
	}

	art := &Artifact{Path: e.cfg.Output, Content: content, Count: len(list)}
	art.Violations = e.cfg.Allow.Check(list)
	if e.cfg.Allow.ShouldFail(art.Violations) {
		return art, zerr.With(zerr.Wrap(ErrPolicyViolation, ""), "violations", len(art.Violations))
	}
	return art, nil
}

func (e *Exporter) render(list []types.Dependency) ([]byte, error) {
	switch e.cfg.Format {
	case FormatJSON:
		return e.renderJSON(list)
	case FormatTable:
		var buf bytes.Buffer
		if err := writeTable(&buf, list); err != nil {
			return nil, zerr.Wrap(ErrExport, err.Error())
		}
		return buf.Bytes(), nil
	case FormatCycloneDX:
		var buf bytes.Buffer
		if err := WriteCycloneDX(&buf, list, e.cfg.ToolVersion); err != nil {
			return nil, zerr.Wrap(ErrExport, err.Error())
		}
		return buf.Bytes(), nil
	case FormatTemplate:
		var buf bytes.Buffer
		data := TemplateData{Count: len(list), Dependencies: list, Groups: GroupByLicense(list)}
		if err := e.tmpl.Execute(&buf, data); err != nil {
			return nil, zerr.Wrap(ErrExport, err.Error())
		}
		return buf.Bytes(), nil
	default:
		if e.cfg.GroupByLicense {
			return []byte(textGrouped(list)), nil
		}
		return []byte(textList(list)), nil
	}
}

func (e *Exporter) renderJSON(list []types.Dependency) ([]byte, error) {
	var v any = list
	if e.cfg.GroupByLicense {
		m := map[string][]types.Dependency{}
		for _, g := range GroupByLicense(list) {
			m[g.License] = g.Dependencies
		}
		v = m
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, zerr.Wrap(ErrExport, err.Error())
	}
	return b, nil
}

// GroupByLicense buckets deps by license expression. Groups are sorted by
// license with the unknown group last; members keep their relative order.
func GroupByLicense(deps []types.Dependency) []Group {
	idx := map[string]int{}
	var groups []Group
	for _, d := range deps {
		l := d.License()
		if l == "" {
			l = UnknownLicense
		}
		i, ok := idx[l]
		if !ok {
			i = len(groups)
			idx[l] = i
			groups = append(groups, Group{License: l})
		}
		groups[i].Dependencies = append(groups[i].Dependencies, d)
	}
	slices.SortStableFunc(groups, func(a, b Group) int {
		switch {
		case a.License == b.License:
			return 0
		case a.License == UnknownLicense:
			return 1
		case b.License == UnknownLicense:
			return -1
		}
		return strings.Compare(a.License, b.License)
	})
	return groups
}
