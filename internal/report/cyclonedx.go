package report

import (
	"encoding/json"
	"io"

	"github.com/github/go-spdx/v2/spdxexp"
	"github.com/redactyl/licensebanner/internal/types"
)

type cdxBOM struct {
	BOMFormat   string         `json:"bomFormat"`
	SpecVersion string         `json:"specVersion"`
	Version     int            `json:"version"`
	Metadata    cdxMetadata    `json:"metadata"`
	Components  []cdxComponent `json:"components"`
}

type cdxMetadata struct {
	Tools []cdxTool `json:"tools"`
}

type cdxTool struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

type cdxComponent struct {
	Type        string          `json:"type"`
	BOMRef      string          `json:"bom-ref,omitempty"`
	Name        string          `json:"name"`
	Version     string          `json:"version,omitempty"`
	Author      string          `json:"author,omitempty"`
	Description string          `json:"description,omitempty"`
	PURL        string          `json:"purl,omitempty"`
	Licenses    []cdxLicenseRef `json:"licenses,omitempty"`
	ExtRefs     []cdxExtRef     `json:"externalReferences,omitempty"`
}

type cdxLicenseRef struct {
	License    *cdxLicense `json:"license,omitempty"`
	Expression string      `json:"expression,omitempty"`
}

type cdxLicense struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

type cdxExtRef struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

func cdxLicenses(d types.Dependency) []cdxLicenseRef {
	switch len(d.Licenses) {
	case 0:
		return nil
	case 1:
		l := d.Licenses[0]
		if ok, _ := spdxexp.ValidateLicenses([]string{l}); ok {
			return []cdxLicenseRef{{License: &cdxLicense{ID: l}}}
		}
		return []cdxLicenseRef{{License: &cdxLicense{Name: l}}}
	}
	if ok, _ := spdxexp.ValidateLicenses(d.Licenses); ok {
		return []cdxLicenseRef{{Expression: d.License()}}
	}
	out := make([]cdxLicenseRef, 0, len(d.Licenses))
	for _, l := range d.Licenses {
		out = append(out, cdxLicenseRef{License: &cdxLicense{Name: l}})
	}
	return out
}

// WriteCycloneDX writes deps as a CycloneDX 1.4 JSON document. The output
// carries no timestamp or serial number so equal inputs give equal bytes.
func WriteCycloneDX(w io.Writer, deps []types.Dependency, toolVersion string) error {
	bom := cdxBOM{
		BOMFormat:   "CycloneDX",
		SpecVersion: "1.4",
		Version:     1,
		Metadata:    cdxMetadata{Tools: []cdxTool{{Name: "licensebanner", Version: toolVersion}}},
		Components:  make([]cdxComponent, 0, len(deps)),
	}
	for _, d := range deps {
		c := cdxComponent{
			Type:        "library",
			BOMRef:      d.PURL,
			Name:        d.Name,
			Version:     d.Version,
			Author:      d.Author,
			Description: d.Description,
			PURL:        d.PURL,
			Licenses:    cdxLicenses(d),
		}
		if d.Repository != "" {
			c.ExtRefs = append(c.ExtRefs, cdxExtRef{Type: "vcs", URL: d.Repository})
		}
		if d.Homepage != "" {
			c.ExtRefs = append(c.ExtRefs, cdxExtRef{Type: "website", URL: d.Homepage})
		}
		bom.Components = append(bom.Components, c)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(bom)
}
