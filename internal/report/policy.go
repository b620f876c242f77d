package report

import (
	"fmt"
	"strings"

	"github.com/github/go-spdx/v2/spdxexp"
	"github.com/redactyl/licensebanner/internal/types"
	"go.trai.ch/zerr"
)

// ErrPolicyViolation is returned when a fail flag of the allow policy trips.
var ErrPolicyViolation = zerr.New("license policy violation")

// Policy restricts the licenses third-party code may carry. An empty
// Licenses list allows everything.
type Policy struct {
	Licenses         []string `json:"licenses,omitempty"`
	FailOnUnlicensed bool     `json:"failOnUnlicensed,omitempty"`
	FailOnViolation  bool     `json:"failOnViolation,omitempty"`
}

// ViolationKind tells unlicensed packages from disallowed ones.
type ViolationKind string

const (
	Unlicensed ViolationKind = "unlicensed"
	Disallowed ViolationKind = "disallowed"
)

// Violation is a dependency the policy rejects.
type Violation struct {
	Key     string
	License string
	Kind    ViolationKind
	Reason  string
}

func (v Violation) String() string {
	if v.Kind == Unlicensed {
		return v.Key + ": no license"
	}
	s := fmt.Sprintf("%s: %s is not allowed", v.Key, v.License)
	if v.Reason != "" {
		s += " (" + v.Reason + ")"
	}
	return s
}

func unlicensed(d types.Dependency) bool {
	if len(d.Licenses) == 0 {
		return true
	}
	for _, l := range d.Licenses {
		if strings.EqualFold(l, "UNLICENSED") {
			return true
		}
	}
	return false
}

// Check returns the violations among deps, in input order. Unlicensed
// packages are always reported; disallowed ones only with an allow list.
func (p Policy) Check(deps []types.Dependency) []Violation {
	var out []Violation
	for _, d := range deps {
		if unlicensed(d) {
			out = append(out, Violation{Key: d.Key(), Kind: Unlicensed})
			continue
		}
		if len(p.Licenses) == 0 {
			continue
		}
		expr := d.License()
		ok, err := spdxexp.Satisfies(expr, p.Licenses)
		if err != nil {
			out = append(out, Violation{Key: d.Key(), License: expr, Kind: Disallowed, Reason: "not a valid SPDX expression"})
			continue
		}
		if !ok {
			out = append(out, Violation{Key: d.Key(), License: expr, Kind: Disallowed})
		}
	}
	return out
}

// ShouldFail reports whether vs must abort the export.
func (p Policy) ShouldFail(vs []Violation) bool {
	for _, v := range vs {
		switch v.Kind {
		case Unlicensed:
			if p.FailOnUnlicensed {
				return true
			}
		case Disallowed:
			if p.FailOnViolation {
				return true
			}
		}
	}
	return false
}
