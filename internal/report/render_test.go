package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/redactyl/licensebanner/internal/types"
)

func sample() []types.Dependency {
	return []types.Dependency{
		{Name: "left-pad", Version: "1.3.0", Licenses: []string{"WTFPL"}, Author: "azer", LicenseText: "do what you want\n"},
		{Name: "lodash", Version: "4.17.21", Licenses: []string{"MIT"}, Repository: "https://github.com/lodash/lodash",
			Contributors: []types.Person{{Name: "John-David Dalton", Email: "jd@example.com"}}},
		{Name: "mystery", Version: "0.0.1"},
	}
}

func TestTextList_Blocks(t *testing.T) {
	out := textList(sample())
	if got := strings.Count(out, "\n\n---\n\n"); got != 2 {
		t.Fatalf("expected 2 separators, got %d in %q", got, out)
	}
	for _, want := range []string{
		"Name: left-pad\nVersion: 1.3.0\nLicense: WTFPL\nPrivate: false\nAuthor: azer\nLicense Copyright:\n===\n\ndo what you want",
		"Repository: https://github.com/lodash/lodash",
		"Contributors:\n  John-David Dalton <jd@example.com>",
		"Name: mystery\nVersion: 0.0.1\nLicense: \nPrivate: false",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output; got: %q", want, out)
		}
	}
}

func TestTextGrouped_UnknownLast(t *testing.T) {
	out := textGrouped(sample())
	mit := strings.Index(out, "License: MIT (1)")
	wtf := strings.Index(out, "License: WTFPL (1)")
	unk := strings.Index(out, "License: Unknown (1)")
	if mit < 0 || wtf < 0 || unk < 0 {
		t.Fatalf("missing group headers; got: %q", out)
	}
	if !(mit < wtf && wtf < unk) {
		t.Fatalf("groups out of order; got: %q", out)
	}
}

func TestWriteTable_ListsDependencies(t *testing.T) {
	var buf bytes.Buffer
	if err := writeTable(&buf, sample()); err != nil {
		t.Fatalf("writeTable: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"left-pad", "4.17.21", "WTFPL", UnknownLicense} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in table; got: %q", want, out)
		}
	}
}

func TestPrintSummary_NoDependencies(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, nil, SummaryOptions{NoColor: true})
	if !strings.Contains(buf.String(), "No third-party dependencies found") {
		t.Fatalf("expected friendly empty message; got: %q", buf.String())
	}
}

func TestPrintSummary_Grouped(t *testing.T) {
	var buf bytes.Buffer
	vs := []Violation{{Key: "mystery@0.0.1", Kind: Unlicensed}}
	PrintSummary(&buf, sample(), SummaryOptions{NoColor: true, Violations: vs})
	out := buf.String()
	for _, want := range []string{"Dependencies: 3", "MIT (1)", "  lodash 4.17.21", "Policy violations: 1", "mystery@0.0.1: no license", "Licenses: 2 (unknown: 1)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in summary; got: %q", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no ANSI escapes with NoColor; got: %q", out)
	}
}
