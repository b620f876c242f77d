package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

func writeTemp(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return p
}

func TestLoadFile_Basic(t *testing.T) {
	dir := t.TempDir()
	p := writeTemp(t, dir, "licensebanner.yaml", `
sourcemap: false
debug: true
banner:
  file: BANNER.txt
  encoding: latin1
  commentStyle: slash
thirdParty:
  output: dist/THIRD_PARTY.json
  format: json
  groupByLicense: true
  allow:
    licenses: [MIT, ISC]
    failOnViolation: true
thirdPartyDirs: ["vendor/**"]
`)
	cfg, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Sourcemap == nil || *cfg.Sourcemap {
		t.Fatalf("expected sourcemap=false, got %#v", cfg.Sourcemap)
	}
	if cfg.Banner == nil || cfg.Banner.File == nil || *cfg.Banner.File != "BANNER.txt" {
		t.Fatalf("expected banner file, got %#v", cfg.Banner)
	}
	if cfg.ThirdParty == nil || cfg.ThirdParty.Allow == nil || len(cfg.ThirdParty.Allow.Licenses) != 2 {
		t.Fatalf("expected allow list, got %#v", cfg.ThirdParty)
	}
	if len(cfg.ThirdPartyDirs) != 1 || cfg.ThirdPartyDirs[0] != "vendor/**" {
		t.Fatalf("expected thirdPartyDirs, got %#v", cfg.ThirdPartyDirs)
	}
}

func TestLoadFile_Shorthands(t *testing.T) {
	dir := t.TempDir()
	p := writeTemp(t, dir, "licensebanner.yml", "banner: \"{{count}} dependencies\"\nthirdParty: THIRD_PARTY.txt\n")
	cfg, err := LoadFile(p)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Banner == nil || cfg.Banner.Content == nil || *cfg.Banner.Content != "{{count}} dependencies" {
		t.Fatalf("expected banner content shorthand, got %#v", cfg.Banner)
	}
	if cfg.ThirdParty == nil || cfg.ThirdParty.Output == nil || *cfg.ThirdParty.Output != "THIRD_PARTY.txt" {
		t.Fatalf("expected output shorthand, got %#v", cfg.ThirdParty)
	}
}

func TestLoadFile_BothSourcemapSpellings(t *testing.T) {
	var cfg RawOptions
	if err := yaml.Unmarshal([]byte("sourcemap: true\nsourceMap: false\n"), &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if cfg.Sourcemap == nil || cfg.SourceMap == nil {
		t.Fatalf("expected both keys decoded separately, got %#v / %#v", cfg.Sourcemap, cfg.SourceMap)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	dir := t.TempDir()
	p := writeTemp(t, dir, "licensebanner.yml", "banner: [1, 2\n")
	if _, err := LoadFile(p); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestLoadLocal_PrefersDotfile(t *testing.T) {
	dir := t.TempDir()
	// place both, expect the dotfile to be picked first by search order
	writeTemp(t, dir, "licensebanner.yaml", "debug: false\n")
	writeTemp(t, dir, ".licensebanner.yaml", "debug: true\n")
	cfg, err := LoadLocal(dir)
	if err != nil {
		t.Fatalf("LoadLocal: %v", err)
	}
	if cfg.Debug == nil || !*cfg.Debug {
		t.Fatalf("expected debug=true from .licensebanner.yaml, got %#v", cfg.Debug)
	}
}

func TestLoadLocal_NoConfig(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadLocal(dir)
	if !errors.Is(err, ErrNoConfig) {
		t.Fatalf("expected ErrNoConfig when no local config exists, got %v", err)
	}
}

func TestLoadGlobal_XDG_Config(t *testing.T) {
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, "licensebanner")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeTemp(t, cfgDir, "config.yml", "thirdPartyDirs: [\"deps/**\"]\n")
	t.Setenv("XDG_CONFIG_HOME", dir)
	cfg, err := LoadGlobal()
	if err != nil {
		t.Fatalf("LoadGlobal: %v", err)
	}
	if len(cfg.ThirdPartyDirs) != 1 || cfg.ThirdPartyDirs[0] != "deps/**" {
		t.Fatalf("expected thirdPartyDirs from global config, got %#v", cfg.ThirdPartyDirs)
	}
}

func TestLoadGlobal_NoConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	// Simulate no HOME as well by clearing HOME; LoadGlobal should error
	t.Setenv("HOME", "")
	if _, err := LoadGlobal(); !errors.Is(err, ErrNoConfig) {
		t.Fatalf("expected ErrNoConfig when no global config dir exists, got %v", err)
	}
}

func TestLoadGlobal_MissingFileKeepsPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	_, err := LoadGlobal()
	if !errors.Is(err, ErrNoConfig) {
		t.Fatalf("expected ErrNoConfig, got %v", err)
	}
	var ze *zerr.Error
	if !errors.As(err, &ze) {
		t.Fatalf("expected a zerr error, got %T", err)
	}
	if got := ze.Metadata()["file"]; got != filepath.Join(dir, "licensebanner", "config.yml") {
		t.Fatalf("unexpected file metadata %v", got)
	}
}

func TestOverlay(t *testing.T) {
	yes, no := true, false
	out := "a.txt"
	base := RawOptions{Sourcemap: &yes, Debug: &yes, ThirdParty: &RawThirdParty{Output: &out}}
	over := RawOptions{Sourcemap: &no}
	got := Overlay(base, over)
	if *got.Sourcemap {
		t.Fatal("expected overlay to replace sourcemap")
	}
	if got.Debug == nil || !*got.Debug || got.ThirdParty == nil {
		t.Fatalf("expected unset fields to keep base values, got %#v", got)
	}
}
