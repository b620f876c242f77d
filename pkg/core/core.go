package core

import (
	"context"

	"github.com/redactyl/licensebanner/internal/config"
	"github.com/redactyl/licensebanner/internal/diag"
	"github.com/redactyl/licensebanner/internal/driver"
	"github.com/redactyl/licensebanner/internal/engine"
	"github.com/redactyl/licensebanner/internal/types"
)

// Re-export selected internal types as a stable public API surface.
// These are type aliases so external consumers can depend on a stable path.
type (
	Options       = config.RawOptions
	RawBanner     = config.RawBanner
	RawThirdParty = config.RawThirdParty
	Dependency    = types.Dependency
	Plugin        = engine.Plugin
	ChunkMeta     = engine.ChunkMeta
	OutputOptions = engine.OutputOptions
	Option        = engine.Option
	Sink          = diag.Sink
	BuildConfig   = driver.Config
	BuildResult   = driver.Result
)

// Name is the plugin name hosts register.
const Name = engine.Name

// New returns a plugin for one build. Warnings go to sink, which may be nil.
func New(opts Options, sink Sink, options ...Option) (Plugin, error) {
	e, err := engine.New(opts, sink, options...)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Build runs a complete load, render and generate cycle over a project on
// disk and returns the dependencies it found.
func Build(ctx context.Context, opts Options, cfg BuildConfig, sink Sink, options ...Option) (BuildResult, []Dependency, error) {
	if opts.Cwd == nil && cfg.Root != "" {
		root := cfg.Root
		opts.Cwd = &root
	}
	e, err := engine.New(opts, sink, options...)
	if err != nil {
		return BuildResult{}, nil, err
	}
	res, err := driver.Run(ctx, e, cfg)
	return res, e.Dependencies(), err
}

// WithBannerFunc renders banners with f instead of a template.
var WithBannerFunc = engine.WithBannerFunc
