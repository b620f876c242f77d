package engine

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/redactyl/licensebanner/internal/banner"
	"github.com/redactyl/licensebanner/internal/config"
	"github.com/redactyl/licensebanner/internal/diag"
	"github.com/redactyl/licensebanner/internal/manifest"
	"github.com/redactyl/licensebanner/internal/report"
	"github.com/redactyl/licensebanner/internal/scanner"
	"github.com/redactyl/licensebanner/internal/store"
	"github.com/redactyl/licensebanner/internal/types"
	"go.trai.ch/zerr"
)

// Name identifies the plugin to hosts.
const Name = "license"

// LogPrefix starts every option warning sent to the sink.
const LogPrefix = "[" + Name + "]"

// ChunkMeta describes the chunk being rendered.
type ChunkMeta struct {
	FileName string
	IsEntry  bool
	Modules  []string
}

// OutputOptions are the host's per-output settings for a chunk.
type OutputOptions struct {
	// Sourcemap is the host's own source-map switch; nil means enabled.
	Sourcemap *bool
	// Map is the chunk's current source map, if the host has one.
	Map []byte
}

// Plugin is the lifecycle surface a build driver calls.
type Plugin interface {
	OnModuleLoad(path string)
	OnChunkRender(code string, chunk ChunkMeta, out OutputOptions) (banner.Result, error)
	OnBundleGenerate() ([]report.Artifact, error)
}

// Option customizes an Engine beyond what YAML options can express.
type Option func(*settings)

type settings struct {
	bannerFunc  banner.Func
	pkg         *manifest.Manifest
	toolVersion string
}

// WithBannerFunc renders the banner with f instead of a template.
func WithBannerFunc(f banner.Func) Option {
	return func(s *settings) { s.bannerFunc = f }
}

// WithPkg sets the project manifest exposed to templates. By default
// package.json in the working directory is read.
func WithPkg(m *manifest.Manifest) Option {
	return func(s *settings) { s.pkg = m }
}

// WithToolVersion records v in machine-readable summaries.
func WithToolVersion(v string) Option {
	return func(s *settings) { s.toolVersion = v }
}

// Engine owns the dependency store of one build and wires the scanner,
// renderer and exporter to the lifecycle hooks. It is single-use and not
// safe for concurrent use.
type Engine struct {
	opts     config.Options
	sink     diag.Sink
	store    *store.Store
	scanner  *scanner.Scanner
	renderer *banner.Renderer
	exporter *report.Exporter
	exported bool
}

var _ Plugin = (*Engine)(nil)

// New normalizes and validates raw, reports option warnings to sink and
// builds the components. Errors wrap config.ErrConfig or banner.ErrTemplate.
func New(raw config.RawOptions, sink diag.Sink, options ...Option) (*Engine, error) {
	if sink == nil {
		sink = diag.Discard{}
	}
	var set settings
	for _, o := range options {
		o(&set)
	}

	opts, warnings := config.Normalize(raw)
	for _, w := range warnings {
		sink.Warn(LogPrefix + " " + w)
	}
	if err := config.Validate(opts); err != nil {
		return nil, err
	}
	if opts.Cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		opts.Cwd = wd
	}

	st := store.New()
	e := &Engine{
		opts:  opts,
		sink:  sink,
		store: st,
		scanner: scanner.New(scanner.Config{
			Cwd:            opts.Cwd,
			ThirdPartyDirs: opts.ThirdPartyDirs,
			Debug:          opts.Debug,
		}, st, sink),
	}

	if opts.Banner != nil || set.bannerFunc != nil {
		bc := banner.Config{Func: set.bannerFunc, Cwd: opts.Cwd, Pkg: set.pkg}
		if b := opts.Banner; b != nil {
			bc.Content = b.Content
			bc.File = b.File
			bc.Encoding = b.Encoding
			bc.CommentStyle, _ = banner.ParseCommentStyle(b.CommentStyle)
		}
		if bc.Pkg == nil {
			bc.Pkg = e.projectManifest()
		}
		r, err := banner.New(bc, st)
		if errors.Is(err, banner.ErrBannerFile) {
			return nil, zerr.Wrap(config.ErrConfig, err.Error())
		}
		if err != nil {
			return nil, err
		}
		e.renderer = r
	}

	if t := opts.ThirdParty; t != nil {
		format, _ := report.ParseFormat(t.Format)
		out := t.Output
		if !filepath.IsAbs(out) {
			out = filepath.Join(opts.Cwd, out)
		}
		x, err := report.NewExporter(report.ExportConfig{
			Output:         out,
			Format:         format,
			GroupByLicense: t.GroupByLicense,
			IncludePrivate: t.IncludePrivate,
			EmitEmpty:      t.EmitEmpty,
			Encoding:       t.Encoding,
			Template:       t.Template,
			Allow:          t.Allow,
			ToolVersion:    set.toolVersion,
		})
		if err != nil {
			return nil, zerr.Wrap(config.ErrConfig, err.Error())
		}
		e.exporter = x
	}
	return e, nil
}

func (e *Engine) projectManifest() *manifest.Manifest {
	m, err := manifest.Read(filepath.Join(e.opts.Cwd, manifest.FileName))
	if err != nil {
		if e.opts.Debug {
			e.sink.Debug("no project manifest", "cwd", e.opts.Cwd, "err", err)
		}
		return nil
	}
	return m
}

// Options returns the effective options.
func (e *Engine) Options() config.Options {
	return e.opts
}

// Dependencies returns the collected dependencies sorted by name and version.
func (e *Engine) Dependencies() []types.Dependency {
	out := make([]types.Dependency, 0, e.store.Len())
	for d := range e.store.Sorted() {
		out = append(out, d)
	}
	return out
}

// LateWrites counts module loads seen after rendering started. Hosts are
// expected to finish loading first, so anything but zero is a host bug.
func (e *Engine) LateWrites() int {
	return e.store.LateWrites()
}

// OnModuleLoad records the package owning path, if it is third-party.
func (e *Engine) OnModuleLoad(path string) {
	e.scanner.Scan(path)
}

// OnChunkRender prepends the banner to code. The first call freezes the
// store. Only template errors are returned; a source map that cannot be
// shifted is dropped with a warning.
func (e *Engine) OnChunkRender(code string, chunk ChunkMeta, out OutputOptions) (banner.Result, error) {
	if !e.store.Frozen() {
		e.store.Freeze()
	}
	preserve := e.opts.Sourcemap && (out.Sourcemap == nil || *out.Sourcemap)
	if e.renderer == nil {
		res := banner.Result{Code: code}
		if preserve {
			res.Map = out.Map
		}
		return res, nil
	}

	res, err := e.renderer.Render(code, banner.Input{PreserveSourceMap: preserve, Map: out.Map})
	if errors.Is(err, banner.ErrSourceMap) {
		e.sink.Warn("cannot shift source map, dropping it", "chunk", chunk.FileName, "err", err)
		return res, nil
	}
	if err != nil {
		return banner.Result{}, err
	}
	if e.opts.Debug {
		e.sink.Debug("banner added", "chunk", chunk.FileName, "lines", res.Lines, "dependencies", e.store.Len())
	}
	return res, nil
}

// OnBundleGenerate exports the summary once. Later calls return nothing.
// Policy violations are warnings unless a fail flag is set, in which case
// report.ErrPolicyViolation is returned.
func (e *Engine) OnBundleGenerate() ([]report.Artifact, error) {
	if e.exported {
		return nil, nil
	}
	e.exported = true
	e.store.Freeze()
	if e.exporter == nil {
		return nil, nil
	}

	art, err := e.exporter.Export(e.store.Sorted())
	if art != nil {
		for _, v := range art.Violations {
			e.sink.Warn("license policy violation", "dependency", v.Key, "license", v.License, "kind", string(v.Kind))
		}
	}
	if err != nil {
		return nil, err
	}
	if art == nil {
		if e.opts.Debug {
			e.sink.Debug("no third-party dependencies, summary skipped")
		}
		return nil, nil
	}
	return []report.Artifact{*art}, nil
}
