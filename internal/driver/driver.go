// Package driver plays the build host for the command line: it feeds module
// paths to the engine, stamps already built chunks with the banner and
// writes the summary the engine hands back.
package driver

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	doublestar "github.com/bmatcuk/doublestar/v4"
	"github.com/redactyl/licensebanner/internal/cache"
	"github.com/redactyl/licensebanner/internal/engine"
	"github.com/redactyl/licensebanner/internal/report"
	"github.com/redactyl/licensebanner/internal/types"
)

// DefaultChunkGlobs select built chunks when none are configured.
var DefaultChunkGlobs = []string{"dist/**/*.{js,mjs,cjs}"}

// Host is the engine surface the driver needs.
type Host interface {
	engine.Plugin
	Dependencies() []types.Dependency
}

// Config controls one driven build.
type Config struct {
	Root     string
	Include  []string
	Exclude  []string
	Metafile string
	Chunks   []string
	// Write persists stamped chunks, shifted maps and summaries. Without
	// it the run only reports what it would do.
	Write    bool
	NoCache  bool
	// Commit is recorded with the last-build summary.
	Commit   string
	Progress func()
}

// ChunkResult describes what happened to one chunk.
type ChunkResult struct {
	Path       string
	Lines      int
	Skipped    bool
	MapWritten bool
}

// Result summarizes a driven build.
type Result struct {
	Modules   int
	Chunks    []ChunkResult
	Artifacts []report.Artifact
	Duration  time.Duration
}

// Run drives h through load, render and generate in host order. Loads all
// complete before the first render.
func Run(ctx context.Context, h Host, cfg Config) (Result, error) {
	start := time.Now()
	var res Result
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return res, err
	}
	chunkGlobs := cfg.Chunks
	if len(chunkGlobs) == 0 {
		chunkGlobs = DefaultChunkGlobs
	}

	load := func(rel string) {
		h.OnModuleLoad(filepath.Join(root, filepath.FromSlash(rel)))
		res.Modules++
		if cfg.Progress != nil {
			cfg.Progress()
		}
	}
	if cfg.Metafile != "" {
		mf := cfg.Metafile
		if !filepath.IsAbs(mf) {
			mf = filepath.Join(root, mf)
		}
		inputs, err := ReadMetafile(mf)
		if err != nil {
			return res, err
		}
		for _, rel := range inputs {
			load(rel)
		}
	} else {
		exclude := append(slices.Clone(cfg.Exclude), chunkGlobs...)
		if err := Walk(ctx, root, cfg.Include, exclude, load); err != nil {
			return res, err
		}
	}

	db := cache.DB{Entries: map[string]string{}}
	if !cfg.NoCache {
		db, _ = cache.Load(root)
	}
	chunks, err := globFiles(root, chunkGlobs)
	if err != nil {
		return res, err
	}
	for _, rel := range chunks {
		if ctx != nil && ctx.Err() != nil {
			return res, ctx.Err()
		}
		cr, err := renderChunk(h, root, rel, db, cfg.Write)
		if err != nil {
			return res, err
		}
		res.Chunks = append(res.Chunks, cr)
	}

	arts, err := h.OnBundleGenerate()
	if err != nil {
		return res, err
	}
	res.Artifacts = arts
	var written []string
	if cfg.Write {
		for _, a := range arts {
			if err := os.MkdirAll(filepath.Dir(a.Path), 0o755); err != nil {
				return res, err
			}
			if err := os.WriteFile(a.Path, a.Content, 0o644); err != nil { //nolint:gosec // summaries are public
				return res, err
			}
			written = append(written, a.Path)
		}
		if !cfg.NoCache {
			_ = cache.Save(root, db)
			_ = cache.SaveSummary(root, cfg.Commit, h.Dependencies(), written)
		}
	}
	res.Duration = time.Since(start)
	return res, nil
}

func renderChunk(h Host, root, rel string, db cache.DB, write bool) (ChunkResult, error) {
	cr := ChunkResult{Path: rel}
	p := filepath.Join(root, filepath.FromSlash(rel))
	code, err := os.ReadFile(p) //nolint:gosec // chunk paths come from the output globs
	if err != nil {
		return cr, err
	}
	if db.Stamped(rel, code) {
		cr.Skipped = true
		return cr, nil
	}
	mapPath := p + ".map"
	srcMap, err := os.ReadFile(mapPath) //nolint:gosec // sibling of a chunk
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cr, err
	}

	out, err := h.OnChunkRender(string(code), engine.ChunkMeta{FileName: rel}, engine.OutputOptions{Map: srcMap})
	if err != nil {
		return cr, err
	}
	cr.Lines = out.Lines
	if !write {
		return cr, nil
	}
	if err := os.WriteFile(p, []byte(out.Code), 0o644); err != nil { //nolint:gosec // build output
		return cr, err
	}
	db.Record(rel, []byte(out.Code))
	if len(srcMap) > 0 && out.Map != nil {
		if err := os.WriteFile(mapPath, out.Map, 0o644); err != nil { //nolint:gosec // build output
			return cr, err
		}
		cr.MapWritten = true
	}
	return cr, nil
}

func globFiles(root string, globs []string) ([]string, error) {
	fsys := os.DirFS(root)
	seen := map[string]bool{}
	var out []string
	for _, g := range globs {
		matches, err := doublestar.Glob(fsys, g, doublestar.WithFilesOnly())
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	slices.Sort(out)
	return out, nil
}
