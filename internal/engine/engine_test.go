package engine

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/redactyl/licensebanner/internal/banner"
	"github.com/redactyl/licensebanner/internal/config"
	"github.com/redactyl/licensebanner/internal/diag"
	"github.com/redactyl/licensebanner/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func writeFile(t *testing.T, root, rel, body string) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

// project lays out three installed packages and returns a module file of each.
func project(t *testing.T) (string, []string) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "package.json", `{"name":"my-app","version":"2.0.0"}`)
	var files []string
	for _, p := range []struct{ name, license string }{{"alpha", "MIT"}, {"beta", "ISC"}, {"gamma", "Apache-2.0"}} {
		writeFile(t, root, "node_modules/"+p.name+"/package.json",
			`{"name":"`+p.name+`","version":"1.0.0","license":"`+p.license+`"}`)
		files = append(files, writeFile(t, root, "node_modules/"+p.name+"/index.js", ""))
	}
	files = append(files, writeFile(t, root, "src/main.js", ""))
	return root, files
}

func TestNew_DeprecatedSourceMapWarnsOnce(t *testing.T) {
	rec := &diag.Recorder{}
	e, err := New(config.RawOptions{SourceMap: ptr(false), Cwd: ptr(t.TempDir())}, rec)
	require.NoError(t, err)
	assert.False(t, e.Options().Sourcemap)

	warns := rec.Warnings()
	require.Len(t, warns, 1)
	assert.Equal(t, "[license] sourceMap has been deprecated, please use sourcemap instead.", warns[0].Msg)
}

func TestNew_ModernSourcemapWins(t *testing.T) {
	rec := &diag.Recorder{}
	e, err := New(config.RawOptions{Sourcemap: ptr(true), SourceMap: ptr(false), Cwd: ptr(t.TempDir())}, rec)
	require.NoError(t, err)
	assert.True(t, e.Options().Sourcemap)
	assert.Len(t, rec.Warnings(), 1)
}

func TestNew_InvalidOptions(t *testing.T) {
	_, err := New(config.RawOptions{
		Cwd:    ptr(t.TempDir()),
		Banner: &config.RawBanner{Content: ptr("a"), File: ptr("b")},
	}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrConfig))
}

func TestNew_BadTemplate(t *testing.T) {
	_, err := New(config.RawOptions{Cwd: ptr(t.TempDir()), Banner: &config.RawBanner{Content: ptr("{{range}}")}}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, banner.ErrTemplate))
}

func TestNew_MissingBannerFileIsConfigError(t *testing.T) {
	_, err := New(config.RawOptions{Cwd: ptr(t.TempDir()), Banner: &config.RawBanner{File: ptr("missing.txt")}}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrConfig), "got %v", err)
	assert.Contains(t, err.Error(), "missing.txt")
}

func TestLifecycle_EndToEnd(t *testing.T) {
	root, files := project(t)
	rec := &diag.Recorder{}
	e, err := New(config.RawOptions{
		Cwd:        ptr(root),
		Banner:     &config.RawBanner{Content: ptr("{{.Pkg.Name}}: {{count}} dependencies")},
		ThirdParty: &config.RawThirdParty{Output: ptr("dist/THIRD_PARTY.txt"), GroupByLicense: ptr(true)},
	}, rec)
	require.NoError(t, err)

	for range 3 {
		for _, f := range files {
			e.OnModuleLoad(f)
		}
	}
	require.Len(t, e.Dependencies(), 3)

	res, err := e.OnChunkRender("export {};\n", ChunkMeta{FileName: "main.js", IsEntry: true}, OutputOptions{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Code, "/**\n * my-app: 3 dependencies\n */\n"))
	assert.Equal(t, "export {};\n", banner.Strip(res.Code, res.Lines))

	arts, err := e.OnBundleGenerate()
	require.NoError(t, err)
	require.Len(t, arts, 1)
	assert.Equal(t, filepath.Join(root, "dist", "THIRD_PARTY.txt"), arts[0].Path)
	assert.Equal(t, 3, arts[0].Count)
	assert.Contains(t, string(arts[0].Content), "License: Apache-2.0 (1)")

	again, err := e.OnBundleGenerate()
	require.NoError(t, err)
	assert.Nil(t, again, "export runs once")

	assert.Zero(t, e.LateWrites())
	assert.Empty(t, rec.Warnings())
}

func TestLifecycle_LateLoadIsCounted(t *testing.T) {
	root, files := project(t)
	e, err := New(config.RawOptions{Cwd: ptr(root), Banner: &config.RawBanner{Content: ptr("{{count}}")}}, nil)
	require.NoError(t, err)

	e.OnModuleLoad(files[0])
	_, err = e.OnChunkRender("x", ChunkMeta{}, OutputOptions{})
	require.NoError(t, err)
	e.OnModuleLoad(files[1])

	assert.Equal(t, 1, e.LateWrites())
}

func TestOnBundleGenerate_EmptyStoreEmitsNothing(t *testing.T) {
	e, err := New(config.RawOptions{Cwd: ptr(t.TempDir()), ThirdParty: &config.RawThirdParty{Output: ptr("out.txt")}}, nil)
	require.NoError(t, err)
	arts, err := e.OnBundleGenerate()
	require.NoError(t, err)
	assert.Empty(t, arts)
}

func TestOnBundleGenerate_PolicyFailure(t *testing.T) {
	root, files := project(t)
	rec := &diag.Recorder{}
	e, err := New(config.RawOptions{
		Cwd: ptr(root),
		ThirdParty: &config.RawThirdParty{
			Output: ptr("out.txt"),
			Allow:  &config.RawAllow{Licenses: []string{"MIT"}, FailOnViolation: ptr(true)},
		},
	}, rec)
	require.NoError(t, err)
	for _, f := range files {
		e.OnModuleLoad(f)
	}
	_, err = e.OnBundleGenerate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, report.ErrPolicyViolation))
	assert.Len(t, rec.Warnings(), 2)
}

func TestOnChunkRender_SourcemapSwitches(t *testing.T) {
	in := []byte(`{"version":3,"mappings":"AAAA"}`)
	cases := []struct {
		name      string
		option    *bool
		output    *bool
		wantShift bool
	}{
		{"defaults", nil, nil, true},
		{"plugin off", ptr(false), nil, false},
		{"output off", nil, ptr(false), false},
		{"both on", ptr(true), ptr(true), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e, err := New(config.RawOptions{Cwd: ptr(t.TempDir()), Sourcemap: tc.option, Banner: &config.RawBanner{Content: ptr("hi")}}, nil)
			require.NoError(t, err)
			res, err := e.OnChunkRender("x", ChunkMeta{}, OutputOptions{Sourcemap: tc.output, Map: in})
			require.NoError(t, err)
			if tc.wantShift {
				assert.JSONEq(t, `{"version":3,"mappings":";;;AAAA"}`, string(res.Map))
			} else {
				assert.Nil(t, res.Map)
			}
		})
	}
}

func TestOnChunkRender_BadMapIsDroppedWithWarning(t *testing.T) {
	rec := &diag.Recorder{}
	e, err := New(config.RawOptions{Cwd: ptr(t.TempDir()), Banner: &config.RawBanner{Content: ptr("hi")}}, rec)
	require.NoError(t, err)
	res, err := e.OnChunkRender("x", ChunkMeta{FileName: "a.js"}, OutputOptions{Map: []byte("{")})
	require.NoError(t, err)
	assert.Nil(t, res.Map)
	assert.Len(t, rec.Warnings(), 1)
}

func TestOnChunkRender_NoBannerPassesThrough(t *testing.T) {
	e, err := New(config.RawOptions{Cwd: ptr(t.TempDir())}, nil)
	require.NoError(t, err)
	res, err := e.OnChunkRender("x", ChunkMeta{}, OutputOptions{Map: []byte(`{"version":3}`)})
	require.NoError(t, err)
	assert.Equal(t, "x", res.Code)
	assert.Equal(t, []byte(`{"version":3}`), res.Map)
}

func TestWithBannerFunc(t *testing.T) {
	root, files := project(t)
	e, err := New(config.RawOptions{Cwd: ptr(root)}, nil, WithBannerFunc(func(d banner.Data) (string, error) {
		return "bundled " + d.Pkg.Name, nil
	}))
	require.NoError(t, err)
	e.OnModuleLoad(files[0])
	res, err := e.OnChunkRender("x", ChunkMeta{}, OutputOptions{})
	require.NoError(t, err)
	assert.Equal(t, "/**\n * bundled my-app\n */\nx", res.Code)
}

func TestOnChunkRender_TemplateErrorEscapes(t *testing.T) {
	e, err := New(config.RawOptions{Cwd: ptr(t.TempDir()), Banner: &config.RawBanner{Content: ptr("{{.Missing}}")}}, nil)
	require.NoError(t, err)
	_, err = e.OnChunkRender("x", ChunkMeta{}, OutputOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, banner.ErrTemplate))
}
