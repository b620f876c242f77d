package driver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/redactyl/licensebanner/internal/config"
	"github.com/redactyl/licensebanner/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func mustWrite(t *testing.T, root, rel, body string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
}

func fixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	mustWrite(t, root, "package.json", `{"name":"app","version":"1.0.0"}`)
	mustWrite(t, root, "src/index.js", "import 'a'")
	mustWrite(t, root, "node_modules/a/package.json", `{"name":"a","version":"1.0.0","license":"MIT"}`)
	mustWrite(t, root, "node_modules/a/index.js", "")
	mustWrite(t, root, "node_modules/b/package.json", `{"name":"b","version":"2.0.0","license":"ISC"}`)
	mustWrite(t, root, "node_modules/b/index.js", "")
	mustWrite(t, root, "node_modules/b/README.md", "")
	mustWrite(t, root, "dist/main.js", "console.log(1);\n")
	mustWrite(t, root, "dist/main.js.map", `{"version":3,"sources":["../src/index.js"],"mappings":"AAAA"}`)
	return root
}

func newEngine(t *testing.T, root string) *engine.Engine {
	t.Helper()
	e, err := engine.New(config.RawOptions{
		Cwd:        ptr(root),
		Banner:     &config.RawBanner{Content: ptr("{{count}} dependencies")},
		ThirdParty: &config.RawThirdParty{Output: ptr("dist/THIRD_PARTY.txt")},
	}, nil)
	require.NoError(t, err)
	return e
}

func TestRun_WritesChunksMapsAndSummary(t *testing.T) {
	root := fixture(t)
	e := newEngine(t, root)
	res, err := Run(context.Background(), e, Config{Root: root, Write: true})
	require.NoError(t, err)

	assert.Len(t, e.Dependencies(), 2)
	require.Len(t, res.Chunks, 1)
	assert.Equal(t, "dist/main.js", res.Chunks[0].Path)
	assert.Equal(t, 3, res.Chunks[0].Lines)
	assert.True(t, res.Chunks[0].MapWritten)

	code, err := os.ReadFile(filepath.Join(root, "dist", "main.js"))
	require.NoError(t, err)
	assert.Equal(t, "/**\n * 2 dependencies\n */\nconsole.log(1);\n", string(code))

	var m map[string]any
	raw, err := os.ReadFile(filepath.Join(root, "dist", "main.js.map"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, ";;;AAAA", m["mappings"])

	summary, err := os.ReadFile(filepath.Join(root, "dist", "THIRD_PARTY.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "Name: a")
	assert.Contains(t, string(summary), "Name: b")
}

func TestRun_SecondRunSkipsStampedChunks(t *testing.T) {
	root := fixture(t)
	_, err := Run(context.Background(), newEngine(t, root), Config{Root: root, Write: true})
	require.NoError(t, err)

	res, err := Run(context.Background(), newEngine(t, root), Config{Root: root, Write: true})
	require.NoError(t, err)
	require.Len(t, res.Chunks, 1)
	assert.True(t, res.Chunks[0].Skipped)

	code, err := os.ReadFile(filepath.Join(root, "dist", "main.js"))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(code), "dependencies"))
}

func TestRun_DryRunLeavesFilesAlone(t *testing.T) {
	root := fixture(t)
	res, err := Run(context.Background(), newEngine(t, root), Config{Root: root})
	require.NoError(t, err)
	require.Len(t, res.Artifacts, 1)

	code, err := os.ReadFile(filepath.Join(root, "dist", "main.js"))
	require.NoError(t, err)
	assert.Equal(t, "console.log(1);\n", string(code))
	_, err = os.Stat(filepath.Join(root, "dist", "THIRD_PARTY.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestRun_Metafile(t *testing.T) {
	root := fixture(t)
	mustWrite(t, root, "meta.json", `{"inputs":{"src/index.js":{},"node_modules/a/index.js":{},"<stdin>":{}}}`)
	e := newEngine(t, root)
	res, err := Run(context.Background(), e, Config{Root: root, Metafile: "meta.json"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Modules)
	require.Len(t, e.Dependencies(), 1)
	assert.Equal(t, "a", e.Dependencies()[0].Name)
}

func TestWalk_WithIncludeExcludeGlobs(t *testing.T) {
	root := fixture(t)
	var got []string
	err := Walk(context.Background(), root, []string{"**/*.js"}, []string{"dist/**"}, func(rel string) { got = append(got, rel) })
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"src/index.js", "node_modules/a/index.js", "node_modules/b/index.js"}, got)
}

func TestWalk_DefaultSkipsDocsAndMaps(t *testing.T) {
	root := fixture(t)
	var got []string
	require.NoError(t, Walk(context.Background(), root, nil, nil, func(rel string) { got = append(got, rel) }))
	assert.NotContains(t, got, "node_modules/b/README.md")
	assert.NotContains(t, got, "dist/main.js.map")
	assert.Contains(t, got, "node_modules/a/package.json")
}

func TestParseGlobs(t *testing.T) {
	assert.Equal(t, []string{"a/**", "b/*.js"}, ParseGlobs(" a/** ,, b/*.js "))
	assert.Nil(t, ParseGlobs(""))
}
