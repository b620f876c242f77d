package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
)

// DefaultModuleGlobs select the files treated as loaded modules when no
// metafile lists them.
var DefaultModuleGlobs = []string{"**/*.{js,mjs,cjs,jsx,ts,tsx,mts,cts,json,css}"}

// Walk traverses root and invokes handle with the slash-separated relative
// path of each module file allowed by the include and exclude globs.
func Walk(ctx context.Context, root string, include, exclude []string, handle func(rel string)) error {
	if len(include) == 0 {
		include = DefaultModuleGlobs
	}
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctx != nil {
			if cerr := ctx.Err(); cerr != nil {
				return cerr
			}
		}
		if d.IsDir() {
			if p != root && isDefaultDirExcluded(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if isDefaultFileExcluded(strings.ToLower(rel)) {
			return nil
		}
		if !allowedByGlobs(rel, include, exclude) {
			return nil
		}
		handle(rel)
		return nil
	})
}

// allowedByGlobs applies include globs as a positive filter and subtracts
// exclude globs last.
func allowedByGlobs(rel string, include, exclude []string) bool {
	if len(include) > 0 && !matchAny(rel, include) {
		return false
	}
	return !matchAny(rel, exclude)
}

func matchAny(rel string, globs []string) bool {
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, rel); ok {
			return true
		}
	}
	return false
}

// ParseGlobs splits a comma-separated flag value into trimmed globs.
func ParseGlobs(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
