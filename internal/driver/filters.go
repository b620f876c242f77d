package driver

import "strings"

// Directories never worth walking for module files. node_modules is
// deliberately absent: that is where third-party modules live.
var defaultExcludeDirs = map[string]bool{
	".git":        true,
	".hg":         true,
	".svn":        true,
	".cache":      true,
	".next":       true,
	".turbo":      true,
	"coverage":    true,
	"__pycache__": true,
}

// suffixes of files that are never loaded as modules
var defaultExcludeFileSuffixes = []string{
	".map", ".d.ts", ".md", ".markdown",
	".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg", ".ico",
	".pdf", ".zip", ".gz", ".tar", ".tgz",
	".woff", ".woff2", ".ttf", ".eot",
}

var defaultExcludeFileNames = map[string]bool{
	"yarn.lock":         true,
	"package-lock.json": true,
	"pnpm-lock.yaml":    true,
	".ds_store":         true,
}

func isDefaultDirExcluded(name string) bool {
	return defaultExcludeDirs[name]
}

func isDefaultFileExcluded(lowerRel string) bool {
	for _, s := range defaultExcludeFileSuffixes {
		if strings.HasSuffix(lowerRel, s) {
			return true
		}
	}
	base := lowerRel
	if i := strings.LastIndexByte(lowerRel, '/'); i >= 0 {
		base = lowerRel[i+1:]
	}
	return defaultExcludeFileNames[base]
}
