package driver

import (
	"encoding/json"
	"os"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// ErrMetafile is returned when a build metafile cannot be used.
var ErrMetafile = zerr.New("cannot read metafile")

// metafile is the subset of an esbuild metafile listing the build inputs.
type metafile struct {
	Inputs map[string]json.RawMessage `json:"inputs"`
}

// ReadMetafile returns the module paths recorded in an esbuild-style
// metafile, sorted. Virtual inputs such as "<stdin>" are skipped.
func ReadMetafile(path string) ([]string, error) {
	b, err := os.ReadFile(path) //nolint:gosec // metafile path is chosen by the user
	if err != nil {
		return nil, zerr.With(zerr.Wrap(ErrMetafile, err.Error()), "file", path)
	}
	var m metafile
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, zerr.With(zerr.Wrap(ErrMetafile, err.Error()), "file", path)
	}
	out := make([]string, 0, len(m.Inputs))
	for in := range m.Inputs {
		if in == "" || strings.HasPrefix(in, "<") {
			continue
		}
		// esbuild prefixes plugin namespaces, e.g. "ns:path"; keep file inputs only.
		if i := strings.Index(in, ":"); i > 1 {
			continue
		}
		out = append(out, in)
	}
	slices.Sort(out)
	return out, nil
}
