// Package banner renders the license notice prepended to generated chunks.
//
// Templates use text/template. Besides the data fields .Count,
// .Dependencies and .Pkg, the functions count, dependencies and pkg are
// available so that short placeholders such as "{{count}} dependencies"
// work without a leading dot. Each dependency exposes Name, Version,
// License, Author, Repository, Homepage, Description and PURL.
package banner

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/redactyl/licensebanner/internal/charset"
	"github.com/redactyl/licensebanner/internal/manifest"
	"github.com/redactyl/licensebanner/internal/store"
	"github.com/redactyl/licensebanner/internal/types"
	"go.trai.ch/zerr"
)

var (
	// ErrTemplate is returned when a banner template cannot be parsed or
	// executed. It must reach the host: a wrong notice is worse than none.
	ErrTemplate = zerr.New("banner template error")

	// ErrSourceMap is returned when an input source map cannot be decoded.
	ErrSourceMap = zerr.New("invalid source map")

	// ErrBannerFile is returned when the banner file cannot be read.
	ErrBannerFile = zerr.New("cannot read banner file")
)

// Data is what templates and banner functions receive.
type Data struct {
	Count        int
	Dependencies []types.Dependency
	Pkg          manifest.Manifest
}

// Func builds banner text from data without a template.
type Func func(Data) (string, error)

// Config selects the banner source. Exactly one of Content, File or Func is
// expected; Func wins when several are set.
type Config struct {
	Content      string
	File         string
	Encoding     string
	CommentStyle CommentStyle
	Func         Func
	// Cwd resolves a relative File.
	Cwd string
	// Pkg is the project manifest, exposed to templates as .Pkg.
	Pkg *manifest.Manifest
}

// Input carries per-chunk rendering parameters.
type Input struct {
	PreserveSourceMap bool
	// Map is the chunk's existing source map (v3 JSON), if any.
	Map []byte
}

// Result is a chunk with its banner.
type Result struct {
	Code string
	Map  []byte
	// Lines is the number of lines the banner added in front of the code.
	Lines int
}

// Renderer turns the store content into a banner. It only reads the store.
type Renderer struct {
	cfg   Config
	tmpl  *template.Template
	store *store.Store
	cache map[uint64]string
}

// New prepares a renderer. The banner file is read and the template parsed
// eagerly so that mistakes surface before the build renders anything.
func New(cfg Config, st *store.Store) (*Renderer, error) {
	if cfg.CommentStyle == "" {
		cfg.CommentStyle = StyleRegular
	}
	r := &Renderer{cfg: cfg, store: st, cache: map[uint64]string{}}
	if cfg.Func != nil {
		return r, nil
	}
	text := cfg.Content
	if cfg.File != "" {
		p := cfg.File
		if !filepath.IsAbs(p) && cfg.Cwd != "" {
			p = filepath.Join(cfg.Cwd, p)
		}
		raw, err := os.ReadFile(p) //nolint:gosec // banner path is configured by the user
		if err != nil {
			return nil, zerr.With(zerr.Wrap(ErrBannerFile, err.Error()), "file", p)
		}
		decoded, err := charset.Decode(cfg.Encoding, raw)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(ErrBannerFile, err.Error()), "file", p)
		}
		text = string(decoded)
	}
	tmpl, err := parse(text, Data{})
	if err != nil {
		return nil, err
	}
	r.tmpl = tmpl
	return r, nil
}

// Banner returns the comment-wrapped banner for the current store content.
// The same content always yields the same bytes.
func (r *Renderer) Banner() (string, error) {
	key := r.store.Fingerprint()
	if b, ok := r.cache[key]; ok {
		return b, nil
	}
	data := r.data()
	var text string
	var err error
	if r.cfg.Func != nil {
		text, err = r.cfg.Func(data)
		if err != nil {
			return "", zerr.Wrap(ErrTemplate, err.Error())
		}
	} else {
		text, err = execute(r.tmpl, data)
		if err != nil {
			return "", err
		}
	}
	b := Wrap(text, r.cfg.CommentStyle)
	r.cache[key] = b
	return b, nil
}

// Render prepends the banner to code. With PreserveSourceMap and an input
// map, the returned map is shifted by the banner height; otherwise Map is
// nil and the caller treats any previous map as stale.
func (r *Renderer) Render(code string, in Input) (Result, error) {
	b, err := r.Banner()
	if err != nil {
		return Result{}, err
	}
	if b == "" {
		res := Result{Code: code}
		if in.PreserveSourceMap {
			res.Map = in.Map
		}
		return res, nil
	}
	res := Result{
		Code:  b + "\n" + code,
		Lines: strings.Count(b, "\n") + 1,
	}
	if in.PreserveSourceMap && len(in.Map) > 0 {
		shifted, err := ShiftMap(in.Map, res.Lines)
		if err != nil {
			return Result{Code: res.Code, Lines: res.Lines}, err
		}
		res.Map = shifted
	}
	return res, nil
}

// Strip removes the first n lines of code, undoing Render.
func Strip(code string, n int) string {
	for ; n > 0; n-- {
		i := strings.IndexByte(code, '\n')
		if i < 0 {
			return ""
		}
		code = code[i+1:]
	}
	return code
}

func (r *Renderer) data() Data {
	d := Data{}
	for dep := range r.store.Sorted() {
		d.Dependencies = append(d.Dependencies, dep)
	}
	d.Count = len(d.Dependencies)
	if r.cfg.Pkg != nil {
		d.Pkg = *r.cfg.Pkg
	}
	return d
}

func funcs(d Data) template.FuncMap {
	return template.FuncMap{
		"count":        func() int { return d.Count },
		"dependencies": func() []types.Dependency { return d.Dependencies },
		"pkg":          func() manifest.Manifest { return d.Pkg },
	}
}

func parse(text string, d Data) (*template.Template, error) {
	tmpl, err := template.New("banner").Funcs(funcs(d)).Parse(text)
	if err != nil {
		return nil, zerr.Wrap(ErrTemplate, err.Error())
	}
	return tmpl, nil
}

func execute(tmpl *template.Template, d Data) (string, error) {
	t, err := tmpl.Clone()
	if err != nil {
		return "", zerr.Wrap(ErrTemplate, err.Error())
	}
	var buf bytes.Buffer
	if err := t.Funcs(funcs(d)).Execute(&buf, d); err != nil {
		return "", zerr.Wrap(ErrTemplate, err.Error())
	}
	return buf.String(), nil
}
