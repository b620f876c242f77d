// Package charset converts banner sources and exported summaries between
// UTF-8 and the encodings named in the options.
package charset

import (
	"strings"

	"go.trai.ch/zerr"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// Default is used when no encoding is configured.
const Default = "utf-8"

// ErrUnknown is returned for encoding names that are not recognised.
var ErrUnknown = zerr.New("unknown encoding")

func lookup(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return unicode.UTF8, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(ErrUnknown, ""), "encoding", name)
	}
	return enc, nil
}

// Validate checks that name is a known encoding.
func Validate(name string) error {
	_, err := lookup(name)
	return err
}

// Decode converts b from the named encoding to UTF-8.
func Decode(name string, b []byte) ([]byte, error) {
	enc, err := lookup(name)
	if err != nil {
		return nil, err
	}
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return nil, zerr.Wrap(err, "decode "+name)
	}
	return out, nil
}

// Encode converts UTF-8 text s to the named encoding.
func Encode(name string, s string) ([]byte, error) {
	enc, err := lookup(name)
	if err != nil {
		return nil, err
	}
	out, err := enc.NewEncoder().String(s)
	if err != nil {
		return nil, zerr.Wrap(err, "encode "+name)
	}
	return []byte(out), nil
}
