package charset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatin1RoundTrip(t *testing.T) {
	b, err := Encode("latin1", "Copyright © Jürgen")
	require.NoError(t, err)
	assert.Equal(t, byte(0xA9), b[10], "© is a single byte in latin1")

	s, err := Decode("iso-8859-1", b)
	require.NoError(t, err)
	assert.Equal(t, "Copyright © Jürgen", string(s))
}

func TestDefaultIsUTF8(t *testing.T) {
	b, err := Encode("", "é")
	require.NoError(t, err)
	assert.Equal(t, []byte("é"), b)
	require.NoError(t, Validate(Default))
}

func TestUnknownEncoding(t *testing.T) {
	err := Validate("klingon-8")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknown))
}
