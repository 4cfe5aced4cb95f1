package tokenstore

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealerRoundTripUsesFreshNonces(t *testing.T) {
	sealer, err := NewSealer("k")
	require.NoError(t, err)

	a, err := sealer.Seal("abc.def.ghi")
	require.NoError(t, err)
	b, err := sealer.Seal("abc.def.ghi")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	plain, err := sealer.Open(a)
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", plain)
}

func TestSealerRejectsTamperedInput(t *testing.T) {
	sealer, err := NewSealer("k")
	require.NoError(t, err)

	_, err = sealer.Open("abc.def.ghi")
	assert.ErrorIs(t, err, ErrNotSealed)

	_, err = sealer.Open(sealedPrefix + "AAAA")
	assert.Error(t, err)

	sealed, err := sealer.Seal("abc")
	require.NoError(t, err)
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(sealed, sealedPrefix))
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff
	_, err = sealer.Open(sealedPrefix + base64.RawURLEncoding.EncodeToString(raw))
	assert.Error(t, err)

	_, err = NewSealer("   ")
	assert.Error(t, err)
}
