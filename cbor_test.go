package cose

import (
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncModeCanonical_sortsMapKeys(t *testing.T) {
	m := map[any]any{
		"zzz":    1,
		int64(1): 2,
		int64(5): 3,
	}
	encoded, err := encModeCanonical.Marshal(m)
	require.NoError(t, err)

	var decoded ProtectedHeader
	require.NoError(t, decMode.Unmarshal(encoded, &decoded))

	// encoding twice with the same logical content must be byte-identical
	// under canonical mode regardless of Go's randomized map order.
	encoded2, err := encModeCanonical.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, encoded, encoded2)
}

func TestDecMode_rejectsDuplicateKeys(t *testing.T) {
	// map { 1: 1, 1: 2 } encoded by hand
	data := []byte{0xa2, 0x01, 0x01, 0x01, 0x02}
	var out map[any]any
	err := decMode.Unmarshal(data, &out)
	assert.Error(t, err)
}

func TestDecModeTagsForbidden(t *testing.T) {
	tagged, err := encModeDefault.Marshal(cbor.Tag{Number: CBORTagSign1Message, Content: 1})
	require.NoError(t, err)

	var out any
	assert.NoError(t, decMode.Unmarshal(tagged, &out))
	assert.Error(t, decModeTagsForbidden.Unmarshal(tagged, &out))

	wrapped, err := encModeDefault.Marshal(42)
	require.NoError(t, err)
	var n int
	assert.NoError(t, decModeTagsForbidden.Unmarshal(wrapped, &n))
}
