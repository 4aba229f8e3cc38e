package era

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Neopallium/sub-script/pkg/codec"
)

func TestImmortal(t *testing.T) {
	e := Immortal()
	assert.True(t, e.IsImmortal())
	assert.Equal(t, []byte{0x00}, e.Encode())
	assert.Equal(t, uint64(0), e.Birth(100))
	assert.Equal(t, uint64(math.MaxUint64), e.Death(100))

	decoded, err := Decode(codec.NewInput([]byte{0x00}))
	require.NoError(t, err)
	assert.Equal(t, e, decoded)
}

func TestMortal_KnownVectors(t *testing.T) {
	testCases := []struct {
		name     string
		period   uint64
		current  uint64
		expected Era
		encoded  []byte
	}{
		{name: "short", period: 64, current: 42, expected: Era{Period: 64, Phase: 42}, encoded: []byte{0xa5, 0x02}},
		{name: "quantized", period: 32768, current: 20000, expected: Era{Period: 32768, Phase: 20000}, encoded: []byte{0x4e, 0x9c}},
		{name: "rounds up", period: 10, current: 35, expected: Era{Period: 16, Phase: 3}, encoded: []byte{0x33, 0x00}},
		{name: "clamps low", period: 1, current: 5, expected: Era{Period: 4, Phase: 1}, encoded: []byte{0x11, 0x00}},
		{name: "clamps high", period: 1 << 20, current: 70000, expected: Era{Period: 1 << 16, Phase: 4464}, encoded: []byte{0x7f, 0x11}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := Mortal(tc.period, tc.current)
			assert.Equal(t, tc.expected, e)
			assert.Equal(t, tc.encoded, e.Encode())

			decoded, err := Decode(codec.NewInput(tc.encoded))
			require.NoError(t, err)
			assert.Equal(t, e, decoded)
		})
	}
}

func TestMortal_BirthDeath(t *testing.T) {
	e := Mortal(64, 42)
	assert.Equal(t, uint64(42), e.Birth(42))
	assert.Equal(t, uint64(42), e.Birth(105))
	assert.Equal(t, uint64(106), e.Birth(106))
	assert.Equal(t, uint64(170), e.Death(106))
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode(codec.NewInput(nil))
	assert.ErrorIs(t, err, codec.ErrTruncated)

	_, err = Decode(codec.NewInput([]byte{0x05}))
	assert.ErrorIs(t, err, codec.ErrTruncated)

	// Period 4 with phase 4.
	_, err = Decode(codec.NewInput([]byte{0x41, 0x00}))
	assert.ErrorIs(t, err, ErrInvalidEra)

	// Period 2 is below the minimum.
	_, err = Decode(codec.NewInput([]byte{0x10, 0x00}))
	assert.ErrorIs(t, err, ErrInvalidEra)
}

func TestEra_JSON(t *testing.T) {
	for _, e := range []Era{Immortal(), Mortal(64, 42)} {
		data, err := json.Marshal(e)
		require.NoError(t, err)

		var out Era
		require.NoError(t, json.Unmarshal(data, &out))
		assert.Equal(t, e, out)
	}

	assert.Equal(t, "Mortal(64, 42)", Mortal(64, 42).String())
	var out Era
	assert.Error(t, json.Unmarshal([]byte(`"Forever"`), &out))
}
