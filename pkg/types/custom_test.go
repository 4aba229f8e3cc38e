package types

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tokens struct{ whole uint64 }

func TestCustomEncode_ByValueType(t *testing.T) {
	lookup := newTestLookup(t)

	require.NoError(t, RegisterEncoder(lookup, "Balance", func(v tokens, enc *Encoder) error {
		if enc.IsCompact() {
			enc.EncodeCompact(v.whole * 100)
			return nil
		}
		return enc.Encode(mustType(t, lookup, "u128"), v.whole*100)
	}))

	balance := mustType(t, lookup, "Balance")
	_, isCustom := balance.Meta().(*Custom)
	assert.True(t, isCustom)

	data, err := balance.Encode(tokens{whole: 2})
	require.NoError(t, err)
	assert.Equal(t, unhex(t, "c8000000000000000000000000000000"), data)

	// Values without a hook use the wrapped descriptor.
	data, err = balance.Encode(1)
	require.NoError(t, err)
	assert.Equal(t, unhex(t, "01000000000000000000000000000000"), data)

	// The compact context reaches the hook through the alias.
	data, err = mustType(t, lookup, "Compact<Balance>").Encode(tokens{whole: 1})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x91, 0x01}, data)
}

func TestCustomEncode_RejectsInterfaceTypes(t *testing.T) {
	lookup := newTestLookup(t)
	before := lookup.Len()

	err := RegisterEncoder(lookup, "Label", func(v fmt.Stringer, enc *Encoder) error {
		return nil
	})
	assert.ErrorIs(t, err, ErrShapeMismatch)

	err = lookup.CustomEncode("Label", nil, func(v any, enc *Encoder) error { return nil })
	assert.ErrorIs(t, err, ErrShapeMismatch)

	_, ok := lookup.Get("Label")
	assert.False(t, ok)
	assert.Equal(t, before, lookup.Len())
}

func TestCustomEncode_ReplacesHook(t *testing.T) {
	lookup := newTestLookup(t)
	typ := reflect.TypeOf("")

	require.NoError(t, lookup.CustomEncode("u8", typ, func(v any, enc *Encoder) error {
		return enc.WriteByte(1)
	}))
	require.NoError(t, lookup.CustomEncode("u8", typ, func(v any, enc *Encoder) error {
		return enc.WriteByte(2)
	}))

	data, err := mustType(t, lookup, "u8").Encode("anything")
	require.NoError(t, err)
	assert.Equal(t, []byte{2}, data)

	custom := mustType(t, lookup, "u8").Meta().(*Custom)
	assert.Equal(t, []reflect.Type{typ}, custom.EncoderTypes())
	assert.Equal(t, Integer{Width: 1}, custom.Fallback())
}

func TestCustomDecode(t *testing.T) {
	lookup := newTestLookup(t)

	require.NoError(t, lookup.CustomDecode("Color", func(dec *Decoder) (any, error) {
		b, err := dec.ReadByte()
		if err != nil {
			return nil, err
		}
		return []string{"red", "green", "blue"}[b%3], nil
	}))
	require.NoError(t, RegisterDecoder(lookup, "Color", func(dec *Decoder) (any, error) {
		b, err := dec.ReadByte()
		return int(b), err
	}))

	color := mustType(t, lookup, "Color")
	decoded, err := color.Decode([]byte{0x02})
	require.NoError(t, err)
	assert.Equal(t, 2, decoded)

	// Encoding still uses the wrapped enum.
	data, err := color.Encode(map[string]any{"Blue": nil})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02}, data)
	assert.True(t, color.Meta().(*Custom).HasDecoder())
}

func TestCustom_RegisteredBeforeDefinition(t *testing.T) {
	lookup := NewLookup()
	require.NoError(t, lookup.InsertPrimitives())

	require.NoError(t, lookup.CustomDecode("Later", func(dec *Decoder) (any, error) {
		b, err := dec.ReadByte()
		return b == 0xff, err
	}))

	later, err := lookup.ParseNamedType("Later", "u8")
	require.NoError(t, err)

	decoded, err := later.Decode([]byte{0xff})
	require.NoError(t, err)
	assert.Equal(t, true, decoded)

	data, err := later.Encode(5)
	require.NoError(t, err)
	assert.Equal(t, []byte{5}, data)
}

func TestCustom_SnapshotIsImmutable(t *testing.T) {
	lookup := newTestLookup(t)
	typ := reflect.TypeOf(tokens{})

	require.NoError(t, lookup.CustomEncode("u32", typ, func(v any, enc *Encoder) error { return nil }))
	before := mustType(t, lookup, "u32").Meta().(*Custom)

	require.NoError(t, lookup.CustomEncode("u32", reflect.TypeOf(""), func(v any, enc *Encoder) error { return nil }))
	after := mustType(t, lookup, "u32").Meta().(*Custom)

	assert.Len(t, before.EncoderTypes(), 1)
	assert.Len(t, after.EncoderTypes(), 2)
}
