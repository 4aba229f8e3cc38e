package types

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoadSchema_File(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	lookup := NewLookup(WithLogger(zap.New(core)))
	require.NoError(t, lookup.InsertPrimitives())
	require.NoError(t, lookup.LoadSchema("testdata/schema.json"))

	for _, name := range []string{"Balance", "Point", "Color", "Shape", "Tree", "Transfer"} {
		ref, ok := lookup.Get(name)
		require.True(t, ok, name)
		assert.True(t, ref.IsResolved(), name)
	}
	_, ok := lookup.Get("Ignored")
	assert.False(t, ok)
	assert.Equal(t, 1, logs.FilterMessage("skipping unsupported schema value").Len())
	assert.Empty(t, lookup.Unresolved())
}

func TestLoadSchema_MissingFile(t *testing.T) {
	err := NewLookup().LoadSchema("testdata/missing.json")
	assert.Error(t, err)
}

func TestLoadSchemaBytes_TopLevelObject(t *testing.T) {
	lookup := NewLookup()
	require.NoError(t, lookup.InsertPrimitives())
	require.NoError(t, lookup.LoadSchemaBytes([]byte(`{"Weight": "u64", "types": "not an object"}`)))

	ref, ok := lookup.Get("Weight")
	require.True(t, ok)
	data, err := ref.Encode(1)
	require.NoError(t, err)
	assert.Len(t, data, 8)
}

func TestLoadSchemaBytes_DeclarationOrder(t *testing.T) {
	lookup := NewLookup()
	require.NoError(t, lookup.InsertPrimitives())
	require.NoError(t, lookup.LoadSchemaBytes([]byte(`{
		"Header": {"z": "u8", "a": "u16", "m": "bool"},
		"Mode": {"_enum": {"Off": "", "On": "u8", "Auto": null}}
	}`)))

	header := mustType(t, lookup, "Header")
	data, err := header.Encode(map[string]any{"a": 1, "m": true, "z": 9})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x09, 0x01, 0x00, 0x01}, data)

	mode := mustType(t, lookup, "Mode")
	assert.Equal(t, "enum{Off, On(u8), Auto}", Describe(mode))
}

func TestLoadSchemaBytes_Errors(t *testing.T) {
	testCases := []struct {
		name string
		doc  string
	}{
		{name: "invalid json", doc: `{"A": `},
		{name: "not an object", doc: `["A"]`},
		{name: "enum with number", doc: `{"E": {"_enum": ["A", 1]}}`},
		{name: "enum not a collection", doc: `{"E": {"_enum": "A"}}`},
		{name: "enum payload number", doc: `{"E": {"_enum": {"A": 1}}}`},
		{name: "field not a string", doc: `{"S": {"a": 1}}`},
		{name: "bad fixed array", doc: `{"S": {"a": "[u8; x]"}}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := NewLookup().LoadSchemaBytes([]byte(tc.doc))
			assert.ErrorIs(t, err, ErrSchemaParse)
		})
	}
}

func TestLoadSchemaBytes_AcrossDocuments(t *testing.T) {
	lookup := NewLookup()
	require.NoError(t, lookup.InsertPrimitives())
	require.NoError(t, lookup.LoadSchemaBytes([]byte(`{"Call": {"target": "AccountId", "amount": "Compact<u128>"}}`)))
	assert.Contains(t, lookup.Unresolved(), "AccountId")

	require.NoError(t, lookup.LoadSchemaBytes([]byte(`{"AccountId": "[u8; 32]"}`)))
	assert.Empty(t, lookup.Unresolved())

	data, err := mustType(t, lookup, "Call").Encode(map[string]any{
		"target": make([]byte, 32),
		"amount": 1,
	})
	require.NoError(t, err)
	assert.Len(t, data, 33)
}

func enumSchema(n int, object bool) string {
	names := make([]string, n)
	for i := range names {
		if object {
			names[i] = fmt.Sprintf(`"V%d": ""`, i)
		} else {
			names[i] = fmt.Sprintf(`"V%d"`, i)
		}
	}
	if object {
		return `{"Big": {"_enum": {` + strings.Join(names, ",") + `}}}`
	}
	return `{"Big": {"_enum": [` + strings.Join(names, ",") + `]}}`
}

func TestLoadSchemaBytes_EnumVariantLimit(t *testing.T) {
	for _, object := range []bool{false, true} {
		t.Run(fmt.Sprintf("object=%v", object), func(t *testing.T) {
			lookup := newTestLookup(t)
			require.NoError(t, lookup.LoadSchemaBytes([]byte(enumSchema(256, object))))

			big := mustType(t, lookup, "Big")
			decoded, err := big.Decode([]byte{0xff})
			require.NoError(t, err)
			assert.Equal(t, map[string]any{"V255": nil}, decoded)

			other := newTestLookup(t)
			assert.NotPanics(t, func() {
				err = other.LoadSchemaBytes([]byte(enumSchema(257, object)))
			})
			assert.ErrorIs(t, err, ErrSchemaParse)
		})
	}
}
