package types

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestLookup(t *testing.T, opts ...RegistryOption) *Lookup {
	t.Helper()
	lookup := NewLookup(opts...)
	require.NoError(t, lookup.InsertPrimitives())
	require.NoError(t, lookup.LoadSchema("testdata/schema.json"))
	return lookup
}

func mustType(t *testing.T, lookup *Lookup, def string) *TypeRef {
	t.Helper()
	ref, err := lookup.ParseType(def)
	require.NoError(t, err)
	return ref
}

func unhex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}
