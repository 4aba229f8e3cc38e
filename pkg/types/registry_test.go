package types

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRegistry_ResolveCreatesPlaceholder(t *testing.T) {
	r := NewRegistry()
	ref := r.Resolve("Later")
	assert.Same(t, ref, r.Resolve("Later"))
	assert.Equal(t, Unresolved{Def: "Later"}, ref.Meta())
	assert.Equal(t, []string{"Later"}, r.Unresolved())

	_, err := ref.Encode(1)
	assert.ErrorIs(t, err, ErrUnresolvedType)
	_, err = ref.Decode([]byte{1})
	assert.ErrorIs(t, err, ErrUnresolvedType)
}

func TestRegistry_InsertKeepsIdentity(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.InsertPrimitives())

	held := r.Resolve("Id")
	got, err := r.InsertMeta("Id", Integer{Width: 2})
	require.NoError(t, err)
	assert.Same(t, held, got)
	assert.Equal(t, "Id", held.String())

	data, err := held.Encode(258)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02, 0x01}, data)
}

func TestRegistry_InsertSameHandle(t *testing.T) {
	r := NewRegistry(WithRedefinePolicy(RedefineReject))
	ref := r.NewTypeRef(Bool{})
	_, err := r.Insert("Flag", ref)
	require.NoError(t, err)
	got, err := r.Insert("Flag", ref)
	require.NoError(t, err)
	assert.Same(t, ref, got)
	assert.Equal(t, Bool{}, ref.Meta())
}

func TestRegistry_RedefinePolicies(t *testing.T) {
	testCases := []struct {
		policy   RedefinePolicy
		expected []byte
		err      error
	}{
		{policy: RedefineKeep, expected: []byte{0x01}},
		{policy: RedefineOverwrite, expected: []byte{0x01, 0x00}},
		{policy: RedefineReject, expected: []byte{0x01}, err: ErrRedefinition},
	}

	for _, tc := range testCases {
		t.Run(tc.policy.String(), func(t *testing.T) {
			core, logs := observer.New(zap.WarnLevel)
			r := NewRegistry(WithRedefinePolicy(tc.policy), WithLogger(zap.New(core)))

			first, err := r.InsertMeta("Index", Integer{Width: 1})
			require.NoError(t, err)

			got, err := r.InsertMeta("Index", Integer{Width: 2})
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, 1, logs.Len())
			}
			assert.Same(t, first, got)

			data, err := first.Encode(1)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, data)
		})
	}
}

func TestParsePolicies(t *testing.T) {
	p, err := ParseRedefinePolicy("Overwrite")
	require.NoError(t, err)
	assert.Equal(t, RedefineOverwrite, p)
	p, err = ParseRedefinePolicy("")
	require.NoError(t, err)
	assert.Equal(t, RedefineKeep, p)
	_, err = ParseRedefinePolicy("sometimes")
	assert.Error(t, err)

	v, err := ParseVariantPolicy("lenient")
	require.NoError(t, err)
	assert.Equal(t, VariantLenient, v)
	assert.Equal(t, "strict", VariantStrict.String())
	_, err = ParseVariantPolicy("loose")
	assert.Error(t, err)
}

func TestRegistry_NamesKeepInsertionOrder(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"Zeta", "Alpha", "Mid"} {
		_, err := r.InsertMeta(name, Bool{})
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"Zeta", "Alpha", "Mid"}, r.Names())
	assert.Equal(t, 3, r.Len())

	_, ok := r.Get("Alpha")
	assert.True(t, ok)
	_, ok = r.Get("Omega")
	assert.False(t, ok)
	assert.Equal(t, 3, r.Len())
}

func TestRegistry_Dump(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.InsertPrimitives())
	_, err := r.ParseNamedType("Pair", "(u8, Later)")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, r.Dump(&out))
	assert.Contains(t, out.String(), "Type[0]: u8 => u8\n")
	assert.Contains(t, out.String(), "Pair => (u8, ?Later)\n")

	out.Reset()
	require.NoError(t, r.DumpUnresolved(&out))
	assert.Equal(t, "Unresolved: Later => Later\n", out.String())
}
