package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Neopallium/sub-script/pkg/account"
	"github.com/Neopallium/sub-script/pkg/era"
	"github.com/Neopallium/sub-script/pkg/types"
)

func newTestEngine(t *testing.T, opts Options) *types.Lookup {
	t.Helper()
	if opts.SchemaFiles == nil {
		opts.SchemaFiles = []string{"testdata/chain.json"}
	}
	lookup, err := New(opts)
	require.NoError(t, err)
	return lookup
}

func encode(t *testing.T, lookup *types.Lookup, def string, v any) []byte {
	t.Helper()
	ref, err := lookup.ParseType(def)
	require.NoError(t, err)
	data, err := ref.Encode(v)
	require.NoError(t, err)
	return data
}

func TestNew_ResolvesEverything(t *testing.T) {
	lookup := newTestEngine(t, Options{})
	assert.Empty(t, lookup.Unresolved())

	for _, name := range []string{"AccountId", "MultiAddress", "Balance", "Transfer", "Extra", "u8", "Text"} {
		_, ok := lookup.Get(name)
		assert.True(t, ok, name)
	}
}

func TestNew_SchemaErrors(t *testing.T) {
	_, err := New(Options{SchemaFiles: []string{"testdata/missing.json"}})
	assert.Error(t, err)

	dir := t.TempDir()
	first := filepath.Join(dir, "first.json")
	second := filepath.Join(dir, "second.json")
	require.NoError(t, os.WriteFile(first, []byte(`{"Weight": "u64"}`), 0o644))
	require.NoError(t, os.WriteFile(second, []byte(`{"Weight": "u32"}`), 0o644))

	_, err = New(Options{SchemaFiles: []string{first, second}, Redefine: types.RedefineReject})
	assert.ErrorIs(t, err, types.ErrRedefinition)

	lookup, err := New(Options{SchemaFiles: []string{first, second}})
	require.NoError(t, err)
	assert.Len(t, encode(t, lookup, "Weight", 1), 8)
}

func TestAccountOverrides(t *testing.T) {
	keyring := account.NewKeyring()
	lookup := newTestEngine(t, Options{Keyring: keyring})
	alice := keyring.Get("Alice")
	key := alice.PublicKey()

	assert.Equal(t, key[:], encode(t, lookup, "AccountId", alice))
	assert.Equal(t, key[:], encode(t, lookup, "AccountId", alice.Account()))
	assert.Equal(t, key[:], encode(t, lookup, "AccountId", "//Alice"))
	assert.Equal(t, key[:], encode(t, lookup, "AccountId", alice.Account().String()))

	ref, err := lookup.ParseType("AccountId")
	require.NoError(t, err)
	_, err = ref.Encode("not an account")
	assert.ErrorIs(t, err, types.ErrShapeMismatch)

	decoded, err := ref.Decode(key[:])
	require.NoError(t, err)
	assert.Equal(t, alice.Account(), decoded)

	owner := encode(t, lookup, "Owner", map[string]any{"who": "//Alice", "since": 5})
	assert.Equal(t, append(key[:], 5, 0, 0, 0), owner)
}

func TestMultiAddressOverrides(t *testing.T) {
	keyring := account.NewKeyring()
	lookup := newTestEngine(t, Options{Keyring: keyring})
	bob := keyring.Get("Bob")
	key := bob.PublicKey()
	expected := append([]byte{0x00}, key[:]...)

	assert.Equal(t, expected, encode(t, lookup, "MultiAddress", bob))
	assert.Equal(t, expected, encode(t, lookup, "Address", bob.Account()))

	// The enum form still works for the other variants.
	assert.Equal(t, []byte{0x01, 0x1c}, encode(t, lookup, "LookupSource", map[string]any{"Index": 7}))

	transfer := encode(t, lookup, "Transfer", map[string]any{"dest": bob, "value": 1})
	assert.Equal(t, append(expected, 0x04), transfer)
}

func TestEraOverrides(t *testing.T) {
	lookup := newTestEngine(t, Options{})

	mortal := era.Mortal(64, 42)
	assert.Equal(t, []byte{0xa5, 0x02}, encode(t, lookup, "Era", mortal))
	assert.Equal(t, []byte{0x00}, encode(t, lookup, "Era", era.Immortal()))
	assert.Equal(t, []byte{0x00}, encode(t, lookup, "Era", "Immortal"))
	assert.Equal(t, []byte{0xa5, 0x02}, encode(t, lookup, "Era", map[string]any{"period": 64, "current": 42}))
	assert.Equal(t, []byte{0xa5, 0x02}, encode(t, lookup, "Era", map[string]any{"period": int64(64), "phase": int64(42)}))

	ref, err := lookup.ParseType("Era")
	require.NoError(t, err)
	_, err = ref.Encode(map[string]any{"period": 10, "phase": 3})
	assert.ErrorIs(t, err, types.ErrShapeMismatch)
	_, err = ref.Encode(map[string]any{"phase": 3})
	assert.ErrorIs(t, err, types.ErrShapeMismatch)
	_, err = ref.Encode("Forever")
	assert.ErrorIs(t, err, types.ErrShapeMismatch)

	extra := encode(t, lookup, "Extra", map[string]any{"era": mortal, "nonce": 0, "tip": 0})
	assert.Equal(t, []byte{0xa5, 0x02, 0x00, 0x00}, extra)

	extraRef, err := lookup.ParseType("Extra")
	require.NoError(t, err)
	decoded, err := extraRef.DecodeAll(extra)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"era": mortal, "nonce": int64(0), "tip": int64(0)}, decoded)
}

func TestBalanceScaling(t *testing.T) {
	lookup := newTestEngine(t, Options{TokenDecimals: 12})

	plain := encode(t, lookup, "Balance", 1)
	assert.Equal(t, []byte{0x00, 0x10, 0xa5, 0xd4, 0xe8, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, plain)
	assert.Equal(t, encode(t, lookup, "Balance", 1), encode(t, lookup, "Balance", decimal.RequireFromString("1.0")))

	compact := encode(t, lookup, "Compact<Balance>", int64(1))
	assert.Equal(t, []byte{0x07, 0x00, 0x10, 0xa5, 0xd4, 0xe8}, compact)

	half := encode(t, lookup, "Compact<Balance>", decimal.RequireFromString("0.5"))
	balance, err := lookup.ParseType("Compact<Balance>")
	require.NoError(t, err)
	decoded, err := balance.DecodeAll(half)
	require.NoError(t, err)
	require.IsType(t, decimal.Decimal{}, decoded)
	assert.Equal(t, "0.5", decoded.(decimal.Decimal).String())

	ref, err := lookup.ParseType("Balance")
	require.NoError(t, err)
	decoded, err = ref.DecodeAll(plain)
	require.NoError(t, err)
	assert.Equal(t, "1", decoded.(decimal.Decimal).String())

	_, err = ref.Encode(-1)
	assert.ErrorIs(t, err, types.ErrShapeMismatch)

	// Through a struct field the compact context reaches the hook as well.
	tip := encode(t, lookup, "Extra", map[string]any{"era": era.Immortal(), "nonce": 1, "tip": 1})
	assert.Equal(t, []byte{0x00, 0x04, 0x07, 0x00, 0x10, 0xa5, 0xd4, 0xe8}, tip)
}

func TestLoadDefaults_KeepsSchemaDefinitions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"AccountId": "[u8; 20]", "Balance": "u64"}`), 0o644))

	lookup := newTestEngine(t, Options{SchemaFiles: []string{path}, Redefine: types.RedefineReject})
	assert.Len(t, encode(t, lookup, "Balance", 1), 8)
	assert.Len(t, encode(t, lookup, "AccountId", make([]byte, 20)), 20)
}

func TestNew_SchemaDocs(t *testing.T) {
	lookup := newTestEngine(t, Options{
		SchemaDocs: [][]byte{[]byte(`{"types": {"Receipt": {"owner": "Owner", "fee": "Balance"}}}`)},
	})
	assert.Empty(t, lookup.Unresolved())

	data := encode(t, lookup, "Receipt", map[string]any{
		"owner": map[string]any{"who": "//Bob", "since": 1},
		"fee":   0,
	})
	assert.Len(t, data, 32+4+16)

	_, err := New(Options{SchemaFiles: []string{}, SchemaDocs: [][]byte{[]byte(`[1]`)}})
	assert.ErrorIs(t, err, types.ErrSchemaParse)
}
