// Package engine assembles a ready to use type lookup: primitives, schema files,
// fallback definitions for common chain types and the builtin overrides.
package engine

import (
	_ "embed"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/Neopallium/sub-script/pkg/account"
	"github.com/Neopallium/sub-script/pkg/types"
)

//go:embed defaults.json
var defaultTypes []byte

// Options configures New
type Options struct {
	// SchemaFiles are loaded in order. Later files may refer to earlier ones and
	// the other way around.
	SchemaFiles []string

	// SchemaDocs are schema documents loaded after SchemaFiles, e.g. stored snapshots
	SchemaDocs [][]byte

	Redefine types.RedefinePolicy
	Variant  types.VariantPolicy

	// TokenDecimals scales integer and decimal Balance values to base units when
	// non-zero.
	TokenDecimals uint32

	Logger  *zap.Logger
	Keyring *account.Keyring
}

// New builds a lookup from opts
func New(opts Options) (*types.Lookup, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	keyring := opts.Keyring
	if keyring == nil {
		keyring = account.NewKeyring()
	}

	lookup := types.NewLookup(
		types.WithLogger(log),
		types.WithRedefinePolicy(opts.Redefine),
		types.WithVariantPolicy(opts.Variant),
	)
	if err := lookup.InsertPrimitives(); err != nil {
		return nil, err
	}
	for _, path := range opts.SchemaFiles {
		log.Debug("loading schema", zap.String("path", path))
		if err := lookup.LoadSchema(path); err != nil {
			return nil, err
		}
	}
	for i, doc := range opts.SchemaDocs {
		if err := lookup.LoadSchemaBytes(doc); err != nil {
			return nil, errors.Wrapf(err, "schema document %d", i)
		}
	}
	if err := LoadDefaults(lookup); err != nil {
		return nil, err
	}
	if _, err := lookup.ResolvePending(); err != nil {
		return nil, err
	}
	if err := RegisterBuiltins(lookup, keyring); err != nil {
		return nil, err
	}
	if opts.TokenDecimals > 0 {
		if err := RegisterBalance(lookup, opts.TokenDecimals); err != nil {
			return nil, err
		}
	}

	log.Info("type lookup ready",
		zap.Int("types", lookup.Len()),
		zap.Int("unresolved", len(lookup.Unresolved())))
	return lookup, nil
}

// LoadDefaults defines the common chain types that no loaded schema defined
func LoadDefaults(lookup *types.Lookup) error {
	var err error
	gjson.ParseBytes(defaultTypes).ForEach(func(key, val gjson.Result) bool {
		name := key.String()
		if ref, ok := lookup.Get(name); ok && defined(ref) {
			return true
		}
		err = lookup.LoadSchemaBytes([]byte(`{"` + name + `": ` + val.Raw + `}`))
		return err == nil
	})
	return errors.Wrap(err, "default types")
}

func defined(ref *types.TypeRef) bool {
	switch m := ref.Meta().(type) {
	case types.Unresolved:
		return false
	case *types.Custom:
		_, pending := m.Fallback().(types.Unresolved)
		return !pending
	}
	return true
}
