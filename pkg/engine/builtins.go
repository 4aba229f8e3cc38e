package engine

import (
	"math/big"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"

	"github.com/Neopallium/sub-script/pkg/account"
	"github.com/Neopallium/sub-script/pkg/codec"
	"github.com/Neopallium/sub-script/pkg/era"
	"github.com/Neopallium/sub-script/pkg/types"
	"github.com/Neopallium/sub-script/pkg/value"
)

// RegisterBuiltins installs the overrides for Era, AccountId and MultiAddress.
//
// AccountId accepts *account.User, account.AccountID and strings; a string
// starting with // names a development user from keyring, anything else is parsed
// as hex. MultiAddress accepts users and account ids as its Id variant.
func RegisterBuiltins(lookup *types.Lookup, keyring *account.Keyring) error {
	steps := []func() error{
		func() error {
			return types.RegisterEncoder(lookup, "Era", func(e era.Era, enc *types.Encoder) error {
				enc.Write(e.Encode())
				return nil
			})
		},
		func() error {
			return types.RegisterEncoder(lookup, "Era", func(s string, enc *types.Encoder) error {
				if s != "Immortal" {
					return errors.Wrapf(types.ErrShapeMismatch, "Era: unknown era %q", s)
				}
				enc.Write(era.Immortal().Encode())
				return nil
			})
		},
		func() error {
			return types.RegisterEncoder(lookup, "Era", func(m map[string]any, enc *types.Encoder) error {
				e, err := eraFromRecord(m)
				if err != nil {
					return err
				}
				enc.Write(e.Encode())
				return nil
			})
		},
		func() error {
			return types.RegisterDecoder(lookup, "Era", func(dec *types.Decoder) (any, error) {
				return era.Decode(dec.Input())
			})
		},
		func() error {
			return types.RegisterEncoder(lookup, "AccountId", func(u *account.User, enc *types.Encoder) error {
				return writeKey(enc, u)
			})
		},
		func() error {
			return types.RegisterEncoder(lookup, "AccountId", func(id account.AccountID, enc *types.Encoder) error {
				return writeKey(enc, id)
			})
		},
		func() error {
			return types.RegisterEncoder(lookup, "AccountId", func(s string, enc *types.Encoder) error {
				id, err := parseAccount(keyring, s)
				if err != nil {
					return err
				}
				return writeKey(enc, id)
			})
		},
		func() error {
			return types.RegisterDecoder(lookup, "AccountId", func(dec *types.Decoder) (any, error) {
				var id account.AccountID
				if err := dec.Read(id[:]); err != nil {
					return nil, err
				}
				return id, nil
			})
		},
		func() error {
			return types.RegisterEncoder(lookup, "MultiAddress", func(u *account.User, enc *types.Encoder) error {
				enc.Write([]byte{0})
				return writeKey(enc, u)
			})
		},
		func() error {
			return types.RegisterEncoder(lookup, "MultiAddress", func(id account.AccountID, enc *types.Encoder) error {
				enc.Write([]byte{0})
				return writeKey(enc, id)
			})
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return errors.Wrap(err, "builtin overrides")
		}
	}
	return nil
}

// eraFromRecord accepts {"period": p, "phase": q} as decoded, or
// {"period": p, "current": block} to derive the phase.
func eraFromRecord(m map[string]any) (era.Era, error) {
	field := func(name string) (uint64, bool, error) {
		v, ok := m[name]
		if !ok {
			return 0, false, nil
		}
		n, ok := value.AsNumber(v)
		if !ok || n.IsDecimal() || n.Sign() < 0 || !n.Int().IsUint64() {
			return 0, false, errors.Wrapf(types.ErrShapeMismatch, "Era: invalid %s %v", name, v)
		}
		return n.Int().Uint64(), true, nil
	}

	period, ok, err := field("period")
	if err != nil {
		return era.Era{}, err
	}
	if !ok {
		return era.Era{}, errors.Wrap(types.ErrShapeMismatch, "Era: missing period")
	}
	if current, ok, err := field("current"); err != nil || ok {
		return era.Mortal(period, current), err
	}
	phase, _, err := field("phase")
	if err != nil {
		return era.Era{}, err
	}
	e := era.Era{Period: period, Phase: phase}
	if e != era.Mortal(period, phase) {
		return e, errors.Wrapf(types.ErrShapeMismatch, "Era: period %d phase %d is not canonical", period, phase)
	}
	return e, nil
}

func writeKey(enc *types.Encoder, k types.PublicKeyer) error {
	key := k.PublicKey()
	enc.Write(key[:])
	return nil
}

func parseAccount(keyring *account.Keyring, s string) (account.AccountID, error) {
	if name, ok := strings.CutPrefix(s, "//"); ok && name != "" {
		return keyring.Get(name).Account(), nil
	}
	id, err := account.ParseAccountID(s)
	if err != nil {
		return id, errors.WithSecondaryError(errors.Wrapf(types.ErrShapeMismatch, "AccountId: %v", err), err)
	}
	return id, nil
}

// RegisterBalance makes Balance values token denominated: integers and decimals
// are multiplied by 10^decimals on encode and decoded balances are divided back.
func RegisterBalance(lookup *types.Lookup, decimals uint32) error {
	scale := decimal.New(1, int32(decimals))

	encode := func(v any, enc *types.Encoder) error {
		n, ok := value.AsNumber(v)
		if !ok {
			return errors.Wrapf(types.ErrShapeMismatch, "Balance: unexpected value %T", v)
		}
		units := n.Decimal().Mul(scale).BigInt()
		if units.Sign() < 0 || units.BitLen() > 128 {
			return errors.Wrapf(types.ErrShapeMismatch, "Balance: %s out of range", n)
		}
		if enc.IsCompact() {
			buf, err := codec.AppendCompactBig(nil, units)
			if err != nil {
				return errors.WithSecondaryError(errors.Wrapf(types.ErrShapeMismatch, "Balance: %v", err), err)
			}
			enc.Write(buf)
			return nil
		}
		enc.Write(codec.AppendBigInt(nil, 16, units))
		return nil
	}
	decode := func(compact bool) types.DecodeFunc {
		return func(dec *types.Decoder) (any, error) {
			var (
				units *big.Int
				err   error
			)
			if compact || dec.IsCompact() {
				units, err = codec.DecodeCompact(dec.Input())
			} else {
				units, err = codec.ReadBig(dec.Input(), 16, false)
			}
			if err != nil {
				return nil, err
			}
			return decimal.NewFromBigInt(units, 0).Div(scale), nil
		}
	}

	for _, sample := range []any{int(0), int64(0), decimal.Decimal{}, (*big.Int)(nil)} {
		if err := lookup.CustomEncode("Balance", reflect.TypeOf(sample), encode); err != nil {
			return err
		}
	}
	if err := lookup.CustomDecode("Balance", decode(false)); err != nil {
		return err
	}
	return lookup.CustomDecode("Compact<Balance>", decode(true))
}
