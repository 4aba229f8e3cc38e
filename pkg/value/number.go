package value

import (
	"encoding/json"
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// Number is an integer or fixed point host value headed for an integer slot
type Number struct {
	i   *big.Int
	d   decimal.Decimal
	dec bool
}

// IntNumber wraps an integer
func IntNumber(i *big.Int) Number {
	return Number{i: i}
}

// DecimalNumber wraps a decimal
func DecimalNumber(d decimal.Decimal) Number {
	return Number{d: d, dec: true}
}

// IsDecimal reports whether the number came from a fixed point value
func (n Number) IsDecimal() bool { return n.dec }

// Int returns the integer value, truncating any fraction toward zero
func (n Number) Int() *big.Int {
	if n.dec {
		return n.d.BigInt()
	}
	return n.i
}

// Scaled returns decimals multiplied by factor and truncated. Integers are
// returned unchanged.
func (n Number) Scaled(factor int64) *big.Int {
	if n.dec {
		return n.d.Mul(decimal.NewFromInt(factor)).BigInt()
	}
	return n.i
}

// Decimal returns the number as a decimal
func (n Number) Decimal() decimal.Decimal {
	if n.dec {
		return n.d
	}
	return decimal.NewFromBigInt(n.i, 0)
}

// Sign returns -1, 0 or +1
func (n Number) Sign() int {
	if n.dec {
		return n.d.Sign()
	}
	return n.i.Sign()
}

func (n Number) String() string {
	if n.dec {
		return n.d.String()
	}
	return n.i.String()
}

// AsNumber converts numeric host values. decimal.Decimal values and json.Number
// text with a fraction or exponent are fixed point; integral floats are integers.
func AsNumber(v any) (Number, bool) {
	switch n := v.(type) {
	case int:
		return IntNumber(big.NewInt(int64(n))), true
	case int8:
		return IntNumber(big.NewInt(int64(n))), true
	case int16:
		return IntNumber(big.NewInt(int64(n))), true
	case int32:
		return IntNumber(big.NewInt(int64(n))), true
	case int64:
		return IntNumber(big.NewInt(n)), true
	case uint:
		return IntNumber(new(big.Int).SetUint64(uint64(n))), true
	case uint8:
		return IntNumber(big.NewInt(int64(n))), true
	case uint16:
		return IntNumber(big.NewInt(int64(n))), true
	case uint32:
		return IntNumber(big.NewInt(int64(n))), true
	case uint64:
		return IntNumber(new(big.Int).SetUint64(n)), true
	case *big.Int:
		if n == nil {
			return Number{}, false
		}
		return IntNumber(n), true
	case big.Int:
		return IntNumber(&n), true
	case decimal.Decimal:
		return DecimalNumber(n), true
	case *decimal.Decimal:
		if n == nil {
			return Number{}, false
		}
		return AsNumber(*n)
	case json.Number:
		if i, ok := new(big.Int).SetString(n.String(), 10); ok {
			return IntNumber(i), true
		}
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return Number{}, false
		}
		return DecimalNumber(d), true
	case float32:
		return AsNumber(float64(n))
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return Number{}, false
		}
		d := decimal.NewFromFloat(n)
		if d.IsInteger() {
			return IntNumber(d.BigInt()), true
		}
		return DecimalNumber(d), true
	}
	return Number{}, false
}

// FromBig returns the canonical host value for a decoded integer
func FromBig(i *big.Int) any {
	if i.IsInt64() {
		return i.Int64()
	}
	return decimal.NewFromBigInt(i, 0)
}

// FromUint64 returns the canonical host value for a decoded unsigned integer
func FromUint64(u uint64) any {
	if u <= math.MaxInt64 {
		return int64(u)
	}
	return decimal.NewFromBigInt(new(big.Int).SetUint64(u), 0)
}
