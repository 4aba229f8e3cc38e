package value

import (
	"encoding/json"
	"math"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsNumber(t *testing.T) {
	testCases := []struct {
		name    string
		input   any
		decimal bool
		str     string
	}{
		{name: "int", input: 42, str: "42"},
		{name: "int8", input: int8(-3), str: "-3"},
		{name: "uint64 max", input: uint64(math.MaxUint64), str: "18446744073709551615"},
		{name: "big", input: new(big.Int).Lsh(big.NewInt(1), 100), str: "1267650600228229401496703205376"},
		{name: "json integer", input: json.Number("123456789012345678901234567890"), str: "123456789012345678901234567890"},
		{name: "json fraction", input: json.Number("1.25"), decimal: true, str: "1.25"},
		{name: "integral float", input: 3.0, str: "3"},
		{name: "fractional float", input: 0.5, decimal: true, str: "0.5"},
		{name: "decimal", input: decimal.NewFromInt(7), decimal: true, str: "7"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			n, ok := AsNumber(tc.input)
			require.True(t, ok)
			assert.Equal(t, tc.decimal, n.IsDecimal())
			assert.Equal(t, tc.str, n.String())
		})
	}

	for _, bad := range []any{"12", nil, true, math.NaN(), (*big.Int)(nil), []any{1}} {
		_, ok := AsNumber(bad)
		assert.False(t, ok, "%#v", bad)
	}
}

func TestNumber_Scaled(t *testing.T) {
	n, _ := AsNumber(decimal.RequireFromString("1.2345678"))
	assert.Equal(t, "1234567", n.Scaled(1_000_000).String())
	assert.Equal(t, "1", n.Int().String())

	i, _ := AsNumber(5)
	assert.Equal(t, "5", i.Scaled(1_000_000).String())

	neg, _ := AsNumber(decimal.RequireFromString("-2.7"))
	assert.Equal(t, -1, neg.Sign())
	assert.Equal(t, "-2", neg.Int().String())
}

func TestFromBig(t *testing.T) {
	assert.Equal(t, int64(-5), FromBig(big.NewInt(-5)))

	huge := new(big.Int).Lsh(big.NewInt(1), 70)
	d, ok := FromBig(huge).(decimal.Decimal)
	require.True(t, ok)
	assert.Equal(t, huge.String(), d.String())

	assert.Equal(t, int64(math.MaxInt64), FromUint64(math.MaxInt64))
	_, ok = FromUint64(math.MaxUint64).(decimal.Decimal)
	assert.True(t, ok)
}
