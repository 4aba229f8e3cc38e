package value

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
)

// ErrJSON is returned for documents that are not valid JSON
var ErrJSON = errors.New("invalid json value")

// FromJSON parses a JSON document into canonical host values. Numbers keep their
// full precision.
func FromJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, errors.Wrap(ErrJSON, err.Error())
	}
	if dec.More() {
		return nil, errors.Wrap(ErrJSON, "trailing data after value")
	}
	return Normalize(v), nil
}

// Normalize rewrites json.Number leaves into int64, *big.Int or decimal.Decimal
func Normalize(v any) any {
	switch t := v.(type) {
	case json.Number:
		n, ok := AsNumber(t)
		if !ok {
			return t.String()
		}
		if n.IsDecimal() {
			return n.d
		}
		if n.i.IsInt64() {
			return n.i.Int64()
		}
		return n.i
	case []any:
		for i := range t {
			t[i] = Normalize(t[i])
		}
		return t
	case map[string]any:
		for k := range t {
			t[k] = Normalize(t[k])
		}
		return t
	}
	return v
}

// ToJSON renders a decoded value. Byte collections print as 0x prefixed hex and
// decimals print as bare JSON numbers.
func ToJSON(v any) ([]byte, error) {
	return json.Marshal(toJSONValue(v))
}

// ToJSONIndent is ToJSON with indentation
func ToJSONIndent(v any) ([]byte, error) {
	return json.MarshalIndent(toJSONValue(v), "", "  ")
}

func toJSONValue(v any) any {
	switch t := v.(type) {
	case []byte:
		return "0x" + hex.EncodeToString(t)
	case decimal.Decimal:
		return json.Number(t.String())
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = toJSONValue(t[i])
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k := range t {
			out[k] = toJSONValue(t[k])
		}
		return out
	}
	return v
}

// ParseHex decodes hex text with an optional 0x prefix
func ParseHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid hex %q", s)
	}
	return b, nil
}

// Hex encodes b as 0x prefixed lowercase hex
func Hex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}
