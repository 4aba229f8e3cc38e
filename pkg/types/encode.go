package types

import (
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/Neopallium/sub-script/pkg/codec"
	"github.com/Neopallium/sub-script/pkg/value"
)

// decimalScale is the fixed point factor applied to decimals in u128 and compact slots.
const decimalScale = 1_000_000

// Encoder accumulates the encoding of one value tree. Override hooks receive the
// active Encoder and may write to it directly.
type Encoder struct {
	buf     []byte
	compact bool
	depth   int
	opts    *options
}

// NewEncoder creates an empty encoder
func NewEncoder(opts ...RegistryOption) *Encoder {
	return newEncoder(newOptions(opts))
}

func newEncoder(opts *options) *Encoder {
	return &Encoder{buf: make([]byte, 0, 64), opts: opts}
}

// Write appends raw bytes
func (e *Encoder) Write(p []byte) {
	e.buf = append(e.buf, p...)
}

// WriteByte appends a single byte. It satisfies io.ByteWriter and never fails.
func (e *Encoder) WriteByte(b byte) error {
	e.putByte(b)
	return nil
}

func (e *Encoder) putByte(b byte) {
	e.buf = append(e.buf, b)
}

// EncodeCompact appends a compact integer
func (e *Encoder) EncodeCompact(v uint64) {
	e.buf = codec.AppendCompact(e.buf, v)
}

// IsCompact reports whether unsigned integers are currently compact encoded
func (e *Encoder) IsCompact() bool { return e.compact }

// Bytes returns the bytes written so far
func (e *Encoder) Bytes() []byte { return e.buf }

// Len returns the number of bytes written so far
func (e *Encoder) Len() int { return len(e.buf) }

// Encode appends the encoding of v as type ref
func (e *Encoder) Encode(ref *TypeRef, v any) error {
	e.depth++
	defer func() { e.depth-- }()
	if e.depth > e.opts.maxDepth {
		return errors.Wrapf(ErrRecursionLimit, "encoding %s", ref)
	}
	return e.encodeMeta(ref.Meta(), v)
}

// child encodes v as ref outside of any compact context
func (e *Encoder) child(ref *TypeRef, v any) error {
	prev := e.compact
	e.compact = false
	err := e.Encode(ref, v)
	e.compact = prev
	return err
}

func (e *Encoder) encodeMeta(meta Meta, v any) error {
	if ce := e.opts.log.Check(zap.DebugLevel, "encode"); ce != nil {
		ce.Write(zap.Stringer("type", meta), zap.Bool("compact", e.compact))
	}

	switch m := meta.(type) {
	case Unit:
		return nil
	case Integer:
		return e.encodeInteger(m, v)
	case Bool:
		b, ok := v.(bool)
		if !ok {
			return mismatch(m, v)
		}
		if b {
			return e.WriteByte(1)
		}
		return e.WriteByte(0)
	case Option:
		if v == nil {
			return e.WriteByte(0)
		}
		e.putByte(1)
		return e.child(m.Elem, v)
	case OptionBool:
		switch v {
		case nil:
			return e.WriteByte(0)
		case true:
			return e.WriteByte(1)
		case false:
			return e.WriteByte(2)
		}
		return mismatch(m, v)
	case Result:
		return e.encodeResult(m, v)
	case Vector:
		return e.encodeVector(m, v)
	case Slice:
		return e.encodeSlice(m, v)
	case Text:
		switch s := v.(type) {
		case string:
			e.EncodeCompact(uint64(len(s)))
			e.buf = append(e.buf, s...)
			return nil
		case []byte:
			e.EncodeCompact(uint64(len(s)))
			e.Write(s)
			return nil
		}
		return mismatch(m, v)
	case Tuple:
		return e.encodeTuple(m, v)
	case Struct:
		return e.encodeStruct(m, v)
	case Enum:
		return e.encodeEnum(m, v)
	case Compact:
		prev := e.compact
		e.compact = true
		err := e.Encode(m.Elem, v)
		e.compact = prev
		return err
	case Box:
		return e.Encode(m.Elem, v)
	case NewType:
		return e.Encode(m.Elem, v)
	case *Custom:
		if fn, ok := m.encoderFor(v); ok {
			return fn(v, e)
		}
		return e.encodeMeta(m.fallback, v)
	case Unresolved:
		return errors.Wrapf(ErrUnresolvedType, "encode %s", m.Def)
	}
	return errors.AssertionFailedf("unhandled descriptor %T", meta)
}

func mismatch(meta Meta, v any) error {
	return errors.Wrapf(ErrShapeMismatch, "%s: unexpected value %T", meta, v)
}

func (e *Encoder) encodeInteger(m Integer, v any) error {
	n, ok := value.AsNumber(v)
	if !ok {
		return errors.Wrapf(ErrShapeMismatch, "%s: expected an integer or decimal, got %T", m, v)
	}

	if !m.Signed && e.compact {
		i := n.Scaled(decimalScale)
		if i.Sign() < 0 {
			return errors.Wrapf(ErrShapeMismatch, "%s: compact integer must be non-negative, got %s", m, n)
		}
		buf, err := codec.AppendCompactBig(e.buf, i)
		if err != nil {
			return errors.Wrapf(ErrShapeMismatch, "%s: %v", m, err)
		}
		e.buf = buf
		return nil
	}

	var i *big.Int
	switch {
	case n.IsDecimal() && m.Width == 16:
		i = n.Scaled(decimalScale)
	case n.IsDecimal():
		i = n.Int()
	default:
		i = n.Int()
		// Machine sized integers wrap to the slot width.
		if i.IsInt64() || i.IsUint64() {
			e.buf = codec.AppendBigInt(e.buf, m.Width, i)
			return nil
		}
	}
	if !codec.FitsWidth(i, m.Width, m.Signed) {
		return errors.Wrapf(ErrShapeMismatch, "%s: %s out of range", m, n)
	}
	e.buf = codec.AppendBigInt(e.buf, m.Width, i)
	return nil
}

func (e *Encoder) encodeResult(m Result, v any) error {
	rec, ok := value.AsRecord(v)
	if !ok {
		return mismatch(m, v)
	}
	key, inner, ok := value.SingleKey(rec)
	if !ok {
		return errors.Wrapf(ErrShapeMismatch, "%s: expected exactly one of Ok or Err, got %d keys", m, len(rec))
	}
	switch key {
	case "Ok":
		e.putByte(0)
		return e.child(m.Ok, inner)
	case "Err":
		e.putByte(1)
		return e.child(m.Err, inner)
	}
	return errors.Wrapf(ErrShapeMismatch, "%s: unknown key %q", m, key)
}

func (e *Encoder) encodeVector(m Vector, v any) error {
	if m.Elem.IsU8() {
		if b, ok := byteValue(v); ok {
			e.EncodeCompact(uint64(len(b)))
			e.Write(b)
			return nil
		}
	}
	list, ok := value.AsList(v)
	if !ok {
		return mismatch(m, v)
	}
	e.EncodeCompact(uint64(len(list)))
	for i, item := range list {
		if err := e.child(m.Elem, item); err != nil {
			return errors.Wrapf(err, "element %d", i)
		}
	}
	return nil
}

// byteValue accepts byte slices and 0x prefixed hex text for u8 collections
func byteValue(v any) ([]byte, bool) {
	if s, ok := v.(string); ok {
		if !strings.HasPrefix(s, "0x") {
			return nil, false
		}
		b, err := hex.DecodeString(s[2:])
		return b, err == nil
	}
	return value.AsBytes(v)
}

func (e *Encoder) encodeSlice(m Slice, v any) error {
	if m.Elem.IsU8() {
		switch t := v.(type) {
		case PublicKeyer:
			if m.Len == 32 {
				key := t.PublicKey()
				e.Write(key[:])
				return nil
			}
		case string:
			return e.encodeFixedString(m, t)
		}
		if b, ok := value.AsBytes(v); ok {
			if len(b) != m.Len {
				return errors.Wrapf(ErrShapeMismatch, "%s: expected %d bytes, got %d", m, m.Len, len(b))
			}
			e.Write(b)
			return nil
		}
	}

	list, ok := value.AsList(v)
	if !ok {
		return mismatch(m, v)
	}
	if len(list) != m.Len {
		return errors.Wrapf(ErrShapeMismatch, "%s: expected %d elements, got %d", m, m.Len, len(list))
	}
	for i, item := range list {
		if err := e.child(m.Elem, item); err != nil {
			return errors.Wrapf(err, "element %d", i)
		}
	}
	return nil
}

// encodeFixedString writes a string of exactly n bytes raw, or decodes hex text of
// at least 2n characters.
func (e *Encoder) encodeFixedString(m Slice, s string) error {
	switch {
	case len(s) == m.Len:
		e.buf = append(e.buf, s...)
		return nil
	case len(s) >= 2*m.Len:
		b, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
		if err != nil {
			return errors.Wrapf(ErrShapeMismatch, "%s: invalid hex: %v", m, err)
		}
		if len(b) != m.Len {
			return errors.Wrapf(ErrShapeMismatch, "%s: hex decodes to %d bytes", m, len(b))
		}
		e.Write(b)
		return nil
	}
	return errors.Wrapf(ErrShapeMismatch, "%s: cannot convert string of length %d", m, len(s))
}

func (e *Encoder) encodeTuple(m Tuple, v any) error {
	if len(m.Elems) == 0 && v == nil {
		return nil
	}
	list, ok := value.AsList(v)
	if !ok {
		return mismatch(m, v)
	}
	if len(list) != len(m.Elems) {
		return errors.Wrapf(ErrShapeMismatch, "%s: expected %d values, got %d", m, len(m.Elems), len(list))
	}
	for i, elem := range m.Elems {
		if err := e.child(elem, list[i]); err != nil {
			return errors.Wrapf(err, "tuple element %d", i)
		}
	}
	return nil
}

func (e *Encoder) encodeStruct(m Struct, v any) error {
	rec, ok := value.AsRecord(v)
	if !ok {
		return mismatch(m, v)
	}
	for _, f := range m.Fields {
		fv, ok := rec[f.Name]
		if !ok {
			return errors.Wrapf(ErrShapeMismatch, "missing field %q", f.Name)
		}
		if err := e.child(f.Type, fv); err != nil {
			return errors.Wrapf(err, "field %q", f.Name)
		}
	}
	return nil
}

func (e *Encoder) encodeEnum(m Enum, v any) error {
	rec, ok := value.AsRecord(v)
	if !ok {
		return mismatch(m, v)
	}
	name, payload, ok := value.SingleKey(rec)
	if !ok {
		return errors.Wrapf(ErrShapeMismatch, "enum value must have exactly one variant, got %d", len(rec))
	}
	variant := m.Variants.ByName(name)
	if variant == nil {
		return errors.Wrapf(ErrShapeMismatch, "unknown enum variant %q", name)
	}
	e.putByte(variant.Index)
	if variant.Type == nil {
		return nil
	}
	return errors.Wrapf(e.child(variant.Type, payload), "variant %q", name)
}
