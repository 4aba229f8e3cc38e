package types

import (
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/Neopallium/sub-script/pkg/codec"
	"github.com/Neopallium/sub-script/pkg/value"
)

// Decoder reads one value tree from an input cursor. Override hooks receive the
// active Decoder.
type Decoder struct {
	in      codec.Input
	compact bool
	depth   int
	opts    *options
}

// NewDecoder creates a decoder reading from in
func NewDecoder(in codec.Input, opts ...RegistryOption) *Decoder {
	return newDecoder(in, newOptions(opts))
}

func newDecoder(in codec.Input, opts *options) *Decoder {
	return &Decoder{in: in, opts: opts}
}

// Input returns the underlying cursor
func (d *Decoder) Input() codec.Input { return d.in }

// Read fills p from the input
func (d *Decoder) Read(p []byte) error { return d.in.Read(p) }

// ReadByte reads one byte
func (d *Decoder) ReadByte() (byte, error) { return codec.ReadByte(d.in) }

// DecodeCompact reads a compact integer that fits in 64 bits
func (d *Decoder) DecodeCompact() (uint64, error) { return codec.DecodeCompactUint64(d.in) }

// IsCompact reports whether unsigned integers are currently compact decoded
func (d *Decoder) IsCompact() bool { return d.compact }

// Decode reads one value of type ref
func (d *Decoder) Decode(ref *TypeRef) (any, error) {
	d.depth++
	defer func() { d.depth-- }()
	if d.depth > d.opts.maxDepth {
		return nil, errors.Wrapf(ErrRecursionLimit, "decoding %s", ref)
	}
	return d.decodeMeta(ref.Meta())
}

func (d *Decoder) child(ref *TypeRef) (any, error) {
	prev := d.compact
	d.compact = false
	v, err := d.Decode(ref)
	d.compact = prev
	return v, err
}

func (d *Decoder) decodeMeta(meta Meta) (any, error) {
	if ce := d.opts.log.Check(zap.DebugLevel, "decode"); ce != nil {
		ce.Write(zap.Stringer("type", meta), zap.Bool("compact", d.compact))
	}

	switch m := meta.(type) {
	case Unit:
		return nil, nil
	case Integer:
		return d.decodeInteger(m)
	case Bool:
		b, err := d.readTag(meta, 1)
		if err != nil {
			return nil, err
		}
		return b == 1, nil
	case Option:
		tag, err := d.readTag(meta, 1)
		if err != nil {
			return nil, err
		}
		if tag == 0 {
			return nil, nil
		}
		return d.child(m.Elem)
	case OptionBool:
		tag, err := d.readTag(meta, 2)
		if err != nil {
			return nil, err
		}
		switch tag {
		case 1:
			return true, nil
		case 2:
			return false, nil
		}
		return nil, nil
	case Result:
		tag, err := d.readTag(meta, 1)
		if err != nil {
			return nil, err
		}
		key, ref := "Ok", m.Ok
		if tag == 1 {
			key, ref = "Err", m.Err
		}
		v, err := d.child(ref)
		if err != nil {
			return nil, err
		}
		return map[string]any{key: v}, nil
	case Vector:
		n, err := d.DecodeCompact()
		if err != nil {
			return nil, err
		}
		if m.Elem.IsU8() {
			return codec.ReadBytes(d.in, n)
		}
		return d.decodeList(m.Elem, n)
	case Slice:
		if m.Elem.IsU8() {
			return codec.ReadBytes(d.in, uint64(m.Len))
		}
		return d.decodeList(m.Elem, uint64(m.Len))
	case Text:
		n, err := d.DecodeCompact()
		if err != nil {
			return nil, err
		}
		b, err := codec.ReadBytes(d.in, n)
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(b) {
			return nil, errors.Wrap(ErrInvalidData, "text is not valid UTF-8")
		}
		return string(b), nil
	case Tuple:
		out := make([]any, len(m.Elems))
		for i, elem := range m.Elems {
			v, err := d.child(elem)
			if err != nil {
				return nil, errors.Wrapf(err, "tuple element %d", i)
			}
			out[i] = v
		}
		return out, nil
	case Struct:
		out := make(map[string]any, len(m.Fields))
		for _, f := range m.Fields {
			v, err := d.child(f.Type)
			if err != nil {
				return nil, errors.Wrapf(err, "field %q", f.Name)
			}
			out[f.Name] = v
		}
		return out, nil
	case Enum:
		return d.decodeEnum(m)
	case Compact:
		prev := d.compact
		d.compact = true
		v, err := d.Decode(m.Elem)
		d.compact = prev
		return v, err
	case Box:
		return d.Decode(m.Elem)
	case NewType:
		return d.Decode(m.Elem)
	case *Custom:
		if m.decoder != nil {
			return m.decoder(d)
		}
		return d.decodeMeta(m.fallback)
	case Unresolved:
		return nil, errors.Wrapf(ErrUnresolvedType, "decode %s", m.Def)
	}
	return nil, errors.AssertionFailedf("unhandled descriptor %T", meta)
}

// readTag reads a one byte tag and rejects values above limit
func (d *Decoder) readTag(meta Meta, limit byte) (byte, error) {
	tag, err := d.ReadByte()
	if err != nil {
		return 0, err
	}
	if tag > limit {
		return 0, errors.Wrapf(ErrInvalidData, "tag %d for %s", tag, meta)
	}
	return tag, nil
}

func (d *Decoder) decodeInteger(m Integer) (any, error) {
	if !m.Signed && d.compact {
		v, err := codec.DecodeCompact(d.in)
		if err != nil {
			return nil, err
		}
		return value.FromBig(v), nil
	}
	switch {
	case m.Width == 16:
		v, err := codec.ReadBig(d.in, m.Width, m.Signed)
		if err != nil {
			return nil, err
		}
		return value.FromBig(v), nil
	case m.Signed:
		return codec.ReadInt(d.in, m.Width)
	}
	u, err := codec.ReadUint(d.in, m.Width)
	if err != nil {
		return nil, err
	}
	return value.FromUint64(u), nil
}

// maxZeroSizedElems bounds lists whose elements take no bytes, since the length
// prefix is then the only limit on the loop
const maxZeroSizedElems = 1 << 16

func (d *Decoder) decodeList(elem *TypeRef, n uint64) (any, error) {
	if zeroSized(elem) {
		if n > maxZeroSizedElems {
			return nil, errors.Wrapf(ErrInvalidData, "%d zero sized elements, limit %d", n, maxZeroSizedElems)
		}
	} else if rest, ok := d.in.RemainingLen(); ok && n > uint64(rest) {
		// Every other element takes at least one byte.
		return nil, errors.Wrapf(ErrTruncated, "%d elements with %d bytes left", n, rest)
	}
	out := make([]any, 0, min(n, 1024))
	for i := uint64(0); i < n; i++ {
		v, err := d.child(elem)
		if err != nil {
			return nil, errors.Wrapf(err, "element %d", i)
		}
		out = append(out, v)
	}
	return out, nil
}

func zeroSized(ref *TypeRef) bool {
	return zeroSizedMeta(ref.Meta(), 0)
}

func zeroSizedMeta(meta Meta, depth int) bool {
	if depth > maxDescribeDepth {
		return false
	}
	all := func(refs ...*TypeRef) bool {
		for _, ref := range refs {
			if !zeroSizedMeta(ref.Meta(), depth+1) {
				return false
			}
		}
		return true
	}
	switch m := meta.(type) {
	case Unit:
		return true
	case Tuple:
		return all(m.Elems...)
	case Struct:
		for _, f := range m.Fields {
			if !all(f.Type) {
				return false
			}
		}
		return true
	case Slice:
		return m.Len == 0 || all(m.Elem)
	case NewType:
		return all(m.Elem)
	case Box:
		return all(m.Elem)
	case *Custom:
		// A decode hook may read bytes of its own
		return m.decoder == nil && zeroSizedMeta(m.fallback, depth+1)
	}
	return false
}

func (d *Decoder) decodeEnum(m Enum) (any, error) {
	idx, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	variant := m.Variants.ByIndex(idx)
	if variant == nil {
		if d.opts.variant == VariantLenient {
			d.opts.log.Warn("unknown enum variant", zap.Uint8("index", idx), zap.Stringer("enum", m))
			return UnknownVariant{Index: idx}, nil
		}
		return nil, errors.Wrapf(ErrUnknownVariant, "index %d in %s", idx, m)
	}
	if variant.Type == nil {
		return map[string]any{variant.Name: nil}, nil
	}
	v, err := d.child(variant.Type)
	if err != nil {
		return nil, errors.Wrapf(err, "variant %q", variant.Name)
	}
	return map[string]any{variant.Name: v}, nil
}
