package types

import (
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/Neopallium/sub-script/pkg/codec"
)

// TypeRef is a shared cell holding the descriptor of one type. The pointer is the
// identity of the type: the registry upgrades the descriptor in place, so handles
// taken before a definition was parsed see it once it is.
type TypeRef struct {
	mu   sync.RWMutex
	meta Meta
	opts *options
}

// NewTypeRef creates a standalone handle around meta
func NewTypeRef(meta Meta) *TypeRef {
	return newTypeRef(meta, defaultOpts)
}

func newTypeRef(meta Meta, opts *options) *TypeRef {
	return &TypeRef{meta: meta, opts: opts}
}

// Meta returns the current descriptor
func (r *TypeRef) Meta() Meta {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.meta
}

func (r *TypeRef) set(meta Meta) {
	r.mu.Lock()
	r.meta = meta
	r.mu.Unlock()
}

// IsResolved reports whether the handle has a definition
func (r *TypeRef) IsResolved() bool {
	_, unresolved := r.Meta().(Unresolved)
	return !unresolved
}

// IsU8 reports whether the handle is an unsigned byte, looking through aliases
func (r *TypeRef) IsU8() bool {
	meta := r.Meta()
	for depth := 0; depth < maxDescribeDepth; depth++ {
		switch m := meta.(type) {
		case Integer:
			return m.Width == 1 && !m.Signed
		case NewType:
			meta = m.Elem.Meta()
		case Box:
			meta = m.Elem.Meta()
		case *Custom:
			meta = m.fallback
		default:
			return false
		}
	}
	return false
}

// Encode encodes v. No bytes are returned when encoding fails.
func (r *TypeRef) Encode(v any) ([]byte, error) {
	enc := newEncoder(r.opts)
	if err := enc.Encode(r, v); err != nil {
		return nil, err
	}
	return enc.Bytes(), nil
}

// EncodeTo appends the encoding of v to enc
func (r *TypeRef) EncodeTo(enc *Encoder, v any) error {
	return enc.Encode(r, v)
}

// Decode decodes one value from the front of data. Trailing bytes are ignored.
func (r *TypeRef) Decode(data []byte) (any, error) {
	return r.DecodeFrom(newDecoder(codec.NewInput(data), r.opts))
}

// DecodeAll decodes one value that must span all of data
func (r *TypeRef) DecodeAll(data []byte) (any, error) {
	in := codec.NewInput(data)
	v, err := r.DecodeFrom(newDecoder(in, r.opts))
	if err != nil {
		return nil, err
	}
	if rest, _ := in.RemainingLen(); rest > 0 {
		return nil, errors.Wrapf(ErrInvalidData, "%d trailing bytes after %s", rest, r)
	}
	return v, nil
}

// DecodeFrom decodes one value from dec
func (r *TypeRef) DecodeFrom(dec *Decoder) (any, error) {
	return dec.Decode(r)
}

func (r *TypeRef) String() string {
	if r == nil {
		return "<nil>"
	}
	return r.Meta().String()
}
