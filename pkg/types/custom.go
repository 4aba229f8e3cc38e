package types

import (
	"reflect"
	"sort"
	"strings"
)

// EncodeFunc writes v to enc in place of the default rule for a named type
type EncodeFunc func(v any, enc *Encoder) error

// DecodeFunc reads a value from dec in place of the default rule for a named type
type DecodeFunc func(dec *Decoder) (any, error)

// PublicKeyer is implemented by signing identities. A [u8; 32] slot encodes the
// public key of any value implementing it.
type PublicKeyer interface {
	PublicKey() [32]byte
}

// Custom wraps a descriptor with encode hooks keyed by the Go type of the value and
// an optional decode hook. A Custom is never mutated after it is stored in a handle;
// registering a hook builds a new one.
type Custom struct {
	encoders map[reflect.Type]EncodeFunc
	decoder  DecodeFunc
	fallback Meta
}

func newCustom(fallback Meta) *Custom {
	return &Custom{encoders: map[reflect.Type]EncodeFunc{}, fallback: fallback}
}

// asCustom returns meta as a Custom, wrapping it when needed
func asCustom(meta Meta) *Custom {
	if c, ok := meta.(*Custom); ok {
		return c
	}
	return newCustom(meta)
}

func (c *Custom) clone() *Custom {
	encoders := make(map[reflect.Type]EncodeFunc, len(c.encoders)+1)
	for k, v := range c.encoders {
		encoders[k] = v
	}
	return &Custom{encoders: encoders, decoder: c.decoder, fallback: c.fallback}
}

func (c *Custom) withEncoder(typ reflect.Type, fn EncodeFunc) *Custom {
	next := c.clone()
	next.encoders[typ] = fn
	return next
}

func (c *Custom) withDecoder(fn DecodeFunc) *Custom {
	next := c.clone()
	next.decoder = fn
	return next
}

func (c *Custom) withFallback(fallback Meta) *Custom {
	next := c.clone()
	next.fallback = fallback
	return next
}

// Fallback returns the wrapped descriptor
func (c *Custom) Fallback() Meta { return c.fallback }

// HasDecoder reports whether a decode hook is registered
func (c *Custom) HasDecoder() bool { return c.decoder != nil }

// EncoderTypes returns the Go types with a registered encode hook
func (c *Custom) EncoderTypes() []reflect.Type {
	out := make([]reflect.Type, 0, len(c.encoders))
	for t := range c.encoders {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

func (c *Custom) encoderFor(v any) (EncodeFunc, bool) {
	if v == nil {
		return nil, false
	}
	fn, ok := c.encoders[reflect.TypeOf(v)]
	return fn, ok
}

func (c *Custom) String() string {
	types := c.EncoderTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return "Custom(" + c.fallback.String() + "; " + strings.Join(names, ", ") + ")"
}
