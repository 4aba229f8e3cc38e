package types

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// Meta describes the wire shape of one type. The concrete descriptors below are the
// only implementations.
type Meta interface {
	fmt.Stringer
	isMeta()
}

// Unit is the zero-sized type `()`
type Unit struct{}

// Integer is a fixed width integer. Width is in bytes.
type Integer struct {
	Width  int
	Signed bool
}

// Bool is a single byte boolean
type Bool struct{}

// Option is a one byte presence tag followed by Elem when present
type Option struct {
	Elem *TypeRef
}

// OptionBool is the tri-state single byte encoding of Option<bool>
type OptionBool struct{}

// Result is a one byte tag followed by Ok (tag 0) or Err (tag 1)
type Result struct {
	Ok  *TypeRef
	Err *TypeRef
}

// Vector is a compact length prefix followed by that many elements
type Vector struct {
	Elem *TypeRef
}

// Slice is a fixed count of elements with no length prefix
type Slice struct {
	Len  int
	Elem *TypeRef
}

// Text is a compact length prefixed UTF-8 string
type Text struct{}

// Tuple is a positional sequence of types
type Tuple struct {
	Elems []*TypeRef
}

// Field is one named member of a Struct
type Field struct {
	Name string
	Type *TypeRef
}

// Struct is a sequence of named fields, encoded in declaration order
type Struct struct {
	Fields []Field
}

// Enum is a one byte variant index followed by the variant payload
type Enum struct {
	Variants *EnumVariants
}

// Compact switches unsigned integers inside Elem to the compact encoding
type Compact struct {
	Elem *TypeRef
}

// Box is a transparent wrapper
type Box struct {
	Elem *TypeRef
}

// NewType is a transparent named alias of Elem
type NewType struct {
	Name string
	Elem *TypeRef
}

// Unresolved is a placeholder for a type whose definition has not been seen yet
type Unresolved struct {
	Def string
}

func (Unit) isMeta()       {}
func (Integer) isMeta()    {}
func (Bool) isMeta()       {}
func (Option) isMeta()     {}
func (OptionBool) isMeta() {}
func (Result) isMeta()     {}
func (Vector) isMeta()     {}
func (Slice) isMeta()      {}
func (Text) isMeta()       {}
func (Tuple) isMeta()      {}
func (Struct) isMeta()     {}
func (Enum) isMeta()       {}
func (Compact) isMeta()    {}
func (Box) isMeta()        {}
func (NewType) isMeta()    {}
func (Unresolved) isMeta() {}
func (*Custom) isMeta()    {}

func (Unit) String() string { return "()" }

func (m Integer) String() string {
	prefix := "u"
	if m.Signed {
		prefix = "i"
	}
	return fmt.Sprintf("%s%d", prefix, m.Width*8)
}

func (Bool) String() string { return "bool" }

func (m Option) String() string { return "Option<" + m.Elem.String() + ">" }

func (OptionBool) String() string { return "Option<bool>" }

func (m Result) String() string {
	return "Result<" + m.Ok.String() + ", " + m.Err.String() + ">"
}

func (m Vector) String() string { return "Vec<" + m.Elem.String() + ">" }

func (m Slice) String() string { return fmt.Sprintf("[%s; %d]", m.Elem, m.Len) }

func (Text) String() string { return "Text" }

func (m Tuple) String() string {
	parts := make([]string, len(m.Elems))
	for i, elem := range m.Elems {
		parts[i] = elem.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (m Struct) String() string {
	parts := make([]string, len(m.Fields))
	for i, f := range m.Fields {
		parts[i] = f.Name + ": " + f.Type.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (m Enum) String() string {
	variants := m.Variants.Variants()
	parts := make([]string, len(variants))
	for i, v := range variants {
		if v.Type != nil {
			parts[i] = fmt.Sprintf("%s(%s)", v.Name, v.Type)
		} else {
			parts[i] = v.Name
		}
	}
	return "enum{" + strings.Join(parts, ", ") + "}"
}

func (m Compact) String() string { return "Compact<" + m.Elem.String() + ">" }

func (m Box) String() string { return "Box<" + m.Elem.String() + ">" }

// String prints only the alias name, which keeps cyclic graphs printable.
func (m NewType) String() string { return m.Name }

func (m Unresolved) String() string { return "?" + m.Def }

// NewInteger returns an Integer descriptor, rejecting unsupported widths
func NewInteger(width int, signed bool) (Integer, error) {
	switch width {
	case 1, 2, 4, 8, 16:
		return Integer{Width: width, Signed: signed}, nil
	}
	return Integer{}, errors.Wrapf(ErrSchemaParse, "unsupported integer width %d", width)
}

// Describe prints the definition behind ref, looking through its own alias layers
func Describe(ref *TypeRef) string {
	meta := ref.Meta()
	if c, ok := meta.(*Custom); ok {
		return "custom " + describeMeta(c.fallback)
	}
	return describeMeta(meta)
}

func describeMeta(meta Meta) string {
	nt, ok := meta.(NewType)
	if !ok {
		return meta.String()
	}
	for depth := 0; depth < maxDescribeDepth; depth++ {
		next := nt.Elem.Meta()
		inner, ok := next.(NewType)
		if !ok || inner.Name != nt.Name {
			return next.String()
		}
		nt = inner
	}
	return nt.Name
}

const maxDescribeDepth = 16
