package types

import "fmt"

// EnumVariant is one named slot of an Enum. Type is nil for variants without payload.
type EnumVariant struct {
	Index uint8
	Name  string
	Type  *TypeRef
}

// EnumVariants is the ordered variant table of an Enum. Slots may be empty when
// variants were inserted at explicit indices.
type EnumVariants struct {
	slots  []*EnumVariant
	byName map[string]uint8
}

// NewEnumVariants creates an empty variant table
func NewEnumVariants() *EnumVariants {
	return &EnumVariants{byName: make(map[string]uint8)}
}

// Insert appends a variant at the next index and returns that index
func (e *EnumVariants) Insert(name string, ref *TypeRef) uint8 {
	if len(e.slots) > 255 {
		panic(fmt.Sprintf("enum variant %q exceeds 256 variants", name))
	}
	idx := uint8(len(e.slots))
	e.slots = append(e.slots, &EnumVariant{Index: idx, Name: name, Type: ref})
	e.byName[name] = idx
	return idx
}

// InsertAt inserts a variant at an explicit index, back-filling any gap with empty
// slots. idx must not be lower than the current length; violating that is a
// programming error and panics.
func (e *EnumVariants) InsertAt(idx uint8, name string, ref *TypeRef) {
	for len(e.slots) < int(idx) {
		e.slots = append(e.slots, nil)
	}
	if got := e.Insert(name, ref); got != idx {
		panic(fmt.Sprintf("enum variant %q inserted at %d, expected %d", name, got, idx))
	}
}

// ByIndex returns the variant at idx, or nil for an empty or missing slot
func (e *EnumVariants) ByIndex(idx uint8) *EnumVariant {
	if int(idx) >= len(e.slots) {
		return nil
	}
	return e.slots[idx]
}

// ByName returns the variant called name, or nil
func (e *EnumVariants) ByName(name string) *EnumVariant {
	idx, ok := e.byName[name]
	if !ok {
		return nil
	}
	return e.ByIndex(idx)
}

// Variants returns the non-empty slots in index order
func (e *EnumVariants) Variants() []*EnumVariant {
	out := make([]*EnumVariant, 0, len(e.byName))
	for _, v := range e.slots {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}

// Len returns the number of slots, including empty ones
func (e *EnumVariants) Len() int {
	return len(e.slots)
}
