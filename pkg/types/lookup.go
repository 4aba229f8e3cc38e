package types

import (
	"io"
	"reflect"
	"sync"
)

// Lookup is a Registry shared between goroutines. Operations that may create or
// upgrade handles take the write lock; encoding and decoding through a handle
// never touch the table lock.
type Lookup struct {
	mu    sync.RWMutex
	types *Registry
}

// NewLookup creates an empty lookup
func NewLookup(opts ...RegistryOption) *Lookup {
	return &Lookup{types: NewRegistry(opts...)}
}

// NewLookupFrom takes ownership of an existing registry
func NewLookupFrom(types *Registry) *Lookup {
	return &Lookup{types: types}
}

// Resolve returns the handle for name, creating an unresolved one if needed
func (l *Lookup) Resolve(name string) *TypeRef {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.types.Resolve(name)
}

// ParseType returns the handle for a type expression, parsing it on first use
func (l *Lookup) ParseType(def string) (*TypeRef, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.types.ParseType(def)
}

// ParseNamedType parses def and binds it to name
func (l *Lookup) ParseNamedType(name, def string) (*TypeRef, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.types.ParseNamedType(name, def)
}

// Insert binds name to ref
func (l *Lookup) Insert(name string, ref *TypeRef) (*TypeRef, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.types.Insert(name, ref)
}

// InsertMeta binds name to a new handle around meta
func (l *Lookup) InsertMeta(name string, meta Meta) (*TypeRef, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.types.InsertMeta(name, meta)
}

// NewTypeRef creates an unbound handle that shares the lookup's options
func (l *Lookup) NewTypeRef(meta Meta) *TypeRef {
	return newTypeRef(meta, l.types.opts)
}

// LoadSchema loads a schema file
func (l *Lookup) LoadSchema(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.types.LoadSchema(path)
}

// LoadSchemaBytes loads a schema document
func (l *Lookup) LoadSchemaBytes(data []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.types.LoadSchemaBytes(data)
}

// ResolvePending re-parses unresolved handles
func (l *Lookup) ResolvePending() (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.types.ResolvePending()
}

// CustomEncode registers an encode hook on name for values of Go type typ
func (l *Lookup) CustomEncode(name string, typ reflect.Type, fn EncodeFunc) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.types.CustomEncode(name, typ, fn)
}

// CustomDecode registers the decode hook on name
func (l *Lookup) CustomDecode(name string, fn DecodeFunc) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.types.CustomDecode(name, fn)
}

// Get returns the handle bound to name without creating one
func (l *Lookup) Get(name string) (*TypeRef, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.types.Get(name)
}

// Len returns the number of bound names
func (l *Lookup) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.types.Len()
}

// Names returns the bound names in insertion order
func (l *Lookup) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.types.Names()
}

// Unresolved returns the names still waiting for a definition
func (l *Lookup) Unresolved() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.types.Unresolved()
}

// Dump writes every type definition to w
func (l *Lookup) Dump(w io.Writer) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.types.Dump(w)
}

// DumpUnresolved writes the unresolved names to w
func (l *Lookup) DumpUnresolved(w io.Writer) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.types.DumpUnresolved(w)
}

// RegisterEncoder registers fn as the encoder for values of type T on type name.
// T must be concrete: an interface T returns ErrShapeMismatch.
func RegisterEncoder[T any](l *Lookup, name string, fn func(v T, enc *Encoder) error) error {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	return l.CustomEncode(name, typ, func(v any, enc *Encoder) error {
		return fn(v.(T), enc)
	})
}

// RegisterDecoder registers fn as the decoder for type name
func RegisterDecoder(l *Lookup, name string, fn DecodeFunc) error {
	return l.CustomDecode(name, fn)
}
