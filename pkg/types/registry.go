package types

import (
	"fmt"
	"io"
	"reflect"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// Registry is an ordered table of named types. It is not safe for concurrent use;
// Lookup adds locking.
type Registry struct {
	types map[string]*TypeRef
	order []string
	opts  *options
}

// NewRegistry creates an empty registry
func NewRegistry(opts ...RegistryOption) *Registry {
	return &Registry{
		types: make(map[string]*TypeRef),
		opts:  newOptions(opts),
	}
}

// NewTypeRef creates a handle sharing the registry's options without binding a name
func (r *Registry) NewTypeRef(meta Meta) *TypeRef {
	return newTypeRef(meta, r.opts)
}

// Get returns the handle bound to name without creating one
func (r *Registry) Get(name string) (*TypeRef, bool) {
	ref, ok := r.types[name]
	return ref, ok
}

// Len returns the number of bound names
func (r *Registry) Len() int { return len(r.order) }

// Names returns every bound name in insertion order
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Resolve returns the handle for name, creating an unresolved one if needed
func (r *Registry) Resolve(name string) *TypeRef {
	if ref, ok := r.types[name]; ok {
		return ref
	}
	ref := newTypeRef(Unresolved{Def: name}, r.opts)
	r.bind(name, ref)
	return ref
}

func (r *Registry) bind(name string, ref *TypeRef) {
	r.types[name] = ref
	r.order = append(r.order, name)
}

// InsertMeta binds name to a new handle holding meta
func (r *Registry) InsertMeta(name string, meta Meta) (*TypeRef, error) {
	return r.Insert(name, newTypeRef(meta, r.opts))
}

// Insert binds name to ref and returns the handle callers should use for name.
// A name that was only referenced so far keeps its handle, which becomes an alias
// of ref. A name that already has a definition is handled by the redefine policy.
func (r *Registry) Insert(name string, ref *TypeRef) (*TypeRef, error) {
	old, ok := r.types[name]
	if !ok {
		r.bind(name, ref)
		return ref, nil
	}
	if old == ref {
		return old, nil
	}

	alias := NewType{Name: name, Elem: ref}
	switch m := old.Meta().(type) {
	case Unresolved:
		old.set(alias)
		return old, nil
	case *Custom:
		// Overrides registered before the definition keep their hooks.
		if _, pending := m.fallback.(Unresolved); pending {
			old.set(m.withFallback(alias))
			return old, nil
		}
	}

	switch r.opts.redefine {
	case RedefineReject:
		return old, errors.Wrapf(ErrRedefinition, "type %q is already defined as %s", name, Describe(old))
	case RedefineOverwrite:
		r.opts.log.Warn("redefining type", zap.String("name", name), zap.Stringer("type", ref))
		if c, ok := old.Meta().(*Custom); ok {
			old.set(c.withFallback(alias))
		} else {
			old.set(alias)
		}
	default:
		r.opts.log.Warn("ignoring type redefinition", zap.String("name", name), zap.Stringer("type", ref))
	}
	return old, nil
}

// ParseNamedType parses def and binds it to name as an alias
func (r *Registry) ParseNamedType(name, def string) (*TypeRef, error) {
	ref, err := r.ParseType(def)
	if err != nil {
		return nil, errors.Wrapf(err, "type %q", name)
	}
	return r.InsertMeta(name, NewType{Name: name, Elem: ref})
}

// CustomEncode registers an encode hook for values of Go type typ on type name.
// typ must be a concrete type; interface types are rejected.
func (r *Registry) CustomEncode(name string, typ reflect.Type, fn EncodeFunc) error {
	// Hooks match the dynamic type of a value, which is never an interface.
	if typ == nil || typ.Kind() == reflect.Interface {
		return errors.Wrapf(ErrShapeMismatch, "custom encoder for %s: %v is not a concrete type", name, typ)
	}
	ref, err := r.ParseType(name)
	if err != nil {
		return err
	}
	ref.mu.Lock()
	ref.meta = asCustom(ref.meta).withEncoder(typ, fn)
	ref.mu.Unlock()
	return nil
}

// CustomDecode registers the decode hook for type name, replacing any previous one
func (r *Registry) CustomDecode(name string, fn DecodeFunc) error {
	ref, err := r.ParseType(name)
	if err != nil {
		return err
	}
	ref.mu.Lock()
	ref.meta = asCustom(ref.meta).withDecoder(fn)
	ref.mu.Unlock()
	return nil
}

// Unresolved returns the names whose handles have no definition yet, in insertion order
func (r *Registry) Unresolved() []string {
	var out []string
	for _, name := range r.order {
		if !r.types[name].IsResolved() {
			out = append(out, name)
		}
	}
	return out
}

// ResolvePending re-parses every unresolved handle and returns how many gained a
// definition. Generic aliases such as `Foo<u32>` are only recognised once `Foo`
// exists, so this is worth calling after loading more schema.
func (r *Registry) ResolvePending() (int, error) {
	resolved := 0
	for _, name := range r.Unresolved() {
		ref := r.types[name]
		un, ok := ref.Meta().(Unresolved)
		if !ok {
			continue
		}
		meta, err := r.parse(un.Def)
		if err != nil {
			return resolved, err
		}
		if _, still := meta.(Unresolved); still {
			continue
		}
		ref.set(meta)
		resolved++
	}
	return resolved, nil
}

// Dump writes every type and its definition
func (r *Registry) Dump(w io.Writer) error {
	for idx, name := range r.order {
		if _, err := fmt.Fprintf(w, "Type[%d]: %s => %s\n", idx, name, Describe(r.types[name])); err != nil {
			return err
		}
	}
	return nil
}

// DumpUnresolved writes the names still waiting for a definition
func (r *Registry) DumpUnresolved(w io.Writer) error {
	for _, name := range r.Unresolved() {
		un, _ := r.types[name].Meta().(Unresolved)
		if _, err := fmt.Fprintf(w, "Unresolved: %s => %s\n", name, un.Def); err != nil {
			return err
		}
	}
	return nil
}
