package types

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

var typeTextCleaner = strings.NewReplacer("\r", "", "\n", "", "T::", "")

// ParseType returns the handle for a type expression, parsing it on first use
func (r *Registry) ParseType(name string) (*TypeRef, error) {
	name = typeTextCleaner.Replace(strings.TrimSpace(name))
	ref := r.Resolve(name)
	un, ok := ref.Meta().(Unresolved)
	if !ok {
		return ref, nil
	}
	meta, err := r.parse(un.Def)
	if err != nil {
		return nil, err
	}
	if _, still := meta.(Unresolved); !still {
		ref.set(meta)
	}
	return ref, nil
}

// parse builds the descriptor for a type expression. The form is chosen by the
// last character: `>` generics, `)` tuples, `]` fixed arrays. Anything else is a
// name that waits for a definition.
func (r *Registry) parse(def string) (Meta, error) {
	switch {
	case strings.HasSuffix(def, ">"):
		return r.parseGeneric(def)
	case strings.HasSuffix(def, ")"):
		return r.parseTuple(def)
	case strings.HasSuffix(def, "]"):
		return r.parseSlice(def)
	}
	return Unresolved{Def: def}, nil
}

func (r *Registry) parseGeneric(def string) (Meta, error) {
	wrap, inner, ok := strings.Cut(strings.TrimSuffix(def, ">"), "<")
	if !ok {
		return nil, errors.Wrapf(ErrSchemaParse, "malformed generic %q", def)
	}
	wrap, inner = strings.TrimSpace(wrap), strings.TrimSpace(inner)

	switch wrap {
	case "Vec":
		elem, err := r.ParseType(inner)
		return Vector{Elem: elem}, err
	case "Option":
		elem, err := r.ParseType(inner)
		return Option{Elem: elem}, err
	case "Compact":
		elem, err := r.ParseType(inner)
		return Compact{Elem: elem}, err
	case "Box":
		elem, err := r.ParseType(inner)
		return Box{Elem: elem}, err
	case "Result":
		okDef, errDef, hasErr := strings.Cut(inner, ",")
		if !hasErr {
			errDef = "Error"
		}
		okRef, err := r.ParseType(okDef)
		if err != nil {
			return nil, err
		}
		errRef, err := r.ParseType(errDef)
		if err != nil {
			return nil, err
		}
		return Result{Ok: okRef, Err: errRef}, nil
	case "PhantomData", "sp_std::marker::PhantomData":
		return Unit{}, nil
	}

	if _, known := r.types[wrap]; known {
		return NewType{Name: wrap, Elem: r.Resolve(wrap)}, nil
	}
	return Unresolved{Def: def}, nil
}

// parseTuple splits on every comma. A comma inside a nested generic such as
// `(Option<(u8, u16)>, u32)` is split too and the element fails to parse.
func (r *Registry) parseTuple(def string) (Meta, error) {
	var elems []*TypeRef
	for _, part := range strings.Split(strings.Trim(def, "()"), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		ref, err := r.ParseType(part)
		if err != nil {
			return nil, errors.Wrapf(err, "tuple %q", def)
		}
		elems = append(elems, ref)
	}
	return Tuple{Elems: elems}, nil
}

func (r *Registry) parseSlice(def string) (Meta, error) {
	elemDef, lenDef, ok := strings.Cut(strings.Trim(def, "[]"), ";")
	if !ok {
		return nil, errors.Wrapf(ErrSchemaParse, "malformed fixed array %q", def)
	}
	n, err := strconv.ParseUint(strings.TrimSpace(lenDef), 10, 31)
	if err != nil {
		return nil, errors.Wrapf(ErrSchemaParse, "fixed array %q length: %v", def, err)
	}
	elem, err := r.ParseType(elemDef)
	if err != nil {
		return nil, err
	}
	return Slice{Len: int(n), Elem: elem}, nil
}
