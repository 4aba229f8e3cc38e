package types

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// LoadSchema reads a schema file and registers every type it defines
func (r *Registry) LoadSchema(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read schema %s", path)
	}
	if err := r.LoadSchemaBytes(data); err != nil {
		return errors.Wrapf(err, "schema %s", path)
	}
	return nil
}

// LoadSchemaBytes registers the types of a schema document. The document is an
// object of name to definition, optionally nested under a "types" member.
// Definitions are registered in document order.
func (r *Registry) LoadSchemaBytes(data []byte) error {
	if !gjson.ValidBytes(data) {
		return errors.Wrap(ErrSchemaParse, "invalid json")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return errors.Wrapf(ErrSchemaParse, "expected a json object, got %s", doc.Type)
	}
	if types := doc.Get("types"); types.IsObject() {
		doc = types
	}

	var err error
	doc.ForEach(func(key, val gjson.Result) bool {
		err = r.loadSchemaType(key.String(), val)
		return err == nil
	})
	return err
}

func (r *Registry) loadSchemaType(name string, val gjson.Result) error {
	switch {
	case val.Type == gjson.String:
		_, err := r.ParseNamedType(name, val.String())
		return err
	case val.IsObject():
		if variants := val.Get("_enum"); variants.Exists() {
			return r.loadEnum(name, variants)
		}
		if val.Get("_set").Exists() {
			r.opts.log.Warn("skipping bit set type", zap.String("name", name))
			return nil
		}
		meta, err := r.schemaStruct(name, val)
		if err != nil {
			return err
		}
		_, err = r.InsertMeta(name, meta)
		return err
	}
	r.opts.log.Warn("skipping unsupported schema value",
		zap.String("name", name), zap.String("json", val.Raw))
	return nil
}

func (r *Registry) loadEnum(name string, def gjson.Result) error {
	variants := NewEnumVariants()
	switch {
	case def.IsArray():
		for _, v := range def.Array() {
			if v.Type != gjson.String {
				return errors.Wrapf(ErrSchemaParse, "enum %s: expected variant name, got %s", name, v.Raw)
			}
			if variants.Len() >= maxEnumVariants {
				return tooManyVariants(name)
			}
			variants.Insert(v.String(), nil)
		}
	case def.IsObject():
		var err error
		def.ForEach(func(key, v gjson.Result) bool {
			if variants.Len() >= maxEnumVariants {
				err = tooManyVariants(name)
				return false
			}
			var ref *TypeRef
			ref, err = r.schemaEnumPayload(name+"::"+key.String(), v)
			if err == nil {
				variants.Insert(key.String(), ref)
			}
			return err == nil
		})
		if err != nil {
			return errors.Wrapf(err, "enum %s", name)
		}
	default:
		return errors.Wrapf(ErrSchemaParse, "enum %s: invalid _enum %s", name, def.Raw)
	}
	_, err := r.InsertMeta(name, Enum{Variants: variants})
	return err
}

// maxEnumVariants is the number of indices a one byte variant tag can address
const maxEnumVariants = 256

func tooManyVariants(name string) error {
	return errors.Wrapf(ErrSchemaParse, "enum %s: more than %d variants", name, maxEnumVariants)
}

// schemaEnumPayload returns nil for variants without payload
func (r *Registry) schemaEnumPayload(path string, v gjson.Result) (*TypeRef, error) {
	switch {
	case v.Type == gjson.String && v.String() == "":
		return nil, nil
	case v.Type == gjson.String:
		return r.ParseType(v.String())
	case v.Type == gjson.Null:
		return nil, nil
	case v.IsObject():
		meta, err := r.schemaStruct(path, v)
		if err != nil {
			return nil, err
		}
		return r.NewTypeRef(meta), nil
	}
	return nil, errors.Wrapf(ErrSchemaParse, "%s: expected a type definition, got %s", path, v.Raw)
}

// schemaStruct builds a Struct from an object of field name to definition.
// Nested objects become anonymous structs.
func (r *Registry) schemaStruct(path string, def gjson.Result) (Meta, error) {
	var (
		fields []Field
		err    error
	)
	def.ForEach(func(key, v gjson.Result) bool {
		field := key.String()
		var ref *TypeRef
		switch {
		case v.Type == gjson.String:
			ref, err = r.ParseType(v.String())
		case v.IsObject():
			var meta Meta
			if meta, err = r.schemaStruct(path+"."+field, v); err == nil {
				ref = r.NewTypeRef(meta)
			}
		default:
			err = errors.Wrapf(ErrSchemaParse, "struct %s field %s: expected a type definition, got %s", path, field, v.Raw)
		}
		if err != nil {
			return false
		}
		fields = append(fields, Field{Name: field, Type: ref})
		return true
	})
	if err != nil {
		return nil, err
	}
	return Struct{Fields: fields}, nil
}
