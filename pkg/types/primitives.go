package types

// primitives are bound by InsertPrimitives
var primitives = []struct {
	name string
	meta Meta
}{
	{"u8", Integer{Width: 1}},
	{"u16", Integer{Width: 2}},
	{"u32", Integer{Width: 4}},
	{"u64", Integer{Width: 8}},
	{"u128", Integer{Width: 16}},
	{"i8", Integer{Width: 1, Signed: true}},
	{"i16", Integer{Width: 2, Signed: true}},
	{"i32", Integer{Width: 4, Signed: true}},
	{"i64", Integer{Width: 8, Signed: true}},
	{"i128", Integer{Width: 16, Signed: true}},
	{"bool", Bool{}},
	{"Text", Text{}},
	{"Option<bool>", OptionBool{}},
	{"()", Unit{}},
}

// InsertPrimitives binds the integer, bool and text primitives. `String` and `str`
// alias Text.
func (r *Registry) InsertPrimitives() error {
	for _, p := range primitives {
		if _, err := r.InsertMeta(p.name, p.meta); err != nil {
			return err
		}
	}
	for _, alias := range []string{"String", "str"} {
		if _, err := r.ParseNamedType(alias, "Text"); err != nil {
			return err
		}
	}
	return nil
}

// InsertPrimitives binds the primitive types
func (l *Lookup) InsertPrimitives() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.types.InsertPrimitives()
}
