// Package types is a dynamic SCALE type registry and codec.
//
// Types are described at run time by JSON schema documents and textual type
// expressions such as `Vec<(u32, Option<AccountId>)>` or `[u8; 32]`. Each named
// type lives in a *TypeRef handle. Handles may be referenced before they are
// defined; the registry upgrades them in place when the definition arrives, so
// mutually recursive and forward referencing schemas load in any order.
//
// A minimal session:
//
//	lookup := types.NewLookup()
//	_ = lookup.InsertPrimitives()
//	_ = lookup.LoadSchemaBytes([]byte(`{"Point": {"x": "u32", "y": "u32"}}`))
//	point, _ := lookup.ParseType("Point")
//	data, _ := point.Encode(map[string]any{"x": 1, "y": 2})
//	v, _ := point.Decode(data)
//
// Encoding accepts the host values documented in package value and decoding
// produces them. Named types can be given override hooks keyed by the Go type of
// the value being encoded with CustomEncode or RegisterEncoder, and one decode
// hook with CustomDecode.
//
// Lookup is safe for concurrent use. Table operations hold its lock; encoding and
// decoding only read each handle's descriptor.
package types
