// Package value is the boundary between SCALE descriptors and dynamic Go values.
//
// Encoders accept a loose set of host shapes and decoders produce a canonical one:
//
//	unit, none      nil
//	integer         int64 when it fits, otherwise decimal.Decimal
//	bool            bool
//	text            string
//	bytes           []byte (collections of u8)
//	sequence        []any
//	record          map[string]any
//
// FromJSON and ToJSON convert between that canonical form and JSON documents.
package value
