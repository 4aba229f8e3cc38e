// Package codec provides the SCALE wire primitives used by sub-script.
//
// The codec package implements the low-level pieces of the SCALE binary format:
// the variable-length compact integer, fixed-width little-endian integers and the
// byte cursor that decoders read from. Higher level, schema driven encoding lives
// in the types package and is built entirely on top of these functions.
//
// # Compact Integer Format
//
// A compact integer selects one of four modes with the two low bits of its first byte:
//
//	0b00  single byte     value < 2^6   [value<<2]
//	0b01  two bytes       value < 2^14  LE u16 of (value<<2 | 0b01)
//	0b10  four bytes      value < 2^30  LE u32 of (value<<2 | 0b10)
//	0b11  big integer     value >= 2^30 [(n-4)<<2 | 0b11][n LE value bytes]
//
// In big integer mode n is the minimal number of bytes needed to hold the value and is
// never less than four. The decoder rejects encodings that are not canonical, that is a
// value written with a wider mode than it needs.
//
// Some literal encodings:
//
//	0      => 00
//	63     => fc
//	64     => 01 01
//	16383  => fd ff
//	16384  => 02 00 01 00
//	2^30   => 03 00 00 00 40
//
// # Fixed Width Integers
//
// Fixed width integers are written in little-endian two's complement using exactly the
// declared width (1, 2, 4, 8 or 16 bytes). Values wider than the slot are truncated to
// it the same way a narrowing integer conversion would.
//
// # Input
//
// Decoders read through the Input interface:
//
//	in := codec.NewInput(data)
//	n, err := codec.DecodeCompactUint64(in)
//	if err != nil {
//	    return err
//	}
//
// An Input must fill the whole destination buffer or return ErrTruncated. Running out
// of bytes is always reported as ErrTruncated so callers can test for it with errors.Is.
//
// # Thread Safety
//
// The functions in this package are stateless and safe for concurrent use. Input
// implementations are not; each decode call tree should own its cursor.
package codec
