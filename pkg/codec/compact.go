package codec

import (
	"encoding/binary"
	"math/big"
	"math/bits"

	"github.com/cockroachdb/errors"
)

const (
	modeSingle = 0b00
	modeTwo    = 0b01
	modeFour   = 0b10
	modeBig    = 0b11

	// maxCompactBytes is the widest payload accepted in big integer mode (u128).
	maxCompactBytes = 16
)

// AppendCompact appends the compact encoding of v to buf
func AppendCompact(buf []byte, v uint64) []byte {
	switch {
	case v < 1<<6:
		return append(buf, byte(v<<2)|modeSingle)
	case v < 1<<14:
		return binary.LittleEndian.AppendUint16(buf, uint16(v<<2)|modeTwo)
	case v < 1<<30:
		return binary.LittleEndian.AppendUint32(buf, uint32(v<<2)|modeFour)
	}

	n := (bits.Len64(v) + 7) / 8
	buf = append(buf, byte(n-4)<<2|modeBig)
	for i := 0; i < n; i++ {
		buf = append(buf, byte(v>>(8*i)))
	}
	return buf
}

// AppendCompactBig appends the compact encoding of a non-negative integer up to 2^128-1
func AppendCompactBig(buf []byte, v *big.Int) ([]byte, error) {
	if v.Sign() < 0 {
		return buf, errors.Wrapf(ErrOutOfRange, "compact integer must be non-negative, got %s", v)
	}
	if v.IsUint64() {
		return AppendCompact(buf, v.Uint64()), nil
	}
	if v.BitLen() > 8*maxCompactBytes {
		return buf, errors.Wrapf(ErrOutOfRange, "compact integer too large: %s", v)
	}

	be := v.Bytes()
	buf = append(buf, byte(len(be)-4)<<2|modeBig)
	for i := len(be) - 1; i >= 0; i-- {
		buf = append(buf, be[i])
	}
	return buf, nil
}

// CompactLen returns the number of bytes AppendCompact would write for v
func CompactLen(v uint64) int {
	switch {
	case v < 1<<6:
		return 1
	case v < 1<<14:
		return 2
	case v < 1<<30:
		return 4
	}
	return 1 + (bits.Len64(v)+7)/8
}

// DecodeCompactUint64 reads a compact integer that must fit in a uint64
func DecodeCompactUint64(in Input) (uint64, error) {
	v, err := DecodeCompact(in)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, errors.Wrapf(ErrOutOfRange, "compact integer %s exceeds u64", v)
	}
	return v.Uint64(), nil
}

// DecodeCompact reads a compact integer of up to 128 bits
func DecodeCompact(in Input) (*big.Int, error) {
	first, err := ReadByte(in)
	if err != nil {
		return nil, err
	}

	switch first & 0b11 {
	case modeSingle:
		return big.NewInt(int64(first >> 2)), nil

	case modeTwo:
		var rest [1]byte
		if err := in.Read(rest[:]); err != nil {
			return nil, err
		}
		v := uint64(binary.LittleEndian.Uint16([]byte{first, rest[0]})) >> 2
		if v < 1<<6 {
			return nil, errors.Wrapf(ErrNonCanonical, "value %d in two byte mode", v)
		}
		return new(big.Int).SetUint64(v), nil

	case modeFour:
		var rest [3]byte
		if err := in.Read(rest[:]); err != nil {
			return nil, err
		}
		v := uint64(binary.LittleEndian.Uint32([]byte{first, rest[0], rest[1], rest[2]})) >> 2
		if v < 1<<14 {
			return nil, errors.Wrapf(ErrNonCanonical, "value %d in four byte mode", v)
		}
		return new(big.Int).SetUint64(v), nil
	}

	n := int(first>>2) + 4
	if n > maxCompactBytes {
		return nil, errors.Wrapf(ErrOutOfRange, "compact integer of %d bytes exceeds u128", n)
	}
	le := make([]byte, n)
	if err := in.Read(le); err != nil {
		return nil, err
	}
	if le[n-1] == 0 {
		return nil, errors.Wrapf(ErrNonCanonical, "big integer mode with %d bytes has zero top byte", n)
	}

	be := make([]byte, n)
	for i := range le {
		be[n-1-i] = le[i]
	}
	v := new(big.Int).SetBytes(be)
	if n == 4 && v.Uint64() < 1<<30 {
		return nil, errors.Wrapf(ErrNonCanonical, "value %s in big integer mode", v)
	}
	return v, nil
}
