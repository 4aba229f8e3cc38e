package codec

import (
	"encoding/binary"
	"math/big"

	"github.com/cockroachdb/errors"
)

// ErrWidth is returned for integer widths other than 1, 2, 4, 8 and 16 bytes
var ErrWidth = errors.New("unsupported integer width")

// ValidWidth reports whether width is a supported integer width in bytes
func ValidWidth(width int) bool {
	switch width {
	case 1, 2, 4, 8, 16:
		return true
	}
	return false
}

// AppendInt64 appends v as a width byte little-endian two's complement integer.
// Widths below 8 truncate v; width 16 sign-extends it.
func AppendInt64(buf []byte, width int, v int64) []byte {
	var tmp [16]byte
	binary.LittleEndian.PutUint64(tmp[:8], uint64(v))
	if v < 0 {
		for i := 8; i < 16; i++ {
			tmp[i] = 0xff
		}
	}
	return append(buf, tmp[:width]...)
}

// AppendBigInt appends v as a width byte little-endian two's complement integer,
// truncating bits that do not fit
func AppendBigInt(buf []byte, width int, v *big.Int) []byte {
	mask := new(big.Int).Lsh(big.NewInt(1), uint(8*width))
	mask.Sub(mask, big.NewInt(1))
	low := new(big.Int).And(v, mask)

	be := low.Bytes()
	out := make([]byte, width)
	for i := 0; i < len(be); i++ {
		out[i] = be[len(be)-1-i]
	}
	return append(buf, out...)
}

// FitsWidth reports whether v is representable in a width byte integer
func FitsWidth(v *big.Int, width int, signed bool) bool {
	bitsAvail := uint(8 * width)
	if !signed {
		return v.Sign() >= 0 && v.BitLen() <= int(bitsAvail)
	}
	limit := new(big.Int).Lsh(big.NewInt(1), bitsAvail-1)
	if v.Sign() >= 0 {
		return v.Cmp(limit) < 0
	}
	return new(big.Int).Neg(v).Cmp(limit) <= 0
}

// ReadUint reads an unsigned little-endian integer of up to 8 bytes
func ReadUint(in Input, width int) (uint64, error) {
	if width > 8 || !ValidWidth(width) {
		return 0, errors.Wrapf(ErrWidth, "ReadUint width %d", width)
	}
	var tmp [8]byte
	if err := in.Read(tmp[:width]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(tmp[:]), nil
}

// ReadInt reads a signed little-endian integer of up to 8 bytes, sign-extending it
func ReadInt(in Input, width int) (int64, error) {
	u, err := ReadUint(in, width)
	if err != nil {
		return 0, err
	}
	shift := uint(64 - 8*width)
	return int64(u<<shift) >> shift, nil
}

// ReadBig reads a width byte little-endian integer of any supported width
func ReadBig(in Input, width int, signed bool) (*big.Int, error) {
	if !ValidWidth(width) {
		return nil, errors.Wrapf(ErrWidth, "ReadBig width %d", width)
	}
	le := make([]byte, width)
	if err := in.Read(le); err != nil {
		return nil, err
	}
	be := make([]byte, width)
	for i := range le {
		be[width-1-i] = le[i]
	}
	v := new(big.Int).SetBytes(be)
	if signed && le[width-1]&0x80 != 0 {
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), uint(8*width)))
	}
	return v, nil
}
