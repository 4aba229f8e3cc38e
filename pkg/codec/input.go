package codec

import (
	"io"

	"github.com/cockroachdb/errors"
)

// Errors
var (
	ErrTruncated    = errors.New("not enough data to fill buffer")
	ErrNonCanonical = errors.New("non-canonical compact encoding")
	ErrOutOfRange   = errors.New("value out of range")
)

// maxUnknownRead bounds a single allocation when the input length is unknown.
const maxUnknownRead = 64 << 20

// Input is a byte cursor consumed by decoders
type Input interface {
	// Read fills into completely or returns ErrTruncated.
	Read(into []byte) error
	// RemainingLen returns the number of unread bytes, if known.
	RemainingLen() (int, bool)
}

// ByteInput reads from an in-memory byte slice
type ByteInput struct {
	data []byte
	pos  int
}

// NewInput creates a cursor over data
func NewInput(data []byte) *ByteInput {
	return &ByteInput{data: data}
}

// Read copies the next len(into) bytes into into
func (b *ByteInput) Read(into []byte) error {
	if len(b.data)-b.pos < len(into) {
		return errors.Wrapf(ErrTruncated, "need %d bytes, have %d", len(into), len(b.data)-b.pos)
	}
	copy(into, b.data[b.pos:])
	b.pos += len(into)
	return nil
}

// RemainingLen returns the number of unread bytes
func (b *ByteInput) RemainingLen() (int, bool) {
	return len(b.data) - b.pos, true
}

// Offset returns the number of bytes consumed so far
func (b *ByteInput) Offset() int {
	return b.pos
}

// ReaderInput adapts an io.Reader to Input
type ReaderInput struct {
	r io.Reader
}

// NewReaderInput creates a cursor that reads from r. The remaining length is unknown.
func NewReaderInput(r io.Reader) *ReaderInput {
	return &ReaderInput{r: r}
}

// Read reads exactly len(into) bytes from the underlying reader
func (ri *ReaderInput) Read(into []byte) error {
	if _, err := io.ReadFull(ri.r, into); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return errors.Wrapf(ErrTruncated, "need %d bytes", len(into))
		}
		return err
	}
	return nil
}

// RemainingLen always reports an unknown length
func (ri *ReaderInput) RemainingLen() (int, bool) {
	return 0, false
}

// ReadByte reads a single byte from in
func ReadByte(in Input) (byte, error) {
	var b [1]byte
	if err := in.Read(b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadBytes reads n bytes from in. When the remaining length is known it is checked
// before allocating so a corrupt length prefix cannot force a huge allocation.
func ReadBytes(in Input, n uint64) ([]byte, error) {
	if remaining, ok := in.RemainingLen(); ok {
		if uint64(remaining) < n {
			return nil, errors.Wrapf(ErrTruncated, "need %d bytes, have %d", n, remaining)
		}
	} else if n > maxUnknownRead {
		return nil, errors.Wrapf(ErrOutOfRange, "length %d exceeds read limit", n)
	}
	buf := make([]byte, n)
	if err := in.Read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}
