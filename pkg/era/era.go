// Package era implements transaction mortality periods and their two byte
// encoding.
package era

import (
	"encoding/json"
	"math"
	"math/bits"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/Neopallium/sub-script/pkg/codec"
)

// ErrInvalidEra is returned when decoded period and phase are inconsistent
var ErrInvalidEra = errors.New("invalid era period and phase")

const (
	minPeriod = 4
	maxPeriod = 1 << 16
)

// Era is the validity window of a transaction. The zero value is immortal.
type Era struct {
	Period uint64
	Phase  uint64
}

// Immortal returns an era that never expires
func Immortal() Era { return Era{} }

// Mortal returns the era of length period that contains block current. The period
// is rounded up to a power of two in [4, 65536] and the phase is quantized so the
// encoding fits in two bytes.
func Mortal(period, current uint64) Era {
	p := uint64(maxPeriod)
	if period <= 1<<63 {
		p = nextPowerOfTwo(period)
	}
	p = min(max(p, minPeriod), maxPeriod)

	phase := current % p
	factor := quantizeFactor(p)
	return Era{Period: p, Phase: phase / factor * factor}
}

func nextPowerOfTwo(v uint64) uint64 {
	if v <= 1 {
		return 1
	}
	return 1 << bits.Len64(v-1)
}

func quantizeFactor(period uint64) uint64 {
	return max(period>>12, 1)
}

// IsImmortal reports whether the era never expires
func (e Era) IsImmortal() bool { return e.Period == 0 }

// Birth returns the first block of the window containing current
func (e Era) Birth(current uint64) uint64 {
	if e.IsImmortal() {
		return 0
	}
	return (max(current, e.Phase)-e.Phase)/e.Period*e.Period + e.Phase
}

// Death returns the first block after the window containing current
func (e Era) Death(current uint64) uint64 {
	if e.IsImmortal() {
		return math.MaxUint64
	}
	return e.Birth(current) + e.Period
}

// Encode returns the wire form: one zero byte when immortal, otherwise two bytes
func (e Era) Encode() []byte {
	if e.IsImmortal() {
		return []byte{0}
	}
	low := min(max(bits.TrailingZeros64(e.Period)-1, 1), 15)
	encoded := uint16(low) | uint16(e.Phase/quantizeFactor(e.Period))<<4
	return []byte{byte(encoded), byte(encoded >> 8)}
}

// Decode reads an era from in
func Decode(in codec.Input) (Era, error) {
	first, err := codec.ReadByte(in)
	if err != nil {
		return Era{}, err
	}
	if first == 0 {
		return Immortal(), nil
	}
	second, err := codec.ReadByte(in)
	if err != nil {
		return Era{}, err
	}
	encoded := uint64(first) | uint64(second)<<8
	period := uint64(2) << (encoded % 16)
	phase := (encoded >> 4) * quantizeFactor(period)
	if period < minPeriod || phase >= period {
		return Era{}, errors.Wrapf(ErrInvalidEra, "period %d phase %d", period, phase)
	}
	return Era{Period: period, Phase: phase}, nil
}

func (e Era) String() string {
	if e.IsImmortal() {
		return "Immortal"
	}
	return "Mortal(" + strconv.FormatUint(e.Period, 10) + ", " + strconv.FormatUint(e.Phase, 10) + ")"
}

type eraJSON struct {
	Period uint64 `json:"period"`
	Phase  uint64 `json:"phase"`
}

// MarshalJSON renders "Immortal" or {"period": p, "phase": q}
func (e Era) MarshalJSON() ([]byte, error) {
	if e.IsImmortal() {
		return []byte(`"Immortal"`), nil
	}
	return json.Marshal(eraJSON{Period: e.Period, Phase: e.Phase})
}

// UnmarshalJSON accepts the MarshalJSON forms
func (e *Era) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "Immortal" {
			return errors.Newf("unknown era %q", s)
		}
		*e = Immortal()
		return nil
	}
	var m eraJSON
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*e = Era{Period: m.Period, Phase: m.Phase}
	return nil
}
