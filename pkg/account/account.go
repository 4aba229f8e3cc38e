// Package account provides account identifiers and development signing identities.
//
// Development users are derived deterministically from a name, the way dev chains
// derive //Alice and //Bob. Keys are ed25519 and are meant for local tooling and
// tests, not for holding funds.
package account

import (
	"encoding/hex"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrInvalidAccount is returned for account text that is not 32 bytes of hex
var ErrInvalidAccount = errors.New("invalid account id")

// AccountID is a 32 byte public key
type AccountID [32]byte

// ParseAccountID parses 64 hex characters with an optional 0x prefix
func ParseAccountID(s string) (AccountID, error) {
	var id AccountID
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if len(s) != 2*len(id) {
		return id, errors.Wrapf(ErrInvalidAccount, "expected %d hex characters, got %d", 2*len(id), len(s))
	}
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return id, errors.Wrapf(ErrInvalidAccount, "%v", err)
	}
	return id, nil
}

// PublicKey returns the account's key bytes
func (a AccountID) PublicKey() [32]byte { return a }

// String returns 0x prefixed hex
func (a AccountID) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// MarshalText encodes the account as hex
func (a AccountID) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText parses hex text
func (a *AccountID) UnmarshalText(text []byte) error {
	id, err := ParseAccountID(string(text))
	if err != nil {
		return err
	}
	*a = id
	return nil
}
