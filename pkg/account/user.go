package account

import (
	"crypto/ed25519"
	"sort"
	"sync"

	"golang.org/x/crypto/blake2b"
)

// User is a named signing identity
type User struct {
	name string
	key  ed25519.PrivateKey
	pub  [32]byte
}

// NewUser derives the development identity for name from the seed phrase //name
func NewUser(name string) *User {
	seed := blake2b.Sum256([]byte("//" + name))
	key := ed25519.NewKeyFromSeed(seed[:])
	u := &User{name: name, key: key}
	copy(u.pub[:], key.Public().(ed25519.PublicKey))
	return u
}

// Name returns the name the user was derived from
func (u *User) Name() string { return u.name }

// PublicKey returns the ed25519 public key
func (u *User) PublicKey() [32]byte { return u.pub }

// Account returns the user's account id
func (u *User) Account() AccountID { return AccountID(u.pub) }

// Sign signs msg
func (u *User) Sign(msg []byte) []byte {
	return ed25519.Sign(u.key, msg)
}

// Verify checks a signature made by the account
func (a AccountID) Verify(msg, sig []byte) bool {
	return ed25519.Verify(ed25519.PublicKey(a[:]), msg, sig)
}

func (u *User) String() string { return u.name }

// DevNames are the well known development accounts
var DevNames = []string{"Alice", "Bob", "Charlie", "Dave", "Eve", "Ferdie"}

// Keyring caches users by name. It is safe for concurrent use.
type Keyring struct {
	mu    sync.RWMutex
	users map[string]*User
}

// NewKeyring creates an empty keyring
func NewKeyring() *Keyring {
	return &Keyring{users: make(map[string]*User)}
}

// Get returns the user for name, deriving it on first use
func (k *Keyring) Get(name string) *User {
	k.mu.RLock()
	u, ok := k.users[name]
	k.mu.RUnlock()
	if ok {
		return u
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	if u, ok := k.users[name]; ok {
		return u
	}
	u = NewUser(name)
	k.users[name] = u
	return u
}

// Names returns the names derived so far in sorted order
func (k *Keyring) Names() []string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	names := make([]string, 0, len(k.users))
	for name := range k.users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
