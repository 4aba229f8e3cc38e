package account

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAccountID(t *testing.T) {
	text := "0x" + strings.Repeat("ab", 32)
	id, err := ParseAccountID(text)
	require.NoError(t, err)
	assert.Equal(t, byte(0xab), id[31])
	assert.Equal(t, text, id.String())

	again, err := ParseAccountID(strings.Repeat("ab", 32))
	require.NoError(t, err)
	assert.Equal(t, id, again)

	for _, bad := range []string{"", "0x12", strings.Repeat("zz", 32)} {
		_, err := ParseAccountID(bad)
		assert.ErrorIs(t, err, ErrInvalidAccount, bad)
	}
}

func TestAccountID_JSON(t *testing.T) {
	id := NewUser("Alice").Account()
	data, err := json.Marshal(map[string]AccountID{"who": id})
	require.NoError(t, err)

	var out map[string]AccountID
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, id, out["who"])
}

func TestNewUser_Deterministic(t *testing.T) {
	alice := NewUser("Alice")
	assert.Equal(t, alice.PublicKey(), NewUser("Alice").PublicKey())
	assert.NotEqual(t, alice.PublicKey(), NewUser("Bob").PublicKey())
	assert.Equal(t, "Alice", alice.Name())
	assert.Equal(t, alice.PublicKey(), alice.Account().PublicKey())
}

func TestUser_Sign(t *testing.T) {
	bob := NewUser("Bob")
	msg := []byte("transfer")
	sig := bob.Sign(msg)
	assert.Len(t, sig, 64)
	assert.True(t, bob.Account().Verify(msg, sig))
	assert.False(t, bob.Account().Verify([]byte("other"), sig))
	assert.False(t, NewUser("Eve").Account().Verify(msg, sig))
}

func TestKeyring(t *testing.T) {
	ring := NewKeyring()

	var wg sync.WaitGroup
	users := make([]*User, 8)
	for i := range users {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			users[i] = ring.Get(DevNames[i%2])
		}(i)
	}
	wg.Wait()

	assert.Same(t, users[0], users[2])
	assert.Same(t, users[1], users[3])
	assert.Equal(t, []string{"Alice", "Bob"}, ring.Names())
}
