package testing

import (
	addresscodec "github.com/LeJamon/goProgramsd/internal/codec/address-codec"
	"github.com/LeJamon/goProgramsd/internal/crypto/algorithms/ed25519"
)

// Account is a test identity with a deterministic ed25519 keypair.
type Account struct {
	// Name is a human-readable identifier for the account (used for debugging).
	Name string

	// Address is the base58 identity.
	Address string

	// ID is the 32-byte public key.
	ID [32]byte

	key *ed25519.Keypair
}

// NewAccount creates a test account whose keypair is derived from name.
// Using the same name always produces the same account.
func NewAccount(name string) *Account {
	key, err := ed25519.GenerateKeypair([]byte("jtx:" + name))
	if err != nil {
		panic("failed to derive keypair for account " + name + ": " + err.Error())
	}
	return &Account{
		Name:    name,
		Address: addresscodec.AccountID(key.Public).String(),
		ID:      key.Public,
		key:     key,
	}
}

// Keypair returns the signing key of the account.
func (a *Account) Keypair() *ed25519.Keypair {
	return a.key
}

// String returns the account name, for test failure messages.
func (a *Account) String() string {
	return a.Name
}
