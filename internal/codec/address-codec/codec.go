// Package addresscodec encodes and decodes 32-byte account identities as
// base58 strings.
package addresscodec

import (
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// AccountIDLength is the size of an account identity in bytes.
const AccountIDLength = 32

var (
	ErrInvalidAddress = errors.New("invalid address")
	ErrEmptyAddress   = errors.New("empty address")
)

// AccountID is an ed25519 public key or a derived (program owned) address.
type AccountID [AccountIDLength]byte

// String returns the base58 form of the identity.
func (a AccountID) String() string {
	return base58.Encode(a[:])
}

// IsZero reports whether the identity is all zeroes.
func (a AccountID) IsZero() bool {
	return a == AccountID{}
}

// MarshalText implements encoding.TextMarshaler.
func (a AccountID) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *AccountID) UnmarshalText(text []byte) error {
	id, err := Decode(string(text))
	if err != nil {
		return err
	}
	*a = id
	return nil
}

// Encode returns the base58 address for raw identity bytes.
func Encode(id []byte) (string, error) {
	if len(id) != AccountIDLength {
		return "", fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidAddress, AccountIDLength, len(id))
	}
	return base58.Encode(id), nil
}

// Decode parses a base58 address into an AccountID.
func Decode(address string) (AccountID, error) {
	var id AccountID
	if address == "" {
		return id, ErrEmptyAddress
	}

	raw, err := base58.Decode(address)
	if err != nil {
		return id, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(raw) != AccountIDLength {
		return id, fmt.Errorf("%w: decoded to %d bytes", ErrInvalidAddress, len(raw))
	}

	copy(id[:], raw)
	return id, nil
}

// IsValidAddress reports whether address decodes to a 32-byte identity.
func IsValidAddress(address string) bool {
	_, err := Decode(address)
	return err == nil
}

// MustDecode is Decode for addresses known to be valid. It panics otherwise.
func MustDecode(address string) AccountID {
	id, err := Decode(address)
	if err != nil {
		panic(err)
	}
	return id
}
