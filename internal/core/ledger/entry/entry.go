package entry

import (
	"bytes"
	"crypto/sha256"
	"fmt"
)

// DiscriminatorSize is the length of the type tag stored in front of every
// serialized entry.
const DiscriminatorSize = 8

// Type represents a ledger entry type
type Type uint16

// All known ledger entry types
const (
	TypeSystemAccount Type = 0x0061 // Native balance holder
	TypeMint          Type = 0x006d // Token mint (asset type)
	TypeTokenAccount  Type = 0x0074 // Token holding account
	TypeOffer         Type = 0x006f // Escrow offer
	TypeFavorites     Type = 0x0046 // Favorites record, current schema
	TypeFavoritesV1   Type = 0x0066 // Favorites record, legacy schema
)

var allTypes = []Type{
	TypeSystemAccount,
	TypeMint,
	TypeTokenAccount,
	TypeOffer,
	TypeFavorites,
	TypeFavoritesV1,
}

// String returns the string representation of the Type
func (t Type) String() string {
	switch t {
	case TypeSystemAccount:
		return "SystemAccount"
	case TypeMint:
		return "Mint"
	case TypeTokenAccount:
		return "TokenAccount"
	case TypeOffer:
		return "Offer"
	case TypeFavorites:
		return "Favorites"
	case TypeFavoritesV1:
		return "FavoritesV1"
	default:
		return fmt.Sprintf("Unknown(%#x)", uint16(t))
	}
}

// Discriminator returns the 8-byte tag that prefixes serialized entries of
// this type: the first bytes of sha256("account:<Name>").
func (t Type) Discriminator() [DiscriminatorSize]byte {
	sum := sha256.Sum256([]byte("account:" + t.String()))
	var d [DiscriminatorSize]byte
	copy(d[:], sum[:DiscriminatorSize])
	return d
}

// TypeFromDiscriminator resolves the entry type carried by the first
// DiscriminatorSize bytes of data.
func TypeFromDiscriminator(data []byte) (Type, bool) {
	if len(data) < DiscriminatorSize {
		return 0, false
	}
	for _, t := range allTypes {
		d := t.Discriminator()
		if bytes.Equal(d[:], data[:DiscriminatorSize]) {
			return t, true
		}
	}
	return 0, false
}

// Entry defines the interface for all ledger entries
type Entry interface {
	Type() Type
	Validate() error
}
