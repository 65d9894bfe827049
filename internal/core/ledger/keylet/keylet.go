package keylet

import (
	"encoding/binary"

	"github.com/LeJamon/goProgramsd/internal/core/ledger/entry"
	crypto "github.com/LeJamon/goProgramsd/internal/crypto/common"
)

// Space identifiers for keylet generation
const (
	spaceSystem    uint16 = 'a' // Native account
	spaceMint      uint16 = 'm' // Token mint
	spaceToken     uint16 = 't' // Token holding account
	spaceOffer     uint16 = 'o' // Escrow offer
	spaceFavorites uint16 = 'F' // Favorites records (all schema versions)
)

// Derivation seeds. The favorites seeds carry the schema version.
const (
	SeedOffer       = "offer"
	SeedFavorites   = "favorites"
	SeedFavoritesV1 = "favoritesV1"
)

// Keylet represents an addressable location in the ledger state.
// It combines a type identifier with a 256-bit key.
type Keylet struct {
	Type entry.Type
	Key  [32]byte
}

// indexHash computes a keylet key by hashing the space and provided data.
func indexHash(space uint16, data ...[]byte) [32]byte {
	spaceBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(spaceBytes, space)

	inputs := make([][]byte, 0, len(data)+1)
	inputs = append(inputs, spaceBytes)
	inputs = append(inputs, data...)

	return crypto.Sha512Half(inputs...)
}

// System returns the keylet for the native balance entry of an account.
func System(account [32]byte) Keylet {
	return Keylet{
		Type: entry.TypeSystemAccount,
		Key:  indexHash(spaceSystem, account[:]),
	}
}

// Mint returns the keylet for a token mint.
func Mint(mint [32]byte) Keylet {
	return Keylet{
		Type: entry.TypeMint,
		Key:  indexHash(spaceMint, mint[:]),
	}
}

// TokenAccount returns the keylet for the holding account of owner for mint.
// There is exactly one holding account per (mint, owner) pair.
func TokenAccount(mint, owner [32]byte) Keylet {
	return Keylet{
		Type: entry.TypeTokenAccount,
		Key:  indexHash(spaceToken, mint[:], owner[:]),
	}
}

// Offer returns the keylet for the escrow offer a maker created under id.
func Offer(maker [32]byte, id uint64) Keylet {
	idBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(idBytes, id)
	return Keylet{
		Type: entry.TypeOffer,
		Key:  indexHash(spaceOffer, []byte(SeedOffer), maker[:], idBytes),
	}
}

// Vault returns the keylet for the custody account of an offer. The offer's
// own key acts as the owner of the holding account.
func Vault(offer Keylet, mint [32]byte) Keylet {
	return TokenAccount(mint, offer.Key)
}

// Favorites returns the keylet for the current-schema favorites record.
func Favorites(owner [32]byte) Keylet {
	return Keylet{
		Type: entry.TypeFavorites,
		Key:  indexHash(spaceFavorites, []byte(SeedFavorites), owner[:]),
	}
}

// FavoritesV1 returns the keylet for the legacy favorites record.
func FavoritesV1(owner [32]byte) Keylet {
	return Keylet{
		Type: entry.TypeFavoritesV1,
		Key:  indexHash(spaceFavorites, []byte(SeedFavoritesV1), owner[:]),
	}
}

// Unchecked returns a keylet for a raw key whose type is not known up front.
func Unchecked(key [32]byte) Keylet {
	return Keylet{Key: key}
}
