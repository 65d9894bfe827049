package tx

import "fmt"

// Type represents an instruction type code
type Type uint16

// All instruction type codes
const (
	TypeInvalid Type = 0xFFFF // Invalid/unknown type

	// Native and token primitives
	TypeSystemTransfer     Type = 0
	TypeCreateMint         Type = 1
	TypeCreateTokenAccount Type = 2
	TypeMintTo             Type = 3
	TypeTransfer           Type = 4

	// Escrow
	TypeMakeOffer   Type = 10
	TypeTakeOffer   Type = 11
	TypeCancelOffer Type = 12

	// Favorites registry
	TypeSetFavorites                 Type = 20
	TypeUpdateFavorites              Type = 21
	TypeSetAuthority                 Type = 22
	TypeSetFavoritesV1               Type = 23
	TypeUpdateFavoritesMultiVersions Type = 24
)

var typeNames = map[Type]string{
	TypeSystemTransfer:               "SystemTransfer",
	TypeCreateMint:                   "CreateMint",
	TypeCreateTokenAccount:           "CreateTokenAccount",
	TypeMintTo:                       "MintTo",
	TypeTransfer:                     "Transfer",
	TypeMakeOffer:                    "MakeOffer",
	TypeTakeOffer:                    "TakeOffer",
	TypeCancelOffer:                  "CancelOffer",
	TypeSetFavorites:                 "SetFavorites",
	TypeUpdateFavorites:              "UpdateFavorites",
	TypeSetAuthority:                 "SetAuthority",
	TypeSetFavoritesV1:               "SetFavoritesV1",
	TypeUpdateFavoritesMultiVersions: "UpdateFavoritesMultiVersions",
}

// String returns the string name of the instruction type
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", uint16(t))
}

// TypeFromName returns the instruction type for a given name
func TypeFromName(name string) (Type, bool) {
	for t, n := range typeNames {
		if n == name {
			return t, true
		}
	}
	return TypeInvalid, false
}
