package sle

import (
	"errors"
	"unicode/utf8"

	"github.com/LeJamon/goProgramsd/internal/core/ledger/entry"
)

// MaxColorLength is the maximum size of a favorite color in bytes.
const MaxColorLength = 50

// Favorites is the current-schema favorites record. Authority is the only
// identity allowed to change Number and Color; it starts out as Owner.
type Favorites struct {
	Owner     [32]byte `codec:"owner"`
	Number    uint64   `codec:"number"`
	Color     string   `codec:"color"`
	Authority [32]byte `codec:"authority"`
	Reserve   uint64   `codec:"reserve"`
}

func (f *Favorites) Type() entry.Type {
	return entry.TypeFavorites
}

func (f *Favorites) Validate() error {
	if f.Owner == [32]byte{} {
		return errors.New("owner is required")
	}
	if f.Authority == [32]byte{} {
		return errors.New("authority is required")
	}
	return ValidateColor(f.Color)
}

// FavoritesV1 is the legacy favorites record. It carries no authority field;
// only its owner may change it.
type FavoritesV1 struct {
	Owner   [32]byte `codec:"owner"`
	Number  uint64   `codec:"number"`
	Color   string   `codec:"color"`
	Reserve uint64   `codec:"reserve"`
}

func (f *FavoritesV1) Type() entry.Type {
	return entry.TypeFavoritesV1
}

func (f *FavoritesV1) Validate() error {
	if f.Owner == [32]byte{} {
		return errors.New("owner is required")
	}
	return ValidateColor(f.Color)
}

// ValidateColor checks the color size limit shared by both schema versions.
func ValidateColor(color string) error {
	if len(color) > MaxColorLength {
		return errors.New("color exceeds maximum length")
	}
	if !utf8.ValidString(color) {
		return errors.New("color is not valid utf-8")
	}
	return nil
}

// ParseFavorites parses a current-schema Favorites entry from serialized data
func ParseFavorites(data []byte) (*Favorites, error) {
	f := &Favorites{}
	if err := Decode(data, f); err != nil {
		return nil, err
	}
	return f, nil
}

// ParseFavoritesV1 parses a legacy FavoritesV1 entry from serialized data
func ParseFavoritesV1(data []byte) (*FavoritesV1, error) {
	f := &FavoritesV1{}
	if err := Decode(data, f); err != nil {
		return nil, err
	}
	return f, nil
}
