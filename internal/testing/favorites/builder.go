// Package favorites provides builders for favorites registry instructions.
package favorites

import (
	"github.com/LeJamon/goProgramsd/internal/core/ledger/keylet"
	favoritestx "github.com/LeJamon/goProgramsd/internal/core/tx/favorites"
	"github.com/LeJamon/goProgramsd/internal/testing"
)

// Set builds a SetFavorites for owner.
func Set(owner *testing.Account, number uint64, color string) *favoritestx.SetFavorites {
	return favoritestx.NewSetFavorites(owner.Address, number, color)
}

// SetV1 builds a SetFavoritesV1 for owner.
func SetV1(owner *testing.Account, number uint64, color string) *favoritestx.SetFavoritesV1 {
	return favoritestx.NewSetFavoritesV1(owner.Address, number, color)
}

// Delegate builds a SetAuthority handing owner's record to authority. A nil
// authority resets it to the owner.
func Delegate(owner, authority *testing.Account) *favoritestx.SetAuthority {
	if authority == nil {
		return favoritestx.NewSetAuthority(owner.Address, nil)
	}
	addr := authority.Address
	return favoritestx.NewSetAuthority(owner.Address, &addr)
}

// UpdateBuilder provides a fluent interface for partial favorites updates.
type UpdateBuilder struct {
	caller *testing.Account
	owner  *testing.Account
	number *uint64
	color  *string
}

// Update creates an UpdateBuilder signed by caller for caller's own record.
func Update(caller *testing.Account) *UpdateBuilder {
	return &UpdateBuilder{caller: caller, owner: caller}
}

// Of targets owner's record instead.
func (b *UpdateBuilder) Of(owner *testing.Account) *UpdateBuilder {
	b.owner = owner
	return b
}

// Number sets the new favorite number.
func (b *UpdateBuilder) Number(n uint64) *UpdateBuilder {
	b.number = &n
	return b
}

// Color sets the new favorite color.
func (b *UpdateBuilder) Color(c string) *UpdateBuilder {
	b.color = &c
	return b
}

// Build constructs the UpdateFavorites instruction.
func (b *UpdateBuilder) Build() *favoritestx.UpdateFavorites {
	return favoritestx.NewUpdateFavorites(b.caller.Address, b.owner.Address, b.number, b.color)
}

// Current builds a multi-version update addressed at owner's current record.
func (b *UpdateBuilder) Current() *favoritestx.UpdateFavoritesMultiVersions {
	return b.At(keylet.Favorites(b.owner.ID).Key)
}

// Legacy builds a multi-version update addressed at owner's V1 record.
func (b *UpdateBuilder) Legacy() *favoritestx.UpdateFavoritesMultiVersions {
	return b.At(keylet.FavoritesV1(b.owner.ID).Key)
}

// At builds a multi-version update addressed at an arbitrary record handle.
func (b *UpdateBuilder) At(handle [32]byte) *favoritestx.UpdateFavoritesMultiVersions {
	return favoritestx.NewUpdateFavoritesMultiVersions(b.caller.Address, b.owner.Address, handle, b.number, b.color)
}
