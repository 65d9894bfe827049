package favorites

import (
	"strings"
	"testing"

	"github.com/LeJamon/goProgramsd/internal/core/ledger/keylet"
	"github.com/LeJamon/goProgramsd/internal/core/tx"
	"github.com/LeJamon/goProgramsd/internal/core/tx/sle"
	jtx "github.com/LeJamon/goProgramsd/internal/testing"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*jtx.TestEnv, *jtx.Account, *jtx.Account) {
	t.Helper()
	env := jtx.NewTestEnv(t)
	alice := jtx.NewAccount("alice")
	bob := jtx.NewAccount("bob")
	env.Fund(alice, bob)
	return env, alice, bob
}

func rawFavorites(t *testing.T, env *jtx.TestEnv, owner *jtx.Account) []byte {
	t.Helper()
	data, err := env.LedgerEntry(keylet.Favorites(owner.ID))
	require.NoError(t, err)
	require.NotNil(t, data)
	return data
}

func TestSetFavorites(t *testing.T) {
	env, alice, _ := setup(t)

	jtx.RequireTxSuccess(t, env.Submit(Set(alice, 23, "red")))

	record := env.Favorites(alice)
	require.NotNil(t, record)
	require.Equal(t, alice.ID, record.Owner)
	require.Equal(t, uint64(23), record.Number)
	require.Equal(t, "red", record.Color)
	require.Equal(t, alice.ID, record.Authority)
	jtx.RequireBalance(t, env, alice, jtx.DefaultFunding-env.Reserve())
}

func TestSetFavorites_FirstWriteWins(t *testing.T) {
	env, alice, _ := setup(t)
	jtx.RequireTxSuccess(t, env.Submit(Set(alice, 23, "red")))

	before := env.Snapshot()
	jtx.RequireTxFail(t, env.Submit(Set(alice, 7, "blue")), jtx.TecDUPLICATE)
	jtx.RequireUnchanged(t, env, before)
	require.Equal(t, uint64(23), env.Favorites(alice).Number)
}

func TestSetFavorites_ColorLength(t *testing.T) {
	env, alice, bob := setup(t)

	jtx.RequireTxFail(t, env.Submit(Set(alice, 1, strings.Repeat("x", sle.MaxColorLength+1))), jtx.TemBAD_COLOR)
	require.Nil(t, env.Favorites(alice))

	jtx.RequireTxSuccess(t, env.Submit(Set(bob, 1, strings.Repeat("x", sle.MaxColorLength))))
}

func TestUpdateFavorites_PartialUpdates(t *testing.T) {
	env, alice, bob := setup(t)

	jtx.RequireTxSuccess(t, env.Submit(Set(alice, 23, "red")))
	jtx.RequireTxSuccess(t, env.Submit(Update(alice).Color("green").Build()))

	record := env.Favorites(alice)
	require.Equal(t, uint64(23), record.Number)
	require.Equal(t, "green", record.Color)

	before := rawFavorites(t, env, alice)
	result := env.Submit(Update(bob).Of(alice).Number(99).Build())
	jtx.RequireTxFail(t, result, jtx.TecUNAUTHORIZED)
	require.ErrorIs(t, result.Err, tx.ErrUnauthorized)
	require.Equal(t, before, rawFavorites(t, env, alice))

	jtx.RequireTxSuccess(t, env.Submit(Update(alice).Number(42).Build()))
	record = env.Favorites(alice)
	require.Equal(t, uint64(42), record.Number)
	require.Equal(t, "green", record.Color)
}

func TestUpdateFavorites_MissingRecord(t *testing.T) {
	env, alice, _ := setup(t)

	result := env.Submit(Update(alice).Number(1).Build())
	jtx.RequireTxFail(t, result, jtx.TecNO_ENTRY)
	require.ErrorIs(t, result.Err, tx.ErrNotFound)
}

func TestSetAuthority_Delegation(t *testing.T) {
	env, alice, bob := setup(t)
	carol := jtx.NewAccount("carol")
	env.Fund(carol)

	jtx.RequireTxSuccess(t, env.Submit(Set(alice, 23, "red")))
	jtx.RequireTxSuccess(t, env.Submit(Delegate(alice, bob)))
	require.Equal(t, bob.ID, env.Favorites(alice).Authority)

	// The owner loses update rights immediately.
	before := rawFavorites(t, env, alice)
	jtx.RequireTxFail(t, env.Submit(Update(alice).Number(1).Build()), jtx.TecUNAUTHORIZED)
	require.Equal(t, before, rawFavorites(t, env, alice))

	jtx.RequireTxSuccess(t, env.Submit(Update(bob).Of(alice).Color("blue").Build()))
	require.Equal(t, "blue", env.Favorites(alice).Color)

	// Handing over again revokes the previous authority.
	jtx.RequireTxSuccess(t, env.Submit(Delegate(alice, carol)))
	jtx.RequireTxFail(t, env.Submit(Update(bob).Of(alice).Color("black").Build()), jtx.TecUNAUTHORIZED)
	jtx.RequireTxSuccess(t, env.Submit(Update(carol).Of(alice).Number(5).Build()))

	// A reset returns the record to its owner.
	jtx.RequireTxSuccess(t, env.Submit(Delegate(alice, nil)))
	require.Equal(t, alice.ID, env.Favorites(alice).Authority)
	jtx.RequireTxFail(t, env.Submit(Update(carol).Of(alice).Number(6).Build()), jtx.TecUNAUTHORIZED)
	jtx.RequireTxSuccess(t, env.Submit(Update(alice).Number(7).Build()))

	record := env.Favorites(alice)
	require.Equal(t, uint64(7), record.Number)
	require.Equal(t, "blue", record.Color)
}

func TestSetAuthority_ReplayDoesNotRestoreAuthority(t *testing.T) {
	env, alice, bob := setup(t)
	carol := jtx.NewAccount("carol")
	env.Fund(carol)

	jtx.RequireTxSuccess(t, env.Submit(Set(alice, 23, "red")))
	toBob := Delegate(alice, bob)
	jtx.RequireTxSuccess(t, env.Submit(toBob))
	jtx.RequireTxSuccess(t, env.Submit(Delegate(alice, carol)))

	// resubmitting the signed hand-over to bob must not revoke carol
	before := rawFavorites(t, env, alice)
	result := env.SubmitUnsigned(toBob)
	jtx.RequireTxFail(t, result, jtx.TefPAST_SEQ)
	require.ErrorIs(t, result.Err, tx.ErrInvalidArgument)
	require.Equal(t, before, rawFavorites(t, env, alice))
	require.Equal(t, carol.ID, env.Favorites(alice).Authority)

	jtx.RequireTxFail(t, env.Submit(Update(bob).Of(alice).Number(666).Build()), jtx.TecUNAUTHORIZED)
	require.Equal(t, uint64(23), env.Favorites(alice).Number)
}

func TestSetAuthority_OnlyOwnRecord(t *testing.T) {
	env, alice, bob := setup(t)

	// Without a record of its own, the signer has nothing to delegate.
	jtx.RequireTxFail(t, env.Submit(Delegate(bob, bob)), jtx.TecNO_ENTRY)

	// The delegated authority cannot delegate further.
	jtx.RequireTxSuccess(t, env.Submit(Set(alice, 1, "red")))
	jtx.RequireTxSuccess(t, env.Submit(Delegate(alice, bob)))
	jtx.RequireTxFail(t, env.Submit(Delegate(bob, nil)), jtx.TecNO_ENTRY)
	require.Equal(t, bob.ID, env.Favorites(alice).Authority)
}

func TestVersionsAreIndependent(t *testing.T) {
	env, alice, _ := setup(t)

	jtx.RequireTxSuccess(t, env.Submit(SetV1(alice, 1, "old")))
	jtx.RequireTxSuccess(t, env.Submit(Set(alice, 2, "new")))
	jtx.RequireBalance(t, env, alice, jtx.DefaultFunding-2*env.Reserve())

	require.NotEqual(t, keylet.Favorites(alice.ID).Key, keylet.FavoritesV1(alice.ID).Key)

	jtx.RequireTxSuccess(t, env.Submit(Update(alice).Color("teal").Build()))

	legacy := env.FavoritesV1(alice)
	require.Equal(t, uint64(1), legacy.Number)
	require.Equal(t, "old", legacy.Color)
	require.Equal(t, "teal", env.Favorites(alice).Color)

	jtx.RequireTxFail(t, env.Submit(SetV1(alice, 3, "again")), jtx.TecDUPLICATE)
}

func TestUpdateMultiVersions_Dispatch(t *testing.T) {
	env, alice, _ := setup(t)

	jtx.RequireTxSuccess(t, env.Submit(SetV1(alice, 1, "old")))
	jtx.RequireTxSuccess(t, env.Submit(Set(alice, 2, "new")))

	jtx.RequireTxSuccess(t, env.Submit(Update(alice).Number(10).Legacy()))
	require.Equal(t, uint64(10), env.FavoritesV1(alice).Number)
	require.Equal(t, uint64(2), env.Favorites(alice).Number)

	jtx.RequireTxSuccess(t, env.Submit(Update(alice).Color("violet").Current()))
	require.Equal(t, "violet", env.Favorites(alice).Color)
	require.Equal(t, "old", env.FavoritesV1(alice).Color)
}

func TestUpdateMultiVersions_Authority(t *testing.T) {
	env, alice, bob := setup(t)

	jtx.RequireTxSuccess(t, env.Submit(SetV1(alice, 1, "old")))
	jtx.RequireTxSuccess(t, env.Submit(Set(alice, 2, "new")))
	jtx.RequireTxSuccess(t, env.Submit(Delegate(alice, bob)))

	// Delegation covers the current record only.
	jtx.RequireTxSuccess(t, env.Submit(Update(bob).Of(alice).Number(3).Current()))
	jtx.RequireTxFail(t, env.Submit(Update(bob).Of(alice).Number(3).Legacy()), jtx.TecUNAUTHORIZED)
	jtx.RequireTxFail(t, env.Submit(Update(alice).Number(4).Current()), jtx.TecUNAUTHORIZED)
	jtx.RequireTxSuccess(t, env.Submit(Update(alice).Number(4).Legacy()))

	require.Equal(t, uint64(3), env.Favorites(alice).Number)
	require.Equal(t, uint64(4), env.FavoritesV1(alice).Number)
}

func TestUpdateMultiVersions_BadHandle(t *testing.T) {
	env, alice, bob := setup(t)

	jtx.RequireTxSuccess(t, env.Submit(Set(alice, 1, "red")))
	jtx.RequireTxSuccess(t, env.Submit(Set(bob, 2, "blue")))

	// A handle that belongs to somebody else's record.
	before := env.Snapshot()
	jtx.RequireTxFail(t, env.Submit(Update(alice).Number(9).At(keylet.Favorites(bob.ID).Key)), jtx.TecINVALID_ACCOUNT)
	jtx.RequireUnchanged(t, env, before)

	// The legacy record was never created.
	jtx.RequireTxFail(t, env.Submit(Update(alice).Number(9).Legacy()), jtx.TecNO_ENTRY)
}

func TestUpdateMultiVersions_UnknownVersion(t *testing.T) {
	env, alice, _ := setup(t)

	data, err := sle.Serialize(&sle.SystemAccount{Account: alice.ID, Lamports: 1})
	require.NoError(t, err)
	err = env.State().Commit([]tx.Change{{Key: keylet.Favorites(alice.ID).Key, Action: tx.ActionInsert, Data: data}})
	require.NoError(t, err)

	before := env.Snapshot()
	result := env.Submit(Update(alice).Number(1).Current())
	jtx.RequireTxFail(t, result, jtx.TecUNKNOWN_VERSION)
	jtx.RequireUnchanged(t, env, before)
}

func TestUpdateMultiVersions_VersionAtWrongAddress(t *testing.T) {
	env, alice, _ := setup(t)

	data, err := sle.Serialize(&sle.FavoritesV1{Owner: alice.ID, Number: 1, Color: "old"})
	require.NoError(t, err)
	err = env.State().Commit([]tx.Change{{Key: keylet.Favorites(alice.ID).Key, Action: tx.ActionInsert, Data: data}})
	require.NoError(t, err)

	jtx.RequireTxFail(t, env.Submit(Update(alice).Number(2).Current()), jtx.TecINVALID_ACCOUNT)
}
