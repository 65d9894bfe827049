package escrow

import (
	"testing"

	"github.com/LeJamon/goProgramsd/internal/core/ledger/keylet"
	jtx "github.com/LeJamon/goProgramsd/internal/testing"
	"github.com/stretchr/testify/require"
)

// swapEnv holds a maker with 10,000,000 of token A and a taker with
// 100,000,000 of token B.
type swapEnv struct {
	env    *jtx.TestEnv
	issuer *jtx.Account
	alice  *jtx.Account
	bob    *jtx.Account
	mintA  *jtx.Account
	mintB  *jtx.Account
}

func newSwapEnv(t *testing.T) *swapEnv {
	t.Helper()
	env := jtx.NewTestEnv(t)

	issuer := jtx.NewAccount("issuer")
	alice := jtx.NewAccount("alice")
	bob := jtx.NewAccount("bob")
	env.Fund(issuer, alice, bob)

	mintA := env.CreateMint(issuer, "mintA", 6)
	mintB := env.CreateMint(issuer, "mintB", 6)
	env.MintTo(issuer, mintA, alice, 10_000_000)
	env.MintTo(issuer, mintB, bob, 100_000_000)

	return &swapEnv{env: env, issuer: issuer, alice: alice, bob: bob, mintA: mintA, mintB: mintB}
}

func (s *swapEnv) offer(id uint64) *MakeOfferBuilder {
	return MakeOffer(s.alice, id).Offering(s.mintA, 10_000_000).Wanting(s.mintB, 100_000_000)
}

func TestMakeOffer_LocksTokensInVault(t *testing.T) {
	s := newSwapEnv(t)
	env := s.env

	jtx.RequireTxSuccess(t, env.Submit(s.offer(1).Build()))

	jtx.RequireOfferExists(t, env, s.alice, 1)
	jtx.RequireTokenBalance(t, env, s.mintA, s.alice, 0)
	require.Equal(t, uint64(10_000_000), env.VaultBalance(s.alice, 1, s.mintA))

	offer := env.Offer(s.alice, 1)
	require.Equal(t, s.alice.ID, offer.Maker)
	require.Equal(t, s.mintA.ID, offer.TokenMintA)
	require.Equal(t, s.mintB.ID, offer.TokenMintB)
	require.Equal(t, uint64(10_000_000), offer.TokenAOfferedAmount)
	require.Equal(t, uint64(100_000_000), offer.TokenBWantedAmount)

	// Offer and vault each lock one reserve.
	jtx.RequireBalance(t, env, s.alice, jtx.DefaultFunding-2*env.Reserve())
	// Nothing else moved.
	jtx.RequireTokenBalance(t, env, s.mintB, s.bob, 100_000_000)
	require.Equal(t, uint64(10_000_000), env.Mint(s.mintA).Supply)
}

func TestTakeOffer_SwapsAtomically(t *testing.T) {
	s := newSwapEnv(t)
	env := s.env
	offer := s.offer(1)
	jtx.RequireTxSuccess(t, env.Submit(offer.Build()))

	result := env.Submit(Take(s.bob, offer.Ref()))
	jtx.RequireTxSuccess(t, result)

	jtx.RequireTokenBalance(t, env, s.mintA, s.alice, 0)
	jtx.RequireTokenBalance(t, env, s.mintB, s.alice, 100_000_000)
	jtx.RequireTokenBalance(t, env, s.mintA, s.bob, 10_000_000)
	jtx.RequireTokenBalance(t, env, s.mintB, s.bob, 0)

	jtx.RequireNoOffer(t, env, s.alice, 1)
	vault := keylet.Vault(keylet.Offer(s.alice.ID, 1), s.mintA.ID)
	require.False(t, env.LedgerEntryExists(vault), "vault must be closed")

	// Reserves of the offer and vault return to the maker; the taker pays
	// for the two holding accounts the swap had to open.
	jtx.RequireBalance(t, env, s.alice, jtx.DefaultFunding)
	jtx.RequireBalance(t, env, s.bob, jtx.DefaultFunding-2*env.Reserve())

	require.Equal(t, uint64(10_000_000), env.Mint(s.mintA).Supply)
	require.Equal(t, uint64(100_000_000), env.Mint(s.mintB).Supply)
}

func TestTakeOffer_InsufficientFundsLeavesStateUnchanged(t *testing.T) {
	env := jtx.NewTestEnv(t)
	issuer := jtx.NewAccount("issuer")
	alice := jtx.NewAccount("alice")
	carol := jtx.NewAccount("carol")
	env.Fund(issuer, alice, carol)

	mintA := env.CreateMint(issuer, "mintA", 6)
	mintB := env.CreateMint(issuer, "mintB", 6)
	env.MintTo(issuer, mintA, alice, 10_000_000)
	env.MintTo(issuer, mintB, carol, 50_000_000)

	offer := MakeOffer(alice, 7).Offering(mintA, 10_000_000).Wanting(mintB, 100_000_000)
	jtx.RequireTxSuccess(t, env.Submit(offer.Build()))

	before := env.Snapshot()
	result := env.Submit(Take(carol, offer.Ref()))
	jtx.RequireTxFail(t, result, jtx.TecINSUFFICIENT_FUNDS)

	jtx.RequireUnchanged(t, env, before)
	jtx.RequireOfferExists(t, env, alice, 7)
	require.Equal(t, uint64(10_000_000), env.VaultBalance(alice, 7, mintA))
}

func TestTakeOffer_WithoutHoldingAccount(t *testing.T) {
	s := newSwapEnv(t)
	env := s.env
	offer := s.offer(1)
	jtx.RequireTxSuccess(t, env.Submit(offer.Build()))

	dave := jtx.NewAccount("dave")
	env.Fund(dave)

	before := env.Snapshot()
	jtx.RequireTxFail(t, env.Submit(Take(dave, offer.Ref())), jtx.TecINSUFFICIENT_FUNDS)
	jtx.RequireUnchanged(t, env, before)
}

func TestTakeOffer_OnlyOnce(t *testing.T) {
	s := newSwapEnv(t)
	env := s.env
	offer := s.offer(1)
	jtx.RequireTxSuccess(t, env.Submit(offer.Build()))
	jtx.RequireTxSuccess(t, env.Submit(Take(s.bob, offer.Ref())))

	env.MintTo(s.issuer, s.mintB, s.bob, 100_000_000)
	before := env.Snapshot()
	result := env.Submit(Take(s.bob, offer.Ref()))
	jtx.RequireTxFail(t, result, jtx.TecNO_ENTRY)
	jtx.RequireUnchanged(t, env, before)
}

func TestTakeOffer_MismatchedMint(t *testing.T) {
	s := newSwapEnv(t)
	env := s.env
	offer := s.offer(1)
	jtx.RequireTxSuccess(t, env.Submit(offer.Build()))

	mintC := env.CreateMint(s.issuer, "mintC", 6)
	ref := offer.Ref()
	ref.MintB = mintC

	before := env.Snapshot()
	jtx.RequireTxFail(t, env.Submit(Take(s.bob, ref)), jtx.TecMISMATCHED_MINT)
	jtx.RequireUnchanged(t, env, before)
}

func TestCancelOffer_ReturnsVaultToMaker(t *testing.T) {
	s := newSwapEnv(t)
	env := s.env
	offer := s.offer(1)
	jtx.RequireTxSuccess(t, env.Submit(offer.Build()))

	jtx.RequireTxSuccess(t, env.Submit(Cancel(s.alice, offer.Ref())))

	jtx.RequireNoOffer(t, env, s.alice, 1)
	require.Zero(t, env.VaultBalance(s.alice, 1, s.mintA))
	jtx.RequireTokenBalance(t, env, s.mintA, s.alice, 10_000_000)
	jtx.RequireBalance(t, env, s.alice, jtx.DefaultFunding)

	// Cancelled offers cannot be taken.
	jtx.RequireTxFail(t, env.Submit(Take(s.bob, offer.Ref())), jtx.TecNO_ENTRY)
}

func TestCancelOffer_OnlyMaker(t *testing.T) {
	s := newSwapEnv(t)
	env := s.env
	offer := s.offer(1)
	jtx.RequireTxSuccess(t, env.Submit(offer.Build()))

	before := env.Snapshot()
	result := env.Submit(Cancel(s.bob, offer.Ref()))
	jtx.RequireTxFail(t, result, jtx.TecUNAUTHORIZED)
	require.Error(t, result.Err)

	jtx.RequireUnchanged(t, env, before)
	jtx.RequireOfferExists(t, env, s.alice, 1)
}

func TestMakeOffer_DuplicateID(t *testing.T) {
	s := newSwapEnv(t)
	env := s.env

	first := MakeOffer(s.alice, 3).Offering(s.mintA, 4_000_000).Wanting(s.mintB, 1)
	jtx.RequireTxSuccess(t, env.Submit(first.Build()))

	before := env.Snapshot()
	second := MakeOffer(s.alice, 3).Offering(s.mintA, 1_000_000).Wanting(s.mintB, 2)
	jtx.RequireTxFail(t, env.Submit(second.Build()), jtx.TecDUPLICATE)
	jtx.RequireUnchanged(t, env, before)

	// A different id is a different offer.
	third := MakeOffer(s.alice, 4).Offering(s.mintA, 1_000_000).Wanting(s.mintB, 2)
	jtx.RequireTxSuccess(t, env.Submit(third.Build()))
	require.Equal(t, uint64(4_000_000), env.VaultBalance(s.alice, 3, s.mintA))
	require.Equal(t, uint64(1_000_000), env.VaultBalance(s.alice, 4, s.mintA))
	jtx.RequireTokenBalance(t, env, s.mintA, s.alice, 5_000_000)
}

func TestMakeOffer_IDReusableAfterClose(t *testing.T) {
	s := newSwapEnv(t)
	env := s.env
	offer := MakeOffer(s.alice, 9).Offering(s.mintA, 1_000_000).Wanting(s.mintB, 5)

	jtx.RequireTxSuccess(t, env.Submit(offer.Build()))
	jtx.RequireTxSuccess(t, env.Submit(Cancel(s.alice, offer.Ref())))
	jtx.RequireTxSuccess(t, env.Submit(offer.Memo("again").Build()))
	jtx.RequireOfferExists(t, env, s.alice, 9)
}

func TestMakeOffer_Failures(t *testing.T) {
	s := newSwapEnv(t)
	env := s.env
	mintC := jtx.NewAccount("mintC")

	tests := []struct {
		name  string
		build *MakeOfferBuilder
		code  string
	}{
		{
			name:  "more than held",
			build: MakeOffer(s.alice, 1).Offering(s.mintA, 10_000_001).Wanting(s.mintB, 1),
			code:  jtx.TecINSUFFICIENT_FUNDS,
		},
		{
			name:  "no holding account",
			build: MakeOffer(s.bob, 1).Offering(s.mintA, 1).Wanting(s.mintB, 1),
			code:  jtx.TecINSUFFICIENT_FUNDS,
		},
		{
			name:  "unknown wanted mint",
			build: MakeOffer(s.alice, 1).Offering(s.mintA, 1).Wanting(mintC, 1),
			code:  jtx.TecNO_ENTRY,
		},
		{
			name:  "same mint",
			build: MakeOffer(s.alice, 1).Offering(s.mintA, 1).Wanting(s.mintA, 1),
			code:  jtx.TemSAME_MINT,
		},
		{
			name:  "zero offered",
			build: MakeOffer(s.alice, 1).Offering(s.mintA, 0).Wanting(s.mintB, 1),
			code:  jtx.TemBAD_AMOUNT,
		},
		{
			name:  "zero wanted",
			build: MakeOffer(s.alice, 1).Offering(s.mintA, 1).Wanting(s.mintB, 0),
			code:  jtx.TemBAD_AMOUNT,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := env.Snapshot()
			jtx.RequireTxFail(t, env.Submit(tt.build.Build()), tt.code)
			jtx.RequireUnchanged(t, env, before)
		})
	}
}

func TestMakeOffer_InsufficientReserve(t *testing.T) {
	env := jtx.NewTestEnv(t)
	issuer := jtx.NewAccount("issuer")
	alice := jtx.NewAccount("alice")
	env.Fund(issuer)
	// Enough for the vault but not for the offer.
	env.FundAmount(alice, env.Reserve())

	mintA := env.CreateMint(issuer, "mintA", 0)
	mintB := env.CreateMint(issuer, "mintB", 0)
	env.MintTo(issuer, mintA, alice, 10)

	before := env.Snapshot()
	result := env.Submit(MakeOffer(alice, 1).Offering(mintA, 10).Wanting(mintB, 10).Build())
	jtx.RequireTxFail(t, result, jtx.TecINSUFFICIENT_RESERVE)
	jtx.RequireUnchanged(t, env, before)
}

func TestMakeOffer_RequiresMakerSignature(t *testing.T) {
	s := newSwapEnv(t)
	env := s.env

	before := env.Snapshot()
	result := env.SubmitSignedWith(s.offer(1).Build(), s.bob)
	jtx.RequireTxFail(t, result, jtx.TemBAD_SIGNATURE)
	jtx.RequireUnchanged(t, env, before)
}

func TestTakeOffer_PartiesIndependent(t *testing.T) {
	s := newSwapEnv(t)
	env := s.env

	carol := jtx.NewAccount("carol")
	env.Fund(carol)
	env.MintTo(s.issuer, s.mintA, carol, 2_000)

	aliceOffer := MakeOffer(s.alice, 1).Offering(s.mintA, 1_000).Wanting(s.mintB, 10)
	carolOffer := MakeOffer(carol, 1).Offering(s.mintA, 2_000).Wanting(s.mintB, 30)
	jtx.RequireTxSuccess(t, env.Submit(aliceOffer.Build()))
	jtx.RequireTxSuccess(t, env.Submit(carolOffer.Build()))

	jtx.RequireTxSuccess(t, env.Submit(Take(s.bob, carolOffer.Ref())))

	jtx.RequireOfferExists(t, env, s.alice, 1)
	jtx.RequireNoOffer(t, env, carol, 1)
	require.Equal(t, uint64(1_000), env.VaultBalance(s.alice, 1, s.mintA))
	jtx.RequireTokenBalance(t, env, s.mintB, carol, 30)
	jtx.RequireTokenBalance(t, env, s.mintA, s.bob, 2_000)
	jtx.RequireTokenBalance(t, env, s.mintB, s.bob, 100_000_000-30)
}
