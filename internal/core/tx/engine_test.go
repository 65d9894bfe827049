package tx_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	addresscodec "github.com/LeJamon/goProgramsd/internal/codec/address-codec"
	"github.com/LeJamon/goProgramsd/internal/core/ledger"
	"github.com/LeJamon/goProgramsd/internal/core/ledger/keylet"
	"github.com/LeJamon/goProgramsd/internal/core/tx"
	"github.com/LeJamon/goProgramsd/internal/core/tx/escrow"
	"github.com/LeJamon/goProgramsd/internal/core/tx/favorites"
	"github.com/LeJamon/goProgramsd/internal/core/tx/sle"
	"github.com/LeJamon/goProgramsd/internal/core/tx/system"
	"github.com/LeJamon/goProgramsd/internal/crypto/algorithms/ed25519"
	"github.com/LeJamon/goProgramsd/internal/storage/database/memory"
)

func newState(t *testing.T) *ledger.State {
	t.Helper()
	state, err := ledger.NewState(context.Background(), memory.NewDB(), 0, nil)
	require.NoError(t, err)
	return state
}

func keypair(t *testing.T, seed string) (*ed25519.Keypair, string) {
	t.Helper()
	key, err := ed25519.GenerateKeypair([]byte(seed))
	require.NoError(t, err)
	return key, addresscodec.AccountID(key.Public).String()
}

func fundNative(t *testing.T, state *ledger.State, owner [32]byte, lamports uint64) {
	t.Helper()
	data, err := sle.Serialize(&sle.SystemAccount{Account: owner, Lamports: lamports})
	require.NoError(t, err)
	require.NoError(t, state.Insert(keylet.System(owner), data))
}

func TestEngineRequiresSignature(t *testing.T) {
	state := newState(t)
	key, address := keypair(t, "alice")
	fundNative(t, state, key.Public, 10)

	engine := tx.NewEngine(state, tx.EngineConfig{})

	unsigned := favorites.NewSetFavorites(address, 23, "red")
	result := engine.Apply(unsigned)
	assert.Equal(t, tx.TemBAD_SIGNATURE, result.Result)
	assert.False(t, result.Applied)

	signed := favorites.NewSetFavorites(address, 23, "red")
	require.NoError(t, tx.Sign(signed, key))
	result = engine.Apply(signed)
	assert.Equal(t, tx.TesSUCCESS, result.Result, result.Message)
	assert.True(t, result.Applied)

	// a signature does not survive a field change
	tampered := favorites.NewSetFavorites(address, 24, "red")
	tampered.Signature = signed.Signature
	assert.Equal(t, tx.TemBAD_SIGNATURE, engine.Apply(tampered).Result)
}

func TestEngineSequence(t *testing.T) {
	state := newState(t)
	key, alice := keypair(t, "alice")
	_, bob := keypair(t, "bob")
	fundNative(t, state, key.Public, 100)

	engine := tx.NewEngine(state, tx.EngineConfig{})

	transfer := system.NewSystemTransfer(alice, bob, 10)
	require.NoError(t, tx.Sign(transfer, key))
	result := engine.Apply(transfer)
	require.Equal(t, tx.TesSUCCESS, result.Result, result.Message)

	replayed := engine.Apply(transfer)
	assert.Equal(t, tx.TefPAST_SEQ, replayed.Result)
	assert.False(t, replayed.Applied)
	require.NotNil(t, replayed.Metadata)
	assert.Empty(t, replayed.Metadata.AffectedNodes)

	early := system.NewSystemTransfer(alice, bob, 10)
	early.Sequence = 2
	require.NoError(t, tx.Sign(early, key))
	assert.Equal(t, tx.TerPRE_SEQ, engine.Apply(early).Result)

	data, err := state.Read(keylet.System(key.Public))
	require.NoError(t, err)
	account, err := sle.ParseSystemAccount(data)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), account.Sequence)
	assert.Equal(t, uint64(90), account.Lamports)

	next := system.NewSystemTransfer(alice, bob, 10)
	next.Sequence = 1
	require.NoError(t, tx.Sign(next, key))
	assert.Equal(t, tx.TesSUCCESS, engine.Apply(next).Result)
}

func TestSignRejectsForeignKey(t *testing.T) {
	key, _ := keypair(t, "alice")
	_, other := keypair(t, "bob")
	assert.Error(t, tx.Sign(favorites.NewSetFavorites(other, 1, "red"), key))
}

func TestEnginePreflight(t *testing.T) {
	state := newState(t)
	_, alice := keypair(t, "alice")
	_, mint := keypair(t, "mint")
	engine := tx.NewEngine(state, tx.EngineConfig{SkipSignatureVerification: true})

	tt := []struct {
		description string
		instruction tx.Transaction
		expected    tx.Result
	}{
		{"missing account", favorites.NewSetFavorites("", 1, "red"), tx.TemBAD_SRC_ACCOUNT},
		{"bad account", favorites.NewSetFavorites("0OIl", 1, "red"), tx.TemBAD_SRC_ACCOUNT},
		{"same mint", escrow.NewMakeOffer(alice, 1, mint, 10, mint, 10), tx.TemSAME_MINT},
		{"zero amount", escrow.NewMakeOffer(alice, 1, mint, 0, alice, 10), tx.TemBAD_AMOUNT},
		{"color too long", favorites.NewSetFavorites(alice, 1, string(make([]byte, 51))), tx.TemBAD_COLOR},
	}
	for _, tc := range tt {
		t.Run(tc.description, func(t *testing.T) {
			result := engine.Apply(tc.instruction)
			assert.Equal(t, tc.expected, result.Result)
			assert.Nil(t, result.Metadata)
		})
	}
}

func TestEngineMismatchedType(t *testing.T) {
	_, alice := keypair(t, "alice")
	engine := tx.NewEngine(newState(t), tx.EngineConfig{SkipSignatureVerification: true})

	instruction := favorites.NewSetFavorites(alice, 1, "red")
	instruction.TransactionType = tx.TypeSetAuthority.String()
	assert.Equal(t, tx.TemINVALID, engine.Apply(instruction).Result)
}

func TestEngineFailureChangesNothing(t *testing.T) {
	state := newState(t)
	key, alice := keypair(t, "alice")
	_, bob := keypair(t, "bob")
	fundNative(t, state, key.Public, 100)

	engine := tx.NewEngine(state, tx.EngineConfig{SkipSignatureVerification: true})

	// the debit succeeds inside the instruction but the credit overflows
	bobID := addresscodec.MustDecode(bob)
	fundNative(t, state, bobID, ^uint64(0))

	result := engine.Apply(system.NewSystemTransfer(alice, bob, 10))
	assert.Equal(t, tx.TecOVERFLOW, result.Result)
	assert.False(t, result.Applied)

	data, err := state.Read(keylet.System(key.Public))
	require.NoError(t, err)
	account, err := sle.ParseSystemAccount(data)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), account.Lamports)
}

func TestEngineMetadata(t *testing.T) {
	state := newState(t)
	key, alice := keypair(t, "alice")
	_, bob := keypair(t, "bob")
	fundNative(t, state, key.Public, 100)

	engine := tx.NewEngine(state, tx.EngineConfig{SkipSignatureVerification: true, Sequence: 7})
	result := engine.Apply(system.NewSystemTransfer(alice, bob, 40))
	require.Equal(t, tx.TesSUCCESS, result.Result)
	require.NotNil(t, result.Metadata)
	assert.Equal(t, uint64(7), result.Metadata.Sequence)
	assert.Equal(t, tx.TesSUCCESS, result.Metadata.TransactionResult)

	kinds := map[string]int{}
	for _, node := range result.Metadata.AffectedNodes {
		kinds[node.NodeType]++
	}
	assert.Equal(t, map[string]int{"CreatedNode": 1, "ModifiedNode": 1}, kinds)

	hash, err := tx.ComputeHash(system.NewSystemTransfer(alice, bob, 40))
	require.NoError(t, err)
	assert.Equal(t, hash, result.Hash)
}

// rogue declares one read-only slot and writes elsewhere
type rogue struct {
	tx.BaseTx
	write keylet.Keylet
}

func (r *rogue) Accounts() ([]tx.AccountMeta, error) {
	signer, err := r.AccountID()
	if err != nil {
		return nil, err
	}
	return []tx.AccountMeta{tx.ReadOnly(keylet.System(signer))}, nil
}

func (r *rogue) Apply(ctx *tx.ApplyContext) tx.Result {
	_ = ctx.CreditLamports(r.write.Key, 1)
	return tx.TesSUCCESS
}

func TestEngineEnforcesDeclaredAccounts(t *testing.T) {
	state := newState(t)
	key, alice := keypair(t, "alice")
	_, bob := keypair(t, "bob")
	fundNative(t, state, key.Public, 100)

	engine := tx.NewEngine(state, tx.EngineConfig{SkipSignatureVerification: true})

	readOnly := &rogue{BaseTx: *tx.NewBaseTx(tx.TypeSystemTransfer, alice)}
	readOnly.write = keylet.System(key.Public)
	assert.Equal(t, tx.TefREADONLY_ACCOUNT, engine.Apply(readOnly).Result)

	undeclared := &rogue{BaseTx: *tx.NewBaseTx(tx.TypeSystemTransfer, alice)}
	undeclared.write = keylet.System(addresscodec.MustDecode(bob))
	assert.Equal(t, tx.TefUNDECLARED_ACCOUNT, engine.Apply(undeclared).Result)

	exists, err := state.Exists(keylet.System(addresscodec.MustDecode(bob)))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRegistryRoundTrip(t *testing.T) {
	_, alice := keypair(t, "alice")
	_, bob := keypair(t, "bob")
	_, mintA := keypair(t, "mintA")
	_, mintB := keypair(t, "mintB")

	original := escrow.NewTakeOffer(bob, alice, 42, mintA, mintB)
	data, err := tx.ToJSON(original)
	require.NoError(t, err)

	decoded, err := tx.FromJSON(data)
	require.NoError(t, err)
	require.IsType(t, &escrow.TakeOffer{}, decoded)
	assert.Equal(t, tx.TypeTakeOffer, decoded.TxType())

	h1, err := tx.ComputeHash(original)
	require.NoError(t, err)
	h2, err := tx.ComputeHash(decoded)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	_, err = tx.FromJSON([]byte(`{"TransactionType":"Nope"}`))
	assert.ErrorIs(t, err, tx.ErrUnknownTransactionType)
}
