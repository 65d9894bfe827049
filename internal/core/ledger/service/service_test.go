package service

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	addresscodec "github.com/LeJamon/goProgramsd/internal/codec/address-codec"
	"github.com/LeJamon/goProgramsd/internal/core/ledger"
	"github.com/LeJamon/goProgramsd/internal/core/ledger/genesis"
	"github.com/LeJamon/goProgramsd/internal/core/ledger/keylet"
	"github.com/LeJamon/goProgramsd/internal/core/tx"
	"github.com/LeJamon/goProgramsd/internal/core/tx/escrow"
	"github.com/LeJamon/goProgramsd/internal/core/tx/favorites"
	"github.com/LeJamon/goProgramsd/internal/core/tx/sle"
	"github.com/LeJamon/goProgramsd/internal/core/tx/token"
	"github.com/LeJamon/goProgramsd/internal/storage/database/memory"
	"github.com/LeJamon/goProgramsd/internal/storage/relationaldb"
	"github.com/LeJamon/goProgramsd/internal/storage/relationaldb/mock_relationaldb"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "service-log")
	if err != nil {
		panic(err)
	}
	logConfig := logger.Configuration{
		Directory: dir,
		File:      "service.log",
		Size:      1048576,
		Count:     1,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "trace",
		},
	}
	if err := logger.Initialise(logConfig); err != nil {
		panic(fmt.Sprintf("logger initialization failed: %s", err))
	}
	code := m.Run()
	logger.Finalise()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

const (
	startingLamports = 100_000_000
	reserve          = 1_000
)

func id(b byte) [32]byte {
	var out [32]byte
	for i := range out {
		out[i] = b
	}
	return out
}

func addr(b byte) string {
	return addresscodec.AccountID(id(b)).String()
}

var (
	alice = byte(1)
	bob   = byte(2)
	mintA = byte(10)
	mintB = byte(11)
)

func newTestService(t *testing.T, history relationaldb.Repository) *Service {
	t.Helper()
	ctx := context.Background()

	state, err := ledger.NewState(ctx, memory.NewDB(), 0, nil)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.ReservePerEntry = reserve
	cfg.SkipSignatureVerification = true
	cfg.Genesis = genesis.Config{Allocations: []genesis.Allocation{
		{Account: addr(alice), Lamports: startingLamports},
		{Account: addr(bob), Lamports: startingLamports},
	}}

	if mock, ok := history.(*mock_relationaldb.MockRepository); ok {
		mock.EXPECT().LastSequence(gomock.Any()).Return(uint64(0), nil)
	}

	svc := New(cfg, state, history, logger.New("service"))
	require.NoError(t, svc.Start(ctx))
	return svc
}

// submit fills in the signer's next Sequence and submits instruction
func submit(t *testing.T, svc *Service, instruction tx.Transaction) *SubmitResult {
	t.Helper()
	signer, err := instruction.GetCommon().AccountID()
	require.NoError(t, err)
	sequence, err := svc.AccountSequence(signer)
	require.NoError(t, err)
	instruction.GetCommon().Sequence = sequence

	result, err := svc.Submit(context.Background(), instruction)
	require.NoError(t, err)
	return result
}

func submitOK(t *testing.T, svc *Service, instruction tx.Transaction) *SubmitResult {
	t.Helper()
	result := submit(t, svc, instruction)
	require.Equal(t, tx.TesSUCCESS, result.Result, result.Message)
	return result
}

// fund creates both mints and gives alice A tokens and bob B tokens
func fund(t *testing.T, svc *Service) {
	t.Helper()
	submitOK(t, svc, token.NewCreateMint(addr(alice), addr(mintA), 6))
	submitOK(t, svc, token.NewCreateMint(addr(alice), addr(mintB), 6))
	submitOK(t, svc, token.NewCreateTokenAccount(addr(alice), addr(mintA), ""))
	submitOK(t, svc, token.NewCreateTokenAccount(addr(bob), addr(mintB), ""))
	submitOK(t, svc, token.NewMintTo(addr(alice), addr(mintA), addr(alice), 500))
	submitOK(t, svc, token.NewMintTo(addr(alice), addr(mintB), addr(bob), 900))
}

func TestSubmitBeforeStart(t *testing.T) {
	state, err := ledger.NewState(context.Background(), memory.NewDB(), 0, nil)
	require.NoError(t, err)

	svc := New(DefaultConfig(), state, nil, nil)
	_, err = svc.Submit(context.Background(), favorites.NewSetFavorites(addr(alice), 1, "red"))
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestStartFailsOnHistoryError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	history := mock_relationaldb.NewMockRepository(ctrl)
	history.EXPECT().LastSequence(gomock.Any()).Return(uint64(0), relationaldb.ErrDatabaseClosed)

	state, err := ledger.NewState(context.Background(), memory.NewDB(), 0, nil)
	require.NoError(t, err)

	svc := New(DefaultConfig(), state, history, nil)
	err = svc.Start(context.Background())
	assert.ErrorIs(t, err, relationaldb.ErrDatabaseClosed)
}

func TestSubmitRecordsHistory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	history := mock_relationaldb.NewMockRepository(ctrl)
	svc := newTestService(t, history)

	var recorded *relationaldb.InstructionRecord
	history.EXPECT().
		Record(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, rec *relationaldb.InstructionRecord) error {
			recorded = rec
			return nil
		})

	result := submitOK(t, svc, token.NewCreateMint(addr(alice), addr(mintA), 6))
	assert.Equal(t, uint64(1), result.Sequence)
	assert.Equal(t, uint64(1), svc.Sequence())

	require.NotNil(t, recorded)
	assert.Equal(t, relationaldb.Hash(result.Hash), recorded.Hash)
	assert.Equal(t, uint64(1), recorded.Sequence)
	assert.Equal(t, tx.TypeCreateMint.String(), recorded.Type)
	assert.Equal(t, relationaldb.AccountID(id(alice)), recorded.Account)
	assert.Equal(t, "tesSUCCESS", recorded.Result)
	assert.True(t, recorded.Applied)
	assert.Equal(t, []relationaldb.AccountID{relationaldb.AccountID(id(mintA))}, recorded.Parties)
	assert.NotEmpty(t, recorded.RawTxn)
	assert.NotEmpty(t, recorded.Meta)
}

func TestRejectedInstructionIsNotRecorded(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	history := mock_relationaldb.NewMockRepository(ctrl)
	svc := newTestService(t, history)

	// no Record expectation: a call would fail the test
	result, err := svc.Submit(context.Background(), token.NewMintTo(addr(alice), addr(mintA), addr(alice), 5))
	require.NoError(t, err)
	assert.Equal(t, tx.TecNO_ENTRY, result.Result)
	assert.ErrorIs(t, result.Err(), tx.ErrNotFound)
	assert.Equal(t, uint64(0), result.Sequence)
	assert.Equal(t, uint64(0), svc.Sequence())
}

func TestDuplicateHistoryIsTolerated(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	history := mock_relationaldb.NewMockRepository(ctrl)
	svc := newTestService(t, history)

	history.EXPECT().
		Record(gomock.Any(), gomock.Any()).
		Return(fmt.Errorf("insert: %w", relationaldb.ErrDuplicateEntry))

	result := submitOK(t, svc, favorites.NewSetFavorites(addr(alice), 7, "blue"))
	assert.Equal(t, uint64(1), result.Sequence)
}

func TestReplayIsRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	history := mock_relationaldb.NewMockRepository(ctrl)
	svc := newTestService(t, history)

	// exactly one Record: the replay must not reach history
	history.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	set := favorites.NewSetFavorites(addr(alice), 7, "blue")
	submitOK(t, svc, set)

	sequence, err := svc.AccountSequence(id(alice))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), sequence)

	result, err := svc.Submit(context.Background(), set)
	require.NoError(t, err)
	assert.Equal(t, tx.TefPAST_SEQ, result.Result)
	assert.ErrorIs(t, result.Err(), tx.ErrInvalidArgument)
	assert.Zero(t, result.Sequence)
	assert.Equal(t, uint64(1), svc.Sequence())

	number := uint64(8)
	ahead := favorites.NewUpdateFavorites(addr(alice), addr(alice), &number, nil)
	ahead.Sequence = 5
	result, err = svc.Submit(context.Background(), ahead)
	require.NoError(t, err)
	assert.Equal(t, tx.TerPRE_SEQ, result.Result)

	sequence, err = svc.AccountSequence(id(99))
	require.NoError(t, err)
	assert.Zero(t, sequence)
}

func TestHistoryQueries(t *testing.T) {
	ctx := context.Background()

	svc := newTestService(t, nil)
	_, err := svc.Instruction(ctx, [32]byte{})
	assert.ErrorIs(t, err, ErrNoHistory)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	history := mock_relationaldb.NewMockRepository(ctrl)
	svc = newTestService(t, history)

	hash := relationaldb.Hash(id(9))
	history.EXPECT().Get(gomock.Any(), hash).Return(&relationaldb.InstructionRecord{Hash: hash}, nil)
	history.EXPECT().
		ByAccount(gomock.Any(), relationaldb.AccountID(id(alice)), relationaldb.QueryOptions{Limit: 5}).
		Return([]relationaldb.InstructionRecord{{Hash: hash}}, nil)

	rec, err := svc.Instruction(ctx, id(9))
	require.NoError(t, err)
	assert.Equal(t, hash, rec.Hash)

	recs, err := svc.AccountHistory(ctx, id(alice), relationaldb.QueryOptions{Limit: 5})
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestStateQueries(t *testing.T) {
	svc := newTestService(t, nil)
	fund(t, svc)

	submitOK(t, svc, escrow.NewMakeOffer(addr(alice), 1, addr(mintA), 200, addr(mintB), 300))

	offer, err := svc.Offer(id(alice), 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(200), offer.TokenAOfferedAmount)
	assert.Equal(t, uint64(300), offer.TokenBWantedAmount)

	_, err = svc.Offer(id(alice), 2)
	assert.ErrorIs(t, err, tx.ErrNotFound)

	vault, err := svc.Vault(offer)
	require.NoError(t, err)
	assert.Equal(t, uint64(200), vault.Amount)

	maker := id(alice)
	offers, err := svc.Offers(&maker)
	require.NoError(t, err)
	assert.Len(t, offers, 1)

	other := id(bob)
	offers, err = svc.Offers(&other)
	require.NoError(t, err)
	assert.Empty(t, offers)

	balance, err := svc.TokenBalance(id(mintA), id(alice))
	require.NoError(t, err)
	assert.Equal(t, uint64(300), balance)

	balance, err = svc.TokenBalance(id(mintA), id(bob))
	require.NoError(t, err)
	assert.Zero(t, balance)

	mint, err := svc.Mint(id(mintB))
	require.NoError(t, err)
	assert.Equal(t, uint64(900), mint.Supply)

	lamports, err := svc.NativeBalance(id(99))
	require.NoError(t, err)
	assert.Zero(t, lamports)
}

func TestFavoritesQueries(t *testing.T) {
	svc := newTestService(t, nil)
	submitOK(t, svc, favorites.NewSetFavorites(addr(alice), 23, "red"))
	submitOK(t, svc, favorites.NewSetFavoritesV1(addr(alice), 5, "blue"))

	current, err := svc.Favorites(id(alice))
	require.NoError(t, err)
	assert.Equal(t, uint64(23), current.Number)
	assert.Equal(t, id(alice), current.Authority)

	legacy, err := svc.FavoritesV1(id(alice))
	require.NoError(t, err)
	assert.Equal(t, "blue", legacy.Color)

	_, err = svc.Favorites(id(bob))
	assert.ErrorIs(t, err, tx.ErrNotFound)

	lamports, err := svc.NativeBalance(id(alice))
	require.NoError(t, err)
	assert.Equal(t, uint64(startingLamports-2*reserve), lamports)
}

func TestAudit(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)
	fund(t, svc)
	submitOK(t, svc, escrow.NewMakeOffer(addr(alice), 1, addr(mintA), 200, addr(mintB), 300))
	submitOK(t, svc, favorites.NewSetFavorites(addr(bob), 1, "green"))

	report, err := svc.Audit(ctx)
	require.NoError(t, err)
	assert.True(t, report.OK(), report.Violations)
	assert.Equal(t, 1, report.Offers)
	assert.Equal(t, 2, report.Mints)
	assert.Equal(t, 3, report.Holdings)
	assert.Equal(t, 1, report.Favorites)

	// drain the vault behind the engine's back
	offerKey := keylet.Offer(id(alice), 1)
	vaultKey := keylet.Vault(offerKey, id(mintA))
	data, err := sle.Serialize(&sle.TokenAccount{Mint: id(mintA), Owner: offerKey.Key, Reserve: reserve})
	require.NoError(t, err)
	require.NoError(t, svc.state.Update(vaultKey, data))

	report, err = svc.Audit(ctx)
	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.Len(t, report.Violations, 2)
}

func TestHooks(t *testing.T) {
	svc := newTestService(t, nil)

	events := make(chan InstructionEvent, 1)
	svc.SetHooks(&Hooks{OnInstruction: func(event InstructionEvent) { events <- event }})

	result := submitOK(t, svc, favorites.NewSetFavorites(addr(alice), 23, "red"))

	select {
	case event := <-events:
		assert.Equal(t, result.Hash, event.Hash)
		assert.Equal(t, tx.TypeSetFavorites.String(), event.Type)
		assert.Equal(t, uint64(1), event.Sequence)
		assert.Equal(t, 2, event.AffectedEntries)
	case <-time.After(time.Second):
		t.Fatal("hook was not called")
	}
}
