package testing

import (
	"context"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/LeJamon/goProgramsd/internal/core/ledger"
	"github.com/LeJamon/goProgramsd/internal/core/ledger/entry"
	"github.com/LeJamon/goProgramsd/internal/core/ledger/keylet"
	"github.com/LeJamon/goProgramsd/internal/core/tx"
	_ "github.com/LeJamon/goProgramsd/internal/core/tx/all"
	"github.com/LeJamon/goProgramsd/internal/core/tx/sle"
	"github.com/LeJamon/goProgramsd/internal/core/tx/token"
	"github.com/LeJamon/goProgramsd/internal/storage/database/memory"
)

// DefaultReserve is the per-entry reserve used by test environments.
const DefaultReserve uint64 = 2_039_280

// DefaultFunding is what Fund gives each account.
var DefaultFunding = SOL(1000)

// TestEnv manages an in-memory state for instruction testing. It provides a
// simplified interface for funding accounts, creating mints, submitting
// instructions and reading entries back.
type TestEnv struct {
	t        *testing.T
	state    *ledger.State
	accounts map[string]*Account
	reserve  uint64
	sequence uint64
}

// NewTestEnv creates an empty test environment.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	return NewTestEnvWithReserve(t, DefaultReserve)
}

// NewTestEnvWithReserve creates an environment charging reserve lamports per
// created entry.
func NewTestEnvWithReserve(t *testing.T, reserve uint64) *TestEnv {
	t.Helper()

	state, err := ledger.NewState(context.Background(), memory.NewDB(), 0, nil)
	if err != nil {
		t.Fatalf("Failed to create state: %v", err)
	}
	return &TestEnv{
		t:        t,
		state:    state,
		accounts: make(map[string]*Account),
		reserve:  reserve,
	}
}

// Reserve returns the per-entry reserve.
func (e *TestEnv) Reserve() uint64 {
	return e.reserve
}

// State returns the environment's ledger view.
func (e *TestEnv) State() *ledger.State {
	return e.state
}

// Register lets Submit sign for accounts that were never funded.
func (e *TestEnv) Register(accounts ...*Account) {
	for _, acc := range accounts {
		e.accounts[acc.Address] = acc
	}
}

// Fund gives every account DefaultFunding lamports.
func (e *TestEnv) Fund(accounts ...*Account) {
	e.t.Helper()
	for _, acc := range accounts {
		e.FundAmount(acc, DefaultFunding)
	}
}

// FundAmount credits acc with lamports, creating its native account if needed.
func (e *TestEnv) FundAmount(acc *Account, lamports uint64) {
	e.t.Helper()
	e.Register(acc)

	k := keylet.System(acc.ID)
	account := &sle.SystemAccount{Account: acc.ID}
	action := tx.ActionInsert
	data, err := e.state.Read(k)
	if err != nil {
		e.t.Fatalf("Failed to read %s: %v", acc.Name, err)
	}
	if data != nil {
		if account, err = sle.ParseSystemAccount(data); err != nil {
			e.t.Fatalf("Failed to parse %s: %v", acc.Name, err)
		}
		action = tx.ActionModify
	}
	account.Lamports += lamports

	data, err = sle.Serialize(account)
	if err != nil {
		e.t.Fatalf("Failed to serialize %s: %v", acc.Name, err)
	}
	if err := e.state.Commit([]tx.Change{{Key: k.Key, Action: action, Data: data}}); err != nil {
		e.t.Fatalf("Failed to fund %s: %v", acc.Name, err)
	}
}

// CreateMint creates a mint named name whose authority is authority, and
// returns the mint's account.
func (e *TestEnv) CreateMint(authority *Account, name string, decimals uint8) *Account {
	e.t.Helper()
	mint := NewAccount(name)
	e.requireSuccess(e.Submit(token.NewCreateMint(authority.Address, mint.Address, decimals)))
	return mint
}

// CreateTokenAccount opens the holding account of owner for mint.
func (e *TestEnv) CreateTokenAccount(owner, mint *Account) {
	e.t.Helper()
	e.requireSuccess(e.Submit(token.NewCreateTokenAccount(owner.Address, mint.Address, "")))
}

// MintTo creates amount of mint in dest's holding account, opening the
// account first if needed.
func (e *TestEnv) MintTo(authority, mint, dest *Account, amount uint64) {
	e.t.Helper()
	e.Register(dest)
	if !e.LedgerEntryExists(keylet.TokenAccount(mint.ID, dest.ID)) {
		create := token.NewCreateTokenAccount(authority.Address, mint.Address, dest.Address)
		e.requireSuccess(e.Submit(create))
	}
	e.requireSuccess(e.Submit(token.NewMintTo(authority.Address, mint.Address, dest.Address, amount)))
}

func (e *TestEnv) requireSuccess(result TxResult) {
	e.t.Helper()
	if !result.Success {
		e.t.Fatalf("Setup instruction failed with %s: %s", result.Code, result.Message)
	}
}

// Submit sets the Sequence of transaction to its Account's next one, signs
// it with that account's key and applies it. Instructions from unknown
// accounts are applied unsigned.
func (e *TestEnv) Submit(transaction tx.Transaction) TxResult {
	e.t.Helper()
	e.fillSequence(transaction)
	if signer, ok := e.accounts[transaction.GetCommon().Account]; ok {
		if err := tx.Sign(transaction, signer.key); err != nil {
			e.t.Fatalf("Failed to sign: %v", err)
		}
	}
	return e.apply(transaction)
}

// SubmitUnsigned applies transaction as is, with signature checks on. The
// Sequence and Signature are left untouched, so a previously submitted
// instruction is resubmitted byte for byte.
func (e *TestEnv) SubmitUnsigned(transaction tx.Transaction) TxResult {
	e.t.Helper()
	return e.apply(transaction)
}

// SubmitSignedWith signs transaction with signer, whatever its Account says.
func (e *TestEnv) SubmitSignedWith(transaction tx.Transaction, signer *Account) TxResult {
	e.t.Helper()
	e.fillSequence(transaction)
	hash, err := tx.SigningHash(transaction)
	if err != nil {
		e.t.Fatalf("Failed to hash: %v", err)
	}
	sig, err := signer.key.Sign(hash[:])
	if err != nil {
		e.t.Fatalf("Failed to sign: %v", err)
	}
	transaction.GetCommon().Signature = strings.ToUpper(hex.EncodeToString(sig))
	return e.apply(transaction)
}

func (e *TestEnv) apply(transaction tx.Transaction) TxResult {
	engine := tx.NewEngine(e.state, tx.EngineConfig{
		ReservePerEntry: e.reserve,
		Sequence:        e.sequence + 1,
	})
	result := engine.Apply(transaction)
	if result.Applied {
		e.sequence++
	}
	return newTxResult(result)
}

func (e *TestEnv) fillSequence(transaction tx.Transaction) {
	e.t.Helper()
	common := transaction.GetCommon()
	id, err := common.AccountID()
	if err != nil {
		// preflight reports the bad account
		return
	}
	common.Sequence = e.accountSequence(id)
}

// AccountSequence returns the Sequence the next instruction signed by acc
// must carry.
func (e *TestEnv) AccountSequence(acc *Account) uint64 {
	e.t.Helper()
	return e.accountSequence(acc.ID)
}

func (e *TestEnv) accountSequence(id [32]byte) uint64 {
	e.t.Helper()
	account := &sle.SystemAccount{}
	if !e.readEntry(keylet.System(id), account) {
		return 0
	}
	return account.Sequence
}

// Sequence returns the number of applied instructions.
func (e *TestEnv) Sequence() uint64 {
	return e.sequence
}

// Balance returns the native lamports of acc.
func (e *TestEnv) Balance(acc *Account) uint64 {
	e.t.Helper()
	account := &sle.SystemAccount{}
	if !e.readEntry(keylet.System(acc.ID), account) {
		return 0
	}
	return account.Lamports
}

// TokenBalance returns acc's balance of mint, zero without a holding account.
func (e *TestEnv) TokenBalance(mint, acc *Account) uint64 {
	e.t.Helper()
	holding := &sle.TokenAccount{}
	if !e.readEntry(keylet.TokenAccount(mint.ID, acc.ID), holding) {
		return 0
	}
	return holding.Amount
}

// Mint returns the mint entry, or nil.
func (e *TestEnv) Mint(mint *Account) *sle.Mint {
	e.t.Helper()
	m := &sle.Mint{}
	if !e.readEntry(keylet.Mint(mint.ID), m) {
		return nil
	}
	return m
}

// Offer returns the live offer of maker with id, or nil.
func (e *TestEnv) Offer(maker *Account, id uint64) *sle.Offer {
	e.t.Helper()
	offer := &sle.Offer{}
	if !e.readEntry(keylet.Offer(maker.ID, id), offer) {
		return nil
	}
	return offer
}

// VaultBalance returns the tokens held in custody for an offer; zero once
// the vault is closed.
func (e *TestEnv) VaultBalance(maker *Account, id uint64, mintA *Account) uint64 {
	e.t.Helper()
	vault := &sle.TokenAccount{}
	if !e.readEntry(keylet.Vault(keylet.Offer(maker.ID, id), mintA.ID), vault) {
		return 0
	}
	return vault.Amount
}

// Favorites returns the current-schema record of owner, or nil.
func (e *TestEnv) Favorites(owner *Account) *sle.Favorites {
	e.t.Helper()
	record := &sle.Favorites{}
	if !e.readEntry(keylet.Favorites(owner.ID), record) {
		return nil
	}
	return record
}

// FavoritesV1 returns the legacy record of owner, or nil.
func (e *TestEnv) FavoritesV1(owner *Account) *sle.FavoritesV1 {
	e.t.Helper()
	record := &sle.FavoritesV1{}
	if !e.readEntry(keylet.FavoritesV1(owner.ID), record) {
		return nil
	}
	return record
}

// LedgerEntryExists reports whether slot k holds an entry.
func (e *TestEnv) LedgerEntryExists(k keylet.Keylet) bool {
	e.t.Helper()
	exists, err := e.state.Exists(k)
	if err != nil {
		e.t.Fatalf("Failed to read entry: %v", err)
	}
	return exists
}

// LedgerEntry returns the raw bytes at slot k.
func (e *TestEnv) LedgerEntry(k keylet.Keylet) ([]byte, error) {
	return e.state.Read(k)
}

// Snapshot copies every entry of the state.
func (e *TestEnv) Snapshot() map[[32]byte][]byte {
	e.t.Helper()
	out := make(map[[32]byte][]byte)
	err := e.state.ForEach(func(key [32]byte, data []byte) bool {
		out[key] = append([]byte(nil), data...)
		return true
	})
	if err != nil {
		e.t.Fatalf("Failed to snapshot state: %v", err)
	}
	return out
}

func (e *TestEnv) readEntry(k keylet.Keylet, out entry.Entry) bool {
	e.t.Helper()
	data, err := e.state.Read(k)
	if err != nil {
		e.t.Fatalf("Failed to read entry: %v", err)
	}
	if data == nil {
		return false
	}
	if err := sle.Decode(data, out); err != nil {
		e.t.Fatalf("Failed to decode entry: %v", err)
	}
	return true
}
