package escrow

import (
	"errors"

	addresscodec "github.com/LeJamon/goProgramsd/internal/codec/address-codec"
	"github.com/LeJamon/goProgramsd/internal/core/ledger/keylet"
	"github.com/LeJamon/goProgramsd/internal/core/tx"
	"github.com/LeJamon/goProgramsd/internal/core/tx/sle"
)

func init() {
	tx.Register(tx.TypeMakeOffer, func() tx.Transaction {
		return &MakeOffer{BaseTx: *tx.NewBaseTx(tx.TypeMakeOffer, "")}
	})
}

// MakeOffer locks TokenAOfferedAmount of TokenMintA in a vault and records
// that the maker wants TokenBWantedAmount of TokenMintB in exchange.
type MakeOffer struct {
	tx.BaseTx

	// ID is chosen by the maker; (maker, ID) addresses the offer
	ID uint64 `json:"ID"`

	TokenMintA          string `json:"TokenMintA"`
	TokenMintB          string `json:"TokenMintB"`
	TokenAOfferedAmount uint64 `json:"TokenAOfferedAmount"`
	TokenBWantedAmount  uint64 `json:"TokenBWantedAmount"`
}

// NewMakeOffer creates a new MakeOffer instruction
func NewMakeOffer(account string, id uint64, mintA string, offered uint64, mintB string, wanted uint64) *MakeOffer {
	return &MakeOffer{
		BaseTx:              *tx.NewBaseTx(tx.TypeMakeOffer, account),
		ID:                  id,
		TokenMintA:          mintA,
		TokenMintB:          mintB,
		TokenAOfferedAmount: offered,
		TokenBWantedAmount:  wanted,
	}
}

// TxType returns the instruction type
func (m *MakeOffer) TxType() tx.Type {
	return tx.TypeMakeOffer
}

// Validate validates the MakeOffer instruction
func (m *MakeOffer) Validate() error {
	if err := m.BaseTx.Validate(); err != nil {
		return err
	}
	if !addresscodec.IsValidAddress(m.TokenMintA) {
		return errors.New("temINVALID_ACCOUNT_ID: TokenMintA is not a valid address")
	}
	if !addresscodec.IsValidAddress(m.TokenMintB) {
		return errors.New("temINVALID_ACCOUNT_ID: TokenMintB is not a valid address")
	}
	if m.TokenMintA == m.TokenMintB {
		return errors.New("temSAME_MINT: TokenMintA and TokenMintB must differ")
	}
	if m.TokenAOfferedAmount == 0 {
		return errors.New("temBAD_AMOUNT: TokenAOfferedAmount must be positive")
	}
	if m.TokenBWantedAmount == 0 {
		return errors.New("temBAD_AMOUNT: TokenBWantedAmount must be positive")
	}
	return nil
}

// Flatten returns a flat map of all instruction fields
func (m *MakeOffer) Flatten() (map[string]any, error) {
	return tx.ReflectFlatten(m)
}

// OfferKeylet returns the address the offer will be stored at.
func (m *MakeOffer) OfferKeylet() (keylet.Keylet, error) {
	maker, err := m.AccountID()
	if err != nil {
		return keylet.Keylet{}, err
	}
	return keylet.Offer(maker, m.ID), nil
}

// Accounts declares the maker's funding accounts, both mints, the offer and
// its vault.
func (m *MakeOffer) Accounts() ([]tx.AccountMeta, error) {
	maker, err := m.AccountID()
	if err != nil {
		return nil, err
	}
	mintA, err := addresscodec.Decode(m.TokenMintA)
	if err != nil {
		return nil, err
	}
	mintB, err := addresscodec.Decode(m.TokenMintB)
	if err != nil {
		return nil, err
	}
	offer := keylet.Offer(maker, m.ID)
	return []tx.AccountMeta{
		tx.Writable(keylet.System(maker)),
		tx.ReadOnly(keylet.Mint(mintA)),
		tx.ReadOnly(keylet.Mint(mintB)),
		tx.Writable(keylet.TokenAccount(mintA, maker)),
		tx.Writable(offer),
		tx.Writable(keylet.Vault(offer, mintA)),
	}, nil
}

// Apply applies a MakeOffer instruction
func (m *MakeOffer) Apply(ctx *tx.ApplyContext) tx.Result {
	maker := ctx.Signer
	mintA := addresscodec.MustDecode(m.TokenMintA)
	mintB := addresscodec.MustDecode(m.TokenMintB)
	offerKey := keylet.Offer(maker, m.ID)

	exists, result := ctx.Exists(offerKey)
	if result != tx.TesSUCCESS {
		return result
	}
	if exists {
		return tx.TecDUPLICATE
	}

	if _, result := ctx.ReadMint(mintB); result != tx.TesSUCCESS {
		return result
	}

	source := keylet.TokenAccount(mintA, maker)
	holding, result := ctx.ReadTokenAccount(source)
	if result == tx.TecNO_ENTRY {
		return tx.TecINSUFFICIENT_FUNDS
	}
	if result != tx.TesSUCCESS {
		return result
	}
	if holding.Amount < m.TokenAOfferedAmount {
		return tx.TecINSUFFICIENT_FUNDS
	}

	// The vault is the holding account of mint A owned by the offer address.
	if result := ctx.CreateTokenAccount(mintA, offerKey.Key, maker); result != tx.TesSUCCESS {
		return result
	}
	if result := ctx.TransferTokens(mintA, source, keylet.Vault(offerKey, mintA), m.TokenAOfferedAmount); result != tx.TesSUCCESS {
		return result
	}

	reserve, result := ctx.ChargeReserve(maker)
	if result != tx.TesSUCCESS {
		return result
	}

	result = ctx.InsertEntry(offerKey, &sle.Offer{
		ID:                  m.ID,
		Maker:               maker,
		TokenMintA:          mintA,
		TokenMintB:          mintB,
		TokenAOfferedAmount: m.TokenAOfferedAmount,
		TokenBWantedAmount:  m.TokenBWantedAmount,
		Reserve:             reserve,
	})
	if result == tx.TesSUCCESS {
		ctx.Debugf("offer %d by %s: %d of %s for %d of %s",
			m.ID, m.Account, m.TokenAOfferedAmount, m.TokenMintA, m.TokenBWantedAmount, m.TokenMintB)
	}
	return result
}
