package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/LeJamon/goProgramsd/internal/core/ledger/entry"
	"github.com/LeJamon/goProgramsd/internal/core/ledger/keylet"
	"github.com/LeJamon/goProgramsd/internal/core/tx"
	"github.com/LeJamon/goProgramsd/internal/core/tx/sle"
	"github.com/LeJamon/goProgramsd/internal/storage/relationaldb"
)

// readEntry loads the entry at k into out, or fails with tx.ErrNotFound
func (s *Service) readEntry(k keylet.Keylet, out entry.Entry) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := s.state.Read(k)
	if err != nil {
		return err
	}
	if data == nil {
		return fmt.Errorf("%s %X: %w", k.Type, k.Key, tx.ErrNotFound)
	}
	return sle.Decode(data, out)
}

// Offer returns the live offer made by maker under id
func (s *Service) Offer(maker [32]byte, id uint64) (*sle.Offer, error) {
	offer := &sle.Offer{}
	if err := s.readEntry(keylet.Offer(maker, id), offer); err != nil {
		return nil, err
	}
	return offer, nil
}

// Offers returns every live offer, optionally only those made by maker
func (s *Service) Offers(maker *[32]byte) ([]*sle.Offer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		offers    []*sle.Offer
		decodeErr error
	)
	err := s.state.ForEach(func(key [32]byte, data []byte) bool {
		if t, err := sle.PeekType(data); err != nil || t != entry.TypeOffer {
			return true
		}
		offer, err := sle.ParseOffer(data)
		if err != nil {
			decodeErr = fmt.Errorf("offer %X: %w", key, err)
			return false
		}
		if maker == nil || offer.Maker == *maker {
			offers = append(offers, offer)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if decodeErr != nil {
		return nil, decodeErr
	}

	sort.Slice(offers, func(i, j int) bool {
		if offers[i].Maker != offers[j].Maker {
			return string(offers[i].Maker[:]) < string(offers[j].Maker[:])
		}
		return offers[i].ID < offers[j].ID
	})
	return offers, nil
}

// Vault returns the custody account holding an offer's tokens
func (s *Service) Vault(offer *sle.Offer) (*sle.TokenAccount, error) {
	vault := &sle.TokenAccount{}
	if err := s.readEntry(keylet.Vault(keylet.Offer(offer.Maker, offer.ID), offer.TokenMintA), vault); err != nil {
		return nil, err
	}
	return vault, nil
}

// Favorites returns the current-schema favorites record of owner
func (s *Service) Favorites(owner [32]byte) (*sle.Favorites, error) {
	record := &sle.Favorites{}
	if err := s.readEntry(keylet.Favorites(owner), record); err != nil {
		return nil, err
	}
	return record, nil
}

// FavoritesV1 returns the legacy favorites record of owner
func (s *Service) FavoritesV1(owner [32]byte) (*sle.FavoritesV1, error) {
	record := &sle.FavoritesV1{}
	if err := s.readEntry(keylet.FavoritesV1(owner), record); err != nil {
		return nil, err
	}
	return record, nil
}

// Mint returns the mint at address
func (s *Service) Mint(address [32]byte) (*sle.Mint, error) {
	mint := &sle.Mint{}
	if err := s.readEntry(keylet.Mint(address), mint); err != nil {
		return nil, err
	}
	return mint, nil
}

// TokenBalance returns owner's balance of mint. An owner without a holding
// account has a zero balance.
func (s *Service) TokenBalance(mint, owner [32]byte) (uint64, error) {
	holding := &sle.TokenAccount{}
	err := s.readEntry(keylet.TokenAccount(mint, owner), holding)
	if isNotFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return holding.Amount, nil
}

// NativeBalance returns owner's lamports. Unknown identities hold zero.
func (s *Service) NativeBalance(owner [32]byte) (uint64, error) {
	account := &sle.SystemAccount{}
	err := s.readEntry(keylet.System(owner), account)
	if isNotFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return account.Lamports, nil
}

// AccountSequence returns the Sequence the next instruction signed by owner
// must carry.
func (s *Service) AccountSequence(owner [32]byte) (uint64, error) {
	account := &sle.SystemAccount{}
	err := s.readEntry(keylet.System(owner), account)
	if isNotFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return account.Sequence, nil
}

// Instruction returns the recorded history of one instruction
func (s *Service) Instruction(ctx context.Context, hash [32]byte) (*relationaldb.InstructionRecord, error) {
	if s.history == nil {
		return nil, ErrNoHistory
	}
	return s.history.Get(ctx, relationaldb.Hash(hash))
}

// AccountHistory pages the recorded instructions signed by or naming account
func (s *Service) AccountHistory(ctx context.Context, account [32]byte, opts relationaldb.QueryOptions) ([]relationaldb.InstructionRecord, error) {
	if s.history == nil {
		return nil, ErrNoHistory
	}
	return s.history.ByAccount(ctx, relationaldb.AccountID(account), opts)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isNotFound(err error) bool {
	return errors.Is(err, tx.ErrNotFound)
}
