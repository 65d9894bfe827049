package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/LeJamon/goProgramsd/internal/core/ledger/entry"
	"github.com/LeJamon/goProgramsd/internal/core/ledger/keylet"
	"github.com/LeJamon/goProgramsd/internal/core/tx/sle"
)

// AuditReport summarises one invariant sweep over the whole state
type AuditReport struct {
	Sequence   uint64   `json:"sequence"`
	Entries    int      `json:"entries"`
	Offers     int      `json:"offers"`
	Mints      int      `json:"mints"`
	Holdings   int      `json:"holdings"`
	Favorites  int      `json:"favorites"`
	Violations []string `json:"violations"`
}

// OK reports whether the sweep found no violations
func (r *AuditReport) OK() bool {
	return len(r.Violations) == 0
}

type snapshot struct {
	offers    map[[32]byte]*sle.Offer
	mints     map[[32]byte]*sle.Mint
	holdings  map[[32]byte]*sle.TokenAccount
	favorites map[[32]byte]*sle.Favorites
	legacy    map[[32]byte]*sle.FavoritesV1
}

// Audit checks the custody, supply and address invariants of the current
// state. Checks run concurrently over one consistent snapshot.
func (s *Service) Audit(ctx context.Context) (*AuditReport, error) {
	snap, report, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	violate := func(format string, arguments ...interface{}) {
		mu.Lock()
		report.Violations = append(report.Violations, fmt.Sprintf(format, arguments...))
		mu.Unlock()
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error { return auditCustody(gCtx, snap, violate) })
	g.Go(func() error { return auditSupply(gCtx, snap, violate) })
	g.Go(func() error { return auditFavorites(gCtx, snap, violate) })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(report.Violations)
	if !report.OK() {
		s.warnf("audit at sequence %d found %d violations", report.Sequence, len(report.Violations))
	}
	return report, nil
}

func (s *Service) snapshot() (*snapshot, *AuditReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &snapshot{
		offers:    make(map[[32]byte]*sle.Offer),
		mints:     make(map[[32]byte]*sle.Mint),
		holdings:  make(map[[32]byte]*sle.TokenAccount),
		favorites: make(map[[32]byte]*sle.Favorites),
		legacy:    make(map[[32]byte]*sle.FavoritesV1),
	}
	report := &AuditReport{Sequence: s.state.Sequence()}

	var decodeErr error
	err := s.state.ForEach(func(key [32]byte, data []byte) bool {
		report.Entries++
		t, err := sle.PeekType(data)
		if err != nil {
			decodeErr = fmt.Errorf("entry %X: %w", key, err)
			return false
		}
		switch t {
		case entry.TypeOffer:
			snap.offers[key], err = sle.ParseOffer(data)
		case entry.TypeMint:
			snap.mints[key], err = sle.ParseMint(data)
		case entry.TypeTokenAccount:
			snap.holdings[key], err = sle.ParseTokenAccount(data)
		case entry.TypeFavorites:
			snap.favorites[key], err = sle.ParseFavorites(data)
		case entry.TypeFavoritesV1:
			snap.legacy[key], err = sle.ParseFavoritesV1(data)
		}
		if err != nil {
			decodeErr = fmt.Errorf("%s %X: %w", t, key, err)
			return false
		}
		return true
	})
	if err != nil {
		return nil, nil, err
	}
	if decodeErr != nil {
		return nil, nil, decodeErr
	}

	report.Offers = len(snap.offers)
	report.Mints = len(snap.mints)
	report.Holdings = len(snap.holdings)
	report.Favorites = len(snap.favorites) + len(snap.legacy)
	return snap, report, nil
}

// auditCustody checks that every live offer sits at its derived address and
// that its vault holds exactly the offered amount.
func auditCustody(ctx context.Context, snap *snapshot, violate func(string, ...interface{})) error {
	for key, offer := range snap.offers {
		if err := ctx.Err(); err != nil {
			return err
		}
		offerKey := keylet.Offer(offer.Maker, offer.ID)
		if offerKey.Key != key {
			violate("offer %X is not stored at its derived address", key)
			continue
		}
		vault, ok := snap.holdings[keylet.Vault(offerKey, offer.TokenMintA).Key]
		if !ok {
			violate("offer %X has no vault", key)
			continue
		}
		if vault.Amount != offer.TokenAOfferedAmount {
			violate("offer %X vault holds %d, offered %d", key, vault.Amount, offer.TokenAOfferedAmount)
		}
	}
	return nil
}

// auditSupply checks that every holding belongs to a known mint and that
// holdings add up to each mint's supply.
func auditSupply(ctx context.Context, snap *snapshot, violate func(string, ...interface{})) error {
	totals := make(map[[32]byte]uint64, len(snap.mints))
	for key, holding := range snap.holdings {
		if err := ctx.Err(); err != nil {
			return err
		}
		if keylet.TokenAccount(holding.Mint, holding.Owner).Key != key {
			violate("holding %X is not stored at its derived address", key)
		}
		if _, ok := snap.mints[keylet.Mint(holding.Mint).Key]; !ok {
			violate("holding %X references unknown mint %X", key, holding.Mint)
			continue
		}
		total := totals[holding.Mint] + holding.Amount
		if total < holding.Amount {
			violate("holdings of mint %X overflow", holding.Mint)
		}
		totals[holding.Mint] = total
	}

	for _, mint := range snap.mints {
		if totals[mint.Address] != mint.Supply {
			violate("mint %X supply %d, holdings %d", mint.Address, mint.Supply, totals[mint.Address])
		}
	}
	return nil
}

// auditFavorites checks that each record lives at the address derived from
// its owner and schema version.
func auditFavorites(ctx context.Context, snap *snapshot, violate func(string, ...interface{})) error {
	for key, record := range snap.favorites {
		if err := ctx.Err(); err != nil {
			return err
		}
		if keylet.Favorites(record.Owner).Key != key {
			violate("favorites %X is not stored at its derived address", key)
		}
		if record.Authority == ([32]byte{}) {
			violate("favorites %X has no authority", key)
		}
	}
	for key, record := range snap.legacy {
		if err := ctx.Err(); err != nil {
			return err
		}
		if keylet.FavoritesV1(record.Owner).Key != key {
			violate("favoritesV1 %X is not stored at its derived address", key)
		}
	}
	return nil
}
