package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	addresscodec "github.com/LeJamon/goProgramsd/internal/codec/address-codec"
	"github.com/LeJamon/goProgramsd/internal/core/tx/sle"
)

var (
	// Query flags
	balanceMint string
	favoritesV1 bool
	offersMaker string
)

// offerView is the printable form of an offer and its vault.
type offerView struct {
	ID                  uint64 `json:"id"`
	Maker               string `json:"maker"`
	TokenMintA          string `json:"token_mint_a"`
	TokenMintB          string `json:"token_mint_b"`
	TokenAOfferedAmount uint64 `json:"token_a_offered_amount"`
	TokenBWantedAmount  uint64 `json:"token_b_wanted_amount"`
	Vault               uint64 `json:"vault"`
}

func newOfferView(offer *sle.Offer, vault uint64) offerView {
	return offerView{
		ID:                  offer.ID,
		Maker:               sle.EncodeAccountID(offer.Maker),
		TokenMintA:          sle.EncodeAccountID(offer.TokenMintA),
		TokenMintB:          sle.EncodeAccountID(offer.TokenMintB),
		TokenAOfferedAmount: offer.TokenAOfferedAmount,
		TokenBWantedAmount:  offer.TokenBWantedAmount,
		Vault:               vault,
	}
}

// favoritesView is the printable form of either favorites version.
type favoritesView struct {
	Version   string `json:"version"`
	Owner     string `json:"owner"`
	Number    uint64 `json:"number"`
	Color     string `json:"color"`
	Authority string `json:"authority,omitempty"`
}

// balanceView is a native or token balance.
type balanceView struct {
	Account  string `json:"account"`
	Mint     string `json:"mint,omitempty"`
	Amount   uint64 `json:"amount"`
	Decimals uint8  `json:"decimals,omitempty"`
	Display  string `json:"display"`

	// Sequence is the next instruction Sequence; native balances only
	Sequence *uint64 `json:"sequence,omitempty"`
}

// LamportsDecimals is the display precision of native balances.
const LamportsDecimals = 9

// formatAmount renders amount with decimals places.
func formatAmount(amount uint64, decimals uint8) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -int32(decimals)).StringFixed(int32(decimals))
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var offerCmd = &cobra.Command{
	Use:   "offer <maker> <id>",
	Short: "Show a live offer and its vault",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		maker, err := resolveAddress(args[0])
		if err != nil {
			return err
		}
		var id uint64
		if _, err := fmt.Sscan(args[1], &id); err != nil {
			return fmt.Errorf("offer id %q: %w", args[1], err)
		}
		return withNode(cmd.Context(), func(n *node) error {
			offer, err := n.service.Offer(maker, id)
			if err != nil {
				return err
			}
			vault, err := n.service.Vault(offer)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), newOfferView(offer, vault.Amount))
		})
	},
}

var offersCmd = &cobra.Command{
	Use:   "offers",
	Short: "List live offers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var maker *[32]byte
		if offersMaker != "" {
			id, err := resolveAddress(offersMaker)
			if err != nil {
				return err
			}
			maker = &id
		}
		return withNode(cmd.Context(), func(n *node) error {
			offers, err := n.service.Offers(maker)
			if err != nil {
				return err
			}
			views := make([]offerView, 0, len(offers))
			for _, offer := range offers {
				vault, err := n.service.Vault(offer)
				if err != nil {
					return err
				}
				views = append(views, newOfferView(offer, vault.Amount))
			}
			return printJSON(cmd.OutOrStdout(), views)
		})
	},
}

var favoritesCmd = &cobra.Command{
	Use:   "favorites <owner>",
	Short: "Show the favorites record of an owner",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, err := resolveAddress(args[0])
		if err != nil {
			return err
		}
		return withNode(cmd.Context(), func(n *node) error {
			if favoritesV1 {
				rec, err := n.service.FavoritesV1(owner)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), favoritesView{
					Version: "v1",
					Owner:   sle.EncodeAccountID(rec.Owner),
					Number:  rec.Number,
					Color:   rec.Color,
				})
			}
			rec, err := n.service.Favorites(owner)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), favoritesView{
				Version:   "current",
				Owner:     sle.EncodeAccountID(rec.Owner),
				Number:    rec.Number,
				Color:     rec.Color,
				Authority: sle.EncodeAccountID(rec.Authority),
			})
		})
	},
}

var balanceCmd = &cobra.Command{
	Use:   "balance <account>",
	Short: "Show the native or token balance of an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		account, err := resolveAddress(args[0])
		if err != nil {
			return err
		}
		view := balanceView{Account: addresscodec.AccountID(account).String()}
		return withNode(cmd.Context(), func(n *node) error {
			if balanceMint == "" {
				view.Amount, err = n.service.NativeBalance(account)
				if err != nil {
					return err
				}
				view.Display = formatAmount(view.Amount, LamportsDecimals)
				sequence, err := n.service.AccountSequence(account)
				if err != nil {
					return err
				}
				view.Sequence = &sequence
				return printJSON(cmd.OutOrStdout(), view)
			}

			mint, err := resolveAddress(balanceMint)
			if err != nil {
				return err
			}
			m, err := n.service.Mint(mint)
			if err != nil {
				return err
			}
			view.Mint = addresscodec.AccountID(mint).String()
			view.Decimals = m.Decimals
			view.Amount, err = n.service.TokenBalance(mint, account)
			if err != nil {
				return err
			}
			view.Display = formatAmount(view.Amount, m.Decimals)
			return printJSON(cmd.OutOrStdout(), view)
		})
	},
}

func init() {
	rootCmd.AddCommand(offerCmd, offersCmd, favoritesCmd, balanceCmd)

	offersCmd.Flags().StringVar(&offersMaker, "maker", "", "only offers of this maker")
	favoritesCmd.Flags().BoolVar(&favoritesV1, "v1", false, "show the V1 record")
	balanceCmd.Flags().StringVar(&balanceMint, "mint", "", "token mint; native lamports when empty")
}
