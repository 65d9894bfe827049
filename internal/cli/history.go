package cli

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	addresscodec "github.com/LeJamon/goProgramsd/internal/codec/address-codec"
	"github.com/LeJamon/goProgramsd/internal/storage/relationaldb"
)

var (
	// History flags
	historyLimit      int
	historyAfter      uint64
	historyDescending bool
)

// recordView is the printable form of a history record.
type recordView struct {
	Hash        string          `json:"hash"`
	Sequence    uint64          `json:"sequence"`
	Type        string          `json:"type"`
	Account     string          `json:"account"`
	Result      string          `json:"result"`
	Instruction json.RawMessage `json:"instruction"`
	Meta        json.RawMessage `json:"meta,omitempty"`
	Parties     []string        `json:"parties,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func newRecordView(rec *relationaldb.InstructionRecord) recordView {
	view := recordView{
		Hash:        rec.Hash.String(),
		Sequence:    rec.Sequence,
		Type:        rec.Type,
		Account:     addresscodec.AccountID(rec.Account).String(),
		Result:      rec.Result,
		Instruction: json.RawMessage(rec.RawTxn),
		CreatedAt:   rec.CreatedAt,
	}
	if len(rec.Meta) > 0 {
		view.Meta = json.RawMessage(rec.Meta)
	}
	for _, party := range rec.Parties {
		view.Parties = append(view.Parties, addresscodec.AccountID(party).String())
	}
	return view
}

func parseHash(s string) ([32]byte, error) {
	var hash [32]byte
	raw, err := hex.DecodeString(s)
	if err != nil {
		return hash, fmt.Errorf("hash %q: %w", s, err)
	}
	if len(raw) != len(hash) {
		return hash, fmt.Errorf("hash %q: want %d bytes, got %d", s, len(hash), len(raw))
	}
	copy(hash[:], raw)
	return hash, nil
}

// historyCmd represents the history command group
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query the instruction history",
}

var historyAccountCmd = &cobra.Command{
	Use:   "account <account>",
	Short: "List instructions signed by or concerning an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		account, err := resolveAddress(args[0])
		if err != nil {
			return err
		}
		return withNode(cmd.Context(), func(n *node) error {
			records, err := n.service.AccountHistory(cmd.Context(), account, relationaldb.QueryOptions{
				AfterSequence: historyAfter,
				Limit:         historyLimit,
				Descending:    historyDescending,
			})
			if err != nil {
				return err
			}
			views := make([]recordView, 0, len(records))
			for i := range records {
				views = append(views, newRecordView(&records[i]))
			}
			return printJSON(cmd.OutOrStdout(), views)
		})
	},
}

var historyTxCmd = &cobra.Command{
	Use:   "tx <hash>",
	Short: "Show one recorded instruction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := parseHash(args[0])
		if err != nil {
			return err
		}
		return withNode(cmd.Context(), func(n *node) error {
			rec, err := n.service.Instruction(cmd.Context(), hash)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), newRecordView(rec))
		})
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyAccountCmd, historyTxCmd)

	historyAccountCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of records")
	historyAccountCmd.Flags().Uint64Var(&historyAfter, "after", 0, "skip records at or below this sequence")
	historyAccountCmd.Flags().BoolVar(&historyDescending, "desc", false, "newest first")
}
