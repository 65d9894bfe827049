package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var applyJSON bool

var applyCmd = &cobra.Command{
	Use:   "apply <batch.yaml|batch.json>",
	Short: "Apply a batch of instructions",
	Long: `Apply every instruction of a YAML or JSON batch file in order. Each step
names its signer seed, the instruction fields and optionally the result it must
produce:

  - signer: alice
    instruction:
      TransactionType: MakeOffer
      ID: 1
      TokenMintA: "@mint-a"
      TokenAOfferedAmount: 10000000
      TokenMintB: "@mint-b"
      TokenBWantedAmount: 100000000
    expect: tesSUCCESS

Strings starting with @ are references: @seed is the identity derived from
seed, @favorites:seed and @favoritesV1:seed are its favorites records.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, err := readBatch(args[0])
		if err != nil {
			return err
		}
		return withNode(cmd.Context(), func(n *node) error {
			out := cmd.OutOrStdout()
			if applyJSON {
				out = nil
			}
			outcomes, err := runBatch(cmd.Context(), n.service, steps, out)
			if applyJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if encErr := enc.Encode(outcomes); encErr != nil && err == nil {
					err = encErr
				}
			}
			n.log.Infof("batch %s: %d of %d steps run", args[0], len(outcomes), len(steps))
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().BoolVar(&applyJSON, "json", false, "print outcomes as JSON")
}
