package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LeJamon/goProgramsd/internal/config"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Check custody and supply invariants over the whole state",
	Long: `Walk every entry and check that each live offer's vault holds exactly the
offered amount, that token holdings add up to each mint's supply and that
every favorites record sits at its derived address with an authority.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withNode(cmd.Context(), func(n *node) error {
			report, err := n.service.Audit(cmd.Context())
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if !report.OK() {
				return fmt.Errorf("audit found %d violations", len(report.Violations))
			}
			return nil
		})
	},
}

var accountCmd = &cobra.Command{
	Use:   "account <seed>",
	Short: "Show the identity derived from a seed",
	Long: `Show the address and record handles of the identity a batch file refers to
as @seed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seed := args[0]
		view := map[string]string{}
		for name, ref := range map[string]string{
			"address":     "@" + seed,
			"favorites":   "@favorites:" + seed,
			"favoritesV1": "@favoritesV1:" + seed,
		} {
			resolved, err := resolveRef(ref)
			if err != nil {
				return err
			}
			view[name] = resolved
		}
		return printJSON(cmd.OutOrStdout(), view)
	},
}

var exampleConfigCmd = &cobra.Command{
	Use:   "example-config <path>",
	Short: "Write an example programsd.toml",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SaveExampleConfig(args[0]); err != nil {
			return err
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(auditCmd, accountCmd, exampleConfigCmd)
}
