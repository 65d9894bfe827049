package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	envFile    string
	debug      bool
	quiet      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "programsd",
	Short: "goProgramsd - escrow and favorites state engine",
	Long: `goProgramsd applies signed instructions to a persistent key-value state:
a token-swap escrow (make, take and cancel offers) and a favorites registry
with authority delegation and versioned records. Every instruction is applied
atomically and recorded in the instruction history.`,
	Version:       "0.1.0-dev",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path (default programsd.toml if present)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file with PROGRAMSD_ overrides")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging to the console")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "print results only")
}
