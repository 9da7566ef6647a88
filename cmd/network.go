package cmd

import (
	"fmt"
	"strings"

	"github.com/chinmay1088/omniwallet/chains"
	"github.com/chinmay1088/omniwallet/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var networkCmd = &cobra.Command{
	Use:   "network [mainnet|testnet]",
	Short: "Show or change network",
	Long: `Show the current network or switch between mainnet and testnet.
Sessions are bound to a network, so switching requires unlocking again.

Examples:
  omniwallet network            # Show current network
  omniwallet network testnet    # Switch to testnet`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNetwork,
}

var chainsCmd = &cobra.Command{
	Use:   "chains",
	Short: "List supported chains",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("🌐 Supported chains (%s):\n\n", networkLabel())
		for _, info := range chains.All() {
			fmt.Printf("   %-14s %-6s %-12s %s\n", info.ID, info.Symbol, info.Family, cfg.Endpoint(string(info.ID)))
		}
	},
}

func networkLabel() string {
	if cfg.IsTestnet() {
		return color.YellowString("Testnet")
	}
	return color.GreenString("Mainnet")
}

func runNetwork(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		fmt.Printf("🌐 Current network: %s\n", networkLabel())
		return nil
	}

	network := strings.ToLower(args[0])
	if network != config.NetworkMainnet && network != config.NetworkTestnet {
		return fmt.Errorf("invalid network: %s. Use 'mainnet' or 'testnet'", network)
	}
	if err := config.WriteNetwork(cfg.Home, network); err != nil {
		return err
	}
	cfg.Network = network

	fmt.Printf("🌐 Switched to %s\n", networkLabel())
	if cfg.IsTestnet() {
		fmt.Println("⚠️  Balances and transfers now use test networks")
	}
	fmt.Println("💡 Run 'omniwallet unlock' to open a session on this network")
	return nil
}
