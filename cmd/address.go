package cmd

import (
	"context"
	"fmt"

	"github.com/chinmay1088/omniwallet/chains"
	"github.com/chinmay1088/omniwallet/wallet"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:     "create [chain...]",
	Aliases: []string{"address"},
	Short:   "Show wallet addresses",
	Long: `Derive the wallet's account on one or more chains. "all" derives an
account on every supported chain; the command fails if any chain fails.

Examples:
  omniwallet create eth sol        # Ethereum and Solana addresses
  omniwallet create all            # Every supported chain
  omniwallet create sol --sollet   # Solana with SLIP-10 derivation`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCreate,
}

func init() {
	createCmd.Flags().Bool("sollet", false, "derive Solana keys on m/44'/501'/0'/0'")
	createCmd.Flags().String("path", "", "override the derivation path")
	createCmd.Flags().Bool("show-keys", false, "print private keys")
}

func parseChains(args []string) ([]chains.ID, error) {
	ids := make([]chains.ID, 0, len(args))
	for _, arg := range args {
		id, err := chains.ParseID(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func createOptions(cmd *cobra.Command) chains.CreateOptions {
	sollet, _ := cmd.Flags().GetBool("sollet")
	path, _ := cmd.Flags().GetString("path")
	return chains.CreateOptions{Path: path, Sollet: sollet || cfg.SolanaSollet}
}

func runCreate(cmd *cobra.Command, args []string) error {
	ids, err := parseChains(args)
	if err != nil {
		return err
	}
	w, err := openWallet()
	if err != nil {
		return err
	}

	accounts, err := w.Create(cmd.Context(), ids, createOptions(cmd))
	if err != nil {
		return fmt.Errorf("failed to create accounts: %w", err)
	}

	showKeys, _ := cmd.Flags().GetBool("show-keys")
	fmt.Println("🔑 Your wallet addresses:")
	fmt.Printf("🌐 Network: %s\n", networkLabel())
	fmt.Println()
	for _, acc := range accounts {
		fmt.Printf("   %-14s %s\n", acc.Chain, color.CyanString(acc.Address))
		if showKeys && acc.PrivateKey != "" {
			fmt.Printf("   %-14s %s\n", "", color.RedString(acc.PrivateKey))
		}
	}
	return nil
}

// ownAddress derives the wallet's address on one chain.
func ownAddress(ctx context.Context, w *wallet.Wallet, id chains.ID, opts chains.CreateOptions) (string, error) {
	accounts, err := w.Create(ctx, []chains.ID{id}, opts)
	if err != nil {
		return "", err
	}
	return accounts[0].Address, nil
}
