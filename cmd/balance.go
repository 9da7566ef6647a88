package cmd

import (
	"fmt"

	"github.com/chinmay1088/omniwallet/api"
	"github.com/chinmay1088/omniwallet/chains"
	"github.com/chinmay1088/omniwallet/wallet"
	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:   "balance <chain> [address]",
	Short: "Check a native balance",
	Long: `Check the native balance of an address. Without an address the
wallet's own account on the chain is used.

Examples:
  omniwallet balance eth --usd
  omniwallet balance dot 15oF4uVJwmo4TdGW7VfQxNLavjCXviqxT9S1MgbjMNHr6Sp5`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runBalance,
}

var tokenCmd = &cobra.Command{
	Use:   "token <chain> <contract> [address]",
	Short: "Check a token balance",
	Long: `Check the balance of a token: an ERC20/BEP20/TRC20 contract, an SPL
mint, a NEP-141 contract, a Cosmos denom or an X-chain asset id. Decimals are
read on-chain unless --decimals is given.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runToken,
}

func init() {
	balanceCmd.Flags().Bool("usd", false, "show the USD value")
	tokenCmd.Flags().Int32("decimals", -1, "token decimals (default: read on-chain)")
	tokenCmd.Flags().String("token-account", "", "Solana token account (default: associated account)")
}

func runBalance(cmd *cobra.Command, args []string) error {
	id, err := chains.ParseID(args[0])
	if err != nil {
		return err
	}
	info, err := chains.Lookup(id)
	if err != nil {
		return err
	}
	address, err := addressArg(cmd, id, args, 1)
	if err != nil {
		return err
	}

	balance, err := wallet.New(cfg).GetBalance(cmd.Context(), address, id)
	if err != nil {
		return fmt.Errorf("failed to fetch balance: %w", err)
	}

	fmt.Printf("💰 %s (%s): %s %s\n", info.ID, networkLabel(), color.GreenString(balance), info.Symbol)
	if usd, _ := cmd.Flags().GetBool("usd"); usd {
		printUSD(cmd, info, balance)
	}
	fmt.Printf("   📍 Address: %s\n", address)
	return nil
}

func printUSD(cmd *cobra.Command, info chains.Info, balance string) {
	if cfg.IsTestnet() {
		fmt.Println("   💵 USD: not available on testnet")
		return
	}
	amount, err := decimal.NewFromString(balance)
	if err != nil {
		return
	}
	price, err := api.NewClient(cfg.HTTPTimeout).GetPrice(cmd.Context(), cfg.PriceURL, info.CoinGeckoID)
	if err != nil {
		fmt.Printf("   💵 USD: Error fetching price - %v\n", err)
		return
	}
	fmt.Printf("   💵 USD: $%s\n", amount.Mul(price.USD).StringFixed(2))
}

func runToken(cmd *cobra.Command, args []string) error {
	id, err := chains.ParseID(args[0])
	if err != nil {
		return err
	}
	address, err := addressArg(cmd, id, args, 2)
	if err != nil {
		return err
	}

	req := chains.TokenBalanceRequest{Contract: args[1], Address: address}
	if d, _ := cmd.Flags().GetInt32("decimals"); d >= 0 {
		req.Decimals = &d
	}
	req.TokenAccount, _ = cmd.Flags().GetString("token-account")

	balance, err := wallet.New(cfg).GetTokenBalance(cmd.Context(), req, id)
	if err != nil {
		return fmt.Errorf("failed to fetch token balance: %w", err)
	}
	fmt.Printf("🪙 %s token %s: %s\n", id, args[1], color.GreenString(balance))
	fmt.Printf("   📍 Address: %s\n", address)
	return nil
}

// addressArg returns args[i] or, when absent, the wallet's own address.
func addressArg(cmd *cobra.Command, id chains.ID, args []string, i int) (string, error) {
	if len(args) > i {
		return args[i], nil
	}
	w, err := openWallet()
	if err != nil {
		return "", err
	}
	return ownAddress(cmd.Context(), w, id, createOptions(cmd))
}
