package cmd

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/chinmay1088/omniwallet/apperr"
	"github.com/chinmay1088/omniwallet/chains"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:     "send <chain> <to> <amount>",
	Aliases: []string{"pay"},
	Short:   "Send cryptocurrency",
	Long: `Send native coins or tokens to another address.

Examples:
  omniwallet send eth 0x742d35Cc6634C0532925a3b8D4C9db96C4b4d8b6 0.1
  omniwallet send bsc 0x742d...d8b6 25 --contract 0x55d398326f99059fF775485246999027B3197955
  omniwallet send sol 7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU 1.5
  omniwallet send atom cosmos1... 2 --memo 104532`,
	Args: cobra.ExactArgs(3),
	RunE: runSend,
}

func init() {
	f := sendCmd.Flags()
	f.String("contract", "", "token contract, mint, denom or asset id")
	f.Int32("decimals", -1, "token decimals (default: read on-chain)")
	f.String("token-account", "", "Solana source token account")
	f.Uint64("gas-limit", 0, "EVM gas limit (default: estimated)")
	f.String("gas-price", "", "EVM gas price in wei (default: oracle)")
	f.Float64("percent", 0, "scale the default EVM gas price, e.g. 1.2")
	f.Int64("nonce", -1, "EVM nonce (default: pending nonce)")
	f.Bool("wait", false, "wait until the transfer is confirmed")
	f.String("memo", "", "memo for Cosmos chains")
	f.String("fee", "", "Cosmos fee in base units (default: chain fee)")
	f.String("path", "", "send from the account at this derivation path")
	f.Bool("sollet", false, "send from the Solana m/44'/501'/0'/0' account")
	f.BoolP("yes", "y", false, "skip the confirmation prompt")
}

func sendRequest(cmd *cobra.Command, to, amount string) (chains.SendRequest, error) {
	f := cmd.Flags()
	req := chains.SendRequest{To: to, Amount: amount}

	if contract, _ := f.GetString("contract"); contract != "" {
		req.Contract = &chains.TokenContract{Address: contract}
		if d, _ := f.GetInt32("decimals"); d >= 0 {
			req.Contract.Decimals = &d
		}
	}
	req.TokenAccount, _ = f.GetString("token-account")
	req.GasLimit, _ = f.GetUint64("gas-limit")
	if gp, _ := f.GetString("gas-price"); gp != "" {
		price, ok := new(big.Int).SetString(gp, 10)
		if !ok || price.Sign() <= 0 {
			return req, fmt.Errorf("invalid gas price %q", gp)
		}
		req.GasPrice = price
	}
	req.Percent, _ = f.GetFloat64("percent")
	if n, _ := f.GetInt64("nonce"); n >= 0 {
		nonce := uint64(n)
		req.Nonce = &nonce
	}
	req.WaitDone, _ = f.GetBool("wait")
	req.Memo, _ = f.GetString("memo")
	req.Fee, _ = f.GetString("fee")
	req.Path, _ = f.GetString("path")
	sollet, _ := f.GetBool("sollet")
	req.Sollet = sollet || cfg.SolanaSollet
	return req, nil
}

func runSend(cmd *cobra.Command, args []string) error {
	id, err := chains.ParseID(args[0])
	if err != nil {
		return err
	}
	info, err := chains.Lookup(id)
	if err != nil {
		return err
	}
	req, err := sendRequest(cmd, args[1], args[2])
	if err != nil {
		return err
	}
	w, err := openWallet()
	if err != nil {
		return err
	}

	symbol := info.Symbol
	if req.Contract != nil {
		symbol = req.Contract.Address
	}
	fmt.Printf("📊 Transaction Details:\n")
	fmt.Printf("   Chain:   %s\n", info.ID)
	fmt.Printf("   To:      %s\n", req.To)
	fmt.Printf("   Amount:  %s %s\n", req.Amount, symbol)
	fmt.Printf("   Network: %s\n", networkLabel())

	if yes, _ := cmd.Flags().GetBool("yes"); !yes && !getTransactionConfirmation() {
		fmt.Println("❌ Transaction cancelled by user")
		return nil
	}

	var bar *progressbar.ProgressBar
	if req.WaitDone {
		bar = confirmationBar(info)
		if info.Family == chains.FamilyEVM {
			req.OnConfirm = func(hash string, confirmations uint64) {
				bar.Set64(int64(min(confirmations, cfg.EVMConfirmations)))
			}
		}
	}

	hash, err := w.Send(cmd.Context(), id, req)
	if bar != nil {
		bar.Finish()
		fmt.Println()
	}
	if err != nil {
		switch apperr.KindOf(err) {
		case apperr.KindTimeout:
			if hash != "" {
				fmt.Printf("⏳ Submitted %s but not confirmed in time\n", hash)
			}
		case apperr.KindFailed:
			if hash != "" {
				fmt.Printf("❌ Transaction %s failed on chain\n", hash)
			}
		}
		return fmt.Errorf("failed to send: %w", err)
	}

	fmt.Println(color.GreenString("✅ Transaction sent!"))
	fmt.Printf("🆔 Hash: %s\n", hash)
	return nil
}

// confirmationBar counts EVM confirmations and spins for other families.
func confirmationBar(info chains.Info) *progressbar.ProgressBar {
	total := int64(-1)
	if info.Family == chains.FamilyEVM {
		total = int64(cfg.EVMConfirmations)
	}
	return progressbar.NewOptions64(total,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan]Waiting for confirmation...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:     "[green]=[reset]",
			SaucerHead: "[green]>[reset]",
			BarStart:   "[",
			BarEnd:     "]",
		}),
	)
}

func getTransactionConfirmation() bool {
	fmt.Println()
	if cfg.IsTestnet() {
		fmt.Println("⚠️ You are on testnet. No real funds will be sent.")
	} else {
		fmt.Println(color.RedString("🚨 You are on main network. Real funds will be sent to this address."))
	}
	fmt.Printf("Press y to confirm or n to stop (y/n): ")

	var response string
	fmt.Scanln(&response)

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
