package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/chinmay1088/omniwallet/config"
	"github.com/chinmay1088/omniwallet/crypto"
	"github.com/chinmay1088/omniwallet/log"
	"github.com/chinmay1088/omniwallet/wallet"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	version = "2.0.0"

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:     "omniwallet",
	Aliases: []string{"omni"},
	Short:   "A multi-chain command-line cryptocurrency wallet",
	Long: `Omniwallet is a deterministic wallet for EVM chains, Solana,
Polkadot/Kusama, Near, Tron, Cosmos SDK chains and the Avalanche X-chain.
Keys are derived locally from one recovery phrase and kept in an encrypted
vault.

Examples:
  omniwallet init                        # Create new wallet
  omniwallet create all                  # Show addresses on every chain
  omniwallet balance eth --usd           # Check your ETH balance
  omniwallet send sol 7xKX...sAsU 1.5    # Send 1.5 SOL
  omniwallet network testnet             # Switch to testnet mode`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("network", "", "mainnet or testnet (default: stored network)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("json", false, "log as JSON")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(unlockCmd)
	rootCmd.AddCommand(lockCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(chainsCmd)
	rootCmd.AddCommand(networkCmd)
	rootCmd.AddCommand(recoveryCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads OMNI_* variables, then applies the global flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if network, _ := flags.GetString("network"); network != "" {
		loaded.Network = strings.ToLower(network)
	}
	if level, _ := flags.GetString("log-level"); level != "" {
		loaded.LogLevel = level
	}
	if asJSON, _ := flags.GetBool("json"); asJSON {
		loaded.LogJSON = true
	}
	if err := loaded.Validate(); err != nil {
		return err
	}
	if err := log.Init(loaded.LogLevel, loaded.LogJSON, loaded.LogFile); err != nil {
		return fmt.Errorf("failed to init logging: %w", err)
	}

	cfg = loaded
	return nil
}

func newStore() *crypto.Store {
	return crypto.NewStore(cfg.Home, cfg.Network)
}

// openWallet returns a wallet loaded with the unlocked secret.
func openWallet() (*wallet.Wallet, error) {
	store := newStore()
	if !store.VaultExists() {
		return nil, fmt.Errorf("no wallet found. Run 'omniwallet init' to create a new wallet")
	}
	secret, err := store.Secret()
	if err != nil {
		return nil, fmt.Errorf("wallet is locked. Run 'omniwallet unlock' first")
	}

	w := wallet.New(cfg)
	if secret.Mnemonic != "" {
		err = w.SetMnemonic(secret.Mnemonic)
	} else {
		err = w.SetPrivateKey(secret.PrivateKey)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet secret: %w", err)
	}
	return w, nil
}

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}

// readNewPassword asks twice and enforces the minimum length.
func readNewPassword() (string, error) {
	password, err := readPassword("Enter a password for your wallet: ")
	if err != nil {
		return "", err
	}
	if len(password) < 8 {
		return "", fmt.Errorf("password must be at least 8 characters long")
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		return "", err
	}
	if password != confirm {
		return "", fmt.Errorf("passwords do not match")
	}
	return password, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Omniwallet v%s\n", version)
	},
}
