package cmd

import (
	"fmt"

	"github.com/chinmay1088/omniwallet/crypto"
	"github.com/chinmay1088/omniwallet/keys"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new wallet",
	Long: `Initialize a new wallet with a secure recovery phrase.

This command will:
  - Generate a new recovery phrase (12 words, or 24 with --words 24)
  - Create an encrypted vault under ~/.omniwallet
  - Unlock the wallet for the current session`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().Int("words", 12, "recovery phrase length (12 or 24)")
}

func runInit(cmd *cobra.Command, args []string) error {
	store := newStore()
	if store.VaultExists() {
		return fmt.Errorf("wallet already exists. Remove %s/wallet.vault to create a new wallet", cfg.Home)
	}

	bits := keys.Entropy12Words
	if words, _ := cmd.Flags().GetInt("words"); words == 24 {
		bits = keys.Entropy24Words
	} else if words != 12 {
		return fmt.Errorf("invalid phrase length %d: use 12 or 24", words)
	}

	fmt.Println("🚀 Initializing Omniwallet")
	fmt.Println()

	password, err := readNewPassword()
	if err != nil {
		return err
	}

	mnemonic, err := keys.NewMnemonic(bits)
	if err != nil {
		return err
	}
	if err := store.Save(crypto.Secret{Mnemonic: mnemonic}, password); err != nil {
		return fmt.Errorf("failed to initialize wallet: %w", err)
	}

	fmt.Println(color.GreenString("✅ Wallet initialized successfully!"))
	fmt.Println()
	fmt.Println("🔐 Recovery Phrase:")
	fmt.Println()
	fmt.Printf("   %s\n", color.CyanString(mnemonic))
	fmt.Println()
	fmt.Println("⚠️  IMPORTANT:")
	fmt.Println("   - Write down this recovery phrase and store it securely")
	fmt.Println("   - Anyone with this phrase can access your funds")
	fmt.Println("   - This is the only way to recover your wallet")
	fmt.Println()
	fmt.Println("🔑 Next steps:")
	fmt.Println("   - Run 'omniwallet create all' to see your addresses")
	fmt.Println("   - Run 'omniwallet balance <chain>' to check a balance")

	return nil
}
