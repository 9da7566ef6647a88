package cmd

import (
	"errors"
	"fmt"

	"github.com/chinmay1088/omniwallet/crypto"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var unlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Unlock wallet for session",
	Long: `Unlock your wallet for the current network. The wallet stays unlocked
for 30 minutes or until you run 'omniwallet lock'.`,
	RunE: runUnlock,
}

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Lock the wallet and end the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newStore().Lock(); err != nil {
			return err
		}
		fmt.Println("🔒 Wallet locked")
		return nil
	},
}

func runUnlock(cmd *cobra.Command, args []string) error {
	store := newStore()
	if !store.VaultExists() {
		return fmt.Errorf("no wallet found. Run 'omniwallet init' to create a new wallet")
	}
	if store.IsUnlocked() {
		fmt.Println("✅ Wallet is already unlocked")
		return nil
	}

	password, err := readPassword("Enter your wallet password: ")
	if err != nil {
		return err
	}
	if _, err := store.Unlock(password); err != nil {
		if errors.Is(err, crypto.ErrInvalidPassword) {
			return err
		}
		return fmt.Errorf("failed to unlock wallet: %w", err)
	}

	fmt.Println(color.GreenString("✅ Wallet unlocked successfully!"))
	fmt.Println("💡 Use 'omniwallet create <chain>' to see your addresses")
	return nil
}
