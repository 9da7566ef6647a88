package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/chinmay1088/omniwallet/crypto"
	"github.com/chinmay1088/omniwallet/keys"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var recoveryCmd = &cobra.Command{
	Use:   "recovery",
	Short: "Show the recovery phrase",
	Long: `Display the recovery phrase of the unlocked wallet. The password is
asked again before anything is printed.`,
	Args: cobra.NoArgs,
	RunE: runRecovery,
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a wallet from a recovery phrase or private key",
	Long: `Import an existing wallet. Without --private-key a BIP-39 recovery
phrase is read from stdin. A private key is kept in the format of the chain
it belongs to (hex, base58 or ed25519:...), and only chains with that key
format can use it.`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

func init() {
	importCmd.Flags().Bool("private-key", false, "import a private key instead of a phrase")
}

func runRecovery(cmd *cobra.Command, args []string) error {
	store := newStore()
	if !store.VaultExists() {
		return fmt.Errorf("no wallet found. Run 'omniwallet init' first")
	}

	password, err := readPassword("Enter your wallet password: ")
	if err != nil {
		return err
	}
	store.Lock()
	secret, err := store.Unlock(password)
	if err != nil {
		return err
	}

	if secret.Mnemonic == "" {
		return fmt.Errorf("this wallet was imported from a private key and has no recovery phrase")
	}

	fmt.Println("🔐 Recovery Phrase:")
	fmt.Println()
	fmt.Printf("   %s\n", color.CyanString(secret.Mnemonic))
	fmt.Println()
	fmt.Println("⚠️  Security Warning:")
	fmt.Println("   - Anyone with this phrase can access your funds")
	fmt.Println("   - Never share it with anyone")
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	store := newStore()
	if store.VaultExists() {
		return fmt.Errorf("wallet already exists. Remove existing wallet first")
	}

	asKey, _ := cmd.Flags().GetBool("private-key")

	var secret crypto.Secret
	if asKey {
		key, err := readPassword("Enter private key: ")
		if err != nil {
			return err
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("private key is empty")
		}
		secret.PrivateKey = key
	} else {
		fmt.Print("Enter recovery phrase: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read mnemonic: %w", err)
		}
		mnemonic := keys.NormalizeMnemonic(line)
		if err := keys.ValidateMnemonic(mnemonic); err != nil {
			return err
		}
		secret.Mnemonic = mnemonic
	}

	password, err := readNewPassword()
	if err != nil {
		return err
	}
	if err := store.Save(secret, password); err != nil {
		return fmt.Errorf("failed to import wallet: %w", err)
	}

	fmt.Println(color.GreenString("✅ Wallet imported successfully!"))
	fmt.Println("💡 Run 'omniwallet create <chain>' to see your addresses")
	return nil
}
