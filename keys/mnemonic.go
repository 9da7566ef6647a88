// Package keys turns mnemonics and seeds into chain specific key pairs.
package keys

import (
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

// Entropy sizes in bits.
const (
	Entropy12Words = 128
	Entropy24Words = 256
)

// SeedSize is the length of a BIP-39 seed.
const SeedSize = 64

// NewMnemonic generates a mnemonic from fresh entropy of the given size.
func NewMnemonic(bits int) (string, error) {
	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return "", fmt.Errorf("failed to generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("failed to generate mnemonic: %w", err)
	}
	return mnemonic, nil
}

// NormalizeMnemonic collapses whitespace and lowercases the phrase.
func NormalizeMnemonic(mnemonic string) string {
	return strings.ToLower(strings.Join(strings.Fields(mnemonic), " "))
}

// ValidateMnemonic checks word list membership and checksum.
func ValidateMnemonic(mnemonic string) error {
	if !bip39.IsMnemonicValid(NormalizeMnemonic(mnemonic)) {
		return fmt.Errorf("invalid mnemonic")
	}
	return nil
}

// SeedFromMnemonic derives the 64-byte BIP-39 seed with an empty passphrase.
func SeedFromMnemonic(mnemonic string) ([]byte, error) {
	seed, err := bip39.NewSeedWithErrorChecking(NormalizeMnemonic(mnemonic), "")
	if err != nil {
		return nil, fmt.Errorf("failed to derive seed: %w", err)
	}
	return seed, nil
}
