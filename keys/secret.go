package keys

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/chinmay1088/omniwallet/apperr"
	"github.com/ethereum/go-ethereum/crypto"
)

// Secret is the wallet identity as seen by key derivation.
type Secret interface {
	Mnemonic() string
	PrivateKey() string
	Seed() ([]byte, error)
}

// ParseSecp256k1Hex parses a hex private key with or without 0x prefix.
func ParseSecp256k1Hex(s string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return key, nil
}

// Secp256k1 returns the imported private key when the identity has one, and
// otherwise derives the key at path from the seed.
func Secp256k1(src Secret, path string) (*ecdsa.PrivateKey, error) {
	if pk := src.PrivateKey(); pk != "" {
		return ParseSecp256k1Hex(pk)
	}
	if src.Mnemonic() == "" {
		return nil, apperr.PrivateKeyMissing("keys.Secp256k1")
	}
	seed, err := src.Seed()
	if err != nil {
		return nil, err
	}
	return DeriveSecp256k1(seed, path)
}

// Ed25519Seed returns the seed of an identity, failing with the mnemonic
// code when there is no mnemonic.
func Ed25519Seed(src Secret) ([]byte, error) {
	if src.Mnemonic() == "" {
		return nil, apperr.MnemonicMissing("keys.Ed25519Seed")
	}
	return src.Seed()
}

// Static is a fixed identity. Seed is derived on every call.
type Static struct {
	Phrase string
	Key    string
}

func (s Static) Mnemonic() string   { return s.Phrase }
func (s Static) PrivateKey() string { return s.Key }

func (s Static) Seed() ([]byte, error) {
	if s.Phrase == "" {
		return nil, apperr.MnemonicMissing("keys.Static.Seed")
	}
	return SeedFromMnemonic(s.Phrase)
}
