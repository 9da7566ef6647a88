package keys

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip32"
)

// Derivation paths.
const (
	EthDerivationPath    = "m/44'/60'/0'/0/0"
	SolDerivationPath    = "m/44'/501'/0'/0'"
	NearDerivationPath   = "m/44'/397'/0'"
	AvaxXDerivationPath  = "m/44'/9000'/0'/0/0"
	cosmosPathTemplate   = "m/44'/%d'/0'/0/0"
	hardenedOffset       = bip32.FirstHardenedChild
	secp256k1KeyByteSize = 32
)

// CosmosPath returns the BIP-44 path for a Cosmos SDK coin type.
func CosmosPath(coinType uint32) string {
	return fmt.Sprintf(cosmosPathTemplate, coinType)
}

// HDKey represents a BIP-32 secp256k1 key.
type HDKey struct {
	key *bip32.Key
}

// NewMasterKey creates a master key from a seed.
func NewMasterKey(seed []byte) (*HDKey, error) {
	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("failed to create master key: %w", err)
	}
	return &HDKey{key: master}, nil
}

// DerivePath derives the key along path, e.g. "m/44'/60'/0'/0/0".
func (k *HDKey) DerivePath(path string) (*HDKey, error) {
	indices, err := accounts.ParseDerivationPath(path)
	if err != nil {
		return nil, fmt.Errorf("invalid derivation path %q: %w", path, err)
	}

	current := k.key
	for _, idx := range indices {
		child, err := current.NewChildKey(idx)
		if err != nil {
			return nil, fmt.Errorf("failed to derive child %d: %w", idx, err)
		}
		current = child
	}
	return &HDKey{key: current}, nil
}

// PrivateKeyBytes returns the 32-byte private scalar.
func (k *HDKey) PrivateKeyBytes() []byte {
	raw := k.key.Key
	if len(raw) == secp256k1KeyByteSize+1 && raw[0] == 0 {
		raw = raw[1:]
	}
	if len(raw) < secp256k1KeyByteSize {
		padded := make([]byte, secp256k1KeyByteSize)
		copy(padded[secp256k1KeyByteSize-len(raw):], raw)
		return padded
	}
	return raw
}

// ECDSA converts the key for go-ethereum signing.
func (k *HDKey) ECDSA() (*ecdsa.PrivateKey, error) {
	priv, err := crypto.ToECDSA(k.PrivateKeyBytes())
	if err != nil {
		return nil, fmt.Errorf("failed to convert to ECDSA key: %w", err)
	}
	return priv, nil
}

// DeriveSecp256k1 derives the secp256k1 key at path from seed.
func DeriveSecp256k1(seed []byte, path string) (*ecdsa.PrivateKey, error) {
	master, err := NewMasterKey(seed)
	if err != nil {
		return nil, err
	}
	child, err := master.DerivePath(path)
	if err != nil {
		return nil, err
	}
	return child.ECDSA()
}
