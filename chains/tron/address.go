package tron

import (
	"crypto/ecdsa"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/chinmay1088/omniwallet/apperr"
	"github.com/ethereum/go-ethereum/crypto"
)

// addressPrefix is the mainnet address version byte.
const addressPrefix = 0x41

// Address renders the base58check address of a public key.
func Address(pub ecdsa.PublicKey) string {
	return base58.CheckEncode(crypto.PubkeyToAddress(pub).Bytes(), addressPrefix)
}

// DecodeAddress returns the 20-byte account of a base58check address.
func DecodeAddress(s string) ([]byte, error) {
	raw, version, err := base58.CheckDecode(s)
	if err != nil {
		return nil, apperr.Validation("tron.DecodeAddress", "invalid address %q: %v", s, err)
	}
	if version != addressPrefix || len(raw) != 20 {
		return nil, apperr.Validation("tron.DecodeAddress", "invalid address %q", s)
	}
	return raw, nil
}

// abiAddress left-pads an account to a 32-byte ABI word, hex encoded.
func abiAddress(account []byte) string {
	word := make([]byte, 32)
	copy(word[12:], account)
	return hex.EncodeToString(word)
}
