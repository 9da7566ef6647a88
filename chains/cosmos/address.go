package cosmos

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/chinmay1088/omniwallet/apperr"
)

// Address returns the bech32 account address of a public key.
func Address(prefix string, pub *btcec.PublicKey) (string, error) {
	conv, err := bech32.ConvertBits(btcutil.Hash160(pub.SerializeCompressed()), 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.Encode(prefix, conv)
}

// ValidateAddress checks that s is a 20-byte account address with the
// chain's prefix.
func ValidateAddress(prefix, s string) error {
	hrp, data, err := bech32.Decode(s)
	if err != nil {
		return apperr.Validation("cosmos.ValidateAddress", "invalid address %q: %v", s, err)
	}
	if hrp != prefix {
		return apperr.Validation("cosmos.ValidateAddress", "address %s has prefix %s, want %s", s, hrp, prefix)
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil || len(raw) != 20 {
		return apperr.Validation("cosmos.ValidateAddress", "invalid address %q", s)
	}
	return nil
}
