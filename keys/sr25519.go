package keys

import (
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"
)

// SS58 address formats.
const (
	SS58Polkadot uint8 = 0
	SS58Kusama   uint8 = 2
)

// SubstratePair derives the sr25519 keyring pair for a mnemonic, encoding its
// address with the given SS58 format.
func SubstratePair(mnemonic string, ss58 uint8) (signature.KeyringPair, error) {
	pair, err := signature.KeyringPairFromSecret(NormalizeMnemonic(mnemonic), ss58)
	if err != nil {
		return signature.KeyringPair{}, fmt.Errorf("failed to derive sr25519 pair: %w", err)
	}
	return pair, nil
}
