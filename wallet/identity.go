package wallet

import (
	"sync"

	"github.com/chinmay1088/omniwallet/apperr"
	"github.com/chinmay1088/omniwallet/keys"
)

// identity is one immutable wallet secret. Setters replace the whole
// identity, which drops the memoized seed with it.
type identity struct {
	mnemonic   string
	privateKey string

	once sync.Once
	seed []byte
	err  error
}

func (id *identity) Mnemonic() string   { return id.mnemonic }
func (id *identity) PrivateKey() string { return id.privateKey }

// Seed derives the BIP-39 seed on first use.
func (id *identity) Seed() ([]byte, error) {
	if id.mnemonic == "" {
		return nil, apperr.MnemonicMissing("wallet.Seed")
	}
	id.once.Do(func() {
		id.seed, id.err = keys.SeedFromMnemonic(id.mnemonic)
	})
	return id.seed, id.err
}

func (id *identity) empty() bool {
	return id.mnemonic == "" && id.privateKey == ""
}
