package evm

import (
	"math/big"

	"github.com/chinmay1088/omniwallet/chains"
)

// Params are the per-chain signing parameters.
type Params struct {
	MainnetID int64
	TestnetID int64
	// Legacy chains sign without a chain id outside of testnet unless
	// KeepChainID is configured.
	Legacy bool
}

var params = map[chains.ID]Params{
	chains.Ether:        {MainnetID: 1, TestnetID: 11155111, Legacy: true},
	chains.BinanceSmart: {MainnetID: 56, TestnetID: 97, Legacy: true},
	chains.Binance:      {MainnetID: 56, TestnetID: 97, Legacy: true},
	chains.Heco:         {MainnetID: 128, TestnetID: 256, Legacy: true},
	chains.Avax:         {MainnetID: 43114, TestnetID: 43113},
	chains.Tomo:         {MainnetID: 88, TestnetID: 89, Legacy: true},
	chains.Celo:         {MainnetID: 42220, TestnetID: 44787},
	chains.Fantom:       {MainnetID: 250, TestnetID: 4002},
	chains.Matic:        {MainnetID: 137, TestnetID: 80002},
}

// ParamsFor returns the signing parameters of an EVM chain.
func ParamsFor(id chains.ID) (Params, bool) {
	p, ok := params[id]
	return p, ok
}

// ChainID returns the chain id on the selected network.
func (p Params) ChainID(testnet bool) *big.Int {
	if testnet {
		return big.NewInt(p.TestnetID)
	}
	return big.NewInt(p.MainnetID)
}
