package cosmos

import "github.com/chinmay1088/omniwallet/chains"

// DefaultGas is the gas limit of a bank transfer.
const DefaultGas = 200000

// Params are the per-chain constants of a Cosmos SDK chain.
type Params struct {
	Prefix  string
	Denom   string
	ChainID string
	// Fee is the default fee in Denom base units.
	Fee int64
	Gas uint64
}

var params = map[chains.ID]Params{
	chains.Cosmos:      {Prefix: "cosmos", Denom: "uatom", ChainID: "cosmoshub-4", Fee: 5000, Gas: DefaultGas},
	chains.Thor:        {Prefix: "thor", Denom: "rune", ChainID: "thorchain-mainnet-v1", Fee: 0, Gas: DefaultGas},
	chains.Terra:       {Prefix: "terra", Denom: "uluna", ChainID: "columbus-5", Fee: 30000, Gas: DefaultGas},
	chains.Kava:        {Prefix: "kava", Denom: "ukava", ChainID: "kava_2222-10", Fee: 2000, Gas: DefaultGas},
	chains.Band:        {Prefix: "band", Denom: "uband", ChainID: "laozi-mainnet", Fee: 5000, Gas: DefaultGas},
	chains.Persistence: {Prefix: "persistence", Denom: "uxprt", ChainID: "core-1", Fee: 5000, Gas: DefaultGas},
}

// ParamsFor returns the parameters of a registered Cosmos chain.
func ParamsFor(id chains.ID) (Params, bool) {
	p, ok := params[id]
	return p, ok
}
