package config

type endpoint struct {
	mainnet string
	testnet string
}

// RPC endpoints, keyed by chain identifier. "solana-ws" is the websocket
// endpoint used for signature subscriptions.
var endpoints = map[string]endpoint{
	"ether":        {"https://ethereum-rpc.publicnode.com", "https://ethereum-sepolia.publicnode.com"},
	"binanceSmart": {"https://bsc-dataseed.binance.org/", "https://data-seed-prebsc-1-s1.binance.org:8545/"},
	"binance":      {"https://bsc-dataseed.binance.org/", "https://data-seed-prebsc-1-s1.binance.org:8545/"},
	"heco":         {"https://http-mainnet.hecochain.com", "https://http-testnet.hecochain.com"},
	"avax":         {"https://api.avax.network/ext/bc/C/rpc", "https://api.avax-test.network/ext/bc/C/rpc"},
	"avaxX":        {"https://api.avax.network", "https://api.avax-test.network"},
	"tomo":         {"https://rpc.tomochain.com", "https://testnet.tomochain.com"},
	"celo":         {"https://forno.celo.org", "https://alfajores-forno.celo-testnet.org"},
	"fantom":       {"https://rpc.ftm.tools", "https://rpc.testnet.fantom.network"},
	"matic":        {"https://polygon-rpc.com", "https://rpc-amoy.polygon.technology"},
	"solana":       {"https://api.mainnet-beta.solana.com", "https://api.devnet.solana.com"},
	"solana-ws":    {"wss://api.mainnet-beta.solana.com", "wss://api.devnet.solana.com"},
	"polkadot":     {"wss://rpc.polkadot.io", "wss://westend-rpc.polkadot.io"},
	"kusama":       {"wss://kusama-rpc.polkadot.io", "wss://westend-rpc.polkadot.io"},
	"near":         {"https://rpc.mainnet.near.org", "https://rpc.testnet.near.org"},
	"tron":         {"https://api.trongrid.io", "https://api.shasta.trongrid.io"},
	"cosmos":       {"https://cosmos-rest.publicnode.com", "https://rest.sentry-01.theta-testnet.polypore.xyz"},
	"thor":         {"https://thornode.ninerealms.com", "https://stagenet-thornode.ninerealms.com"},
	"terra":        {"https://terra-classic-lcd.publicnode.com", "https://terra-classic-lcd.publicnode.com"},
	"kava":         {"https://api.data.kava.io", "https://api.testnet.kava.io"},
	"band":         {"https://laozi1.bandchain.org/api", "https://laozi-testnet6.bandchain.org/api"},
	"persistence":  {"https://rest.core.persistence.one", "https://rest.testnet2.persistence.one"},
}

// Endpoint returns the RPC endpoint for chain on the configured network.
// Overrides from OMNI_RPC win over the built-in table.
func (c Config) Endpoint(chain string) string {
	if url, ok := c.RPC[chain]; ok && url != "" {
		return url
	}

	if chain == "ether" && c.InfuraKey != "" {
		if c.IsTestnet() {
			return "https://sepolia.infura.io/v3/" + c.InfuraKey
		}
		return "https://mainnet.infura.io/v3/" + c.InfuraKey
	}

	e, ok := endpoints[chain]
	if !ok {
		return ""
	}
	if c.IsTestnet() {
		return e.testnet
	}
	return e.mainnet
}
