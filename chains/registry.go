package chains

const (
	evmPath    = "m/44'/60'/0'/0/0"
	cosmosPath = "m/44'/%d'/0'/0/0"
)

func init() {
	// EVM family. binance is served with Binance Smart Chain parameters.
	Register(Info{ID: Ether, Family: FamilyEVM, Symbol: "ETH", Decimals: 18, CoinType: 60, Path: evmPath, CoinGeckoID: "ethereum"})
	Register(Info{ID: BinanceSmart, Family: FamilyEVM, Symbol: "BNB", Decimals: 18, CoinType: 60, Path: evmPath, CoinGeckoID: "binancecoin"})
	Register(Info{ID: Heco, Family: FamilyEVM, Symbol: "HT", Decimals: 18, CoinType: 60, Path: evmPath, CoinGeckoID: "huobi-token"})
	Register(Info{ID: Avax, Family: FamilyEVM, Symbol: "AVAX", Decimals: 18, CoinType: 60, Path: evmPath, CoinGeckoID: "avalanche-2"})
	Register(Info{ID: AvaxX, Family: FamilyAvalancheX, Symbol: "AVAX", Decimals: 9, CoinType: 9000, Path: "m/44'/9000'/0'/0/0", CoinGeckoID: "avalanche-2"})
	Register(Info{ID: Tomo, Family: FamilyEVM, Symbol: "TOMO", Decimals: 18, CoinType: 60, Path: evmPath, CoinGeckoID: "tomochain"})
	Register(Info{ID: Binance, Family: FamilyEVM, Symbol: "BNB", Decimals: 18, CoinType: 60, Path: evmPath, CoinGeckoID: "binancecoin"})
	Register(Info{ID: Celo, Family: FamilyEVM, Symbol: "CELO", Decimals: 18, CoinType: 60, Path: evmPath, CoinGeckoID: "celo"})
	Register(Info{ID: Fantom, Family: FamilyEVM, Symbol: "FTM", Decimals: 18, CoinType: 60, Path: evmPath, CoinGeckoID: "fantom"})
	Register(Info{ID: Matic, Family: FamilyEVM, Symbol: "MATIC", Decimals: 18, CoinType: 60, Path: evmPath, CoinGeckoID: "matic-network"})

	Register(Info{ID: Solana, Family: FamilySolana, Symbol: "SOL", Decimals: 9, CoinType: 501, Path: "m/44'/501'/0'/0'", CoinGeckoID: "solana"})

	Register(Info{ID: Polkadot, Family: FamilySubstrate, Symbol: "DOT", Decimals: 10, CoinType: 354, CoinGeckoID: "polkadot"})
	Register(Info{ID: Kusama, Family: FamilySubstrate, Symbol: "KSM", Decimals: 12, CoinType: 434, CoinGeckoID: "kusama"})

	Register(Info{ID: Near, Family: FamilyNear, Symbol: "NEAR", Decimals: 24, CoinType: 397, Path: "m/44'/397'/0'", CoinGeckoID: "near"})

	// Tron reuses the Ethereum path and re-encodes the key.
	Register(Info{ID: Tron, Family: FamilyTron, Symbol: "TRX", Decimals: 6, CoinType: 195, Path: evmPath, CoinGeckoID: "tron"})

	Register(Info{ID: Cosmos, Family: FamilyCosmos, Symbol: "ATOM", Decimals: 6, CoinType: 118, Path: cosmosPath, CoinGeckoID: "cosmos"})
	Register(Info{ID: Thor, Family: FamilyCosmos, Symbol: "RUNE", Decimals: 8, CoinType: 931, Path: cosmosPath, CoinGeckoID: "thorchain"})
	Register(Info{ID: Terra, Family: FamilyCosmos, Symbol: "LUNC", Decimals: 6, CoinType: 330, Path: cosmosPath, CoinGeckoID: "terra-luna"})
	Register(Info{ID: Kava, Family: FamilyCosmos, Symbol: "KAVA", Decimals: 6, CoinType: 459, Path: cosmosPath, CoinGeckoID: "kava"})
	Register(Info{ID: Band, Family: FamilyCosmos, Symbol: "BAND", Decimals: 6, CoinType: 494, Path: cosmosPath, CoinGeckoID: "band-protocol"})
	Register(Info{ID: Persistence, Family: FamilyCosmos, Symbol: "XPRT", Decimals: 6, CoinType: 750, Path: cosmosPath, CoinGeckoID: "persistence"})
}
