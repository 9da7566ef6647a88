package evm

import (
	"context"
	"math/big"

	"github.com/chinmay1088/omniwallet/api"
	"github.com/chinmay1088/omniwallet/chains"
	"github.com/chinmay1088/omniwallet/log"
	"github.com/shopspring/decimal"
)

// FallbackGasPriceGwei is used when no oracle answers.
const FallbackGasPriceGwei = 25

// bscBaseGwei is the base of the BSC gas ladder.
const bscBaseGwei = 20

var tomoLevels = api.GasLevels{
	Lowest:   decimal.NewFromInt(6),
	Low:      decimal.NewFromInt(8),
	Standard: decimal.NewFromInt(10),
	Fast:     decimal.NewFromInt(15),
	Fastest:  decimal.NewFromInt(20),
	GasWar:   decimal.NewFromInt(32),
	StarWar:  decimal.NewFromInt(40),
}

// bscLadder multiplies the base price instead of asking an oracle.
func bscLadder(base int64) api.GasLevels {
	b := decimal.NewFromInt(base)
	return api.GasLevels{
		Lowest:   b,
		Low:      b,
		Standard: b.Mul(decimal.RequireFromString("1.1")),
		Fast:     b.Mul(decimal.RequireFromString("1.3")),
		Fastest:  b.Mul(decimal.RequireFromString("1.7")),
		GasWar:   b.Mul(decimal.NewFromInt(3)),
		StarWar:  b.Mul(decimal.NewFromInt(5)),
	}
}

// GasStation fetches gas levels in gwei for a chain.
type GasStation func(ctx context.Context, chain string) (*api.GasLevels, error)

// GasLevels returns the gas price levels of the chain in gwei. BSC and Tomo
// use fixed tables; other chains ask the gas station, then the node.
func (b *Builder) GasLevels(ctx context.Context) (*api.GasLevels, error) {
	switch b.chain {
	case chains.BinanceSmart, chains.Binance:
		levels := bscLadder(bscBaseGwei)
		return &levels, nil
	case chains.Tomo:
		levels := tomoLevels
		return &levels, nil
	}

	if b.station != nil {
		levels, err := b.station(ctx, string(b.chain))
		if err == nil {
			return levels, nil
		}
		log.EVM.Debug().Err(err).Str("chain", string(b.chain)).Msg("gas station unavailable, asking node")
	}

	wei, err := b.node.SuggestGasPrice(ctx)
	if err != nil {
		return nil, err
	}
	gwei := decimal.NewFromBigInt(wei, -9)
	return &api.GasLevels{Standard: gwei, Fast: gwei, Fastest: gwei}, nil
}

// DefaultGasPrice is the standard oracle level in wei, or 25 gwei when no
// oracle answers.
func (b *Builder) DefaultGasPrice(ctx context.Context) *big.Int {
	levels, err := b.GasLevels(ctx)
	if err != nil || !levels.Standard.IsPositive() {
		log.EVM.Warn().Err(err).Str("chain", string(b.chain)).Msg("gas oracle unavailable, using fallback price")
		return GweiToWei(decimal.NewFromInt(FallbackGasPriceGwei))
	}
	return GweiToWei(levels.Standard)
}

// GasPrice resolves the price of one request: an explicit price wins, then a
// percentage of the default, then the default.
func GasPrice(req chains.SendRequest, def *big.Int) *big.Int {
	if req.GasPrice != nil && req.GasPrice.Sign() > 0 {
		return new(big.Int).Set(req.GasPrice)
	}
	if req.Percent > 0 {
		return decimal.NewFromBigInt(def, 0).Mul(decimal.NewFromFloat(req.Percent)).BigInt()
	}
	return new(big.Int).Set(def)
}

// GweiToWei converts a gwei amount to wei.
func GweiToWei(gwei decimal.Decimal) *big.Int {
	return gwei.Shift(9).BigInt()
}
