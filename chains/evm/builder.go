package evm

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/chinmay1088/omniwallet/apperr"
	"github.com/chinmay1088/omniwallet/chains"
	"github.com/chinmay1088/omniwallet/log"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// RawTx is the unsigned transaction descriptor, built fresh for every send.
type RawTx struct {
	Nonce    uint64
	From     common.Address
	To       common.Address
	GasPrice *big.Int
	GasLimit uint64
	Data     []byte
	Value    *big.Int
	ChainID  *big.Int
}

// Builder resolves nonce, gas and chain id for the transactions of one chain.
type Builder struct {
	chain       chains.ID
	params      Params
	node        Node
	station     GasStation
	testnet     bool
	keepChainID bool
}

// NewBuilder creates a builder for chain. station may be nil.
func NewBuilder(chain chains.ID, p Params, node Node, station GasStation, testnet, keepChainID bool) *Builder {
	return &Builder{
		chain:       chain,
		params:      p,
		node:        node,
		station:     station,
		testnet:     testnet,
		keepChainID: keepChainID,
	}
}

// Nonces assigns a nonce to every request before anything is submitted.
// The pending nonce is read once; request i gets base+i, where base is the
// request's explicit nonce when given.
func (b *Builder) Nonces(ctx context.Context, from common.Address, reqs []chains.SendRequest) ([]uint64, error) {
	var (
		base    uint64
		fetched bool
	)
	out := make([]uint64, len(reqs))
	for i, req := range reqs {
		if req.Nonce != nil {
			out[i] = *req.Nonce + uint64(i)
			continue
		}
		if !fetched {
			n, err := b.pendingNonce(ctx, from)
			if err != nil {
				return nil, apperr.Network("evm.Nonces", err)
			}
			base, fetched = n, true
		}
		out[i] = base + uint64(i)
	}
	return out, nil
}

func (b *Builder) pendingNonce(ctx context.Context, from common.Address) (uint64, error) {
	n, err := b.node.PendingNonceAt(ctx, from)
	if err == nil {
		return n, nil
	}
	log.EVM.Debug().Err(err).Str("chain", string(b.chain)).Msg("pending nonce unavailable, using latest")
	return b.node.NonceAt(ctx, from, nil)
}

// Payload resolves destination, value and calldata of a request.
//
// Without a token contract, a destination holding bytecode is itself treated
// as the token contract and the amount is encoded as a token transfer to it.
func (b *Builder) Payload(ctx context.Context, req chains.SendRequest) (common.Address, *big.Int, []byte, error) {
	if !common.IsHexAddress(req.To) {
		return common.Address{}, nil, nil, apperr.Validation("evm.Payload", "invalid destination address %q", req.To)
	}
	to := common.HexToAddress(req.To)

	var (
		token    common.Address
		decimals *int32
		isToken  bool
	)
	if req.Contract != nil {
		if !common.IsHexAddress(req.Contract.Address) {
			return common.Address{}, nil, nil, apperr.Validation("evm.Payload", "invalid token contract %q", req.Contract.Address)
		}
		token, decimals, isToken = common.HexToAddress(req.Contract.Address), req.Contract.Decimals, true
	} else {
		code, err := b.node.CodeAt(ctx, to, nil)
		if err != nil {
			return common.Address{}, nil, nil, apperr.Network("evm.Payload", err)
		}
		if len(code) > 0 {
			token, isToken = to, true
		}
	}

	if !isToken {
		wei, err := chains.ToBaseUnits(req.Amount, 18)
		if err != nil {
			return common.Address{}, nil, nil, err
		}
		return to, wei, nil, nil
	}

	var d int32
	if decimals != nil {
		d = *decimals
	} else {
		d = TokenDecimals(ctx, b.node, token)
	}
	amount, err := chains.ToBaseUnits(req.Amount, d)
	if err != nil {
		return common.Address{}, nil, nil, err
	}
	data, err := TransferData(to, amount)
	if err != nil {
		return common.Address{}, nil, nil, fmt.Errorf("failed to encode transfer: %w", err)
	}
	return token, big.NewInt(0), data, nil
}

// Assemble builds the raw transaction of one request with a preassigned
// nonce and default gas price.
func (b *Builder) Assemble(ctx context.Context, from common.Address, req chains.SendRequest, nonce uint64, defaultGasPrice *big.Int) (*RawTx, error) {
	to, value, data, err := b.Payload(ctx, req)
	if err != nil {
		return nil, err
	}

	raw := &RawTx{
		Nonce:    nonce,
		From:     from,
		To:       to,
		GasPrice: GasPrice(req, defaultGasPrice),
		Data:     data,
		Value:    value,
		ChainID:  b.params.ChainID(b.testnet),
	}

	if req.GasLimit > 0 {
		raw.GasLimit = req.GasLimit
		return raw, nil
	}
	gas, err := b.node.EstimateGas(ctx, ethereum.CallMsg{
		From:     from,
		To:       &raw.To,
		GasPrice: raw.GasPrice,
		Value:    raw.Value,
		Data:     raw.Data,
	})
	if err != nil {
		return nil, apperr.Network("evm.EstimateGas", err)
	}
	raw.GasLimit = gas
	return raw, nil
}

// Signer returns the signer for the chain. Legacy chains sign without a
// chain id on mainnet unless KeepChainID is set.
func (b *Builder) Signer() types.Signer {
	if b.params.Legacy && !b.testnet && !b.keepChainID {
		return types.HomesteadSigner{}
	}
	return types.NewEIP155Signer(b.params.ChainID(b.testnet))
}

// Sign signs the raw transaction as a legacy transaction.
func (b *Builder) Sign(raw *RawTx, key *ecdsa.PrivateKey) (*types.Transaction, error) {
	to := raw.To
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    raw.Nonce,
		GasPrice: raw.GasPrice,
		Gas:      raw.GasLimit,
		To:       &to,
		Value:    raw.Value,
		Data:     raw.Data,
	})
	signed, err := types.SignTx(tx, b.Signer(), key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return signed, nil
}
