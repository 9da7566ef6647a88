package evm

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/chinmay1088/omniwallet/api"
	"github.com/chinmay1088/omniwallet/apperr"
	"github.com/chinmay1088/omniwallet/chains"
	"github.com/chinmay1088/omniwallet/config"
	"github.com/chinmay1088/omniwallet/keys"
	"github.com/chinmay1088/omniwallet/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Handler serves one EVM chain.
type Handler struct {
	info    chains.Info
	node    Node
	builder *Builder

	pollInterval   time.Duration
	confirmTimeout time.Duration
	confirmations  uint64
}

// New is the chains.Factory of the EVM family.
func New(info chains.Info, cfg config.Config) (chains.Handler, error) {
	url := cfg.Endpoint(string(info.ID))
	if url == "" {
		return nil, fmt.Errorf("no rpc endpoint for %s", info.ID)
	}
	client, err := ethclient.Dial(url)
	if err != nil {
		return nil, apperr.Network("evm.Dial", err)
	}

	var station GasStation
	if cfg.GasStationURL != "" {
		httpClient := api.NewClient(cfg.HTTPTimeout)
		station = func(ctx context.Context, chain string) (*api.GasLevels, error) {
			return httpClient.GasStation(ctx, cfg.GasStationURL, chain)
		}
	}
	return NewHandler(info, cfg, client, station)
}

// NewHandler builds a handler around an existing node connection.
func NewHandler(info chains.Info, cfg config.Config, node Node, station GasStation) (*Handler, error) {
	p, ok := ParamsFor(info.ID)
	if !ok {
		return nil, apperr.Unsupported("evm.NewHandler", string(info.ID))
	}
	return &Handler{
		info:           info,
		node:           node,
		builder:        NewBuilder(info.ID, p, node, station, cfg.IsTestnet(), cfg.KeepChainID),
		pollInterval:   cfg.PollInterval,
		confirmTimeout: cfg.ConfirmTimeout,
		confirmations:  cfg.EVMConfirmations,
	}, nil
}

// Builder exposes the transaction builder of the chain.
func (h *Handler) Builder() *Builder {
	return h.builder
}

// Create returns the account of the imported private key, or derives one
// from the seed.
func (h *Handler) Create(ctx context.Context, src chains.KeySource, opts chains.CreateOptions) (*chains.Account, error) {
	key, err := h.key(src, opts)
	if err != nil {
		return nil, err
	}
	return &chains.Account{
		PrivateKey: hexutil.Encode(crypto.FromECDSA(key)),
		Address:    crypto.PubkeyToAddress(key.PublicKey).Hex(),
		Chain:      h.info.ID,
		Mnemonic:   src.Mnemonic(),
	}, nil
}

func (h *Handler) key(src chains.KeySource, opts chains.CreateOptions) (*ecdsa.PrivateKey, error) {
	path := h.info.Path
	if opts.Path != "" {
		path = opts.Path
	}
	return keys.Secp256k1(src, path)
}

func (h *Handler) GetBalance(ctx context.Context, address string) (string, error) {
	if !common.IsHexAddress(address) {
		return "", apperr.Validation("evm.GetBalance", "invalid address %q", address)
	}
	wei, err := h.node.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return "", apperr.Network("evm.GetBalance", err)
	}
	return chains.FormatUnits(wei, h.info.Decimals), nil
}

func (h *Handler) GetTokenBalance(ctx context.Context, req chains.TokenBalanceRequest) (string, error) {
	if !common.IsHexAddress(req.Address) {
		return "", apperr.Validation("evm.GetTokenBalance", "invalid address %q", req.Address)
	}
	if !common.IsHexAddress(req.Contract) {
		return "", apperr.Validation("evm.GetTokenBalance", "invalid token contract %q", req.Contract)
	}
	token := common.HexToAddress(req.Contract)
	balance, err := TokenBalance(ctx, h.node, token, common.HexToAddress(req.Address))
	if err != nil {
		return "", apperr.Network("evm.GetTokenBalance", err)
	}

	var decimals int32
	if req.Decimals != nil {
		decimals = *req.Decimals
	} else {
		decimals = TokenDecimals(ctx, h.node, token)
	}
	return chains.FormatUnits(balance, decimals), nil
}

// SendFrom submits one transfer and returns its hash.
func (h *Handler) SendFrom(ctx context.Context, src chains.KeySource, req chains.SendRequest) (string, error) {
	results, err := h.SendBatch(ctx, src, []chains.SendRequest{req})
	if len(results) == 0 {
		return "", err
	}
	return results[0].Hash, results[0].Err
}

// SendBatch submits several transfers from the same account. Nonces are
// assigned in request order before any submission; the submissions
// themselves run concurrently and fail independently.
func (h *Handler) SendBatch(ctx context.Context, src chains.KeySource, reqs []chains.SendRequest) ([]chains.SendResult, error) {
	if len(reqs) == 0 {
		return nil, apperr.Validation("evm.SendBatch", "no transactions given")
	}
	for _, req := range reqs[1:] {
		if req.Path != reqs[0].Path {
			return nil, apperr.Validation("evm.SendBatch", "all transfers of a batch must use the same account")
		}
	}
	key, err := h.key(src, reqs[0].Account())
	if err != nil {
		return nil, err
	}
	from := crypto.PubkeyToAddress(key.PublicKey)

	nonces, err := h.builder.Nonces(ctx, from, reqs)
	if err != nil {
		return nil, err
	}

	var defaultGasPrice *big.Int
	for _, req := range reqs {
		if req.GasPrice == nil || req.GasPrice.Sign() <= 0 {
			defaultGasPrice = h.builder.DefaultGasPrice(ctx)
			break
		}
	}

	results := make([]chains.SendResult, len(reqs))
	var wg sync.WaitGroup
	for i := range reqs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			hash, err := h.submit(ctx, key, from, reqs[i], nonces[i], defaultGasPrice)
			results[i] = chains.SendResult{Hash: hash, Err: err}
		}(i)
	}
	wg.Wait()

	var errs []error
	for i, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("transaction %d: %w", i, r.Err))
		}
	}
	return results, errors.Join(errs...)
}

func (h *Handler) submit(ctx context.Context, key *ecdsa.PrivateKey, from common.Address, req chains.SendRequest, nonce uint64, defaultGasPrice *big.Int) (string, error) {
	raw, err := h.builder.Assemble(ctx, from, req, nonce, defaultGasPrice)
	if err != nil {
		return "", err
	}
	tx, err := h.builder.Sign(raw, key)
	if err != nil {
		return "", err
	}
	if err := h.node.SendTransaction(ctx, tx); err != nil {
		return "", apperr.Network("evm.SendTransaction", err)
	}
	hash := tx.Hash()

	l := log.WithChain(log.EVM, string(h.info.ID))
	l.Info().
		Str("tx", hash.Hex()).
		Uint64("nonce", raw.Nonce).
		Str("to", strings.ToLower(raw.To.Hex())).
		Msg("transaction submitted")

	if req.OnConfirm != nil {
		go Track(context.WithoutCancel(ctx), h.node, hash, h.pollInterval, h.confirmations, req.OnConfirm)
	}
	if req.WaitDone {
		if _, err := WaitMined(ctx, h.node, hash, h.pollInterval, h.confirmTimeout); err != nil {
			return hash.Hex(), err
		}
		l.Info().Str("tx", hash.Hex()).Msg("transaction mined")
	}
	return hash.Hex(), nil
}
