// Package cosmos implements the Cosmos SDK family: one REST sub-client per
// chain, bank sends signed in SIGN_MODE_DIRECT.
package cosmos

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/chinmay1088/omniwallet/api"
	"github.com/chinmay1088/omniwallet/apperr"
	"github.com/chinmay1088/omniwallet/chains"
	"github.com/chinmay1088/omniwallet/config"
	"github.com/chinmay1088/omniwallet/keys"
	"github.com/chinmay1088/omniwallet/log"
	"github.com/ethereum/go-ethereum/crypto"
)

// Handler serves one Cosmos SDK chain.
type Handler struct {
	info   chains.Info
	params Params
	sub    SubClient
}

// New is the chains.Factory of the Cosmos family.
func New(info chains.Info, cfg config.Config) (chains.Handler, error) {
	p, ok := ParamsFor(info.ID)
	if !ok {
		return nil, apperr.Unsupported("cosmos.New", string(info.ID))
	}
	url := cfg.Endpoint(string(info.ID))
	if url == "" {
		return nil, fmt.Errorf("no rpc endpoint for %s", info.ID)
	}
	return NewHandler(info, NewRESTClient(p, url, api.NewClient(cfg.HTTPTimeout), cfg.IsTestnet()))
}

func NewHandler(info chains.Info, sub SubClient) (*Handler, error) {
	p, ok := ParamsFor(info.ID)
	if !ok {
		return nil, apperr.Unsupported("cosmos.NewHandler", string(info.ID))
	}
	return &Handler{info: info, params: p, sub: sub}, nil
}

func (h *Handler) key(src chains.KeySource, opts chains.CreateOptions) (*btcec.PrivateKey, error) {
	path := keys.CosmosPath(h.info.CoinType)
	if opts.Path != "" {
		path = opts.Path
	}
	key, err := keys.Secp256k1(src, path)
	if err != nil {
		return nil, err
	}
	priv, _ := btcec.PrivKeyFromBytes(crypto.FromECDSA(key))
	return priv, nil
}

func (h *Handler) Create(ctx context.Context, src chains.KeySource, opts chains.CreateOptions) (*chains.Account, error) {
	key, err := h.key(src, opts)
	if err != nil {
		return nil, err
	}
	address, err := Address(h.params.Prefix, key.PubKey())
	if err != nil {
		return nil, fmt.Errorf("failed to encode address: %w", err)
	}
	return &chains.Account{
		PrivateKey: hex.EncodeToString(key.Serialize()),
		Address:    address,
		Chain:      h.info.ID,
		Mnemonic:   src.Mnemonic(),
	}, nil
}

func (h *Handler) GetBalance(ctx context.Context, address string) (string, error) {
	if err := ValidateAddress(h.params.Prefix, address); err != nil {
		return "", err
	}
	amount, err := h.sub.GetBalance(ctx, BalanceRequest{Address: address, Asset: h.params.Denom})
	if err != nil {
		return "", apperr.Network("cosmos.GetBalance", err)
	}
	return chains.FormatUnits(amount, h.info.Decimals), nil
}

// GetTokenBalance reads the balance of another bank denom. Contract is the
// denom; decimals default to the chain's.
func (h *Handler) GetTokenBalance(ctx context.Context, req chains.TokenBalanceRequest) (string, error) {
	if req.Contract == "" {
		return "", apperr.Validation("cosmos.GetTokenBalance", "denom is required")
	}
	if err := ValidateAddress(h.params.Prefix, req.Address); err != nil {
		return "", err
	}
	amount, err := h.sub.GetBalance(ctx, BalanceRequest{Address: req.Address, Asset: req.Contract})
	if err != nil {
		return "", apperr.Network("cosmos.GetTokenBalance", err)
	}
	decimals := h.info.Decimals
	if req.Decimals != nil {
		decimals = *req.Decimals
	}
	return chains.FormatUnits(amount, decimals), nil
}

func (h *Handler) SendFrom(ctx context.Context, src chains.KeySource, req chains.SendRequest) (string, error) {
	if err := ValidateAddress(h.params.Prefix, req.To); err != nil {
		return "", err
	}
	key, err := h.key(src, req.Account())
	if err != nil {
		return "", err
	}

	asset, decimals := h.params.Denom, h.info.Decimals
	if req.Contract != nil {
		asset = req.Contract.Address
		if req.Contract.Decimals != nil {
			decimals = *req.Contract.Decimals
		}
	}
	amount, err := chains.ToBaseUnits(req.Amount, decimals)
	if err != nil {
		return "", err
	}

	var fee *big.Int
	if req.Fee != "" {
		var ok bool
		if fee, ok = new(big.Int).SetString(req.Fee, 10); !ok || fee.Sign() < 0 {
			return "", apperr.Validation("cosmos.SendFrom", "invalid fee %q", req.Fee)
		}
	}

	hash, err := h.sub.Transfer(ctx, TransferRequest{
		ToAddress: req.To,
		Amount:    amount,
		Asset:     asset,
		Key:       key,
		Memo:      req.Memo,
		Fee:       fee,
	})
	if err != nil {
		return hash, err
	}

	logger := log.WithChain(log.Cosmos, string(h.info.ID))
	logger.Info().Str("tx", hash).Msg("transaction broadcast")
	return hash, nil
}
