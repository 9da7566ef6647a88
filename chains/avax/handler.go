// Package avax implements the Avalanche X-chain handler. The C-chain is an
// EVM chain and is served by chains/evm.
package avax

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/cb58"
	"github.com/ava-labs/avalanchego/utils/constants"
	"github.com/ava-labs/avalanchego/utils/crypto/secp256k1"
	"github.com/ava-labs/avalanchego/utils/formatting/address"
	"github.com/chinmay1088/omniwallet/api"
	"github.com/chinmay1088/omniwallet/apperr"
	"github.com/chinmay1088/omniwallet/chains"
	"github.com/chinmay1088/omniwallet/config"
	"github.com/chinmay1088/omniwallet/keys"
	"github.com/chinmay1088/omniwallet/log"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	chainAlias = "X"
	assetAVAX  = "AVAX"
	xChainPath = "/ext/bc/X"
)

// Handler serves the Avalanche X-chain.
type Handler struct {
	info   chains.Info
	hrp    string
	rpcURL string
	http   *api.Client
	issuer Issuer

	mu      sync.Mutex
	assetID ids.ID
}

// New is the chains.Factory of the Avalanche X family.
func New(info chains.Info, cfg config.Config) (chains.Handler, error) {
	uri := cfg.Endpoint(string(info.ID))
	if uri == "" {
		return nil, fmt.Errorf("no rpc endpoint for %s", info.ID)
	}
	return NewHandler(info, cfg, uri, api.NewClient(cfg.HTTPTimeout), WalletIssuer{URI: uri}), nil
}

func NewHandler(info chains.Info, cfg config.Config, uri string, httpClient *api.Client, issuer Issuer) *Handler {
	networkID := constants.MainnetID
	if cfg.IsTestnet() {
		networkID = constants.FujiID
	}
	return &Handler{
		info:   info,
		hrp:    constants.GetHRP(networkID),
		rpcURL: strings.TrimSuffix(uri, "/") + xChainPath,
		http:   httpClient,
		issuer: issuer,
	}
}

// signingKey accepts an imported "PrivateKey-" cb58 key, a hex key, or the
// mnemonic.
func (h *Handler) signingKey(src chains.KeySource, opts chains.CreateOptions) (*secp256k1.PrivateKey, error) {
	if pk := src.PrivateKey(); src.Mnemonic() == "" && strings.HasPrefix(pk, secp256k1.PrivateKeyPrefix) {
		raw, err := cb58.Decode(strings.TrimPrefix(pk, secp256k1.PrivateKeyPrefix))
		if err != nil {
			return nil, fmt.Errorf("invalid avalanche private key: %w", err)
		}
		return secp256k1.ToPrivateKey(raw)
	}

	path := h.info.Path
	if opts.Path != "" {
		path = opts.Path
	}
	key, err := keys.Secp256k1(src, path)
	if err != nil {
		return nil, err
	}
	return secp256k1.ToPrivateKey(crypto.FromECDSA(key))
}

// FormatAddress renders the X-chain address of a key.
func (h *Handler) FormatAddress(addr ids.ShortID) (string, error) {
	return address.Format(chainAlias, h.hrp, addr.Bytes())
}

// ParseAddress accepts X-chain addresses of this network, with or without
// the chain prefix.
func (h *Handler) ParseAddress(s string) (ids.ShortID, error) {
	if !strings.Contains(s, "-") {
		s = chainAlias + "-" + s
	}
	alias, hrp, raw, err := address.Parse(s)
	if err != nil {
		return ids.ShortEmpty, apperr.Validation("avax.ParseAddress", "invalid address %q: %v", s, err)
	}
	if alias != chainAlias || hrp != h.hrp {
		return ids.ShortEmpty, apperr.Validation("avax.ParseAddress", "address %s is not an %s-chain address on %s", s, chainAlias, h.hrp)
	}
	id, err := ids.ToShortID(raw)
	if err != nil {
		return ids.ShortEmpty, apperr.Validation("avax.ParseAddress", "invalid address %q: %v", s, err)
	}
	return id, nil
}

func (h *Handler) Create(ctx context.Context, src chains.KeySource, opts chains.CreateOptions) (*chains.Account, error) {
	key, err := h.signingKey(src, opts)
	if err != nil {
		return nil, err
	}
	addr, err := h.FormatAddress(key.PublicKey().Address())
	if err != nil {
		return nil, fmt.Errorf("failed to format address: %w", err)
	}
	return &chains.Account{
		PrivateKey: key.String(),
		Address:    addr,
		Chain:      h.info.ID,
		Mnemonic:   src.Mnemonic(),
	}, nil
}

type balanceResult struct {
	Balance string `json:"balance"`
}

func (h *Handler) balance(ctx context.Context, addr, asset string) (*big.Int, error) {
	var out balanceResult
	err := h.http.Call(ctx, h.rpcURL, "avm.getBalance", map[string]string{
		"address": addr,
		"assetID": asset,
	}, &out)
	if err != nil {
		return nil, err
	}
	amount, ok := new(big.Int).SetString(out.Balance, 10)
	if !ok {
		return nil, fmt.Errorf("invalid balance %q", out.Balance)
	}
	return amount, nil
}

func (h *Handler) GetBalance(ctx context.Context, addr string) (string, error) {
	id, err := h.ParseAddress(addr)
	if err != nil {
		return "", err
	}
	formatted, _ := h.FormatAddress(id)
	amount, err := h.balance(ctx, formatted, assetAVAX)
	if err != nil {
		return "", apperr.Network("avax.GetBalance", err)
	}
	return chains.FormatUnits(amount, h.info.Decimals), nil
}

// GetTokenBalance reads the balance of an X-chain asset. Contract is the
// asset id; decimals default to AVAX's.
func (h *Handler) GetTokenBalance(ctx context.Context, req chains.TokenBalanceRequest) (string, error) {
	id, err := h.ParseAddress(req.Address)
	if err != nil {
		return "", err
	}
	if _, err := ids.FromString(req.Contract); err != nil {
		return "", apperr.Validation("avax.GetTokenBalance", "invalid asset id %q", req.Contract)
	}
	formatted, _ := h.FormatAddress(id)
	amount, err := h.balance(ctx, formatted, req.Contract)
	if err != nil {
		return "", apperr.Network("avax.GetTokenBalance", err)
	}
	decimals := h.info.Decimals
	if req.Decimals != nil {
		decimals = *req.Decimals
	}
	return chains.FormatUnits(amount, decimals), nil
}

type assetDescription struct {
	AssetID string `json:"assetID"`
}

// avaxAssetID resolves the AVAX asset id of the network once.
func (h *Handler) avaxAssetID(ctx context.Context) (ids.ID, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.assetID != ids.Empty {
		return h.assetID, nil
	}
	var out assetDescription
	if err := h.http.Call(ctx, h.rpcURL, "avm.getAssetDescription", map[string]string{"assetID": assetAVAX}, &out); err != nil {
		return ids.Empty, apperr.Network("avax.getAssetDescription", err)
	}
	id, err := ids.FromString(out.AssetID)
	if err != nil {
		return ids.Empty, fmt.Errorf("invalid asset id %q: %w", out.AssetID, err)
	}
	h.assetID = id
	return id, nil
}

func (h *Handler) SendFrom(ctx context.Context, src chains.KeySource, req chains.SendRequest) (string, error) {
	key, err := h.signingKey(src, req.Account())
	if err != nil {
		return "", err
	}
	to, err := h.ParseAddress(req.To)
	if err != nil {
		return "", err
	}

	var assetID ids.ID
	decimals := h.info.Decimals
	if req.Contract != nil {
		if assetID, err = ids.FromString(req.Contract.Address); err != nil {
			return "", apperr.Validation("avax.SendFrom", "invalid asset id %q", req.Contract.Address)
		}
		if req.Contract.Decimals != nil {
			decimals = *req.Contract.Decimals
		}
	} else if assetID, err = h.avaxAssetID(ctx); err != nil {
		return "", err
	}

	amount, err := chains.ToBaseUnits(req.Amount, decimals)
	if err != nil {
		return "", err
	}
	if !amount.IsUint64() {
		return "", apperr.Validation("avax.SendFrom", "amount %s overflows u64", req.Amount)
	}

	txID, err := h.issuer.IssueBaseTx(ctx, key, assetID, to, amount.Uint64())
	if err != nil {
		return "", apperr.Network("avax.IssueBaseTx", err)
	}
	logger := log.WithChain(log.Avax, string(h.info.ID))
	logger.Info().Str("tx", txID).Msg("transaction issued")
	return txID, nil
}
