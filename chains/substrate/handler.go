// Package substrate implements the Polkadot and Kusama handlers.
package substrate

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/chinmay1088/omniwallet/apperr"
	"github.com/chinmay1088/omniwallet/chains"
	"github.com/chinmay1088/omniwallet/config"
	"github.com/chinmay1088/omniwallet/keys"
	"github.com/chinmay1088/omniwallet/log"
)

// Handler serves one Substrate chain.
type Handler struct {
	info   chains.Info
	format uint8
	client Client
}

// New is the chains.Factory of the Substrate family.
func New(info chains.Info, cfg config.Config) (chains.Handler, error) {
	url := cfg.Endpoint(string(info.ID))
	if url == "" {
		return nil, fmt.Errorf("no rpc endpoint for %s", info.ID)
	}
	return NewHandler(info, NewRPCClient(url))
}

func NewHandler(info chains.Info, client Client) (*Handler, error) {
	var format uint8
	switch info.ID {
	case chains.Polkadot:
		format = keys.SS58Polkadot
	case chains.Kusama:
		format = keys.SS58Kusama
	default:
		return nil, apperr.Unsupported("substrate.NewHandler", string(info.ID))
	}
	return &Handler{info: info, format: format, client: client}, nil
}

// Create derives the sr25519 account of the mnemonic. The private key is
// never exported.
func (h *Handler) Create(ctx context.Context, src chains.KeySource, opts chains.CreateOptions) (*chains.Account, error) {
	if src.Mnemonic() == "" {
		return nil, apperr.MnemonicMissing("substrate.Create")
	}
	pair, err := keys.SubstratePair(src.Mnemonic(), h.format)
	if err != nil {
		return nil, err
	}
	return &chains.Account{
		Address:  pair.Address,
		Chain:    h.info.ID,
		Mnemonic: src.Mnemonic(),
	}, nil
}

func (h *Handler) GetBalance(ctx context.Context, address string) (string, error) {
	accountID, err := DecodeAddress(address, h.format)
	if err != nil {
		return "", err
	}
	free, found, err := h.client.FreeBalance(ctx, accountID)
	if err != nil {
		return "", apperr.Network("substrate.GetBalance", err)
	}
	if !found {
		return "0", nil
	}
	return chains.FormatUnits(free, h.info.Decimals), nil
}

func (h *Handler) GetTokenBalance(ctx context.Context, req chains.TokenBalanceRequest) (string, error) {
	return "", apperr.Wrap(apperr.KindUnsupported, "substrate.GetTokenBalance", errors.New("token balances are not available on "+string(h.info.ID)))
}

// SendFrom transfers the native coin. On Polkadot a transfer that would
// leave the destination with at most one DOT is refused before anything is
// submitted.
func (h *Handler) SendFrom(ctx context.Context, src chains.KeySource, req chains.SendRequest) (string, error) {
	if src.Mnemonic() == "" {
		return "", apperr.MnemonicMissing("substrate.SendFrom")
	}
	dest, err := DecodeAddress(req.To, h.format)
	if err != nil {
		return "", err
	}
	amount, err := chains.ToBaseUnits(req.Amount, h.info.Decimals)
	if err != nil {
		return "", err
	}

	if h.info.ID == chains.Polkadot {
		if err := h.checkMinimum(ctx, dest, amount); err != nil {
			return "", err
		}
	}

	pair, err := keys.SubstratePair(src.Mnemonic(), h.format)
	if err != nil {
		return "", err
	}
	hash, err := h.client.Transfer(ctx, pair, dest, amount)
	if err != nil {
		return "", apperr.Network("substrate.Transfer", err)
	}
	hash = normalizeHash(hash)

	logger := log.WithChain(log.Substrate, string(h.info.ID))
	logger.Info().Str("tx", hash).Msg("extrinsic submitted")
	return hash, nil
}

func (h *Handler) checkMinimum(ctx context.Context, dest []byte, amount *big.Int) error {
	free, _, err := h.client.FreeBalance(ctx, dest)
	if err != nil {
		return apperr.Network("substrate.FreeBalance", err)
	}
	one := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(h.info.Decimals)), nil)
	if new(big.Int).Add(free, amount).Cmp(one) <= 0 {
		return apperr.Precondition("substrate.SendFrom", apperr.CodeMinimumDOT)
	}
	return nil
}

func normalizeHash(hash string) string {
	hash = strings.ToLower(strings.TrimSpace(hash))
	if !strings.HasPrefix(hash, "0x") {
		hash = "0x" + hash
	}
	return hash
}
