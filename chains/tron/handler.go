// Package tron implements the Tron handler over the full node HTTP API.
package tron

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/chinmay1088/omniwallet/api"
	"github.com/chinmay1088/omniwallet/apperr"
	"github.com/chinmay1088/omniwallet/chains"
	"github.com/chinmay1088/omniwallet/config"
	"github.com/chinmay1088/omniwallet/keys"
	"github.com/chinmay1088/omniwallet/log"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	// defaultFeeLimit caps the energy a TRC20 transfer may burn, in sun.
	defaultFeeLimit = 100_000_000
	// defaultTokenDecimals is used when decimals() cannot be read.
	defaultTokenDecimals = 18
)

// Handler serves the Tron chain.
type Handler struct {
	info   chains.Info
	client *client
}

// New is the chains.Factory of the Tron family.
func New(info chains.Info, cfg config.Config) (chains.Handler, error) {
	url := cfg.Endpoint(string(info.ID))
	if url == "" {
		return nil, fmt.Errorf("no rpc endpoint for %s", info.ID)
	}
	return NewHandler(info, url, api.NewClient(cfg.HTTPTimeout)), nil
}

func NewHandler(info chains.Info, baseURL string, httpClient *api.Client) *Handler {
	return &Handler{info: info, client: &client{base: baseURL, http: httpClient}}
}

func (h *Handler) key(src chains.KeySource, opts chains.CreateOptions) (*ecdsa.PrivateKey, error) {
	path := h.info.Path
	if opts.Path != "" {
		path = opts.Path
	}
	return keys.Secp256k1(src, path)
}

// Create derives the key on the Ethereum path and encodes it as a Tron
// account.
func (h *Handler) Create(ctx context.Context, src chains.KeySource, opts chains.CreateOptions) (*chains.Account, error) {
	key, err := h.key(src, opts)
	if err != nil {
		return nil, err
	}
	return &chains.Account{
		PrivateKey: hex.EncodeToString(crypto.FromECDSA(key)),
		Address:    Address(key.PublicKey),
		Chain:      h.info.ID,
		Mnemonic:   src.Mnemonic(),
	}, nil
}

// GetBalance returns the TRX balance. The node answers an empty object for
// accounts it has never seen.
func (h *Handler) GetBalance(ctx context.Context, address string) (string, error) {
	if _, err := DecodeAddress(address); err != nil {
		return "", err
	}
	acc, err := h.client.getAccount(ctx, address)
	if err != nil {
		return "", apperr.Network("tron.GetBalance", err)
	}
	return chains.FormatUnits(big.NewInt(acc.Balance), h.info.Decimals), nil
}

func (h *Handler) GetTokenBalance(ctx context.Context, req chains.TokenBalanceRequest) (string, error) {
	owner, err := DecodeAddress(req.Address)
	if err != nil {
		return "", err
	}
	if _, err := DecodeAddress(req.Contract); err != nil {
		return "", err
	}

	out, err := h.client.triggerConstant(ctx, req.Address, req.Contract, "balanceOf(address)", abiAddress(owner))
	if err != nil {
		return "", apperr.Network("tron.GetTokenBalance", err)
	}
	decimals := h.tokenDecimals(ctx, req.Address, req.Contract, req.Decimals)
	return chains.FormatUnits(new(big.Int).SetBytes(out), decimals), nil
}

func (h *Handler) tokenDecimals(ctx context.Context, owner, contract string, explicit *int32) int32 {
	if explicit != nil {
		return *explicit
	}
	out, err := h.client.triggerConstant(ctx, owner, contract, "decimals()", "")
	if err != nil || len(out) == 0 {
		logger := log.WithChain(log.Tron, string(h.info.ID))
		logger.Debug().Err(err).Str("contract", contract).Msg("decimals() failed, assuming 18")
		return defaultTokenDecimals
	}
	return int32(new(big.Int).SetBytes(out).Int64())
}

// SendFrom builds the transfer on the node, verifies and signs its id, and
// broadcasts it.
func (h *Handler) SendFrom(ctx context.Context, src chains.KeySource, req chains.SendRequest) (string, error) {
	key, err := h.key(src, req.Account())
	if err != nil {
		return "", err
	}
	from := Address(key.PublicKey)
	to, err := DecodeAddress(req.To)
	if err != nil {
		return "", err
	}

	var tx *Transaction
	if req.Contract != nil {
		tx, err = h.tokenTransfer(ctx, from, to, req)
	} else {
		tx, err = h.nativeTransfer(ctx, from, req)
	}
	if err != nil {
		return "", err
	}

	if err := Sign(tx, key); err != nil {
		return "", err
	}
	res, err := h.client.broadcast(ctx, tx)
	if err != nil {
		return "", apperr.Network("tron.broadcast", err)
	}
	if !res.Result {
		return "", apperr.Wrap(apperr.KindFailed, "tron.broadcast", fmt.Errorf("%s: %s", res.Code, res.message()))
	}

	logger := log.WithChain(log.Tron, string(h.info.ID))
	logger.Info().Str("tx", tx.TxID).Msg("transaction broadcast")
	return tx.TxID, nil
}

func (h *Handler) nativeTransfer(ctx context.Context, from string, req chains.SendRequest) (*Transaction, error) {
	amount, err := chains.ToBaseUnits(req.Amount, h.info.Decimals)
	if err != nil {
		return nil, err
	}
	if !amount.IsInt64() {
		return nil, apperr.Validation("tron.SendFrom", "amount %s overflows int64", req.Amount)
	}
	tx, err := h.client.createTransaction(ctx, from, req.To, amount.Int64())
	if err != nil {
		return nil, apperr.Network("tron.createTransaction", err)
	}
	return tx, nil
}

func (h *Handler) tokenTransfer(ctx context.Context, from string, to []byte, req chains.SendRequest) (*Transaction, error) {
	if _, err := DecodeAddress(req.Contract.Address); err != nil {
		return nil, err
	}
	decimals := h.tokenDecimals(ctx, from, req.Contract.Address, req.Contract.Decimals)
	amount, err := chains.ToBaseUnits(req.Amount, decimals)
	if err != nil {
		return nil, err
	}

	if amount.BitLen() > 256 {
		return nil, apperr.Validation("tron.SendFrom", "amount %s overflows uint256", req.Amount)
	}
	word := make([]byte, 32)
	amount.FillBytes(word)
	parameter := abiAddress(to) + hex.EncodeToString(word)

	tx, err := h.client.triggerSmartContract(ctx, from, req.Contract.Address, "transfer(address,uint256)", parameter, defaultFeeLimit)
	if err != nil {
		return nil, apperr.Network("tron.triggerSmartContract", err)
	}
	return tx, nil
}

// Sign checks that txID is the sha256 of the raw data and appends the
// secp256k1 signature over it.
func Sign(tx *Transaction, key *ecdsa.PrivateKey) error {
	raw, err := hex.DecodeString(tx.RawDataHex)
	if err != nil {
		return fmt.Errorf("invalid raw_data_hex: %w", err)
	}
	id := sha256.Sum256(raw)
	want, err := hex.DecodeString(tx.TxID)
	if err != nil || !bytes.Equal(id[:], want) {
		return fmt.Errorf("transaction id %s does not match its raw data", tx.TxID)
	}

	sig, err := crypto.Sign(id[:], key)
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}
	tx.Signature = append(tx.Signature, hex.EncodeToString(sig))
	return nil
}
