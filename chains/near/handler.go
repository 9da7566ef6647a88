// Package near implements the Near handler: SLIP-10 keys, implicit account
// ids, native and NEP-141 transfers signed over Borsh-encoded transactions.
package near

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/chinmay1088/omniwallet/api"
	"github.com/chinmay1088/omniwallet/apperr"
	"github.com/chinmay1088/omniwallet/chains"
	"github.com/chinmay1088/omniwallet/config"
	"github.com/chinmay1088/omniwallet/keys"
	"github.com/chinmay1088/omniwallet/log"
	"github.com/mr-tron/base58"
)

const keyPrefix = "ed25519:"

// defaultTokenDecimals is used when ft_metadata cannot be read.
const defaultTokenDecimals = 18

// Handler serves the Near chain.
type Handler struct {
	info chains.Info
	rpc  *rpcClient
}

// New is the chains.Factory of the Near family.
func New(info chains.Info, cfg config.Config) (chains.Handler, error) {
	url := cfg.Endpoint(string(info.ID))
	if url == "" {
		return nil, fmt.Errorf("no rpc endpoint for %s", info.ID)
	}
	return NewHandler(info, url, api.NewClient(cfg.HTTPTimeout)), nil
}

func NewHandler(info chains.Info, url string, client *api.Client) *Handler {
	return &Handler{info: info, rpc: &rpcClient{url: url, http: client}}
}

// EncodePrivateKey renders a key the way Near wallets export it.
func EncodePrivateKey(key ed25519.PrivateKey) string {
	return keyPrefix + base58.Encode(key)
}

// ParsePrivateKey accepts an "ed25519:" prefixed base58 key.
func ParsePrivateKey(s string) (ed25519.PrivateKey, error) {
	raw, err := base58.Decode(strings.TrimPrefix(s, keyPrefix))
	if err != nil {
		return nil, fmt.Errorf("invalid near private key: %w", err)
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid near private key length %d", len(raw))
	}
	return ed25519.PrivateKey(raw), nil
}

func encodePublicKey(pub ed25519.PublicKey) string {
	return keyPrefix + base58.Encode(pub)
}

// AccountID returns the implicit account id of a public key.
func AccountID(pub ed25519.PublicKey) string {
	return hex.EncodeToString(pub)
}

func (h *Handler) signingKey(src chains.KeySource, opts chains.CreateOptions) (ed25519.PrivateKey, error) {
	if pk := src.PrivateKey(); src.Mnemonic() == "" && strings.HasPrefix(pk, keyPrefix) {
		return ParsePrivateKey(pk)
	}
	seed, err := keys.Ed25519Seed(src)
	if err != nil {
		return nil, err
	}
	path := h.info.Path
	if opts.Path != "" {
		path = opts.Path
	}
	return keys.DeriveEd25519(seed, path)
}

func (h *Handler) Create(ctx context.Context, src chains.KeySource, opts chains.CreateOptions) (*chains.Account, error) {
	key, err := h.signingKey(src, opts)
	if err != nil {
		return nil, err
	}
	return &chains.Account{
		PrivateKey: EncodePrivateKey(key),
		Address:    AccountID(key.Public().(ed25519.PublicKey)),
		Chain:      h.info.ID,
		Mnemonic:   src.Mnemonic(),
	}, nil
}

func (h *Handler) GetBalance(ctx context.Context, address string) (string, error) {
	if err := validateAccountID(address); err != nil {
		return "", err
	}
	view, err := h.rpc.viewAccount(ctx, address)
	if errors.Is(err, errUnknownAccount) {
		return "0", nil
	}
	if err != nil {
		return "", apperr.Network("near.GetBalance", err)
	}
	amount, ok := new(big.Int).SetString(view.Amount, 10)
	if !ok {
		return "", fmt.Errorf("invalid amount %q", view.Amount)
	}
	return chains.FormatUnits(amount, h.info.Decimals), nil
}

// GetTokenBalance reads a NEP-141 balance with ft_balance_of.
func (h *Handler) GetTokenBalance(ctx context.Context, req chains.TokenBalanceRequest) (string, error) {
	if err := validateAccountID(req.Contract); err != nil {
		return "", err
	}
	if err := validateAccountID(req.Address); err != nil {
		return "", err
	}

	var raw string
	err := h.rpc.callView(ctx, req.Contract, "ft_balance_of", map[string]string{"account_id": req.Address}, &raw)
	if errors.Is(err, errUnknownAccount) {
		return "0", nil
	}
	if err != nil {
		return "", apperr.Network("near.GetTokenBalance", err)
	}
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return "", fmt.Errorf("invalid token amount %q", raw)
	}

	decimals := h.tokenDecimals(ctx, req.Contract, req.Decimals)
	return chains.FormatUnits(amount, decimals), nil
}

func (h *Handler) tokenDecimals(ctx context.Context, contract string, explicit *int32) int32 {
	if explicit != nil {
		return *explicit
	}
	var meta struct {
		Decimals int32 `json:"decimals"`
	}
	if err := h.rpc.callView(ctx, contract, "ft_metadata", map[string]string{}, &meta); err != nil {
		logger := log.WithChain(log.Near, string(h.info.ID))
		logger.Debug().Err(err).Str("contract", contract).Msg("ft_metadata failed, assuming 18 decimals")
		return defaultTokenDecimals
	}
	return meta.Decimals
}

// SendFrom signs and commits a transfer. With a contract it calls
// ft_transfer on the token with the one yoctoNEAR deposit NEP-141 requires.
func (h *Handler) SendFrom(ctx context.Context, src chains.KeySource, req chains.SendRequest) (string, error) {
	key, err := h.signingKey(src, req.Account())
	if err != nil {
		return "", err
	}
	if err := validateAccountID(req.To); err != nil {
		return "", err
	}

	pub := key.Public().(ed25519.PublicKey)
	signer := AccountID(pub)

	receiver, action, err := h.action(ctx, req)
	if err != nil {
		return "", err
	}

	access, err := h.rpc.viewAccessKey(ctx, signer, encodePublicKey(pub))
	if err != nil {
		return "", apperr.Network("near.viewAccessKey", err)
	}
	blockHash, err := base58.Decode(access.BlockHash)
	if err != nil || len(blockHash) != 32 {
		return "", fmt.Errorf("invalid block hash %q", access.BlockHash)
	}

	tx := Transaction{
		SignerID:   signer,
		PublicKey:  publicKeyOf(key),
		Nonce:      access.Nonce + 1,
		ReceiverID: receiver,
		Actions:    []Action{action},
	}
	copy(tx.BlockHash[:], blockHash)

	signed, hash, err := SignTransaction(tx, key)
	if err != nil {
		return "", err
	}
	txHash := base58.Encode(hash[:])

	out, err := h.rpc.broadcastCommit(ctx, signed)
	if err != nil {
		return "", apperr.Network("near.broadcast", err)
	}
	if out.Transaction.Hash != "" {
		txHash = out.Transaction.Hash
	}

	l := log.WithChain(log.Near, string(h.info.ID))
	if failure, ok := out.Status["Failure"]; ok {
		l.Warn().Str("tx", txHash).RawJSON("failure", failure).Msg("transaction failed")
		return txHash, apperr.Wrap(apperr.KindFailed, "near.SendFrom", fmt.Errorf("transaction %s failed: %s", txHash, failure))
	}
	l.Info().Str("tx", txHash).Msg("transaction committed")
	return txHash, nil
}

func (h *Handler) action(ctx context.Context, req chains.SendRequest) (string, Action, error) {
	if req.Contract == nil {
		amount, err := chains.ToBaseUnits(req.Amount, h.info.Decimals)
		if err != nil {
			return "", Action{}, err
		}
		return req.To, transferAction(amount), nil
	}

	if err := validateAccountID(req.Contract.Address); err != nil {
		return "", Action{}, err
	}
	decimals := h.tokenDecimals(ctx, req.Contract.Address, req.Contract.Decimals)
	amount, err := chains.ToBaseUnits(req.Amount, decimals)
	if err != nil {
		return "", Action{}, err
	}
	args := fmt.Sprintf(`{"receiver_id":%q,"amount":%q}`, req.To, amount.String())
	if req.Memo != "" {
		args = fmt.Sprintf(`{"receiver_id":%q,"amount":%q,"memo":%q}`, req.To, amount.String(), req.Memo)
	}
	return req.Contract.Address, functionCallAction("ft_transfer", []byte(args), ftTransferGas, big.NewInt(1)), nil
}

// validateAccountID checks the Near account id grammar: 2 to 64 characters
// of lowercase alphanumerics separated by single '-', '_' or '.'.
func validateAccountID(id string) error {
	if len(id) < 2 || len(id) > 64 {
		return apperr.Validation("near.validateAccountID", "invalid account id %q", id)
	}
	prevSep := true
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			prevSep = false
		case r == '-' || r == '_' || r == '.':
			if prevSep {
				return apperr.Validation("near.validateAccountID", "invalid account id %q", id)
			}
			prevSep = true
		default:
			return apperr.Validation("near.validateAccountID", "invalid account id %q", id)
		}
	}
	if prevSep {
		return apperr.Validation("near.validateAccountID", "invalid account id %q", id)
	}
	return nil
}
