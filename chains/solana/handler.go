// Package solana implements the Solana handler: legacy and SLIP-10 key
// derivation, SOL and SPL token transfers, and the push-vs-poll confirmation
// race.
package solana

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/chinmay1088/omniwallet/apperr"
	"github.com/chinmay1088/omniwallet/chains"
	"github.com/chinmay1088/omniwallet/config"
	"github.com/chinmay1088/omniwallet/keys"
	"github.com/chinmay1088/omniwallet/log"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
)

// RPC is the subset of the Solana JSON-RPC client the handler uses. It is
// satisfied by *rpc.Client.
type RPC interface {
	GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error)
	GetTokenAccountBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetTokenAccountBalanceResult, error)
	GetTokenSupply(ctx context.Context, mint solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetTokenSupplyResult, error)
	GetAccountInfo(ctx context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error)
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, sigs ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
}

// Handler serves the Solana chain.
type Handler struct {
	info    chains.Info
	rpc     RPC
	watcher Watcher

	sollet         bool
	assertOwner    bool
	pollInterval   time.Duration
	confirmTimeout time.Duration
}

// New is the chains.Factory of the Solana family.
func New(info chains.Info, cfg config.Config) (chains.Handler, error) {
	url := cfg.Endpoint(string(info.ID))
	if url == "" {
		return nil, fmt.Errorf("no rpc endpoint for %s", info.ID)
	}
	var watcher Watcher
	if wsURL := cfg.Endpoint(string(info.ID) + "-ws"); wsURL != "" {
		watcher = WSWatcher{URL: wsURL}
	}
	return NewHandler(info, cfg, rpc.New(url), watcher), nil
}

// NewHandler builds a handler around an RPC client. watcher may be nil, in
// which case confirmation relies on polling alone.
func NewHandler(info chains.Info, cfg config.Config, client RPC, watcher Watcher) *Handler {
	return &Handler{
		info:           info,
		rpc:            client,
		watcher:        watcher,
		sollet:         cfg.SolanaSollet,
		assertOwner:    cfg.SolanaAssertOwner && !cfg.IsTestnet(),
		pollInterval:   cfg.PollInterval,
		confirmTimeout: cfg.ConfirmTimeout,
	}
}

// signingKey resolves the wallet key. An imported base58 Solana key wins;
// otherwise the key is derived from the seed.
func (h *Handler) signingKey(src chains.KeySource, opts chains.CreateOptions) (solana.PrivateKey, error) {
	if pk := src.PrivateKey(); pk != "" && src.Mnemonic() == "" {
		key, err := solana.PrivateKeyFromBase58(pk)
		if err != nil {
			return nil, apperr.Validation("solana.signingKey", "private key is not a base58 Solana key: %v", err)
		}
		return key, nil
	}

	seed, err := keys.Ed25519Seed(src)
	if err != nil {
		return nil, err
	}

	var priv ed25519.PrivateKey
	switch {
	case opts.Path != "":
		priv, err = keys.DeriveEd25519(seed, opts.Path)
	case opts.Sollet || h.sollet:
		priv, err = keys.DeriveEd25519(seed, h.info.Path)
	default:
		priv, err = keys.LegacySolanaKey(seed)
	}
	if err != nil {
		return nil, err
	}
	return solana.PrivateKey(priv), nil
}

func (h *Handler) Create(ctx context.Context, src chains.KeySource, opts chains.CreateOptions) (*chains.Account, error) {
	key, err := h.signingKey(src, opts)
	if err != nil {
		return nil, err
	}
	return &chains.Account{
		PrivateKey: key.String(),
		Address:    key.PublicKey().String(),
		Chain:      h.info.ID,
		Mnemonic:   src.Mnemonic(),
	}, nil
}

func (h *Handler) GetBalance(ctx context.Context, address string) (string, error) {
	owner, err := ParseAddress(address)
	if err != nil {
		return "", err
	}
	out, err := h.rpc.GetBalance(ctx, owner, rpc.CommitmentConfirmed)
	if err != nil {
		return "", apperr.Network("solana.GetBalance", err)
	}
	return chains.FormatUnits(new(big.Int).SetUint64(out.Value), h.info.Decimals), nil
}

// GetTokenBalance reads the SPL balance of the given token account, or of
// the owner's associated token account. A missing account holds nothing.
func (h *Handler) GetTokenBalance(ctx context.Context, req chains.TokenBalanceRequest) (string, error) {
	mint, err := ParseAddress(req.Contract)
	if err != nil {
		return "", err
	}

	var account solana.PublicKey
	if req.TokenAccount != "" {
		if account, err = ParseAddress(req.TokenAccount); err != nil {
			return "", err
		}
	} else {
		owner, err := ParseAddress(req.Address)
		if err != nil {
			return "", err
		}
		if account, _, err = solana.FindAssociatedTokenAddress(owner, mint); err != nil {
			return "", fmt.Errorf("failed to derive token account: %w", err)
		}
	}

	out, err := h.rpc.GetTokenAccountBalance(ctx, account, rpc.CommitmentConfirmed)
	if isAccountNotFound(err) {
		return "0", nil
	}
	if err != nil {
		return "", apperr.Network("solana.GetTokenBalance", err)
	}
	if out == nil || out.Value == nil {
		return "0", nil
	}

	amount, ok := new(big.Int).SetString(out.Value.Amount, 10)
	if !ok {
		return "", fmt.Errorf("invalid token amount %q", out.Value.Amount)
	}
	decimals := int32(out.Value.Decimals)
	if req.Decimals != nil {
		decimals = *req.Decimals
	}
	return chains.FormatUnits(amount, decimals), nil
}

// SendFrom submits a SOL or SPL token transfer and waits for it to be
// confirmed.
func (h *Handler) SendFrom(ctx context.Context, src chains.KeySource, req chains.SendRequest) (string, error) {
	key, err := h.signingKey(src, req.Account())
	if err != nil {
		return "", err
	}
	to, err := ParseAddress(req.To)
	if err != nil {
		return "", err
	}

	tx := NewTransaction(key.PublicKey())
	tx.AddSigner(key)
	if req.Contract != nil {
		err = h.addTokenTransfer(ctx, tx, key.PublicKey(), to, req)
	} else {
		err = h.addNativeTransfer(tx, key.PublicKey(), to, req.Amount)
	}
	if err != nil {
		return "", err
	}
	if req.Memo != "" {
		tx.AddMemo(req.Memo, key.PublicKey())
	}

	sig, err := h.submit(ctx, tx)
	if err != nil {
		return "", err
	}

	l := log.WithChain(log.Solana, string(h.info.ID))
	l.Info().Str("tx", sig.String()).Msg("transaction submitted")

	if _, err := AwaitConfirmation(ctx, h.rpc, h.watcher, sig, h.pollInterval, h.confirmTimeout); err != nil {
		return sig.String(), err
	}
	return sig.String(), nil
}

func (h *Handler) addNativeTransfer(tx *Transaction, from, to solana.PublicKey, amount string) error {
	lamports, err := toUint64(amount, h.info.Decimals)
	if err != nil {
		return err
	}
	tx.AddTransferInstruction(from, to, lamports)
	return nil
}

// addTokenTransfer appends a TransferChecked to the recipient's associated
// token account, creating that account first when it does not exist.
func (h *Handler) addTokenTransfer(ctx context.Context, tx *Transaction, owner, to solana.PublicKey, req chains.SendRequest) error {
	mint, err := ParseAddress(req.Contract.Address)
	if err != nil {
		return err
	}

	var source solana.PublicKey
	if req.TokenAccount != "" {
		if source, err = ParseAddress(req.TokenAccount); err != nil {
			return err
		}
	} else if source, _, err = solana.FindAssociatedTokenAddress(owner, mint); err != nil {
		return fmt.Errorf("failed to derive source token account: %w", err)
	}

	destination, _, err := solana.FindAssociatedTokenAddress(to, mint)
	if err != nil {
		return fmt.Errorf("failed to derive destination token account: %w", err)
	}

	var decimals uint8
	if req.Contract.Decimals != nil {
		decimals = uint8(*req.Contract.Decimals)
	} else {
		supply, err := h.rpc.GetTokenSupply(ctx, mint, rpc.CommitmentConfirmed)
		if err != nil {
			return apperr.Network("solana.GetTokenSupply", err)
		}
		decimals = supply.Value.Decimals
	}

	amount, err := toUint64(req.Amount, int32(decimals))
	if err != nil {
		return err
	}

	_, err = h.rpc.GetAccountInfo(ctx, destination)
	switch {
	case errors.Is(err, rpc.ErrNotFound):
		if h.assertOwner {
			tx.AddOwnerAssertion(to)
		}
		tx.AddCreateAssociatedAccount(to, mint)
	case err != nil:
		return apperr.Network("solana.GetAccountInfo", err)
	}

	tx.AddTokenTransfer(amount, decimals, source, mint, destination, owner)
	return nil
}

func (h *Handler) submit(ctx context.Context, tx *Transaction) (solana.Signature, error) {
	recent, err := h.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Signature{}, apperr.Network("solana.GetLatestBlockhash", err)
	}
	tx.SetRecentBlockhash(recent.Value.Blockhash)

	stx, err := tx.BuildAndSign()
	if err != nil {
		return solana.Signature{}, err
	}
	sig, err := h.rpc.SendTransactionWithOpts(ctx, stx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return solana.Signature{}, apperr.Network("solana.SendTransaction", err)
	}
	return sig, nil
}

func toUint64(amount string, decimals int32) (uint64, error) {
	v, err := chains.ToBaseUnits(amount, decimals)
	if err != nil {
		return 0, err
	}
	if !v.IsUint64() {
		return 0, apperr.Validation("solana.amount", "amount %s overflows u64", amount)
	}
	return v.Uint64(), nil
}

func isAccountNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, rpc.ErrNotFound) {
		return true
	}
	var rpcErr *jsonrpc.RPCError
	return errors.As(err, &rpcErr) && strings.Contains(rpcErr.Message, "could not find account")
}
