package wallet

import (
	"context"

	"github.com/chinmay1088/omniwallet/chains"
)

// Callback receives the outcome of a call in addition to its return value.
type Callback[T any] func(result T, err error)

// WithCallback forwards a result to cb, when set, and returns it unchanged:
//
//	return WithCallback(cb)(w.Send(ctx, chain, req))
func WithCallback[T any](cb Callback[T]) func(T, error) (T, error) {
	return func(v T, err error) (T, error) {
		if cb != nil {
			cb(v, err)
		}
		return v, err
	}
}

// CreateWithCallback is Create, also reporting its result to cb.
func (w *Wallet) CreateWithCallback(ctx context.Context, ids []chains.ID, opts chains.CreateOptions, cb Callback[[]*chains.Account]) ([]*chains.Account, error) {
	return WithCallback(cb)(w.Create(ctx, ids, opts))
}

// GetBalanceWithCallback is GetBalance, also reporting its result to cb.
func (w *Wallet) GetBalanceWithCallback(ctx context.Context, address string, chain chains.ID, cb Callback[string]) (string, error) {
	return WithCallback(cb)(w.GetBalance(ctx, address, chain))
}

// GetTokenBalanceWithCallback is GetTokenBalance, also reporting its result to cb.
func (w *Wallet) GetTokenBalanceWithCallback(ctx context.Context, req chains.TokenBalanceRequest, chain chains.ID, cb Callback[string]) (string, error) {
	return WithCallback(cb)(w.GetTokenBalance(ctx, req, chain))
}

// SendWithCallback is Send, also reporting its result to cb.
func (w *Wallet) SendWithCallback(ctx context.Context, chain chains.ID, req chains.SendRequest, cb Callback[string]) (string, error) {
	return WithCallback(cb)(w.Send(ctx, chain, req))
}

// SendBatchWithCallback is SendBatch, also reporting its result to cb.
func (w *Wallet) SendBatchWithCallback(ctx context.Context, chain chains.ID, reqs []chains.SendRequest, cb Callback[[]chains.SendResult]) ([]chains.SendResult, error) {
	return WithCallback(cb)(w.SendBatch(ctx, chain, reqs))
}

// SetMnemonicWithCallback is SetMnemonic. cb receives the normalized mnemonic.
func (w *Wallet) SetMnemonicWithCallback(mnemonic string, cb Callback[string]) (string, error) {
	if err := w.SetMnemonic(mnemonic); err != nil {
		return WithCallback(cb)(mnemonic, err)
	}
	return WithCallback(cb)(w.Mnemonic(), nil)
}

// SetPrivateKeyWithCallback is SetPrivateKey. cb receives the stored key.
func (w *Wallet) SetPrivateKeyWithCallback(privateKey string, cb Callback[string]) (string, error) {
	return WithCallback(cb)(privateKey, w.SetPrivateKey(privateKey))
}
