// Package wallet is the entry point of the library: it owns the wallet
// identity, routes every request to the handler of the requested chain and
// fans multi-chain creation out concurrently.
package wallet

import (
	"context"
	"strings"
	"sync"

	"github.com/chinmay1088/omniwallet/apperr"
	"github.com/chinmay1088/omniwallet/chains"
	"github.com/chinmay1088/omniwallet/chains/avax"
	"github.com/chinmay1088/omniwallet/chains/cosmos"
	"github.com/chinmay1088/omniwallet/chains/evm"
	"github.com/chinmay1088/omniwallet/chains/near"
	"github.com/chinmay1088/omniwallet/chains/solana"
	"github.com/chinmay1088/omniwallet/chains/substrate"
	"github.com/chinmay1088/omniwallet/chains/tron"
	"github.com/chinmay1088/omniwallet/config"
	"github.com/chinmay1088/omniwallet/keys"
	"github.com/chinmay1088/omniwallet/log"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultFactories maps every chain family to its handler constructor.
func DefaultFactories() map[chains.Family]chains.Factory {
	return map[chains.Family]chains.Factory{
		chains.FamilyEVM:        evm.New,
		chains.FamilySolana:     solana.New,
		chains.FamilySubstrate:  substrate.New,
		chains.FamilyNear:       near.New,
		chains.FamilyTron:       tron.New,
		chains.FamilyCosmos:     cosmos.New,
		chains.FamilyAvalancheX: avax.New,
	}
}

// Option configures a Wallet.
type Option func(*Wallet)

// WithFactories replaces the handler constructors of the given families.
func WithFactories(factories map[chains.Family]chains.Factory) Option {
	return func(w *Wallet) {
		for family, f := range factories {
			w.factories[family] = f
		}
	}
}

// WithLogger sets the logger used for facade events.
func WithLogger(l zerolog.Logger) Option {
	return func(w *Wallet) {
		w.log = l
	}
}

// Wallet is safe for concurrent use.
type Wallet struct {
	cfg       config.Config
	factories map[chains.Family]chains.Factory
	log       zerolog.Logger
	handlers  *pool

	mu sync.RWMutex
	id *identity
}

// New creates a wallet without a secret. Handlers are built on first use.
func New(cfg config.Config, opts ...Option) *Wallet {
	w := &Wallet{
		cfg:       cfg,
		factories: DefaultFactories(),
		log:       log.Wallet,
		id:        &identity{},
	}
	for _, opt := range opts {
		opt(w)
	}
	w.handlers = newPool(cfg, w.factories)
	return w
}

func (w *Wallet) current() *identity {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.id
}

// SetMnemonic replaces the identity with a mnemonic. Any imported private
// key is forgotten.
func (w *Wallet) SetMnemonic(mnemonic string) error {
	if err := keys.ValidateMnemonic(mnemonic); err != nil {
		return apperr.Wrap(apperr.KindValidation, "wallet.SetMnemonic", err)
	}
	w.mu.Lock()
	w.id = &identity{mnemonic: keys.NormalizeMnemonic(mnemonic)}
	w.mu.Unlock()
	return nil
}

// SetPrivateKey replaces the identity with an imported private key in the
// format of the chain it belongs to. The mnemonic and its seed are dropped.
func (w *Wallet) SetPrivateKey(privateKey string) error {
	privateKey = strings.TrimSpace(privateKey)
	if privateKey == "" {
		return apperr.Validation("wallet.SetPrivateKey", "private key is empty")
	}
	w.mu.Lock()
	w.id = &identity{privateKey: privateKey}
	w.mu.Unlock()
	return nil
}

// Mnemonic returns the current mnemonic, or "" for a private-key identity.
func (w *Wallet) Mnemonic() string {
	return w.current().mnemonic
}

// GetSupportedChains lists the registered chains in registration order.
func (w *Wallet) GetSupportedChains() []chains.ID {
	return chains.IDs()
}

// ensureIdentity generates a 12-word mnemonic when the wallet has no secret
// yet. It runs before any fan-out so that every branch sees the same one.
func (w *Wallet) ensureIdentity() (*identity, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.id.empty() {
		return w.id, nil
	}
	mnemonic, err := keys.NewMnemonic(keys.Entropy12Words)
	if err != nil {
		return nil, err
	}
	w.id = &identity{mnemonic: mnemonic}
	w.log.Info().Msg("generated new mnemonic")
	return w.id, nil
}

// Create derives one account per requested chain. MultiChain expands to
// every registered chain. The call succeeds for all chains or fails as a
// whole; accounts are returned in request order.
func (w *Wallet) Create(ctx context.Context, ids []chains.ID, opts chains.CreateOptions) ([]*chains.Account, error) {
	defer log.Benchmark("wallet.Create")()

	targets, err := chains.Expand(ids...)
	if err != nil {
		return nil, err
	}
	id, err := w.ensureIdentity()
	if err != nil {
		return nil, err
	}

	accounts := make([]*chains.Account, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	for i, chain := range targets {
		g.Go(func() error {
			h, err := w.handlers.get(chain)
			if err != nil {
				return err
			}
			acc, err := h.Create(gctx, id, opts)
			if err != nil {
				return err
			}
			accounts[i] = acc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		w.log.Warn().Err(err).Int("chains", len(targets)).Msg("create failed")
		return nil, err
	}

	w.log.Debug().Int("chains", len(targets)).Msg("accounts created")
	return accounts, nil
}

// handler resolves a single chain. MultiChain is not a single chain.
func (w *Wallet) handler(op string, chain chains.ID) (chains.Handler, error) {
	if chain == "" || chain == chains.MultiChain {
		return nil, apperr.Validation(op, "a single chain is required")
	}
	return w.handlers.get(chain)
}

// GetBalance reads the native balance of address on chain.
func (w *Wallet) GetBalance(ctx context.Context, address string, chain chains.ID) (string, error) {
	if strings.TrimSpace(address) == "" {
		return "", apperr.Validation("wallet.GetBalance", "address is required")
	}
	h, err := w.handler("wallet.GetBalance", chain)
	if err != nil {
		return "", err
	}
	return h.GetBalance(ctx, address)
}

// GetTokenBalance reads a token balance. Without req.Decimals the handler
// reads them on-chain.
func (w *Wallet) GetTokenBalance(ctx context.Context, req chains.TokenBalanceRequest, chain chains.ID) (string, error) {
	if strings.TrimSpace(req.Address) == "" {
		return "", apperr.Validation("wallet.GetTokenBalance", "address is required")
	}
	if strings.TrimSpace(req.Contract) == "" {
		return "", apperr.Validation("wallet.GetTokenBalance", "contract is required")
	}
	h, err := w.handler("wallet.GetTokenBalance", chain)
	if err != nil {
		return "", err
	}
	return h.GetTokenBalance(ctx, req)
}

// Send submits one transfer and returns its hash. A failed submission is
// always an error.
func (w *Wallet) Send(ctx context.Context, chain chains.ID, req chains.SendRequest) (string, error) {
	if err := validateSend("wallet.Send", req); err != nil {
		return "", err
	}
	h, err := w.handler("wallet.Send", chain)
	if err != nil {
		return "", err
	}

	hash, err := h.SendFrom(ctx, w.current(), req)
	if err != nil {
		w.log.Warn().Err(err).Str("chain", string(chain)).Str("kind", string(apperr.KindOf(err))).Msg("send failed")
		return hash, err
	}
	return hash, nil
}

// SendBatch submits several transfers from the wallet with consecutive
// nonces. Only chains with nonce-ordered accounts support it.
func (w *Wallet) SendBatch(ctx context.Context, chain chains.ID, reqs []chains.SendRequest) ([]chains.SendResult, error) {
	if len(reqs) == 0 {
		return nil, apperr.Validation("wallet.SendBatch", "no transfers given")
	}
	for _, req := range reqs {
		if err := validateSend("wallet.SendBatch", req); err != nil {
			return nil, err
		}
	}
	h, err := w.handler("wallet.SendBatch", chain)
	if err != nil {
		return nil, err
	}
	bs, ok := h.(chains.BatchSender)
	if !ok {
		return nil, apperr.Validation("wallet.SendBatch", "batch sends are not supported on %s", chain)
	}
	return bs.SendBatch(ctx, w.current(), reqs)
}

func validateSend(op string, req chains.SendRequest) error {
	if strings.TrimSpace(req.To) == "" {
		return apperr.Validation(op, "destination address is required")
	}
	if strings.TrimSpace(req.Amount) == "" {
		return apperr.Validation(op, "amount is required")
	}
	return nil
}
