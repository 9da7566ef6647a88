package chains

import (
	"context"
	"math/big"

	"github.com/chinmay1088/omniwallet/config"
)

// KeySource exposes the wallet identity to handlers. Exactly one of the
// mnemonic and the private key is set.
type KeySource interface {
	Mnemonic() string
	PrivateKey() string
	// Seed returns the BIP-39 seed of the mnemonic.
	Seed() ([]byte, error)
}

// Account is the result of creating a wallet on one chain.
type Account struct {
	PrivateKey string `json:"privateKey"`
	Address    string `json:"address"`
	Chain      ID     `json:"chain"`
	Mnemonic   string `json:"mnemonic,omitempty"`
}

// CreateOptions tune key derivation.
type CreateOptions struct {
	// Path overrides the chain's default derivation path.
	Path string
	// Sollet selects SLIP-10 derivation for Solana instead of the legacy
	// seed-prefix key.
	Sollet bool
}

// TokenBalanceRequest describes a token balance lookup.
type TokenBalanceRequest struct {
	Contract string
	Address  string
	// Decimals is read on-chain when nil.
	Decimals *int32
	// TokenAccount is the Solana token account, derived when empty.
	TokenAccount string
}

// TokenContract identifies the token being sent.
type TokenContract struct {
	Address  string
	Decimals *int32
}

// SendRequest describes a single transfer. Zero values mean "resolve from
// the node".
type SendRequest struct {
	To       string
	Amount   string
	Contract *TokenContract
	// TokenAccount is the sender's Solana token account, derived when empty.
	TokenAccount string

	GasLimit uint64
	GasPrice *big.Int
	// Percent scales the default gas price when GasPrice is nil.
	Percent float64
	Nonce   *uint64

	// WaitDone blocks until the transfer is final or the confirmation
	// timeout fires.
	WaitDone bool
	// OnConfirm receives confirmation counts after submission.
	OnConfirm func(hash string, confirmations uint64)

	Memo string
	// Fee overrides the default fee of Cosmos chains, in base units.
	Fee string

	// Path and Sollet select the sending account the same way
	// CreateOptions does for Create.
	Path   string
	Sollet bool
}

// Account returns the derivation options of the sending account.
func (r SendRequest) Account() CreateOptions {
	return CreateOptions{Path: r.Path, Sollet: r.Sollet}
}

// SendResult is the per-item outcome of a batch send.
type SendResult struct {
	Hash string
	Err  error
}

// Handler is implemented once per chain family and instantiated per chain.
type Handler interface {
	Create(ctx context.Context, keys KeySource, opts CreateOptions) (*Account, error)
	GetBalance(ctx context.Context, address string) (string, error)
	GetTokenBalance(ctx context.Context, req TokenBalanceRequest) (string, error)
	SendFrom(ctx context.Context, keys KeySource, req SendRequest) (string, error)
}

// BatchSender is implemented by handlers that can send several transfers
// with consecutive nonces.
type BatchSender interface {
	SendBatch(ctx context.Context, keys KeySource, reqs []SendRequest) ([]SendResult, error)
}

// Factory builds the handler for one chain.
type Factory func(info Info, cfg config.Config) (Handler, error)
