package cosmos

import (
	"context"
	"encoding/base64"
	"fmt"
	"math/big"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/chinmay1088/omniwallet/api"
	"github.com/chinmay1088/omniwallet/apperr"
)

// BalanceRequest asks for the balance of one denom.
type BalanceRequest struct {
	Address string
	Asset   string
}

// TransferRequest is a bank send in base units. A nil Fee uses the chain
// default.
type TransferRequest struct {
	ToAddress string
	Amount    *big.Int
	Asset     string
	Key       *btcec.PrivateKey
	Memo      string
	Fee       *big.Int
}

// SubClient is the per-chain client of the Cosmos family.
type SubClient interface {
	GetBalance(ctx context.Context, req BalanceRequest) (*big.Int, error)
	Transfer(ctx context.Context, req TransferRequest) (string, error)
}

type balanceResponse struct {
	Balance struct {
		Denom  string `json:"denom"`
		Amount string `json:"amount"`
	} `json:"balance"`
}

type baseAccount struct {
	AccountNumber string `json:"account_number"`
	Sequence      string `json:"sequence"`
}

type accountResponse struct {
	Account struct {
		baseAccount
		// BaseAccount is set by chains that wrap the auth account,
		// e.g. Kava's EthAccount.
		BaseAccount *baseAccount `json:"base_account"`
	} `json:"account"`
}

type nodeInfoResponse struct {
	DefaultNodeInfo struct {
		Network string `json:"network"`
	} `json:"default_node_info"`
}

type broadcastResponse struct {
	TxResponse struct {
		TxHash string `json:"txhash"`
		Code   uint32 `json:"code"`
		RawLog string `json:"raw_log"`
	} `json:"tx_response"`
}

// RESTClient is a SubClient over the Cosmos SDK REST gateway.
type RESTClient struct {
	params  Params
	base    string
	http    *api.Client
	testnet bool

	mu      sync.Mutex
	chainID string
}

func NewRESTClient(p Params, baseURL string, httpClient *api.Client, testnet bool) *RESTClient {
	return &RESTClient{
		params:  p,
		base:    strings.TrimSuffix(baseURL, "/"),
		http:    httpClient,
		testnet: testnet,
	}
}

func (c *RESTClient) GetBalance(ctx context.Context, req BalanceRequest) (*big.Int, error) {
	asset := req.Asset
	if asset == "" {
		asset = c.params.Denom
	}
	endpoint := fmt.Sprintf("%s/cosmos/bank/v1beta1/balances/%s/by_denom?denom=%s", c.base, req.Address, url.QueryEscape(asset))

	var out balanceResponse
	if err := c.http.GetJSON(ctx, endpoint, &out); err != nil {
		if api.IsNotFound(err) {
			return big.NewInt(0), nil
		}
		return nil, err
	}
	if out.Balance.Amount == "" {
		return big.NewInt(0), nil
	}
	amount, ok := new(big.Int).SetString(out.Balance.Amount, 10)
	if !ok {
		return nil, fmt.Errorf("invalid balance amount %q", out.Balance.Amount)
	}
	return amount, nil
}

func (c *RESTClient) account(ctx context.Context, address string) (accountNumber, sequence uint64, err error) {
	var out accountResponse
	if err := c.http.GetJSON(ctx, c.base+"/cosmos/auth/v1beta1/accounts/"+address, &out); err != nil {
		if api.IsNotFound(err) {
			return 0, 0, apperr.Wrap(apperr.KindPrecondition, "cosmos.account", fmt.Errorf("account %s does not exist on chain", address))
		}
		return 0, 0, apperr.Network("cosmos.account", err)
	}

	acc := out.Account.baseAccount
	if out.Account.BaseAccount != nil {
		acc = *out.Account.BaseAccount
	}
	if accountNumber, err = parseUint(acc.AccountNumber); err != nil {
		return 0, 0, fmt.Errorf("invalid account number: %w", err)
	}
	if sequence, err = parseUint(acc.Sequence); err != nil {
		return 0, 0, fmt.Errorf("invalid sequence: %w", err)
	}
	return accountNumber, sequence, nil
}

// ChainID returns the chain id to sign for. Testnets report theirs through
// node_info.
func (c *RESTClient) ChainID(ctx context.Context) (string, error) {
	if !c.testnet {
		return c.params.ChainID, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.chainID != "" {
		return c.chainID, nil
	}
	var out nodeInfoResponse
	if err := c.http.GetJSON(ctx, c.base+"/cosmos/base/tendermint/v1beta1/node_info", &out); err != nil {
		return "", apperr.Network("cosmos.ChainID", err)
	}
	if out.DefaultNodeInfo.Network == "" {
		return "", fmt.Errorf("node did not report a chain id")
	}
	c.chainID = out.DefaultNodeInfo.Network
	return c.chainID, nil
}

func (c *RESTClient) Transfer(ctx context.Context, req TransferRequest) (string, error) {
	from, err := Address(c.params.Prefix, req.Key.PubKey())
	if err != nil {
		return "", err
	}
	accountNumber, sequence, err := c.account(ctx, from)
	if err != nil {
		return "", err
	}
	chainID, err := c.ChainID(ctx)
	if err != nil {
		return "", err
	}

	asset := req.Asset
	if asset == "" {
		asset = c.params.Denom
	}
	fee := req.Fee
	if fee == nil {
		fee = big.NewInt(c.params.Fee)
	}
	tx := SendTx{
		From:     from,
		To:       req.ToAddress,
		Amount:   Coin{Denom: asset, Amount: req.Amount},
		Fee:      Coin{Denom: c.params.Denom, Amount: fee},
		Gas:      c.params.Gas,
		Memo:     req.Memo,
		Sequence: sequence,
	}
	raw, err := tx.Sign(req.Key, chainID, accountNumber)
	if err != nil {
		return "", err
	}

	var out broadcastResponse
	err = c.http.PostJSON(ctx, c.base+"/cosmos/tx/v1beta1/txs", map[string]string{
		"tx_bytes": base64.StdEncoding.EncodeToString(raw),
		"mode":     "BROADCAST_MODE_SYNC",
	}, &out)
	if err != nil {
		return "", apperr.Network("cosmos.broadcast", err)
	}
	res := out.TxResponse
	if res.Code != 0 {
		return res.TxHash, apperr.Wrap(apperr.KindFailed, "cosmos.broadcast", fmt.Errorf("code %d: %s", res.Code, res.RawLog))
	}
	if res.TxHash == "" {
		return "", apperr.Network("cosmos.broadcast", fmt.Errorf("node returned no transaction hash"))
	}
	return res.TxHash, nil
}

func parseUint(s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseUint(s, 10, 64)
}
