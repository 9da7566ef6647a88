package substrate

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	gsrpc "github.com/centrifuge/go-substrate-rpc-client/v4"
	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
)

// Client reads balances and submits transfers on a Substrate chain.
type Client interface {
	// FreeBalance returns the free balance of the account. found is false
	// when the chain has no record of the account.
	FreeBalance(ctx context.Context, accountID []byte) (balance *big.Int, found bool, err error)
	// Transfer submits Balances.transfer_keep_alive and returns the
	// extrinsic hash.
	Transfer(ctx context.Context, from signature.KeyringPair, dest []byte, amount *big.Int) (string, error)
}

// RPCClient is a Client over a node websocket. It connects on first use.
type RPCClient struct {
	url string

	mu  sync.Mutex
	api *gsrpc.SubstrateAPI
}

func NewRPCClient(url string) *RPCClient {
	return &RPCClient{url: url}
}

func (c *RPCClient) conn(ctx context.Context) (*gsrpc.SubstrateAPI, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.api != nil {
		return c.api, nil
	}
	api, err := gsrpc.NewSubstrateAPI(c.url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", c.url, err)
	}
	c.api = api
	return api, nil
}

func (c *RPCClient) accountInfo(api *gsrpc.SubstrateAPI, meta *types.Metadata, accountID []byte) (types.AccountInfo, bool, error) {
	var info types.AccountInfo
	key, err := types.CreateStorageKey(meta, "System", "Account", accountID)
	if err != nil {
		return info, false, fmt.Errorf("failed to create storage key: %w", err)
	}
	ok, err := api.RPC.State.GetStorageLatest(key, &info)
	if err != nil {
		return info, false, err
	}
	return info, ok, nil
}

func (c *RPCClient) FreeBalance(ctx context.Context, accountID []byte) (*big.Int, bool, error) {
	api, err := c.conn(ctx)
	if err != nil {
		return nil, false, err
	}
	meta, err := api.RPC.State.GetMetadataLatest()
	if err != nil {
		return nil, false, err
	}
	info, ok, err := c.accountInfo(api, meta, accountID)
	if err != nil || !ok {
		return big.NewInt(0), ok, err
	}
	return info.Data.Free.Int, true, nil
}

func (c *RPCClient) Transfer(ctx context.Context, from signature.KeyringPair, dest []byte, amount *big.Int) (string, error) {
	api, err := c.conn(ctx)
	if err != nil {
		return "", err
	}
	meta, err := api.RPC.State.GetMetadataLatest()
	if err != nil {
		return "", err
	}

	to, err := types.NewMultiAddressFromAccountID(dest)
	if err != nil {
		return "", fmt.Errorf("invalid destination: %w", err)
	}
	call, err := types.NewCall(meta, "Balances.transfer_keep_alive", to, types.NewUCompact(amount))
	if err != nil {
		return "", fmt.Errorf("failed to build call: %w", err)
	}
	ext := types.NewExtrinsic(call)

	genesisHash, err := api.RPC.Chain.GetBlockHash(0)
	if err != nil {
		return "", err
	}
	rv, err := api.RPC.State.GetRuntimeVersionLatest()
	if err != nil {
		return "", err
	}
	info, _, err := c.accountInfo(api, meta, from.PublicKey)
	if err != nil {
		return "", err
	}

	opts := types.SignatureOptions{
		BlockHash:          genesisHash,
		Era:                types.ExtrinsicEra{IsMortalEra: false},
		GenesisHash:        genesisHash,
		Nonce:              types.NewUCompactFromUInt(uint64(info.Nonce)),
		SpecVersion:        rv.SpecVersion,
		Tip:                types.NewUCompactFromUInt(0),
		TransactionVersion: rv.TransactionVersion,
	}
	if err := ext.Sign(from, opts); err != nil {
		return "", fmt.Errorf("failed to sign extrinsic: %w", err)
	}

	hash, err := api.RPC.Author.SubmitExtrinsic(ext)
	if err != nil {
		return "", err
	}
	return hash.Hex(), nil
}
