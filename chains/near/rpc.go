package near

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/chinmay1088/omniwallet/api"
)

// errUnknownAccount marks the node's authoritative "no such account" answer.
var errUnknownAccount = errors.New("unknown account")

type accountView struct {
	Amount    string `json:"amount"`
	BlockHash string `json:"block_hash"`
}

type accessKeyView struct {
	Nonce     uint64 `json:"nonce"`
	BlockHash string `json:"block_hash"`
}

// callResult carries the raw bytes of a view call as a JSON number array.
type callResult struct {
	Result []int `json:"result"`
}

func (r callResult) bytes() []byte {
	b := make([]byte, len(r.Result))
	for i, v := range r.Result {
		b[i] = byte(v)
	}
	return b
}

type executionOutcome struct {
	Status      map[string]json.RawMessage `json:"status"`
	Transaction struct {
		Hash string `json:"hash"`
	} `json:"transaction"`
}

// rpcClient speaks the Near JSON-RPC API.
type rpcClient struct {
	url  string
	http *api.Client
}

func (c *rpcClient) query(ctx context.Context, params map[string]any, out any) error {
	params["finality"] = "final"
	err := c.http.Call(ctx, c.url, "query", params, out)
	var rpcErr *api.RPCError
	if errors.As(err, &rpcErr) {
		if rpcErr.CauseName() == "UNKNOWN_ACCOUNT" || strings.Contains(string(rpcErr.Data), "does not exist while viewing") {
			return fmt.Errorf("%w: %v", errUnknownAccount, err)
		}
	}
	return err
}

func (c *rpcClient) viewAccount(ctx context.Context, accountID string) (*accountView, error) {
	var out accountView
	err := c.query(ctx, map[string]any{
		"request_type": "view_account",
		"account_id":   accountID,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *rpcClient) viewAccessKey(ctx context.Context, accountID, publicKey string) (*accessKeyView, error) {
	var out accessKeyView
	err := c.query(ctx, map[string]any{
		"request_type": "view_access_key",
		"account_id":   accountID,
		"public_key":   publicKey,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// callView runs a read-only contract method and decodes its JSON result.
func (c *rpcClient) callView(ctx context.Context, contract, method string, args any, out any) error {
	rawArgs, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("failed to encode args: %w", err)
	}
	var res callResult
	err = c.query(ctx, map[string]any{
		"request_type": "call_function",
		"account_id":   contract,
		"method_name":  method,
		"args_base64":  base64.StdEncoding.EncodeToString(rawArgs),
	}, &res)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(res.bytes(), out); err != nil {
		return fmt.Errorf("failed to decode %s result: %w", method, err)
	}
	return nil
}

func (c *rpcClient) broadcastCommit(ctx context.Context, signed []byte) (*executionOutcome, error) {
	var out executionOutcome
	params := []string{base64.StdEncoding.EncodeToString(signed)}
	if err := c.http.Call(ctx, c.url, "broadcast_tx_commit", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
