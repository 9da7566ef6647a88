package tron

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chinmay1088/omniwallet/api"
)

// Transaction is an unsigned or signed transaction as returned by the full
// node. RawData is passed through untouched.
type Transaction struct {
	TxID       string          `json:"txID"`
	RawData    json.RawMessage `json:"raw_data"`
	RawDataHex string          `json:"raw_data_hex"`
	Visible    bool            `json:"visible"`
	Signature  []string        `json:"signature,omitempty"`

	// Error is set by createtransaction on failure.
	Error string `json:"Error,omitempty"`
}

type accountResponse struct {
	Address string `json:"address"`
	Balance int64  `json:"balance"`
}

type returnStatus struct {
	Result  bool   `json:"result"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// message decodes the hex-encoded message the node returns on failure.
func (r returnStatus) message() string {
	if b, err := hex.DecodeString(r.Message); err == nil {
		return string(b)
	}
	return r.Message
}

type triggerResponse struct {
	Result         returnStatus `json:"result"`
	ConstantResult []string     `json:"constant_result"`
	Transaction    *Transaction `json:"transaction"`
}

type broadcastResponse struct {
	returnStatus
	TxID string `json:"txid"`
}

// client calls the full node HTTP API.
type client struct {
	base string
	http *api.Client
}

func (c *client) post(ctx context.Context, path string, payload, out any) error {
	return c.http.PostJSON(ctx, strings.TrimSuffix(c.base, "/")+path, payload, out)
}

func (c *client) getAccount(ctx context.Context, address string) (*accountResponse, error) {
	var out accountResponse
	err := c.post(ctx, "/wallet/getaccount", map[string]any{
		"address": address,
		"visible": true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) triggerConstant(ctx context.Context, owner, contract, selector, parameter string) ([]byte, error) {
	var out triggerResponse
	err := c.post(ctx, "/wallet/triggerconstantcontract", map[string]any{
		"owner_address":     owner,
		"contract_address":  contract,
		"function_selector": selector,
		"parameter":         parameter,
		"visible":           true,
	}, &out)
	if err != nil {
		return nil, err
	}
	if !out.Result.Result || len(out.ConstantResult) == 0 {
		return nil, fmt.Errorf("%s reverted: %s", selector, out.Result.message())
	}
	return hex.DecodeString(out.ConstantResult[0])
}

func (c *client) createTransaction(ctx context.Context, from, to string, amount int64) (*Transaction, error) {
	var tx Transaction
	err := c.post(ctx, "/wallet/createtransaction", map[string]any{
		"owner_address": from,
		"to_address":    to,
		"amount":        amount,
		"visible":       true,
	}, &tx)
	if err != nil {
		return nil, err
	}
	if tx.Error != "" {
		return nil, fmt.Errorf("createtransaction: %s", tx.Error)
	}
	return &tx, nil
}

func (c *client) triggerSmartContract(ctx context.Context, owner, contract, selector, parameter string, feeLimit int64) (*Transaction, error) {
	var out triggerResponse
	err := c.post(ctx, "/wallet/triggersmartcontract", map[string]any{
		"owner_address":     owner,
		"contract_address":  contract,
		"function_selector": selector,
		"parameter":         parameter,
		"fee_limit":         feeLimit,
		"call_value":        0,
		"visible":           true,
	}, &out)
	if err != nil {
		return nil, err
	}
	if !out.Result.Result || out.Transaction == nil {
		return nil, fmt.Errorf("triggersmartcontract: %s", out.Result.message())
	}
	return out.Transaction, nil
}

func (c *client) broadcast(ctx context.Context, tx *Transaction) (*broadcastResponse, error) {
	var out broadcastResponse
	if err := c.post(ctx, "/wallet/broadcasttransaction", tx, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
