package api

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// PriceData represents cryptocurrency price information
type PriceData struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"current_price"`
	USD    decimal.Decimal `json:"usd"`
}

// GasLevels is a gas station answer in gwei.
type GasLevels struct {
	Lowest   decimal.Decimal `json:"lowest"`
	Low      decimal.Decimal `json:"low"`
	Standard decimal.Decimal `json:"standard"`
	Fast     decimal.Decimal `json:"fast"`
	Fastest  decimal.Decimal `json:"fastest"`
	GasWar   decimal.Decimal `json:"gaswar"`
	StarWar  decimal.Decimal `json:"starwar"`
}

// RPCRequest is a JSON-RPC 2.0 request.
type RPCRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
	ID      int64  `json:"id"`
}

// RPCResponse is a JSON-RPC 2.0 response.
type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is returned when the node responds with an error. Name and Cause
// are filled by nodes that report structured errors (Near).
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Name    string          `json:"name,omitempty"`
	Cause   *RPCErrorCause  `json:"cause,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// RPCErrorCause is the structured cause of an RPC error.
type RPCErrorCause struct {
	Name string          `json:"name"`
	Info json.RawMessage `json:"info,omitempty"`
}

func (e *RPCError) Error() string {
	if e.Cause != nil && e.Cause.Name != "" {
		return fmt.Sprintf("RPC error %d: %s (%s)", e.Code, e.Message, e.Cause.Name)
	}
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// CauseName returns the structured cause name, if any.
func (e *RPCError) CauseName() string {
	if e.Cause == nil {
		return ""
	}
	return e.Cause.Name
}
