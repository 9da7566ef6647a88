package evm

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// DefaultTokenDecimals is assumed when a token does not answer decimals().
const DefaultTokenDecimals = 18

const erc20ABIJSON = `[
	{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"type":"function"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"type":"function"},
	{"constant":false,"inputs":[{"name":"_to","type":"address"},{"name":"_value","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"type":"function"}
]`

var erc20ABI = mustParseABI(erc20ABIJSON)

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(fmt.Sprintf("evm: invalid erc20 abi: %v", err))
	}
	return parsed
}

// TransferData returns the calldata of transfer(to, amount).
func TransferData(to common.Address, amount *big.Int) ([]byte, error) {
	return erc20ABI.Pack("transfer", to, amount)
}

// TokenBalance calls balanceOf(owner) on the token contract.
func TokenBalance(ctx context.Context, node Node, token, owner common.Address) (*big.Int, error) {
	data, err := erc20ABI.Pack("balanceOf", owner)
	if err != nil {
		return nil, err
	}
	out, err := node.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return nil, err
	}
	values, err := erc20ABI.Unpack("balanceOf", out)
	if err != nil {
		return nil, fmt.Errorf("failed to decode balanceOf: %w", err)
	}
	balance, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected balanceOf result %T", values[0])
	}
	return balance, nil
}

// TokenDecimals calls decimals() on the token contract, falling back to 18.
func TokenDecimals(ctx context.Context, node Node, token common.Address) int32 {
	data, err := erc20ABI.Pack("decimals")
	if err != nil {
		return DefaultTokenDecimals
	}
	out, err := node.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil || len(out) == 0 {
		return DefaultTokenDecimals
	}
	values, err := erc20ABI.Unpack("decimals", out)
	if err != nil || len(values) == 0 {
		return DefaultTokenDecimals
	}
	d, ok := values[0].(uint8)
	if !ok {
		return DefaultTokenDecimals
	}
	return int32(d)
}
