package evm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chinmay1088/omniwallet/apperr"
	"github.com/chinmay1088/omniwallet/confirm"
	"github.com/chinmay1088/omniwallet/log"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// trackDuration bounds how long a confirmation tracker keeps polling.
const trackDuration = 30 * time.Minute

// receiptWaiter polls for the receipt of hash. A missing receipt is not an
// error; a node failure is retried on the next tick.
func receiptWaiter(node Node, hash common.Hash, interval time.Duration) confirm.Waiter[*types.Receipt] {
	return confirm.Poll("receipt", interval, func(ctx context.Context) (*types.Receipt, bool, error) {
		receipt, err := node.TransactionReceipt(ctx, hash)
		if errors.Is(err, ethereum.NotFound) {
			return nil, false, nil
		}
		if err != nil {
			log.EVM.Debug().Err(err).Str("tx", hash.Hex()).Msg("receipt poll failed")
			return nil, false, nil
		}
		return receipt, true, nil
	})
}

// WaitMined blocks until hash has a receipt or timeout expires. A reverted
// transaction is reported as failed.
func WaitMined(ctx context.Context, node Node, hash common.Hash, interval, timeout time.Duration) (*types.Receipt, error) {
	out, err := confirm.Race(ctx, timeout, receiptWaiter(node, hash, interval))
	if err != nil {
		return nil, err
	}
	receipt := out.Value
	if receipt.Status == types.ReceiptStatusFailed {
		return receipt, apperr.Wrap(apperr.KindFailed, "evm.WaitMined", fmt.Errorf("transaction %s reverted", hash.Hex()))
	}
	return receipt, nil
}

// Track reports the confirmation count of hash to fn until it reaches
// target. It runs until then, trackDuration, or ctx is done.
func Track(ctx context.Context, node Node, hash common.Hash, interval time.Duration, target uint64, fn func(hash string, confirmations uint64)) {
	ctx, cancel := context.WithTimeout(ctx, trackDuration)
	defer cancel()

	var last uint64
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		receipt, err := node.TransactionReceipt(ctx, hash)
		if err != nil || receipt == nil || receipt.BlockNumber == nil {
			continue
		}
		head, err := node.BlockNumber(ctx)
		if err != nil {
			continue
		}
		mined := receipt.BlockNumber.Uint64()
		if head < mined {
			continue
		}
		confirmations := head - mined + 1
		if confirmations != last {
			last = confirmations
			fn(hash.Hex(), confirmations)
		}
		if confirmations >= target {
			return
		}
	}
}
