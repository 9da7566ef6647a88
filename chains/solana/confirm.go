package solana

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chinmay1088/omniwallet/apperr"
	"github.com/chinmay1088/omniwallet/confirm"
	"github.com/chinmay1088/omniwallet/log"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
)

// Watcher pushes the final status of a signature. A nil txErr means the
// transaction succeeded.
type Watcher interface {
	Watch(ctx context.Context, sig solana.Signature) (txErr any, err error)
}

// WSWatcher subscribes to signature notifications over a websocket.
type WSWatcher struct {
	URL string
}

func (w WSWatcher) Watch(ctx context.Context, sig solana.Signature) (any, error) {
	client, err := ws.Connect(ctx, w.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", confirm.ErrAbstain, err)
	}
	defer client.Close()

	sub, err := client.SignatureSubscribe(sig, rpc.CommitmentConfirmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", confirm.ErrAbstain, err)
	}
	defer sub.Unsubscribe()

	res, err := sub.Recv(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", confirm.ErrAbstain, err)
	}
	return res.Value.Err, nil
}

type statusFetcher interface {
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, transactionSignatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
}

// Settled is the result of a confirmation race.
type Settled struct {
	Status *rpc.SignatureStatusesResult
	Source string
}

func txFailed(sig solana.Signature, txErr any) error {
	return apperr.Wrap(apperr.KindFailed, "solana.confirm", fmt.Errorf("transaction %s failed: %v", sig, txErr))
}

// pushWaiter settles when the websocket notification arrives. Only a
// notification decides; a broken subscription leaves the race to the poller.
func pushWaiter(w Watcher, sig solana.Signature) confirm.Waiter[*rpc.SignatureStatusesResult] {
	return confirm.Waiter[*rpc.SignatureStatusesResult]{
		Name: "push",
		Wait: func(ctx context.Context) (*rpc.SignatureStatusesResult, error) {
			txErr, err := w.Watch(ctx, sig)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				log.Solana.Debug().Err(err).Str("tx", sig.String()).Msg("signature subscription dropped")
				if !errors.Is(err, confirm.ErrAbstain) {
					err = fmt.Errorf("%w: %v", confirm.ErrAbstain, err)
				}
				return nil, err
			}
			if txErr != nil {
				return nil, txFailed(sig, txErr)
			}
			return &rpc.SignatureStatusesResult{ConfirmationStatus: rpc.ConfirmationStatusConfirmed}, nil
		},
	}
}

// pollWaiter settles on the first terminal status: an error, a rooted
// transaction (no confirmation count), or a confirmed or finalized status.
func pollWaiter(node statusFetcher, sig solana.Signature, interval time.Duration) confirm.Waiter[*rpc.SignatureStatusesResult] {
	return confirm.Poll("poll", interval, func(ctx context.Context) (*rpc.SignatureStatusesResult, bool, error) {
		out, err := node.GetSignatureStatuses(ctx, false, sig)
		if err != nil {
			log.Solana.Debug().Err(err).Str("tx", sig.String()).Msg("status poll failed")
			return nil, false, nil
		}
		if out == nil || len(out.Value) == 0 || out.Value[0] == nil {
			return nil, false, nil
		}
		status := out.Value[0]
		switch {
		case status.Err != nil:
			return nil, true, txFailed(sig, status.Err)
		case status.Confirmations == nil:
			return status, true, nil
		case status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed,
			status.ConfirmationStatus == rpc.ConfirmationStatusFinalized:
			return status, true, nil
		}
		return nil, false, nil
	})
}

// AwaitConfirmation races the websocket subscription against status polling
// and a hard timeout. Exactly one of them decides.
func AwaitConfirmation(ctx context.Context, node statusFetcher, w Watcher, sig solana.Signature, interval, timeout time.Duration) (Settled, error) {
	waiters := []confirm.Waiter[*rpc.SignatureStatusesResult]{pollWaiter(node, sig, interval)}
	if w != nil {
		waiters = append([]confirm.Waiter[*rpc.SignatureStatusesResult]{pushWaiter(w, sig)}, waiters...)
	}

	out, err := confirm.Race(ctx, timeout, waiters...)
	log.Solana.Info().
		Str("tx", sig.String()).
		Str("source", out.Source).
		Err(err).
		Msg("confirmation settled")
	return Settled{Status: out.Value, Source: out.Source}, err
}
