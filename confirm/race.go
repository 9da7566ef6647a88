// Package confirm decides when a submitted transaction is settled. Several
// waiters (a push subscription, a poller) race against a hard timeout and the
// first one to settle decides the outcome for everybody.
package confirm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chinmay1088/omniwallet/apperr"
)

// ErrAbstain is returned by a waiter that cannot take part in the race, for
// example a subscription that failed to connect. It never settles the race.
var ErrAbstain = errors.New("confirm: waiter abstained")

// Waiter is one participant of a race. Wait must return when ctx is done.
type Waiter[T any] struct {
	Name string
	Wait func(ctx context.Context) (T, error)
}

// Outcome is the settled result of a race.
type Outcome[T any] struct {
	Value T
	// Source names the waiter that decided the race.
	Source string
}

type settle[T any] struct {
	value  T
	err    error
	source string
}

// Race runs every waiter concurrently and returns the first settled result.
// A waiter returning an error other than ErrAbstain settles the race with
// that error. When all waiters abstain the race is only decided by the
// timeout or by ctx.
func Race[T any](ctx context.Context, timeout time.Duration, waiters ...Waiter[T]) (Outcome[T], error) {
	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan settle[T], len(waiters))
	for _, w := range waiters {
		go func(w Waiter[T]) {
			v, err := w.Wait(raceCtx)
			results <- settle[T]{value: v, err: err, source: w.Name}
		}(w)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case r := <-results:
			if errors.Is(r.err, ErrAbstain) {
				continue
			}
			// A waiter that returned because we're shutting down does not
			// decide anything.
			if r.err != nil && raceCtx.Err() != nil {
				continue
			}
			if r.err != nil {
				return Outcome[T]{Source: r.source}, r.err
			}
			return Outcome[T]{Value: r.value, Source: r.source}, nil
		case <-timer.C:
			return Outcome[T]{Source: "timeout"}, apperr.Timeout("confirm.Race", fmt.Errorf("not settled after %s", timeout))
		case <-ctx.Done():
			return Outcome[T]{}, ctx.Err()
		}
	}
}

// Poll builds a waiter that calls fn every interval until it reports done or
// fails. Transient failures should be swallowed by fn, returning done=false.
func Poll[T any](name string, interval time.Duration, fn func(ctx context.Context) (T, bool, error)) Waiter[T] {
	return Waiter[T]{
		Name: name,
		Wait: func(ctx context.Context) (T, error) {
			var zero T
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				v, done, err := fn(ctx)
				if err != nil {
					return zero, err
				}
				if done {
					return v, nil
				}
				select {
				case <-ctx.Done():
					return zero, ctx.Err()
				case <-ticker.C:
				}
			}
		},
	}
}
