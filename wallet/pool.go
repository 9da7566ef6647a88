package wallet

import (
	"fmt"
	"sync"

	"github.com/chinmay1088/omniwallet/apperr"
	"github.com/chinmay1088/omniwallet/chains"
	"github.com/chinmay1088/omniwallet/config"
	"github.com/chinmay1088/omniwallet/log"
)

// pool keeps one handler per chain. Handlers are built on first use under a
// per-chain lock, so concurrent first uses build once and unrelated chains
// never wait on each other. Failed builds are retried on the next use.
type pool struct {
	cfg       config.Config
	factories map[chains.Family]chains.Factory

	mu       sync.Mutex
	handlers map[chains.ID]chains.Handler
	building map[chains.ID]*sync.Mutex
}

func newPool(cfg config.Config, factories map[chains.Family]chains.Factory) *pool {
	return &pool{
		cfg:       cfg,
		factories: factories,
		handlers:  make(map[chains.ID]chains.Handler),
		building:  make(map[chains.ID]*sync.Mutex),
	}
}

func (p *pool) cached(id chains.ID) (chains.Handler, *sync.Mutex) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if h, ok := p.handlers[id]; ok {
		return h, nil
	}
	lk, ok := p.building[id]
	if !ok {
		lk = new(sync.Mutex)
		p.building[id] = lk
	}
	return nil, lk
}

// get returns the handler of a registered chain.
func (p *pool) get(id chains.ID) (chains.Handler, error) {
	info, err := chains.Lookup(id)
	if err != nil {
		return nil, err
	}

	h, lk := p.cached(id)
	if h != nil {
		return h, nil
	}
	lk.Lock()
	defer lk.Unlock()

	// Another caller may have finished the build while we waited.
	if h, _ := p.cached(id); h != nil {
		return h, nil
	}

	factory, ok := p.factories[info.Family]
	if !ok {
		return nil, apperr.Unsupported("wallet.handler", string(id))
	}
	h, err = factory(info, p.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s handler: %w", id, err)
	}

	p.mu.Lock()
	p.handlers[id] = h
	p.mu.Unlock()

	log.Wallet.Debug().Str("chain", string(id)).Str("family", info.Family.String()).Msg("handler ready")
	return h, nil
}
