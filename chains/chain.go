// Package chains holds the chain registry and the contract every chain
// family handler implements.
package chains

import (
	"fmt"
	"strings"
	"sync"

	"github.com/chinmay1088/omniwallet/apperr"
)

// ID identifies a supported blockchain.
type ID string

// Chain identifiers.
const (
	Ether        ID = "ether"
	BinanceSmart ID = "binanceSmart"
	Binance      ID = "binance"
	Heco         ID = "heco"
	Avax         ID = "avax"
	AvaxX        ID = "avaxX"
	Tomo         ID = "tomo"
	Celo         ID = "celo"
	Fantom       ID = "fantom"
	Matic        ID = "matic"
	Solana       ID = "solana"
	Polkadot     ID = "polkadot"
	Kusama       ID = "kusama"
	Near         ID = "near"
	Tron         ID = "tron"
	Cosmos       ID = "cosmos"
	Thor         ID = "thor"
	Terra        ID = "terra"
	Kava         ID = "kava"
	Band         ID = "band"
	Persistence  ID = "persistence"

	// MultiChain expands to every registered chain. It is never registered.
	MultiChain ID = "multiChain"
)

func (id ID) String() string { return string(id) }

// Family groups chains that share a handler implementation.
type Family int

const (
	FamilyEVM Family = iota + 1
	FamilySolana
	FamilySubstrate
	FamilyNear
	FamilyTron
	FamilyCosmos
	FamilyAvalancheX
)

func (f Family) String() string {
	switch f {
	case FamilyEVM:
		return "evm"
	case FamilySolana:
		return "solana"
	case FamilySubstrate:
		return "substrate"
	case FamilyNear:
		return "near"
	case FamilyTron:
		return "tron"
	case FamilyCosmos:
		return "cosmos"
	case FamilyAvalancheX:
		return "avalanche-x"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// Info describes a registered chain.
type Info struct {
	ID       ID
	Family   Family
	Symbol   string
	Decimals int32
	// CoinType is the SLIP-44 coin type.
	CoinType uint32
	// Path is the default derivation path template.
	Path string
	// CoinGeckoID is used for fiat prices.
	CoinGeckoID string
}

var (
	registryMu sync.RWMutex
	registry   = map[ID]*Info{}
	order      []ID
)

// Register adds a chain to the registry. Registering the same ID twice
// panics.
func Register(info Info) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if info.ID == "" || info.ID == MultiChain {
		panic(fmt.Sprintf("chains: invalid chain id %q", info.ID))
	}
	if _, exists := registry[info.ID]; exists {
		panic(fmt.Sprintf("chains: duplicate registration of %s", info.ID))
	}
	cp := info
	registry[info.ID] = &cp
	order = append(order, info.ID)
}

// Lookup returns the registered chain, failing closed for unknown ids.
func Lookup(id ID) (Info, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	info, ok := registry[id]
	if !ok {
		return Info{}, apperr.Unsupported("chains.Lookup", string(id))
	}
	return *info, nil
}

// All returns every registered chain in registration order.
func All() []Info {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]Info, 0, len(order))
	for _, id := range order {
		out = append(out, *registry[id])
	}
	return out
}

// IDs returns every registered chain id in registration order.
func IDs() []ID {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]ID, len(order))
	copy(out, order)
	return out
}

// Expand validates every requested id and resolves MultiChain to all
// registered chains. Nothing is returned unless every id is valid.
func Expand(ids ...ID) ([]ID, error) {
	if len(ids) == 0 {
		return nil, apperr.Validation("chains.Expand", "no chain given")
	}

	multi := false
	for _, id := range ids {
		if id == MultiChain {
			multi = true
			continue
		}
		if _, err := Lookup(id); err != nil {
			return nil, apperr.Validation("chains.Expand", "some chains are not supported: %s", id)
		}
	}

	if multi {
		all := IDs()
		if len(all) == 0 {
			return nil, apperr.Validation("chains.Expand", "no chains registered")
		}
		return all, nil
	}

	seen := make(map[ID]bool, len(ids))
	out := make([]ID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out, nil
}

var aliases = map[string]ID{
	"eth":     Ether,
	"bsc":     BinanceSmart,
	"bnb":     Binance,
	"sol":     Solana,
	"dot":     Polkadot,
	"ksm":     Kusama,
	"atom":    Cosmos,
	"trx":     Tron,
	"ftm":     Fantom,
	"polygon": Matic,
	"all":     MultiChain,
}

// ParseID resolves user input to a chain id, case-insensitively, accepting
// common ticker aliases.
func ParseID(s string) (ID, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if id, ok := aliases[key]; ok {
		return id, nil
	}
	if key == strings.ToLower(string(MultiChain)) {
		return MultiChain, nil
	}

	registryMu.RLock()
	defer registryMu.RUnlock()
	for _, id := range order {
		if strings.ToLower(string(id)) == key {
			return id, nil
		}
	}
	return "", apperr.Unsupported("chains.ParseID", s)
}
