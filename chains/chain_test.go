package chains

import (
	"testing"

	"github.com/chinmay1088/omniwallet/apperr"
)

func TestRegistryHasAllChains(t *testing.T) {
	want := []ID{
		Ether, BinanceSmart, Heco, Avax, AvaxX, Tomo, Binance, Celo, Fantom, Matic,
		Solana, Polkadot, Kusama, Near, Tron,
		Cosmos, Thor, Terra, Kava, Band, Persistence,
	}
	got := IDs()
	if len(got) != len(want) {
		t.Fatalf("IDs() = %d chains, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("IDs()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestLookupUnknown(t *testing.T) {
	for _, id := range []ID{"dogecoin", MultiChain, ""} {
		_, err := Lookup(id)
		if !apperr.IsKind(err, apperr.KindUnsupported) {
			t.Errorf("Lookup(%q) error = %v, want unsupported", id, err)
		}
		if apperr.IsKind(err, apperr.KindNetwork) {
			t.Errorf("Lookup(%q) reported a network error", id)
		}
	}
}

func TestLookupParams(t *testing.T) {
	tests := []struct {
		id       ID
		family   Family
		decimals int32
	}{
		{Ether, FamilyEVM, 18},
		{Binance, FamilyEVM, 18},
		{Solana, FamilySolana, 9},
		{Polkadot, FamilySubstrate, 10},
		{Kusama, FamilySubstrate, 12},
		{Near, FamilyNear, 24},
		{Tron, FamilyTron, 6},
		{Thor, FamilyCosmos, 8},
		{AvaxX, FamilyAvalancheX, 9},
	}
	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			info, err := Lookup(tt.id)
			if err != nil {
				t.Fatalf("Lookup() error: %v", err)
			}
			if info.Family != tt.family {
				t.Errorf("family = %s, want %s", info.Family, tt.family)
			}
			if info.Decimals != tt.decimals {
				t.Errorf("decimals = %d, want %d", info.Decimals, tt.decimals)
			}
		})
	}
}

func TestExpand(t *testing.T) {
	all, err := Expand(MultiChain)
	if err != nil {
		t.Fatalf("Expand(multiChain) error: %v", err)
	}
	if len(all) != len(IDs()) {
		t.Errorf("Expand(multiChain) = %d chains, want %d", len(all), len(IDs()))
	}

	got, err := Expand(Solana, Ether, Solana)
	if err != nil {
		t.Fatalf("Expand() error: %v", err)
	}
	if len(got) != 2 || got[0] != Solana || got[1] != Ether {
		t.Errorf("Expand() = %v, want [solana ether]", got)
	}

	if _, err := Expand(); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("Expand() error = %v, want validation", err)
	}
	if _, err := Expand(Ether, "dogecoin"); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("Expand(ether, dogecoin) error = %v, want validation", err)
	}
	if _, err := Expand(MultiChain, "dogecoin"); err == nil {
		t.Error("Expand(multiChain, dogecoin) should fail")
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in   string
		want ID
	}{
		{"ether", Ether},
		{"ETH", Ether},
		{"bsc", BinanceSmart},
		{"BinanceSmart", BinanceSmart},
		{"sol", Solana},
		{"all", MultiChain},
		{"multichain", MultiChain},
		{" avaxx ", AvaxX},
	}
	for _, tt := range tests {
		got, err := ParseID(tt.in)
		if err != nil {
			t.Errorf("ParseID(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseID(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
	if _, err := ParseID("bitcoin"); !apperr.IsKind(err, apperr.KindUnsupported) {
		t.Errorf("ParseID(bitcoin) error = %v, want unsupported", err)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Register() did not panic on a duplicate id")
		}
	}()
	Register(Info{ID: Ether, Family: FamilyEVM})
}
