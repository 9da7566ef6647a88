package avax

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/crypto/secp256k1"
	"github.com/chinmay1088/omniwallet/api"
	"github.com/chinmay1088/omniwallet/apperr"
	"github.com/chinmay1088/omniwallet/chains"
	"github.com/chinmay1088/omniwallet/config"
	"github.com/chinmay1088/omniwallet/keys"
)

const (
	testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	mainnetAVAX  = "FvwEAhmxKfeiG8SnEvq42hc6whRyY3EFYAvebMqDNDGCgxN5Z"
)

type issued struct {
	key     *secp256k1.PrivateKey
	assetID ids.ID
	to      ids.ShortID
	amount  uint64
}

type fakeIssuer struct {
	mu   sync.Mutex
	txs  []issued
	err  error
	txID string
}

func (f *fakeIssuer) IssueBaseTx(_ context.Context, key *secp256k1.PrivateKey, assetID ids.ID, to ids.ShortID, amount uint64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.txs = append(f.txs, issued{key: key, assetID: assetID, to: to, amount: amount})
	return f.txID, nil
}

// xNode is an avm JSON-RPC endpoint mounted at /ext/bc/X.
type xNode struct {
	mu       sync.Mutex
	balances map[string]string
	methods  []string
	down     bool
}

func (n *xNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != xChainPath {
		http.NotFound(w, r)
		return
	}
	if n.down {
		w.WriteHeader(http.StatusBadGateway)
		return
	}
	var call struct {
		ID     int64             `json:"id"`
		Method string            `json:"method"`
		Params map[string]string `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	n.mu.Lock()
	n.methods = append(n.methods, call.Method)
	n.mu.Unlock()

	var result any
	switch call.Method {
	case "avm.getBalance":
		bal, ok := n.balances[call.Params["address"]+"/"+call.Params["assetID"]]
		if !ok {
			bal = "0"
		}
		result = map[string]any{"balance": bal, "utxoIDs": []any{}}
	case "avm.getAssetDescription":
		result = map[string]any{"assetID": mainnetAVAX, "name": "Avalanche", "symbol": "AVAX", "denomination": "9"}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": call.ID, "result": result})
}

func (n *xNode) count(method string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, m := range n.methods {
		if m == method {
			c++
		}
	}
	return c
}

func testHandler(t *testing.T, network string, node http.Handler, issuer Issuer) *Handler {
	t.Helper()
	info, err := chains.Lookup(chains.AvaxX)
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	url := "http://127.0.0.1:0"
	if node != nil {
		srv := httptest.NewServer(node)
		t.Cleanup(srv.Close)
		url = srv.URL
	}
	cfg := config.Default()
	cfg.Network = network
	return NewHandler(info, cfg, url, api.NewClient(5*time.Second), issuer)
}

func TestCreate(t *testing.T) {
	h := testHandler(t, config.NetworkMainnet, nil, nil)
	src := keys.Static{Phrase: testMnemonic}

	acc, err := h.Create(context.Background(), src, chains.CreateOptions{})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if !strings.HasPrefix(acc.Address, "X-avax1") {
		t.Errorf("Address = %s, want X-avax1 prefix", acc.Address)
	}
	if !strings.HasPrefix(acc.PrivateKey, secp256k1.PrivateKeyPrefix) {
		t.Errorf("PrivateKey = %s, want %s prefix", acc.PrivateKey, secp256k1.PrivateKeyPrefix)
	}
	if acc.Mnemonic != testMnemonic || acc.Chain != chains.AvaxX {
		t.Errorf("Create() = %+v", acc)
	}

	again, err := h.Create(context.Background(), src, chains.CreateOptions{})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if again.Address != acc.Address {
		t.Errorf("Create() not deterministic: %s != %s", again.Address, acc.Address)
	}

	imported, err := h.Create(context.Background(), keys.Static{Key: acc.PrivateKey}, chains.CreateOptions{})
	if err != nil {
		t.Fatalf("Create(imported) error: %v", err)
	}
	if imported.Address != acc.Address {
		t.Errorf("imported Address = %s, want %s", imported.Address, acc.Address)
	}
}

func TestCreateTestnetHRP(t *testing.T) {
	mainnet := testHandler(t, config.NetworkMainnet, nil, nil)
	fuji := testHandler(t, config.NetworkTestnet, nil, nil)
	src := keys.Static{Phrase: testMnemonic}

	a, err := mainnet.Create(context.Background(), src, chains.CreateOptions{})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	b, err := fuji.Create(context.Background(), src, chains.CreateOptions{})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if !strings.HasPrefix(b.Address, "X-fuji1") {
		t.Errorf("testnet Address = %s, want X-fuji1 prefix", b.Address)
	}

	ma, _ := mainnet.ParseAddress(a.Address)
	fb, _ := fuji.ParseAddress(b.Address)
	if ma != fb {
		t.Errorf("same key gave different short ids: %s != %s", ma, fb)
	}
}

func TestCreateRequiresKey(t *testing.T) {
	h := testHandler(t, config.NetworkMainnet, nil, nil)
	_, err := h.Create(context.Background(), keys.Static{}, chains.CreateOptions{})
	if err == nil {
		t.Fatal("Create() without a key succeeded")
	}
}

func TestParseAddress(t *testing.T) {
	h := testHandler(t, config.NetworkMainnet, nil, nil)
	addr, err := h.FormatAddress(ids.ShortID{1, 2, 3})
	if err != nil {
		t.Fatalf("FormatAddress() error: %v", err)
	}

	tests := []struct {
		name    string
		address string
		wantErr bool
	}{
		{"prefixed", addr, false},
		{"bare", strings.TrimPrefix(addr, "X-"), false},
		{"p-chain", "P-" + strings.TrimPrefix(addr, "X-"), true},
		{"wrong hrp", strings.Replace(addr, "avax1", "fuji1", 1), true},
		{"garbage", "X-nope", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := h.ParseAddress(tt.address)
			if tt.wantErr {
				if !apperr.IsKind(err, apperr.KindValidation) {
					t.Errorf("ParseAddress(%q) error = %v, want validation", tt.address, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAddress() error: %v", err)
			}
			if id != (ids.ShortID{1, 2, 3}) {
				t.Errorf("ParseAddress() = %s", id)
			}
		})
	}
}

func TestGetBalance(t *testing.T) {
	node := &xNode{balances: map[string]string{}}
	h := testHandler(t, config.NetworkMainnet, node, nil)
	addr, _ := h.FormatAddress(ids.ShortID{9})
	node.balances[addr+"/AVAX"] = "1500000000"
	node.balances[addr+"/"+mainnetAVAX] = "4200"

	got, err := h.GetBalance(context.Background(), addr)
	if err != nil {
		t.Fatalf("GetBalance() error: %v", err)
	}
	if got != "1.5" {
		t.Errorf("GetBalance() = %s, want 1.5", got)
	}

	two := int32(2)
	got, err = h.GetTokenBalance(context.Background(), chains.TokenBalanceRequest{
		Contract: mainnetAVAX,
		Address:  addr,
		Decimals: &two,
	})
	if err != nil {
		t.Fatalf("GetTokenBalance() error: %v", err)
	}
	if got != "42" {
		t.Errorf("GetTokenBalance() = %s, want 42", got)
	}

	if _, err := h.GetTokenBalance(context.Background(), chains.TokenBalanceRequest{Contract: "nope", Address: addr}); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("GetTokenBalance(bad asset) error = %v, want validation", err)
	}
}

func TestGetBalanceNodeDown(t *testing.T) {
	h := testHandler(t, config.NetworkMainnet, &xNode{down: true}, nil)
	addr, _ := h.FormatAddress(ids.ShortID{9})
	_, err := h.GetBalance(context.Background(), addr)
	if !apperr.IsKind(err, apperr.KindNetwork) {
		t.Errorf("GetBalance() error = %v, want network", err)
	}
}

func TestSendFrom(t *testing.T) {
	node := &xNode{}
	issuer := &fakeIssuer{txID: "2QouvFWUbjuySRxeX5xMbNCuAaKWfbk5FeEa2JmoF85RKLk2dD"}
	h := testHandler(t, config.NetworkMainnet, node, issuer)
	src := keys.Static{Phrase: testMnemonic}
	to, _ := h.FormatAddress(ids.ShortID{7})

	acc, err := h.Create(context.Background(), src, chains.CreateOptions{})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	for _, amount := range []string{"2.5", "0.000000001"} {
		txID, err := h.SendFrom(context.Background(), src, chains.SendRequest{To: to, Amount: amount})
		if err != nil {
			t.Fatalf("SendFrom(%s) error: %v", amount, err)
		}
		if txID != issuer.txID {
			t.Errorf("SendFrom() = %s, want %s", txID, issuer.txID)
		}
	}

	if len(issuer.txs) != 2 {
		t.Fatalf("issued %d txs, want 2", len(issuer.txs))
	}
	if issuer.txs[0].amount != 2_500_000_000 || issuer.txs[1].amount != 1 {
		t.Errorf("amounts = %d, %d", issuer.txs[0].amount, issuer.txs[1].amount)
	}
	first := issuer.txs[0]
	if first.to != (ids.ShortID{7}) {
		t.Errorf("to = %s", first.to)
	}
	if first.assetID.String() != mainnetAVAX {
		t.Errorf("asset = %s, want %s", first.assetID, mainnetAVAX)
	}
	if from, _ := h.FormatAddress(first.key.PublicKey().Address()); from != acc.Address {
		t.Errorf("signed by %s, want %s", from, acc.Address)
	}
	if n := node.count("avm.getAssetDescription"); n != 1 {
		t.Errorf("asset description fetched %d times, want 1", n)
	}
}

func TestSendFromErrors(t *testing.T) {
	src := keys.Static{Phrase: testMnemonic}

	t.Run("invalid destination", func(t *testing.T) {
		h := testHandler(t, config.NetworkMainnet, &xNode{}, &fakeIssuer{})
		_, err := h.SendFrom(context.Background(), src, chains.SendRequest{To: "0xdead", Amount: "1"})
		if !apperr.IsKind(err, apperr.KindValidation) {
			t.Errorf("SendFrom() error = %v, want validation", err)
		}
	})

	t.Run("issuer failure", func(t *testing.T) {
		h := testHandler(t, config.NetworkMainnet, &xNode{}, &fakeIssuer{err: errors.New("insufficient funds")})
		to, _ := h.FormatAddress(ids.ShortID{7})
		_, err := h.SendFrom(context.Background(), src, chains.SendRequest{To: to, Amount: "1"})
		if !apperr.IsKind(err, apperr.KindNetwork) {
			t.Errorf("SendFrom() error = %v, want network", err)
		}
	})

	t.Run("missing key", func(t *testing.T) {
		h := testHandler(t, config.NetworkMainnet, &xNode{}, &fakeIssuer{})
		to, _ := h.FormatAddress(ids.ShortID{7})
		if _, err := h.SendFrom(context.Background(), keys.Static{}, chains.SendRequest{To: to, Amount: "1"}); err == nil {
			t.Error("SendFrom() without a key succeeded")
		}
	})
}
