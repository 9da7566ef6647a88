package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/chinmay1088/omniwallet/apperr"
	"github.com/chinmay1088/omniwallet/chains"
	"github.com/chinmay1088/omniwallet/config"
	"github.com/rs/zerolog"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

type fakeHandler struct {
	info      chains.Info
	createErr error
	sendErr   error

	mu    sync.Mutex
	sends []chains.SendRequest
	srcs  []chains.KeySource
}

func (f *fakeHandler) Create(ctx context.Context, src chains.KeySource, opts chains.CreateOptions) (*chains.Account, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if src.Mnemonic() == "" && src.PrivateKey() == "" {
		return nil, apperr.MnemonicMissing("fake.Create")
	}
	return &chains.Account{
		Address:  "addr-" + string(f.info.ID),
		Chain:    f.info.ID,
		Mnemonic: src.Mnemonic(),
	}, nil
}

func (f *fakeHandler) GetBalance(ctx context.Context, address string) (string, error) {
	return "1.5", nil
}

func (f *fakeHandler) GetTokenBalance(ctx context.Context, req chains.TokenBalanceRequest) (string, error) {
	if req.Decimals == nil {
		return "18", nil
	}
	return fmt.Sprint(*req.Decimals), nil
}

func (f *fakeHandler) SendFrom(ctx context.Context, src chains.KeySource, req chains.SendRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, req)
	f.srcs = append(f.srcs, src)
	if f.sendErr != nil {
		return "", f.sendErr
	}
	return fmt.Sprintf("0xhash%d", len(f.sends)), nil
}

type fakeBatchHandler struct {
	*fakeHandler
}

func (f fakeBatchHandler) SendBatch(ctx context.Context, src chains.KeySource, reqs []chains.SendRequest) ([]chains.SendResult, error) {
	out := make([]chains.SendResult, len(reqs))
	for i := range reqs {
		out[i].Hash = fmt.Sprintf("0xbatch%d", i)
	}
	return out, nil
}

// fakeFamilies serves every family with fake handlers and counts builds.
type fakeFamilies struct {
	mu       sync.Mutex
	handlers map[chains.ID]*fakeHandler
	builds   map[chains.ID]int
	failOn   map[chains.ID]error
	buildErr map[chains.ID]error
}

func newFakeFamilies() *fakeFamilies {
	return &fakeFamilies{
		handlers: make(map[chains.ID]*fakeHandler),
		builds:   make(map[chains.ID]int),
		failOn:   make(map[chains.ID]error),
		buildErr: make(map[chains.ID]error),
	}
}

func (f *fakeFamilies) factory(info chains.Info, cfg config.Config) (chains.Handler, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builds[info.ID]++
	if err, ok := f.buildErr[info.ID]; ok {
		delete(f.buildErr, info.ID)
		return nil, err
	}
	h := &fakeHandler{info: info, createErr: f.failOn[info.ID]}
	f.handlers[info.ID] = h
	if info.Family == chains.FamilyEVM {
		return fakeBatchHandler{h}, nil
	}
	return h, nil
}

func (f *fakeFamilies) buildCount(id chains.ID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.builds[id]
}

func (f *fakeFamilies) handler(id chains.ID) *fakeHandler {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.handlers[id]
}

func newTestWallet(t *testing.T, fams *fakeFamilies) *Wallet {
	t.Helper()
	factories := make(map[chains.Family]chains.Factory)
	for _, info := range chains.All() {
		factories[info.Family] = fams.factory
	}
	return New(config.Default(), WithFactories(factories), WithLogger(zerolog.Nop()))
}

func TestDefaultFactoriesCoverFamilies(t *testing.T) {
	factories := DefaultFactories()
	for _, info := range chains.All() {
		if _, ok := factories[info.Family]; !ok {
			t.Errorf("no factory for %s (%s)", info.ID, info.Family)
		}
	}
}

func TestCreateMultiChain(t *testing.T) {
	w := newTestWallet(t, newFakeFamilies())

	accounts, err := w.Create(context.Background(), []chains.ID{chains.MultiChain}, chains.CreateOptions{})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	ids := chains.IDs()
	if len(accounts) != len(ids) {
		t.Fatalf("Create() returned %d accounts, want %d", len(accounts), len(ids))
	}
	mnemonic := w.Mnemonic()
	if len(strings.Fields(mnemonic)) != 12 {
		t.Fatalf("generated mnemonic has %d words, want 12", len(strings.Fields(mnemonic)))
	}
	for i, acc := range accounts {
		if acc.Chain != ids[i] {
			t.Errorf("accounts[%d].Chain = %s, want %s", i, acc.Chain, ids[i])
		}
		if acc.Mnemonic != mnemonic {
			t.Errorf("accounts[%d] used a different mnemonic", i)
		}
	}
}

func TestCreateKeepsRequestOrder(t *testing.T) {
	w := newTestWallet(t, newFakeFamilies())
	if err := w.SetMnemonic(testMnemonic); err != nil {
		t.Fatalf("SetMnemonic() error: %v", err)
	}

	req := []chains.ID{chains.Tron, chains.Ether, chains.Near, chains.Ether}
	accounts, err := w.Create(context.Background(), req, chains.CreateOptions{})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	want := []chains.ID{chains.Tron, chains.Ether, chains.Near}
	if len(accounts) != len(want) {
		t.Fatalf("Create() returned %d accounts, want %d", len(accounts), len(want))
	}
	for i, acc := range accounts {
		if acc.Chain != want[i] {
			t.Errorf("accounts[%d].Chain = %s, want %s", i, acc.Chain, want[i])
		}
	}
	if w.Mnemonic() != testMnemonic {
		t.Errorf("Create() replaced an existing mnemonic")
	}
}

func TestCreateAllOrNothing(t *testing.T) {
	fams := newFakeFamilies()
	fams.failOn[chains.Near] = apperr.Network("near.Create", errors.New("boom"))
	w := newTestWallet(t, fams)

	accounts, err := w.Create(context.Background(), []chains.ID{chains.Ether, chains.Near, chains.Solana}, chains.CreateOptions{})
	if err == nil {
		t.Fatal("Create() succeeded with a failing chain")
	}
	if accounts != nil {
		t.Errorf("Create() returned partial accounts: %v", accounts)
	}
	if !apperr.IsKind(err, apperr.KindNetwork) {
		t.Errorf("Create() error kind = %s, want network", apperr.KindOf(err))
	}
}

func TestCreateRejectsUnknownChain(t *testing.T) {
	fams := newFakeFamilies()
	w := newTestWallet(t, fams)

	_, err := w.Create(context.Background(), []chains.ID{chains.Ether, "bitcoin"}, chains.CreateOptions{})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("Create() error = %v, want validation", err)
	}
	if n := fams.buildCount(chains.Ether); n != 0 {
		t.Errorf("ether handler built %d times before validation failed", n)
	}
	if w.Mnemonic() != "" {
		t.Errorf("Create() generated a mnemonic for an invalid request")
	}
}

func TestGetBalance(t *testing.T) {
	w := newTestWallet(t, newFakeFamilies())
	ctx := context.Background()

	got, err := w.GetBalance(ctx, "0xabc", chains.Ether)
	if err != nil {
		t.Fatalf("GetBalance() error: %v", err)
	}
	if got != "1.5" {
		t.Errorf("GetBalance() = %s, want 1.5", got)
	}

	tests := []struct {
		name    string
		address string
		chain   chains.ID
		kind    apperr.Kind
	}{
		{"missing address", " ", chains.Ether, apperr.KindValidation},
		{"multi chain", "0xabc", chains.MultiChain, apperr.KindValidation},
		{"unknown chain", "0xabc", "dogecoin", apperr.KindUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := w.GetBalance(ctx, tt.address, tt.chain)
			if !apperr.IsKind(err, tt.kind) {
				t.Errorf("GetBalance() error = %v, want %s", err, tt.kind)
			}
		})
	}
}

func TestGetTokenBalance(t *testing.T) {
	w := newTestWallet(t, newFakeFamilies())
	ctx := context.Background()
	six := int32(6)

	got, err := w.GetTokenBalance(ctx, chains.TokenBalanceRequest{Contract: "0xt", Address: "0xa", Decimals: &six}, chains.Ether)
	if err != nil {
		t.Fatalf("GetTokenBalance() error: %v", err)
	}
	if got != "6" {
		t.Errorf("GetTokenBalance() = %s, want decimals passed through", got)
	}

	if _, err := w.GetTokenBalance(ctx, chains.TokenBalanceRequest{Address: "0xa"}, chains.Ether); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("GetTokenBalance(no contract) error = %v, want validation", err)
	}
}

func TestSend(t *testing.T) {
	fams := newFakeFamilies()
	w := newTestWallet(t, fams)
	if err := w.SetPrivateKey("0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"); err != nil {
		t.Fatalf("SetPrivateKey() error: %v", err)
	}

	hash, err := w.Send(context.Background(), chains.Tron, chains.SendRequest{To: "T1", Amount: "1"})
	if err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if hash != "0xhash1" {
		t.Errorf("Send() = %s", hash)
	}
	src := fams.handler(chains.Tron).srcs[0]
	if src.Mnemonic() != "" || src.PrivateKey() == "" {
		t.Errorf("Send() passed identity mnemonic=%q key=%q", src.Mnemonic(), src.PrivateKey())
	}

	if _, err := w.Send(context.Background(), chains.Tron, chains.SendRequest{Amount: "1"}); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("Send(no destination) error = %v, want validation", err)
	}
}

func TestSendPropagatesErrorKind(t *testing.T) {
	fams := newFakeFamilies()
	w := newTestWallet(t, fams)

	// Build the handler first, then make it fail.
	if _, err := w.GetBalance(context.Background(), "x", chains.Solana); err != nil {
		t.Fatalf("GetBalance() error: %v", err)
	}
	fams.handler(chains.Solana).sendErr = apperr.Timeout("solana.confirm", errors.New("deadline"))

	hash, err := w.Send(context.Background(), chains.Solana, chains.SendRequest{To: "x", Amount: "1"})
	if !apperr.IsKind(err, apperr.KindTimeout) {
		t.Fatalf("Send() error = %v, want timeout", err)
	}
	if hash != "" {
		t.Errorf("Send() fabricated hash %q", hash)
	}
}

func TestSendBatch(t *testing.T) {
	w := newTestWallet(t, newFakeFamilies())
	reqs := []chains.SendRequest{{To: "0x1", Amount: "1"}, {To: "0x2", Amount: "2"}}

	results, err := w.SendBatch(context.Background(), chains.Ether, reqs)
	if err != nil {
		t.Fatalf("SendBatch() error: %v", err)
	}
	if len(results) != 2 || results[1].Hash != "0xbatch1" {
		t.Errorf("SendBatch() = %+v", results)
	}

	if _, err := w.SendBatch(context.Background(), chains.Solana, reqs); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("SendBatch(solana) error = %v, want validation", err)
	}
	if _, err := w.SendBatch(context.Background(), chains.Ether, nil); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("SendBatch(empty) error = %v, want validation", err)
	}
}

func TestSetMnemonic(t *testing.T) {
	w := newTestWallet(t, newFakeFamilies())

	if err := w.SetMnemonic("not a real phrase"); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("SetMnemonic(invalid) error = %v, want validation", err)
	}
	if err := w.SetPrivateKey("deadbeef"); err != nil {
		t.Fatalf("SetPrivateKey() error: %v", err)
	}
	if err := w.SetMnemonic("  Abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon ABOUT "); err != nil {
		t.Fatalf("SetMnemonic() error: %v", err)
	}
	if w.Mnemonic() != testMnemonic {
		t.Errorf("Mnemonic() = %q, want normalized phrase", w.Mnemonic())
	}
	if w.current().PrivateKey() != "" {
		t.Error("SetMnemonic() kept the private key")
	}

	first, err := w.current().Seed()
	if err != nil {
		t.Fatalf("Seed() error: %v", err)
	}
	if err := w.SetPrivateKey("deadbeef"); err != nil {
		t.Fatalf("SetPrivateKey() error: %v", err)
	}
	if _, err := w.current().Seed(); apperr.CodeOf(err) != apperr.CodeMnemonicMissing {
		t.Errorf("Seed() after SetPrivateKey error = %v, want mnemonic missing", err)
	}
	if len(first) != 64 {
		t.Errorf("seed length = %d, want 64", len(first))
	}

	if err := w.SetPrivateKey(" "); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("SetPrivateKey(empty) error = %v, want validation", err)
	}
}

func TestPoolBuildsOnce(t *testing.T) {
	fams := newFakeFamilies()
	w := newTestWallet(t, fams)

	var wg sync.WaitGroup
	var failures atomic.Int32
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := w.GetBalance(context.Background(), "a", chains.Kava); err != nil {
				failures.Add(1)
			}
		}()
	}
	wg.Wait()

	if failures.Load() != 0 {
		t.Fatalf("%d concurrent calls failed", failures.Load())
	}
	if n := fams.buildCount(chains.Kava); n != 1 {
		t.Errorf("kava handler built %d times, want 1", n)
	}
}

func TestPoolRetriesFailedBuild(t *testing.T) {
	fams := newFakeFamilies()
	fams.buildErr[chains.Polkadot] = errors.New("dial failed")
	w := newTestWallet(t, fams)

	if _, err := w.GetBalance(context.Background(), "a", chains.Polkadot); err == nil {
		t.Fatal("GetBalance() succeeded with a failing build")
	}
	if _, err := w.GetBalance(context.Background(), "a", chains.Polkadot); err != nil {
		t.Fatalf("GetBalance() after retry error: %v", err)
	}
	if n := fams.buildCount(chains.Polkadot); n != 2 {
		t.Errorf("polkadot handler built %d times, want 2", n)
	}
}

func TestCallbacks(t *testing.T) {
	w := newTestWallet(t, newFakeFamilies())

	var got string
	var gotErr error
	calls := 0
	cb := func(v string, err error) {
		calls++
		got, gotErr = v, err
	}

	v, err := w.GetBalanceWithCallback(context.Background(), "0xabc", chains.Ether, cb)
	if err != nil || v != "1.5" {
		t.Fatalf("GetBalanceWithCallback() = %q, %v", v, err)
	}
	if calls != 1 || got != v || gotErr != nil {
		t.Errorf("callback got %q, %v after %d calls", got, gotErr, calls)
	}

	_, err = w.SendWithCallback(context.Background(), chains.Ether, chains.SendRequest{}, cb)
	if calls != 2 || gotErr != err || !apperr.IsKind(gotErr, apperr.KindValidation) {
		t.Errorf("callback error = %v, want the returned validation error", gotErr)
	}

	if _, err := w.GetBalanceWithCallback(context.Background(), "0xabc", chains.Ether, nil); err != nil {
		t.Errorf("nil callback error: %v", err)
	}

	if _, err := w.SetMnemonicWithCallback("  ABANDON "+testMnemonic[8:], cb); err != nil {
		t.Fatalf("SetMnemonicWithCallback() error: %v", err)
	}
	if got != testMnemonic {
		t.Errorf("callback mnemonic = %q, want normalized phrase", got)
	}
}
