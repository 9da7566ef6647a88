package substrate

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"
	"github.com/chinmay1088/omniwallet/apperr"
	"github.com/chinmay1088/omniwallet/chains"
	"github.com/chinmay1088/omniwallet/keys"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

type transferCall struct {
	from   []byte
	dest   []byte
	amount *big.Int
}

type fakeClient struct {
	balances map[string]*big.Int
	err      error
	hash     string

	transfers []transferCall
}

func (f *fakeClient) FreeBalance(ctx context.Context, accountID []byte) (*big.Int, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	b, ok := f.balances[string(accountID)]
	if !ok {
		return big.NewInt(0), false, nil
	}
	return b, true, nil
}

func (f *fakeClient) Transfer(ctx context.Context, from signature.KeyringPair, dest []byte, amount *big.Int) (string, error) {
	f.transfers = append(f.transfers, transferCall{from: from.PublicKey, dest: dest, amount: amount})
	return f.hash, nil
}

func testHandler(t *testing.T, id chains.ID, client Client) *Handler {
	t.Helper()
	info, err := chains.Lookup(id)
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	h, err := NewHandler(info, client)
	if err != nil {
		t.Fatalf("NewHandler() error: %v", err)
	}
	return h
}

func accountAddress(t *testing.T, fill byte, format uint8) ([]byte, string) {
	t.Helper()
	id := bytes.Repeat([]byte{fill}, 32)
	addr, err := EncodeAddress(id, format)
	if err != nil {
		t.Fatalf("EncodeAddress() error: %v", err)
	}
	return id, addr
}

func TestDecodeAddress(t *testing.T) {
	id, addr := accountAddress(t, 0x11, keys.SS58Polkadot)

	got, err := DecodeAddress(addr, keys.SS58Polkadot)
	if err != nil {
		t.Fatalf("DecodeAddress() error: %v", err)
	}
	if !bytes.Equal(got, id) {
		t.Errorf("DecodeAddress() = %x, want %x", got, id)
	}

	if _, err := DecodeAddress(addr, keys.SS58Kusama); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("wrong network error = %v, want validation", err)
	}

	corrupted := []byte(addr)
	last := len(corrupted) - 1
	if corrupted[last] == 'a' {
		corrupted[last] = 'b'
	} else {
		corrupted[last] = 'a'
	}
	if _, err := DecodeAddress(string(corrupted), keys.SS58Polkadot); err == nil {
		t.Error("expected error for corrupted address")
	}
	if _, err := DecodeAddress("not-an-address", keys.SS58Polkadot); err == nil {
		t.Error("expected error for garbage input")
	}
}

func TestCreate(t *testing.T) {
	h := testHandler(t, chains.Polkadot, &fakeClient{})

	acc, err := h.Create(context.Background(), keys.Static{Phrase: testMnemonic}, chains.CreateOptions{})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if acc.PrivateKey != "" {
		t.Errorf("PrivateKey = %q, want empty", acc.PrivateKey)
	}
	if acc.Chain != chains.Polkadot {
		t.Errorf("Chain = %s, want polkadot", acc.Chain)
	}
	if _, err := DecodeAddress(acc.Address, keys.SS58Polkadot); err != nil {
		t.Errorf("address %s does not decode: %v", acc.Address, err)
	}

	again, err := h.Create(context.Background(), keys.Static{Phrase: testMnemonic}, chains.CreateOptions{})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if again.Address != acc.Address {
		t.Errorf("Create() not deterministic: %s != %s", again.Address, acc.Address)
	}
}

func TestCreateRequiresMnemonic(t *testing.T) {
	h := testHandler(t, chains.Kusama, &fakeClient{})
	_, err := h.Create(context.Background(), keys.Static{Key: "0x01"}, chains.CreateOptions{})
	if apperr.CodeOf(err) != apperr.CodeMnemonicMissing {
		t.Fatalf("Create() error = %v, want code %d", err, apperr.CodeMnemonicMissing)
	}
}

func TestGetBalance(t *testing.T) {
	id, addr := accountAddress(t, 0x22, keys.SS58Polkadot)
	_, missing := accountAddress(t, 0x33, keys.SS58Polkadot)

	client := &fakeClient{balances: map[string]*big.Int{
		string(id): big.NewInt(125_000_000_000),
	}}
	h := testHandler(t, chains.Polkadot, client)

	got, err := h.GetBalance(context.Background(), addr)
	if err != nil {
		t.Fatalf("GetBalance() error: %v", err)
	}
	if got != "12.5" {
		t.Errorf("GetBalance() = %s, want 12.5", got)
	}

	got, err = h.GetBalance(context.Background(), missing)
	if err != nil {
		t.Fatalf("GetBalance() error: %v", err)
	}
	if got != "0" {
		t.Errorf("GetBalance(missing) = %s, want 0", got)
	}

	client.err = errors.New("connection reset")
	if _, err := h.GetBalance(context.Background(), addr); !apperr.IsKind(err, apperr.KindNetwork) {
		t.Errorf("GetBalance() error = %v, want network", err)
	}
}

func TestGetTokenBalanceUnsupported(t *testing.T) {
	h := testHandler(t, chains.Polkadot, &fakeClient{})
	_, err := h.GetTokenBalance(context.Background(), chains.TokenBalanceRequest{Contract: "x", Address: "y"})
	if !apperr.IsKind(err, apperr.KindUnsupported) {
		t.Fatalf("GetTokenBalance() error = %v, want unsupported", err)
	}
}

func TestSendFromPolkadotMinimum(t *testing.T) {
	tests := []struct {
		name     string
		destFree int64
		amount   string
		wantCode apperr.Code
	}{
		{"below one DOT", 5_000_000_000, "0.4", apperr.CodeMinimumDOT},
		{"exactly one DOT", 5_000_000_000, "0.5", apperr.CodeMinimumDOT},
		{"above one DOT", 5_000_000_000, "0.6", apperr.CodeNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, addr := accountAddress(t, 0x44, keys.SS58Polkadot)
			client := &fakeClient{
				balances: map[string]*big.Int{string(id): big.NewInt(tt.destFree)},
				hash:     "ABCDEF",
			}
			h := testHandler(t, chains.Polkadot, client)

			hash, err := h.SendFrom(context.Background(), keys.Static{Phrase: testMnemonic}, chains.SendRequest{
				To:     addr,
				Amount: tt.amount,
			})
			if tt.wantCode != apperr.CodeNone {
				if apperr.CodeOf(err) != tt.wantCode {
					t.Fatalf("SendFrom() error = %v, want code %d", err, tt.wantCode)
				}
				if len(client.transfers) != 0 {
					t.Fatalf("transfer submitted despite failed precondition")
				}
				return
			}
			if err != nil {
				t.Fatalf("SendFrom() error: %v", err)
			}
			if hash != "0xabcdef" {
				t.Errorf("hash = %s, want 0xabcdef", hash)
			}
			if len(client.transfers) != 1 {
				t.Fatalf("transfers = %d, want 1", len(client.transfers))
			}
			if !bytes.Equal(client.transfers[0].dest, id) {
				t.Errorf("dest = %x, want %x", client.transfers[0].dest, id)
			}
			if client.transfers[0].amount.Int64() != 6_000_000_000 {
				t.Errorf("amount = %s, want 6000000000", client.transfers[0].amount)
			}
		})
	}
}

func TestSendFromKusamaSkipsMinimum(t *testing.T) {
	_, addr := accountAddress(t, 0x55, keys.SS58Kusama)
	client := &fakeClient{hash: "0x01"}
	h := testHandler(t, chains.Kusama, client)

	hash, err := h.SendFrom(context.Background(), keys.Static{Phrase: testMnemonic}, chains.SendRequest{
		To:     addr,
		Amount: "0.001",
	})
	if err != nil {
		t.Fatalf("SendFrom() error: %v", err)
	}
	if hash != "0x01" {
		t.Errorf("hash = %s, want 0x01", hash)
	}
	if got := client.transfers[0].amount.Int64(); got != 1_000_000_000 {
		t.Errorf("amount = %d, want 1000000000", got)
	}
}
