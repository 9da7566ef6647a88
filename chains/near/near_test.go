package near

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/chinmay1088/omniwallet/api"
	"github.com/chinmay1088/omniwallet/apperr"
	"github.com/chinmay1088/omniwallet/chains"
	"github.com/chinmay1088/omniwallet/keys"
	"github.com/mr-tron/base58"
	"github.com/near/borsh-go"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

type rpcCall struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
	ID     int64           `json:"id"`
}

// nodeFunc answers one JSON-RPC call with either a result or an error
// object.
type nodeFunc func(t *testing.T, method string, params json.RawMessage) (result any, rpcErr *api.RPCError)

func newNode(t *testing.T, fn nodeFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var call rpcCall
		if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
			t.Errorf("decode request: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		result, rpcErr := fn(t, call.Method, call.Params)
		resp := map[string]any{"jsonrpc": "2.0", "id": call.ID}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testHandler(t *testing.T, url string) *Handler {
	t.Helper()
	info, err := chains.Lookup(chains.Near)
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	return NewHandler(info, url, api.NewClient(5*time.Second))
}

func queryParams(t *testing.T, raw json.RawMessage) map[string]string {
	t.Helper()
	var p map[string]string
	if err := json.Unmarshal(raw, &p); err != nil {
		t.Errorf("query params: %v", err)
	}
	return p
}

func viewBytes(v string) []int {
	out := make([]int, len(v))
	for i := range v {
		out[i] = int(v[i])
	}
	return out
}

func unknownAccount() *api.RPCError {
	return &api.RPCError{
		Code:    -32000,
		Message: "Server error",
		Name:    "HANDLER_ERROR",
		Cause:   &api.RPCErrorCause{Name: "UNKNOWN_ACCOUNT"},
	}
}

func TestCreate(t *testing.T) {
	h := testHandler(t, "http://unused")

	acc, err := h.Create(context.Background(), keys.Static{Phrase: testMnemonic}, chains.CreateOptions{})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	seed, err := keys.SeedFromMnemonic(testMnemonic)
	if err != nil {
		t.Fatalf("SeedFromMnemonic() error: %v", err)
	}
	want, err := keys.DeriveEd25519(seed, keys.NearDerivationPath)
	if err != nil {
		t.Fatalf("DeriveEd25519() error: %v", err)
	}
	if acc.Address != AccountID(want.Public().(ed25519.PublicKey)) {
		t.Errorf("Address = %s, want implicit id of m/44'/397'/0'", acc.Address)
	}
	if len(acc.Address) != 64 {
		t.Errorf("Address length = %d, want 64", len(acc.Address))
	}
	if !strings.HasPrefix(acc.PrivateKey, "ed25519:") {
		t.Errorf("PrivateKey = %q, want ed25519: prefix", acc.PrivateKey)
	}

	imported, err := h.Create(context.Background(), keys.Static{Key: acc.PrivateKey}, chains.CreateOptions{})
	if err != nil {
		t.Fatalf("Create(imported) error: %v", err)
	}
	if imported.Address != acc.Address {
		t.Errorf("imported Address = %s, want %s", imported.Address, acc.Address)
	}
}

func TestCreateWithoutMnemonic(t *testing.T) {
	h := testHandler(t, "http://unused")
	_, err := h.Create(context.Background(), keys.Static{}, chains.CreateOptions{})
	if apperr.CodeOf(err) != apperr.CodeMnemonicMissing {
		t.Fatalf("Create() error = %v, want code %d", err, apperr.CodeMnemonicMissing)
	}
}

func TestGetBalance(t *testing.T) {
	srv := newNode(t, func(t *testing.T, method string, params json.RawMessage) (any, *api.RPCError) {
		p := queryParams(t, params)
		if p["request_type"] != "view_account" || p["finality"] != "final" {
			t.Errorf("unexpected query %v", p)
		}
		switch p["account_id"] {
		case "alice.near":
			return map[string]any{"amount": "1500000000000000000000000"}, nil
		default:
			return nil, unknownAccount()
		}
	})
	h := testHandler(t, srv.URL)

	got, err := h.GetBalance(context.Background(), "alice.near")
	if err != nil {
		t.Fatalf("GetBalance() error: %v", err)
	}
	if got != "1.5" {
		t.Errorf("GetBalance() = %s, want 1.5", got)
	}

	got, err = h.GetBalance(context.Background(), "nobody.near")
	if err != nil {
		t.Fatalf("GetBalance(unknown) error: %v", err)
	}
	if got != "0" {
		t.Errorf("GetBalance(unknown) = %s, want 0", got)
	}

	if _, err := h.GetBalance(context.Background(), "Bad Account"); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("GetBalance(invalid) error = %v, want validation", err)
	}
}

func TestGetBalanceNodeDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	h := testHandler(t, srv.URL)
	if _, err := h.GetBalance(context.Background(), "alice.near"); !apperr.IsKind(err, apperr.KindNetwork) {
		t.Fatalf("GetBalance() error = %v, want network", err)
	}
}

func TestGetTokenBalance(t *testing.T) {
	srv := newNode(t, func(t *testing.T, method string, params json.RawMessage) (any, *api.RPCError) {
		p := queryParams(t, params)
		if p["request_type"] != "call_function" || p["account_id"] != "usdt.near" {
			t.Errorf("unexpected query %v", p)
		}
		switch p["method_name"] {
		case "ft_balance_of":
			args, _ := base64.StdEncoding.DecodeString(p["args_base64"])
			if !bytes.Contains(args, []byte(`"alice.near"`)) {
				t.Errorf("ft_balance_of args = %s", args)
			}
			return map[string]any{"result": viewBytes(`"12345"`)}, nil
		case "ft_metadata":
			return map[string]any{"result": viewBytes(`{"decimals":3,"symbol":"USDT"}`)}, nil
		}
		t.Errorf("unexpected method %s", p["method_name"])
		return nil, nil
	})
	h := testHandler(t, srv.URL)

	two := int32(2)
	tests := []struct {
		name     string
		decimals *int32
		want     string
	}{
		{"explicit decimals", &two, "123.45"},
		{"metadata decimals", nil, "12.345"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := h.GetTokenBalance(context.Background(), chains.TokenBalanceRequest{
				Contract: "usdt.near",
				Address:  "alice.near",
				Decimals: tt.decimals,
			})
			if err != nil {
				t.Fatalf("GetTokenBalance() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("GetTokenBalance() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSendFrom(t *testing.T) {
	blockHash := bytes.Repeat([]byte{0x07}, 32)
	var broadcast SignedTransaction

	srv := newNode(t, func(t *testing.T, method string, params json.RawMessage) (any, *api.RPCError) {
		switch method {
		case "query":
			p := queryParams(t, params)
			if p["request_type"] != "view_access_key" {
				t.Errorf("unexpected query %v", p)
			}
			if !strings.HasPrefix(p["public_key"], "ed25519:") {
				t.Errorf("public_key = %q", p["public_key"])
			}
			return map[string]any{"nonce": 41, "block_hash": base58.Encode(blockHash)}, nil
		case "broadcast_tx_commit":
			var args []string
			if err := json.Unmarshal(params, &args); err != nil || len(args) != 1 {
				t.Errorf("broadcast params = %s", params)
				return nil, nil
			}
			raw, err := base64.StdEncoding.DecodeString(args[0])
			if err != nil {
				t.Errorf("decode tx: %v", err)
			}
			if err := borsh.Deserialize(&broadcast, raw); err != nil {
				t.Errorf("borsh.Deserialize() error: %v", err)
			}
			return map[string]any{
				"status":      map[string]any{"SuccessValue": ""},
				"transaction": map[string]any{"hash": "9fQ3xTxHash"},
			}, nil
		}
		t.Errorf("unexpected method %s", method)
		return nil, nil
	})
	h := testHandler(t, srv.URL)

	src := keys.Static{Phrase: testMnemonic}
	acc, err := h.Create(context.Background(), src, chains.CreateOptions{})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	hash, err := h.SendFrom(context.Background(), src, chains.SendRequest{To: "bob.near", Amount: "0.25"})
	if err != nil {
		t.Fatalf("SendFrom() error: %v", err)
	}
	if hash != "9fQ3xTxHash" {
		t.Errorf("hash = %s, want node hash", hash)
	}

	tx := broadcast.Transaction
	if tx.SignerID != acc.Address {
		t.Errorf("SignerID = %s, want %s", tx.SignerID, acc.Address)
	}
	if tx.ReceiverID != "bob.near" {
		t.Errorf("ReceiverID = %s, want bob.near", tx.ReceiverID)
	}
	if tx.Nonce != 42 {
		t.Errorf("Nonce = %d, want 42", tx.Nonce)
	}
	if !bytes.Equal(tx.BlockHash[:], blockHash) {
		t.Errorf("BlockHash = %x", tx.BlockHash)
	}
	if len(tx.Actions) != 1 || tx.Actions[0].Enum != actionTransfer {
		t.Fatalf("Actions = %+v, want one transfer", tx.Actions)
	}
	if got := tx.Actions[0].Transfer.Deposit.String(); got != "250000000000000000000000" {
		t.Errorf("Deposit = %s", got)
	}

	raw, err := borsh.Serialize(tx)
	if err != nil {
		t.Fatalf("borsh.Serialize() error: %v", err)
	}
	digest := sha256.Sum256(raw)
	if !ed25519.Verify(tx.PublicKey.Data[:], digest[:], broadcast.Signature.Data[:]) {
		t.Error("signature does not verify against the transaction hash")
	}
}

func TestSendFromFailure(t *testing.T) {
	srv := newNode(t, func(t *testing.T, method string, params json.RawMessage) (any, *api.RPCError) {
		if method == "query" {
			return map[string]any{"nonce": 1, "block_hash": base58.Encode(make([]byte, 32))}, nil
		}
		return map[string]any{
			"status":      map[string]any{"Failure": map[string]any{"ActionError": "NotEnoughBalance"}},
			"transaction": map[string]any{"hash": "FailedHash"},
		}, nil
	})
	h := testHandler(t, srv.URL)

	hash, err := h.SendFrom(context.Background(), keys.Static{Phrase: testMnemonic}, chains.SendRequest{To: "bob.near", Amount: "1"})
	if !apperr.IsKind(err, apperr.KindFailed) {
		t.Fatalf("SendFrom() error = %v, want failed", err)
	}
	if hash != "FailedHash" {
		t.Errorf("hash = %s, want FailedHash", hash)
	}
}

func TestSendTokenUsesFunctionCall(t *testing.T) {
	var broadcast SignedTransaction
	srv := newNode(t, func(t *testing.T, method string, params json.RawMessage) (any, *api.RPCError) {
		if method == "query" {
			return map[string]any{"nonce": 5, "block_hash": base58.Encode(make([]byte, 32))}, nil
		}
		var args []string
		json.Unmarshal(params, &args)
		raw, _ := base64.StdEncoding.DecodeString(args[0])
		if err := borsh.Deserialize(&broadcast, raw); err != nil {
			t.Errorf("borsh.Deserialize() error: %v", err)
		}
		return map[string]any{"status": map[string]any{"SuccessValue": ""}}, nil
	})
	h := testHandler(t, srv.URL)

	six := int32(6)
	_, err := h.SendFrom(context.Background(), keys.Static{Phrase: testMnemonic}, chains.SendRequest{
		To:       "bob.near",
		Amount:   "1.5",
		Contract: &chains.TokenContract{Address: "usdt.near", Decimals: &six},
	})
	if err != nil {
		t.Fatalf("SendFrom() error: %v", err)
	}

	tx := broadcast.Transaction
	if tx.ReceiverID != "usdt.near" {
		t.Errorf("ReceiverID = %s, want token contract", tx.ReceiverID)
	}
	call := tx.Actions[0].FunctionCall
	if tx.Actions[0].Enum != actionFunctionCall || call.MethodName != "ft_transfer" {
		t.Fatalf("action = %+v, want ft_transfer", tx.Actions[0])
	}
	if call.Deposit.Int64() != 1 {
		t.Errorf("Deposit = %s, want 1 yocto", call.Deposit.String())
	}
	var args map[string]string
	if err := json.Unmarshal(call.Args, &args); err != nil {
		t.Fatalf("args: %v", err)
	}
	if args["receiver_id"] != "bob.near" || args["amount"] != "1500000" {
		t.Errorf("args = %v", args)
	}
}

func TestValidateAccountID(t *testing.T) {
	tests := []struct {
		id string
		ok bool
	}{
		{"alice.near", true},
		{"a1", true},
		{"sub.alice-b_c.near", true},
		{strings.Repeat("f", 64), true},
		{"a", false},
		{"Alice.near", false},
		{"alice..near", false},
		{".alice", false},
		{"alice.", false},
		{strings.Repeat("a", 65), false},
	}
	for _, tt := range tests {
		err := validateAccountID(tt.id)
		if (err == nil) != tt.ok {
			t.Errorf("validateAccountID(%q) error = %v, want ok=%v", tt.id, err, tt.ok)
		}
	}
}
