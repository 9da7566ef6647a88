package apperr

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestWrapNil(t *testing.T) {
	if err := Wrap(KindNetwork, "op", nil); err != nil {
		t.Fatalf("Wrap(nil) = %v, want nil", err)
	}
	if err := WrapWithCode(KindNetwork, CodeTimeout, "op", nil); err != nil {
		t.Fatalf("WrapWithCode(nil) = %v, want nil", err)
	}
}

func TestKindOf(t *testing.T) {
	base := errors.New("boom")
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"network", Network("getBalance", base), KindNetwork},
		{"unsupported", Unsupported("create", "doge"), KindUnsupported},
		{"validation", Validation("send", "bad amount %q", "x"), KindValidation},
		{"precondition", MnemonicMissing("send"), KindPrecondition},
		{"timeout", Timeout("confirm", nil), KindTimeout},
		{"wrapped by fmt", fmt.Errorf("outer: %w", Network("x", base)), KindNetwork},
		{"plain", base, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnsupportedDistinctFromNetwork(t *testing.T) {
	err := Unsupported("getBalance", "doge")
	if IsKind(err, KindNetwork) {
		t.Fatal("unsupported chain must not be reported as a network error")
	}
	if !IsKind(err, KindUnsupported) {
		t.Fatalf("IsKind(unsupported) = false for %v", err)
	}
}

func TestCodeOf(t *testing.T) {
	err := fmt.Errorf("send: %w", Wrap(KindPrecondition, "polkadot", Precondition("dest", CodeMinimumDOT)))
	if got := CodeOf(err); got != CodeMinimumDOT {
		t.Fatalf("CodeOf() = %d, want %d", got, CodeMinimumDOT)
	}
	if got := CodeOf(errors.New("x")); got != CodeNone {
		t.Fatalf("CodeOf(plain) = %d, want 0", got)
	}
}

func TestErrorString(t *testing.T) {
	err := Timeout("solana.confirm", nil)
	msg := err.Error()
	if !strings.Contains(msg, "99999") || !strings.Contains(msg, "Process timeout") {
		t.Errorf("Error() = %q, want code and message", msg)
	}
	if !errors.Is(Network("x", errBase), errBase) {
		t.Error("Unwrap chain lost the base error")
	}
}

var errBase = errors.New("base")
