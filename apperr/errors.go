// Package apperr defines the error taxonomy shared by the wallet facade and
// every chain handler.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error so callers can tell "you asked for something we
// don't support" apart from "the node failed".
type Kind string

const (
	KindValidation   Kind = "VALIDATION"
	KindUnsupported  Kind = "UNSUPPORTED_CHAIN"
	KindPrecondition Kind = "PRECONDITION"
	KindNetwork      Kind = "NETWORK"
	KindTimeout      Kind = "TIMEOUT"
	KindFailed       Kind = "TX_FAILED"
)

// Code carries the numeric codes wallet consumers already match on.
type Code int

const (
	CodeNone            Code = 0
	CodeMnemonicMissing Code = 10001
	CodePrivKeyMissing  Code = 10002
	CodeMinimumDOT      Code = 20001
	CodeTimeout         Code = 99999
)

var codeMessages = map[Code]string{
	CodeMnemonicMissing: "Mnemonic not found",
	CodePrivKeyMissing:  "Private key not found",
	CodeMinimumDOT:      "Minimum 1 DOT is required",
	CodeTimeout:         "Process timeout",
}

// Message returns the canonical message for a code.
func (c Code) Message() string {
	return codeMessages[c]
}

// Error is the error type returned across package boundaries.
type Error struct {
	Kind Kind
	Code Code
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Code != CodeNone {
		return fmt.Sprintf("[%s %d] %s: %v", e.Kind, e.Code, e.Op, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap attaches a kind and operation to err. A nil err stays nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// WrapWithCode is Wrap with a numeric code.
func WrapWithCode(kind Kind, code Code, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Code: code, Op: op, Err: err}
}

// Validation builds a validation error from a format string.
func Validation(op, format string, args ...any) error {
	return &Error{Kind: KindValidation, Op: op, Err: fmt.Errorf(format, args...)}
}

// Unsupported reports a chain identifier that is not registered.
func Unsupported(op, chain string) error {
	return &Error{Kind: KindUnsupported, Op: op, Err: fmt.Errorf("unsupported chain %q", chain)}
}

// Network marks err as an RPC/transport failure.
func Network(op string, err error) error {
	return Wrap(KindNetwork, op, err)
}

// Precondition builds a precondition error for the given code.
func Precondition(op string, code Code) error {
	return &Error{Kind: KindPrecondition, Code: code, Op: op, Err: errors.New(code.Message())}
}

// Timeout reports a wait that exceeded its deadline.
func Timeout(op string, err error) error {
	if err == nil {
		err = errors.New(CodeTimeout.Message())
	}
	return &Error{Kind: KindTimeout, Code: CodeTimeout, Op: op, Err: err}
}

// MnemonicMissing is returned when a mnemonic is required for signing.
func MnemonicMissing(op string) error {
	return Precondition(op, CodeMnemonicMissing)
}

// PrivateKeyMissing is returned when a private key is required for signing.
func PrivateKeyMissing(op string) error {
	return Precondition(op, CodePrivKeyMissing)
}

// KindOf returns the kind of the outermost *Error in err's chain, or an
// empty kind.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// CodeOf returns the first non-zero code in err's chain.
func CodeOf(err error) Code {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return CodeNone
		}
		if e.Code != CodeNone {
			return e.Code
		}
		err = e.Err
	}
	return CodeNone
}

// IsKind reports whether err carries kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
