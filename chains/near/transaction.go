package near

import (
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"
	"math/big"

	"github.com/near/borsh-go"
)

const keyTypeED25519 = 0

// Action variant indices.
const (
	actionFunctionCall borsh.Enum = 2
	actionTransfer     borsh.Enum = 3
)

// ftTransferGas is the prepaid gas for an ft_transfer call.
const ftTransferGas = 30_000_000_000_000

type PublicKey struct {
	KeyType uint8
	Data    [ed25519.PublicKeySize]byte
}

type Signature struct {
	KeyType uint8
	Data    [ed25519.SignatureSize]byte
}

type CreateAccount struct{}

type DeployContract struct {
	Code []byte
}

type FunctionCall struct {
	MethodName string
	Args       []byte
	Gas        uint64
	Deposit    big.Int
}

type Transfer struct {
	Deposit big.Int
}

// Action is the Borsh enum of transaction actions. Only the variants up to
// Transfer are declared.
type Action struct {
	Enum           borsh.Enum `borsh_enum:"true"`
	CreateAccount  CreateAccount
	DeployContract DeployContract
	FunctionCall   FunctionCall
	Transfer       Transfer
}

type Transaction struct {
	SignerID   string
	PublicKey  PublicKey
	Nonce      uint64
	ReceiverID string
	BlockHash  [32]byte
	Actions    []Action
}

type SignedTransaction struct {
	Transaction Transaction
	Signature   Signature
}

func transferAction(deposit *big.Int) Action {
	return Action{Enum: actionTransfer, Transfer: Transfer{Deposit: *deposit}}
}

func functionCallAction(method string, args []byte, gas uint64, deposit *big.Int) Action {
	return Action{Enum: actionFunctionCall, FunctionCall: FunctionCall{
		MethodName: method,
		Args:       args,
		Gas:        gas,
		Deposit:    *deposit,
	}}
}

func publicKeyOf(key ed25519.PrivateKey) PublicKey {
	pk := PublicKey{KeyType: keyTypeED25519}
	copy(pk.Data[:], key.Public().(ed25519.PublicKey))
	return pk
}

// SignTransaction signs the sha256 of the Borsh encoding and returns the
// encoded signed transaction together with its hash.
func SignTransaction(tx Transaction, key ed25519.PrivateKey) ([]byte, [32]byte, error) {
	raw, err := borsh.Serialize(tx)
	if err != nil {
		return nil, [32]byte{}, fmt.Errorf("failed to encode transaction: %w", err)
	}
	hash := sha256.Sum256(raw)

	sig := Signature{KeyType: keyTypeED25519}
	copy(sig.Data[:], ed25519.Sign(key, hash[:]))

	signed, err := borsh.Serialize(SignedTransaction{Transaction: tx, Signature: sig})
	if err != nil {
		return nil, [32]byte{}, fmt.Errorf("failed to encode signed transaction: %w", err)
	}
	return signed, hash, nil
}
