package cosmos

import (
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/ethereum/go-ethereum/crypto"
	"google.golang.org/protobuf/encoding/protowire"
)

const (
	typeMsgSend    = "/cosmos.bank.v1beta1.MsgSend"
	typePubKey     = "/cosmos.crypto.secp256k1.PubKey"
	signModeDirect = 1
	maxMemoBytes   = 256
)

// Coin is an amount of one denom in base units.
type Coin struct {
	Denom  string
	Amount *big.Int
}

// SendTx is an unsigned bank transfer.
type SendTx struct {
	From     string
	To       string
	Amount   Coin
	Fee      Coin
	Gas      uint64
	Memo     string
	Sequence uint64
}

// Fields with zero values are omitted, matching the canonical proto3
// encoding the chain re-derives when verifying the signature.
func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendMessage(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendUint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func encodeCoin(c Coin) []byte {
	var b []byte
	b = appendString(b, 1, c.Denom)
	b = appendString(b, 2, c.Amount.String())
	return b
}

func encodeAny(typeURL string, value []byte) []byte {
	var b []byte
	b = appendString(b, 1, typeURL)
	b = appendBytes(b, 2, value)
	return b
}

// BodyBytes encodes the TxBody with a single MsgSend.
func (tx SendTx) BodyBytes() []byte {
	var msg []byte
	msg = appendString(msg, 1, tx.From)
	msg = appendString(msg, 2, tx.To)
	msg = appendMessage(msg, 3, encodeCoin(tx.Amount))

	var body []byte
	body = appendMessage(body, 1, encodeAny(typeMsgSend, msg))
	body = appendString(body, 2, tx.Memo)
	return body
}

// AuthInfoBytes encodes the AuthInfo of a single SIGN_MODE_DIRECT signer.
func (tx SendTx) AuthInfoBytes(pub *btcec.PublicKey) []byte {
	var pk []byte
	pk = appendBytes(pk, 1, pub.SerializeCompressed())

	var single []byte
	single = appendUint(single, 1, signModeDirect)
	var modeInfo []byte
	modeInfo = appendMessage(modeInfo, 1, single)

	var signer []byte
	signer = appendMessage(signer, 1, encodeAny(typePubKey, pk))
	signer = appendMessage(signer, 2, modeInfo)
	signer = appendUint(signer, 3, tx.Sequence)

	var fee []byte
	if tx.Fee.Amount != nil && tx.Fee.Amount.Sign() > 0 {
		fee = appendMessage(fee, 1, encodeCoin(tx.Fee))
	}
	fee = appendUint(fee, 2, tx.Gas)

	var auth []byte
	auth = appendMessage(auth, 1, signer)
	auth = appendMessage(auth, 2, fee)
	return auth
}

func signDoc(body, authInfo []byte, chainID string, accountNumber uint64) []byte {
	var b []byte
	b = appendBytes(b, 1, body)
	b = appendBytes(b, 2, authInfo)
	b = appendString(b, 3, chainID)
	b = appendUint(b, 4, accountNumber)
	return b
}

// Sign produces the TxRaw bytes ready for broadcast.
func (tx SendTx) Sign(key *btcec.PrivateKey, chainID string, accountNumber uint64) ([]byte, error) {
	if len(tx.Memo) > maxMemoBytes {
		return nil, fmt.Errorf("memo exceeds %d bytes", maxMemoBytes)
	}
	body := tx.BodyBytes()
	authInfo := tx.AuthInfoBytes(key.PubKey())

	digest := chainhash.HashB(signDoc(body, authInfo, chainID, accountNumber))
	sig, err := crypto.Sign(digest, key.ToECDSA())
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	var raw []byte
	raw = appendBytes(raw, 1, body)
	raw = appendBytes(raw, 2, authInfo)
	raw = appendMessage(raw, 3, sig[:64])
	return raw, nil
}
