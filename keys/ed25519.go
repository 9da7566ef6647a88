package keys

import (
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts"
)

// ed25519Key is a SLIP-10 node.
type ed25519Key struct {
	key       []byte
	chainCode []byte
}

func ed25519Master(seed []byte) ed25519Key {
	sum := hmacSHA512([]byte("ed25519 seed"), seed)
	return ed25519Key{key: sum[:32], chainCode: sum[32:]}
}

// child derives a hardened child. SLIP-10 ed25519 has no normal derivation.
func (k ed25519Key) child(index uint32) ed25519Key {
	data := make([]byte, 0, 1+32+4)
	data = append(data, 0x00)
	data = append(data, k.key...)
	data = binary.BigEndian.AppendUint32(data, index)

	sum := hmacSHA512(k.chainCode, data)
	return ed25519Key{key: sum[:32], chainCode: sum[32:]}
}

// DeriveEd25519 derives an ed25519 key at a fully hardened SLIP-10 path.
func DeriveEd25519(seed []byte, path string) (ed25519.PrivateKey, error) {
	indices, err := accounts.ParseDerivationPath(path)
	if err != nil {
		return nil, fmt.Errorf("invalid derivation path %q: %w", path, err)
	}

	node := ed25519Master(seed)
	for _, idx := range indices {
		if idx < hardenedOffset {
			return nil, fmt.Errorf("ed25519 derivation requires hardened indices, got %d in %q", idx, path)
		}
		node = node.child(idx)
	}
	return ed25519.NewKeyFromSeed(node.key), nil
}

// LegacySolanaKey derives the key older Solana wallets used: the first 32
// seed bytes taken directly as the ed25519 seed.
func LegacySolanaKey(seed []byte) (ed25519.PrivateKey, error) {
	if len(seed) < ed25519.SeedSize {
		return nil, fmt.Errorf("seed too short: %d bytes", len(seed))
	}
	return ed25519.NewKeyFromSeed(seed[:ed25519.SeedSize]), nil
}

func hmacSHA512(key, data []byte) []byte {
	h := hmac.New(sha512.New, key)
	h.Write(data)
	return h.Sum(nil)
}
