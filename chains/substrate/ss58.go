package substrate

import (
	"bytes"
	"fmt"

	"github.com/chinmay1088/omniwallet/apperr"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
)

var ss58Prefix = []byte("SS58PRE")

// DecodeAddress returns the account id of an SS58 address with a
// single-byte network prefix, verifying its checksum and network.
func DecodeAddress(address string, format uint8) ([]byte, error) {
	raw, err := base58.Decode(address)
	if err != nil {
		return nil, apperr.Validation("substrate.DecodeAddress", "invalid address %q: %v", address, err)
	}
	if len(raw) != 35 {
		return nil, apperr.Validation("substrate.DecodeAddress", "invalid address length %d", len(raw))
	}
	if raw[0] != format {
		return nil, apperr.Validation("substrate.DecodeAddress", "address %s is for network %d, want %d", address, raw[0], format)
	}
	sum := checksum(raw[:33])
	if !bytes.Equal(sum[:2], raw[33:]) {
		return nil, apperr.Validation("substrate.DecodeAddress", "bad checksum in %s", address)
	}
	return raw[1:33], nil
}

// EncodeAddress encodes a 32-byte account id with the network prefix.
func EncodeAddress(accountID []byte, format uint8) (string, error) {
	if len(accountID) != 32 || format > 63 {
		return "", fmt.Errorf("cannot encode account of %d bytes for format %d", len(accountID), format)
	}
	raw := append([]byte{byte(format)}, accountID...)
	sum := checksum(raw)
	return base58.Encode(append(raw, sum[:2]...)), nil
}

func checksum(data []byte) [64]byte {
	return blake2b.Sum512(append(append([]byte{}, ss58Prefix...), data...))
}
