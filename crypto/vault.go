// Package crypto keeps the wallet secret on disk: an scrypt/AES-GCM vault
// plus a short-lived session so the CLI does not ask for the password on
// every command.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

const (
	ScryptN = 32768 // 2^15
	ScryptR = 8
	ScryptP = 1
	KeyLen  = 32 // AES-256 key length

	// VaultVersion 1 held only a mnemonic; 2 adds imported private keys.
	VaultVersion = 2
)

// ErrInvalidPassword is returned when the vault cannot be opened.
var ErrInvalidPassword = errors.New("invalid password")

type Vault struct {
	Salt  []byte `json:"salt"`
	Nonce []byte `json:"nonce"`
	Data  []byte `json:"data"`
}

// Secret is what the vault protects. Exactly one field is set.
type Secret struct {
	Mnemonic   string `json:"mnemonic,omitempty"`
	PrivateKey string `json:"privateKey,omitempty"`
}

type VaultData struct {
	Secret
	Version int `json:"version"`
}

func NewVault(secret Secret, password string) (*Vault, error) {
	if (secret.Mnemonic == "") == (secret.PrivateKey == "") {
		return nil, fmt.Errorf("vault needs exactly one of mnemonic and private key")
	}

	salt := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	key, err := deriveKey(password, salt)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	defer clearBytes(key)

	data, err := json.Marshal(VaultData{Secret: secret, Version: VaultVersion})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize vault data: %w", err)
	}
	defer clearBytes(data)

	nonce := make([]byte, 12)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	encrypted, err := encrypt(key, nonce, data)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt data: %w", err)
	}

	return &Vault{
		Salt:  salt,
		Nonce: nonce,
		Data:  encrypted,
	}, nil
}

// Decrypt opens the vault. A wrong password yields ErrInvalidPassword.
func (v *Vault) Decrypt(password string) (Secret, error) {
	key, err := deriveKey(password, v.Salt)
	if err != nil {
		return Secret{}, fmt.Errorf("failed to derive key: %w", err)
	}
	defer clearBytes(key)

	plain, err := decrypt(key, v.Nonce, v.Data)
	if err != nil {
		return Secret{}, err
	}
	defer clearBytes(plain)

	var vd VaultData
	if err := json.Unmarshal(plain, &vd); err != nil {
		return Secret{}, fmt.Errorf("failed to deserialize vault data: %w", err)
	}
	if vd.Version > VaultVersion {
		return Secret{}, fmt.Errorf("vault version %d is newer than supported %d", vd.Version, VaultVersion)
	}
	return vd.Secret, nil
}

func (v *Vault) ValidatePassword(password string) bool {
	_, err := v.Decrypt(password)
	return err == nil
}

func deriveKey(password string, salt []byte) ([]byte, error) {
	key, err := scrypt.Key([]byte(password), salt, ScryptN, ScryptR, ScryptP, KeyLen)
	if err != nil {
		return nil, fmt.Errorf("scrypt key derivation failed: %w", err)
	}
	return key, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aesGCM, nil
}

func encrypt(key, nonce, data []byte) ([]byte, error) {
	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	return aesGCM.Seal(nil, nonce, data, nil), nil
}

func decrypt(key, nonce, data []byte) ([]byte, error) {
	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	plaintext, err := aesGCM.Open(nil, nonce, data, nil)
	if err != nil {
		return nil, ErrInvalidPassword
	}
	return plaintext, nil
}

func clearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
