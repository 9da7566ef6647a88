package avax

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/crypto/secp256k1"
	"github.com/ava-labs/avalanchego/vms/components/avax"
	"github.com/ava-labs/avalanchego/vms/secp256k1fx"
	"github.com/ava-labs/avalanchego/wallet/subnet/primary"
	"github.com/ava-labs/avalanchego/wallet/subnet/primary/common"
)

// Issuer signs and issues X-chain base transactions.
type Issuer interface {
	IssueBaseTx(ctx context.Context, key *secp256k1.PrivateKey, assetID ids.ID, to ids.ShortID, amount uint64) (string, error)
}

// WalletIssuer issues through the primary network wallet. The wallet syncs
// the key's UTXOs on every call.
type WalletIssuer struct {
	URI string
}

func (w WalletIssuer) IssueBaseTx(ctx context.Context, key *secp256k1.PrivateKey, assetID ids.ID, to ids.ShortID, amount uint64) (string, error) {
	kc := secp256k1fx.NewKeychain(key)
	wallet, err := primary.MakeWallet(ctx, w.URI, kc, kc, primary.WalletConfig{})
	if err != nil {
		return "", fmt.Errorf("failed to sync wallet: %w", err)
	}

	out := &avax.TransferableOutput{
		Asset: avax.Asset{ID: assetID},
		Out: &secp256k1fx.TransferOutput{
			Amt: amount,
			OutputOwners: secp256k1fx.OutputOwners{
				Threshold: 1,
				Addrs:     []ids.ShortID{to},
			},
		},
	}
	tx, err := wallet.X().IssueBaseTx([]*avax.TransferableOutput{out}, common.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return tx.ID().String(), nil
}
