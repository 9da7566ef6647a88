package solana

import (
	"fmt"

	"github.com/chinmay1088/omniwallet/apperr"
	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/memo"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
)

// AssertOwnerProgramID checks that an account is owned by a given program.
// It guards ATA creation so tokens are never sent to a PDA or token account.
var AssertOwnerProgramID = solana.MustPublicKeyFromBase58("4MNPdKu9wFMvEeZBMt3Eipfs5ovVWTJb31pEXDJAAxX5")

// Transaction collects the instructions and signers of one transfer.
type Transaction struct {
	Instructions    []solana.Instruction
	Signers         []solana.PrivateKey
	FeePayer        solana.PublicKey
	RecentBlockhash solana.Hash
}

func NewTransaction(feePayer solana.PublicKey) *Transaction {
	return &Transaction{
		Instructions: make([]solana.Instruction, 0),
		Signers:      make([]solana.PrivateKey, 0),
		FeePayer:     feePayer,
	}
}

func (tx *Transaction) AddTransferInstruction(from solana.PublicKey, to solana.PublicKey, lamports uint64) {
	tx.Instructions = append(tx.Instructions, system.NewTransferInstruction(lamports, from, to).Build())
}

// AddOwnerAssertion asserts that account is owned by the system program,
// i.e. it is a plain wallet.
func (tx *Transaction) AddOwnerAssertion(account solana.PublicKey) {
	tx.Instructions = append(tx.Instructions, solana.NewInstruction(
		AssertOwnerProgramID,
		solana.AccountMetaSlice{solana.NewAccountMeta(account, false, false)},
		solana.SystemProgramID.Bytes(),
	))
}

// AddCreateAssociatedAccount creates the associated token account of wallet
// for mint, paid by the fee payer.
func (tx *Transaction) AddCreateAssociatedAccount(wallet, mint solana.PublicKey) {
	tx.Instructions = append(tx.Instructions, associatedtokenaccount.NewCreateInstruction(tx.FeePayer, wallet, mint).Build())
}

func (tx *Transaction) AddTokenTransfer(amount uint64, decimals uint8, source, mint, destination, owner solana.PublicKey) {
	tx.Instructions = append(tx.Instructions, token.NewTransferCheckedInstruction(
		amount,
		decimals,
		source,
		mint,
		destination,
		owner,
		nil,
	).Build())
}

func (tx *Transaction) AddMemo(text string, signer solana.PublicKey) {
	tx.Instructions = append(tx.Instructions, memo.NewMemoInstruction([]byte(text), signer).Build())
}

func (tx *Transaction) AddSigner(signer solana.PrivateKey) {
	tx.Signers = append(tx.Signers, signer)
}

func (tx *Transaction) SetRecentBlockhash(blockhash solana.Hash) {
	tx.RecentBlockhash = blockhash
}

// BuildAndSign assembles the transaction and signs it with every signer.
func (tx *Transaction) BuildAndSign() (*solana.Transaction, error) {
	if tx.RecentBlockhash.IsZero() {
		return nil, fmt.Errorf("blockhash is empty")
	}
	if len(tx.Signers) == 0 {
		return nil, fmt.Errorf("no signers provided for transaction")
	}

	stx, err := solana.NewTransaction(
		tx.Instructions,
		tx.RecentBlockhash,
		solana.TransactionPayer(tx.FeePayer),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	_, err = stx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		for _, signer := range tx.Signers {
			if key.Equals(signer.PublicKey()) {
				return &signer
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return stx, nil
}

// ParseAddress parses a base58 Solana address.
func ParseAddress(address string) (solana.PublicKey, error) {
	for i, c := range address {
		// Base58 doesn't use 0, O, I, or l
		if c == '0' || c == 'O' || c == 'I' || c == 'l' {
			return solana.PublicKey{}, apperr.Validation("solana.ParseAddress", "invalid character '%c' at position %d in Solana address", c, i)
		}
	}

	pubKey, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return solana.PublicKey{}, apperr.Validation("solana.ParseAddress", "invalid Solana address (%s): %v", address, err)
	}
	return pubKey, nil
}
