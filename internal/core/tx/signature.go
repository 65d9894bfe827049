package tx

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"

	"github.com/LeJamon/goProgramsd/internal/crypto/algorithms/ed25519"
	crypto "github.com/LeJamon/goProgramsd/internal/crypto/common"
)

// Signature verification errors
var (
	ErrMissingSignature = errors.New("transaction is not signed")
	ErrInvalidSignature = errors.New("signature is invalid")
)

var (
	// signingPrefix is prepended to the canonical form when signing ("STX\x00")
	signingPrefix = []byte{0x53, 0x54, 0x58, 0x00}

	// hashPrefix is prepended when computing the instruction hash ("TXN\x00")
	hashPrefix = []byte{0x54, 0x58, 0x4E, 0x00}
)

// canonicalBytes returns the flattened instruction as JSON. encoding/json
// sorts map keys, which makes the form stable.
func canonicalBytes(tx Transaction, withSignature bool) ([]byte, error) {
	flat, err := tx.Flatten()
	if err != nil {
		return nil, err
	}
	if !withSignature {
		delete(flat, "Signature")
	}
	return json.Marshal(flat)
}

// SigningHash returns the digest an instruction's signer signs.
func SigningHash(tx Transaction) ([32]byte, error) {
	data, err := canonicalBytes(tx, false)
	if err != nil {
		return [32]byte{}, err
	}
	return crypto.Sha512Half(signingPrefix, data), nil
}

// ComputeHash returns the identifying hash of a (signed) instruction.
func ComputeHash(tx Transaction) ([32]byte, error) {
	data, err := canonicalBytes(tx, true)
	if err != nil {
		return [32]byte{}, err
	}
	return crypto.Sha512Half(hashPrefix, data), nil
}

// Sign fills in the Signature field using the given keypair. The keypair's
// public key must be the instruction's Account.
func Sign(tx Transaction, key *ed25519.Keypair) error {
	common := tx.GetCommon()
	accountID, err := common.AccountID()
	if err != nil {
		return err
	}
	if accountID != key.Public {
		return errors.New("signing key does not match account")
	}

	hash, err := SigningHash(tx)
	if err != nil {
		return err
	}
	sig, err := key.Sign(hash[:])
	if err != nil {
		return err
	}
	common.Signature = strings.ToUpper(hex.EncodeToString(sig))
	return nil
}

// VerifySignature verifies that an instruction is signed by its Account.
func VerifySignature(tx Transaction) error {
	common := tx.GetCommon()
	if common.Signature == "" {
		return ErrMissingSignature
	}

	sig, err := hex.DecodeString(common.Signature)
	if err != nil {
		return ErrInvalidSignature
	}

	accountID, err := common.AccountID()
	if err != nil {
		return ErrInvalidAccount
	}

	hash, err := SigningHash(tx)
	if err != nil {
		return err
	}
	if !ed25519.Verify(accountID, hash[:], sig) {
		return ErrInvalidSignature
	}
	return nil
}
