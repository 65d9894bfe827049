package sle

import addresscodec "github.com/LeJamon/goProgramsd/internal/codec/address-codec"

// EncodeAccountID encodes a 32-byte account ID to its base58 address
func EncodeAccountID(accountID [32]byte) string {
	return addresscodec.AccountID(accountID).String()
}

// DecodeAccountID decodes a base58 address to a 32-byte account ID
func DecodeAccountID(address string) ([32]byte, error) {
	id, err := addresscodec.Decode(address)
	if err != nil {
		return [32]byte{}, err
	}
	return id, nil
}
