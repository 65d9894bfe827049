package ed25519

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"runtime"

	crypto "github.com/LeJamon/goProgramsd/internal/crypto/common"
)

// Common error definitions
var (
	ErrInvalidPrivateKey = errors.New("invalid private key format")
	ErrInvalidPublicKey  = errors.New("invalid public key format")
	ErrInvalidSignature  = errors.New("invalid signature format")
)

// Keypair holds an ed25519 signing key and its 32-byte public identity.
type Keypair struct {
	Public  [32]byte
	Private ed25519.PrivateKey
}

// GenerateKeypair derives a keypair deterministically from seed material.
// The seed is stretched with Sha512Half so any length is accepted.
func GenerateKeypair(seed []byte) (*Keypair, error) {
	keyMaterial := crypto.Sha512Half(seed)
	pubKey, privKey, err := ed25519.GenerateKey(bytes.NewReader(keyMaterial[:]))
	if err != nil {
		return nil, err
	}

	kp := &Keypair{Private: privKey}
	copy(kp.Public[:], pubKey)
	return kp, nil
}

// Sign signs message with the private key.
func (k *Keypair) Sign(message []byte) ([]byte, error) {
	if len(k.Private) != ed25519.PrivateKeySize {
		return nil, ErrInvalidPrivateKey
	}
	return ed25519.Sign(k.Private, message), nil
}

// Close zeroes the private key. A closed keypair cannot sign.
func (k *Keypair) Close() {
	clear(k.Private)
	runtime.KeepAlive(k.Private)
	k.Private = nil
}

// Verify checks an ed25519 signature over message for the given public key.
func Verify(public [32]byte, message, signature []byte) bool {
	if len(signature) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(public[:]), message, signature)
}
