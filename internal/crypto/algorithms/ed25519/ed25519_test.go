package ed25519

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateKeypairDeterministic(t *testing.T) {
	a, err := GenerateKeypair([]byte("alice"))
	require.NoError(t, err)
	b, err := GenerateKeypair([]byte("alice"))
	require.NoError(t, err)
	c, err := GenerateKeypair([]byte("bob"))
	require.NoError(t, err)

	require.Equal(t, a.Public, b.Public)
	require.NotEqual(t, a.Public, c.Public)
}

func TestSignAndVerify(t *testing.T) {
	kp, err := GenerateKeypair([]byte("test seed for ed25519"))
	require.NoError(t, err)

	message := []byte("test message")
	sig, err := kp.Sign(message)
	require.NoError(t, err)

	require.True(t, Verify(kp.Public, message, sig))
	require.False(t, Verify(kp.Public, []byte("wrong message"), sig))
	require.False(t, Verify(kp.Public, message, sig[:10]))

	other, err := GenerateKeypair([]byte("someone else"))
	require.NoError(t, err)
	require.False(t, Verify(other.Public, message, sig))
}

func TestClose(t *testing.T) {
	kp, err := GenerateKeypair([]byte("closing"))
	require.NoError(t, err)
	private := kp.Private

	kp.Close()

	require.Equal(t, make([]byte, len(private)), []byte(private))
	_, err = kp.Sign([]byte("message"))
	require.ErrorIs(t, err, ErrInvalidPrivateKey)
}
