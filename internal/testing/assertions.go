package testing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// RequireTxSuccess asserts that an instruction was applied.
func RequireTxSuccess(t *testing.T, result TxResult) {
	t.Helper()
	require.True(t, result.Success,
		"Expected instruction success, got %s: %s", result.Code, result.Message)
	require.Equal(t, TesSUCCESS, result.Code,
		"Expected tesSUCCESS, got %s: %s", result.Code, result.Message)
}

// RequireTxFail asserts that an instruction failed with a specific code.
func RequireTxFail(t *testing.T, result TxResult, expectedCode string) {
	t.Helper()
	require.False(t, result.Success,
		"Expected instruction failure with code %s, but instruction succeeded", expectedCode)
	require.Equal(t, expectedCode, result.Code,
		"Expected failure code %s, got %s: %s", expectedCode, result.Code, result.Message)
}

// RequireBalance asserts the native lamports of an account.
func RequireBalance(t *testing.T, env *TestEnv, acc *Account, expected uint64) {
	t.Helper()
	actual := env.Balance(acc)
	require.Equal(t, expected, actual,
		"Account %s balance mismatch: expected %d lamports, got %d", acc.Name, expected, actual)
}

// RequireTokenBalance asserts an account's balance of one mint.
func RequireTokenBalance(t *testing.T, env *TestEnv, mint, acc *Account, expected uint64) {
	t.Helper()
	actual := env.TokenBalance(mint, acc)
	require.Equal(t, expected, actual,
		"Account %s balance of %s mismatch: expected %d, got %d", acc.Name, mint.Name, expected, actual)
}

// RequireOfferExists asserts that maker has a live offer with id.
func RequireOfferExists(t *testing.T, env *TestEnv, maker *Account, id uint64) {
	t.Helper()
	require.NotNil(t, env.Offer(maker, id), "Expected offer %d of %s to exist", id, maker.Name)
}

// RequireNoOffer asserts that maker has no live offer with id.
func RequireNoOffer(t *testing.T, env *TestEnv, maker *Account, id uint64) {
	t.Helper()
	require.Nil(t, env.Offer(maker, id), "Expected offer %d of %s to be closed", id, maker.Name)
}

// RequireUnchanged asserts that no entry changed since before was taken.
func RequireUnchanged(t *testing.T, env *TestEnv, before map[[32]byte][]byte) {
	t.Helper()
	after := env.Snapshot()
	require.Equal(t, len(before), len(after), "Entry count changed")
	for key, data := range before {
		require.Equal(t, data, after[key], "Entry %X changed", key)
	}
}
