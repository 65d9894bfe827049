// Package testing provides test infrastructure for instruction testing.
//
// It is imported as jtx and gives tests a deterministic environment:
//
//	func TestSwap(t *testing.T) {
//	    env := jtx.NewTestEnv(t)
//
//	    alice := jtx.NewAccount("alice")
//	    bob := jtx.NewAccount("bob")
//	    env.Fund(alice, bob)
//
//	    usdc := env.CreateMint(alice, "usdc", 6)
//	    env.MintTo(alice, usdc, bob, 1_000)
//
//	    result := env.Submit(token.NewTransfer(bob.Address, usdc.Address, alice.Address, 10))
//	    jtx.RequireTxSuccess(t, result)
//	    jtx.RequireTokenBalance(t, env, usdc, alice, 10)
//	}
//
// # TestEnv
//
// TestEnv owns an in-memory state and an engine with signature checks on.
// Submit signs every instruction with the key of its Account field, so
// every account used as a signer must come from NewAccount.
//
//	env.Fund(alice)                  // 1000 SOL worth of lamports
//	env.FundAmount(bob, jtx.SOL(5))  // specific amount
//	env.Balance(alice)               // native lamports
//	env.TokenBalance(usdc, alice)    // holding balance
//	env.Snapshot()                   // copy of every entry
//
// # Assertions
//
//	jtx.RequireTxSuccess(t, result)
//	jtx.RequireTxFail(t, result, jtx.TecUNAUTHORIZED)
//	jtx.RequireUnchanged(t, env, before)
package testing
