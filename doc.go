// Package sluice is a composable settlement router. Callers submit an
// ordered list of steps, each naming a registered adapter and carrying an
// opaque payload; the engine dispatches the steps under the router's own
// identity and settles all-or-nothing, refunding unspent native value at the
// end of the call.
//
// The package wires four built-in adapters over a shared in-memory ledger:
// transfer (custody pulls, wrapping, returns), swap (constant-product pools),
// market (order fulfillment) and bank (vault deposits and withdrawals).
// Registration is append-only and admin-gated; entries can be retargeted or
// disabled but never removed, so step ids stay stable for callers.
//
// Basic usage:
//
//	router, err := sluice.New("admin", "router")
//	if err != nil { ... }
//	ids, err := router.RegisterBuiltins(ctx)
//	receipt, err := router.Execute(ctx, caller, value, steps)
package sluice
