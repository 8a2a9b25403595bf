/*
Package dsl provides a fluent builder for composing settlement plans
programmatically, instead of hand-assembling step payloads.

It targets the bundled adapters under their default registration order and
produces the []domain.Step slice Execute consumes. This is particularly
useful for clients, unit tests and IDE-assisted plan construction.

Example usage:

	steps := dsl.NewPlan().
		WrapNative(100).
		SwapExactIn("WNATIVE", "GOLD", 100, 90, "").
		ReturnFungible("GOLD").
		Steps()

	receipt, err := router.Execute(ctx, caller, 100, steps)
*/
package dsl
