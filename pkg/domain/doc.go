// Package domain holds the core vocabulary of the settlement router:
// addresses and tokens, custody sources, execution steps and receipts,
// lifecycle events, and the error taxonomy shared across packages.
//
// It has no dependencies on other sluice packages so every layer can speak
// the same types without import cycles.
package domain
