package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when a caller lacks administrator rights
	// for an admin-only operation.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRouterPaused is returned by Execute while the router is suspended.
	ErrRouterPaused = errors.New("router is paused")

	// ErrUnknownAdapter is returned for adapter ids that were never
	// registered.
	ErrUnknownAdapter = errors.New("unknown adapter")

	// ErrAdapterInactive is returned when a step references a registered
	// but disabled adapter.
	ErrAdapterInactive = errors.New("adapter is inactive")

	// ErrInsufficientValue is returned when a caller cannot cover the
	// native value attached to a request, or a step over-consumes it.
	ErrInsufficientValue = errors.New("insufficient supplied value")

	// ErrInsufficientBalance is returned by ledger transfers that exceed
	// the sender's balance.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInsufficientAuthorization is returned by wallet-sourced pulls when
	// the owner has not pre-authorized the router (allowance or operator
	// approval).
	ErrInsufficientAuthorization = errors.New("insufficient authorization")

	// ErrChannelNotEnabled is returned by conduit-sourced pulls when the
	// conduit has no open channel to the destination.
	ErrChannelNotEnabled = errors.New("conduit channel not enabled")

	// ErrInsufficientVaultBalance is returned by vault-sourced pulls that
	// exceed the owner's vault balance.
	ErrInsufficientVaultBalance = errors.New("insufficient vault balance")

	// ErrUnsupportedSource is returned when a custody source cannot serve
	// the requested asset class (the vault only custodies fungibles).
	ErrUnsupportedSource = errors.New("unsupported custody source for asset class")

	// ErrUnknownOrder is returned by the exchange for order hashes it has
	// never seen.
	ErrUnknownOrder = errors.New("unknown order")

	// ErrOrderUnavailable is returned when fulfilling an order that is
	// already filled or cancelled.
	ErrOrderUnavailable = errors.New("order unavailable")

	// ErrIncompleteFulfillment is returned by batch fulfillment when not
	// every order could be filled and the caller asked to revert.
	ErrIncompleteFulfillment = errors.New("incomplete batch fulfillment")
)

// StepError wraps a failure raised while executing one step of a sequence.
// The whole call is rolled back; Index attributes the failure.
type StepError struct {
	Index int
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d failed: %v", e.Index, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
