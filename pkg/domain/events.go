package domain

import (
	"context"
	"time"
)

// ExecutionEvent describes the start or end of an Execute call.
type ExecutionEvent struct {
	ExecutionID string
	Caller      Address
	Steps       int
	Supplied    uint64
	Refunded    uint64
	Err         error
	Duration    time.Duration
}

// StepEvent describes the dispatch of a single step.
type StepEvent struct {
	ExecutionID string
	Index       int
	AdapterID   uint64
	Adapter     string
	Err         error
	Duration    time.Duration
}

// FulfillmentEvent is emitted by the exchange for every filled order, so a
// harness can correlate (order, fulfiller) pairs.
type FulfillmentEvent struct {
	OrderHash string
	Offerer   Address
	Fulfiller Address
	Recipient Address
}

// LifecycleHooks defines callbacks for router observability. Nil hooks are
// skipped; hooks must not mutate router state.
type LifecycleHooks struct {
	OnExecuteStart func(context.Context, *ExecutionEvent)
	OnExecuteEnd   func(context.Context, *ExecutionEvent)
	OnStepStart    func(context.Context, *StepEvent)
	OnStepEnd      func(context.Context, *StepEvent)
}
