package ports

import (
	"context"
	"time"

	"github.com/aretw0/sluice/pkg/domain"
)

// ExecutionRecord is the audit entry for one Execute call, successful or not.
type ExecutionRecord struct {
	ExecutionID string
	Caller      domain.Address
	Steps       int
	Supplied    uint64
	Consumed    uint64
	Refunded    uint64
	Status      string // "ok" or "failed"
	Reason      string // failure reason, empty on success
	StartedAt   time.Time
	Duration    time.Duration
}

// SweepRecord is the audit entry for one admin recovery sweep.
type SweepRecord struct {
	Class     string // "native", "fungible", "nonfungible", "semifungible"
	Token     domain.Token
	Recipient domain.Address
	Amount    uint64
	IDs       []uint64
	At        time.Time
}

// Journal is the append-only settlement audit log. Implementations must not
// fail an execution: the engine logs journal errors and moves on.
type Journal interface {
	RecordExecution(ctx context.Context, rec ExecutionRecord) error
	RecordSweep(ctx context.Context, rec SweepRecord) error
}
