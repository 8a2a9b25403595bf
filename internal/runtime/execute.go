package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/ports"
)

// Execute runs an ordered step sequence atomically. The supplied native
// value moves onto the router up front; each step dispatches against the
// router's identity; the first failure rolls everything back; on success any
// unconsumed value is refunded to the caller.
func (e *Engine) Execute(ctx context.Context, caller domain.Address, supplied uint64, steps []domain.Step) (*domain.Receipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.locker != nil {
		unlock, err := e.locker.Lock(ctx, "sluice:execute", lockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire execute lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				e.logger.WarnContext(ctx, "failed to release execute lock", "err", err)
			}
		}()
	}

	// Checked once, before any step runs.
	if e.paused {
		return nil, domain.ErrRouterPaused
	}

	executionID := uuid.NewString()
	started := time.Now()
	e.emitExecuteStart(ctx, executionID, caller, supplied, len(steps))

	receipt, err := e.run(ctx, executionID, caller, supplied, steps)

	elapsed := time.Since(started)
	e.emitExecuteEnd(ctx, executionID, caller, supplied, len(steps), receipt, err, elapsed)
	e.record(ctx, executionID, caller, supplied, len(steps), receipt, err, started, elapsed)

	if err != nil {
		e.logger.WarnContext(ctx, "execution failed", "execution_id", executionID, "caller", caller, "err", err)
		return nil, err
	}
	e.logger.InfoContext(ctx, "execution settled",
		"execution_id", executionID, "caller", caller,
		"steps", receipt.Steps, "consumed", receipt.Consumed, "refunded", receipt.Refunded)
	return receipt, nil
}

// run holds the snapshot-dispatch-settle core. Caller holds e.mu.
func (e *Engine) run(ctx context.Context, executionID string, caller domain.Address, supplied uint64, steps []domain.Step) (*domain.Receipt, error) {
	undo := make([]any, len(e.snapshotters))
	for i, snap := range e.snapshotters {
		undo[i] = snap.Snapshot()
	}
	rollback := func() {
		for i, snap := range e.snapshotters {
			snap.Restore(undo[i])
		}
	}

	if err := e.ledger.TransferNative(caller, e.router, supplied); err != nil {
		return nil, fmt.Errorf("attach value: %w", domain.ErrInsufficientValue)
	}

	exec := ports.NewExecContext(caller, e.router, e.ledger, supplied)
	for i, step := range steps {
		if err := e.dispatch(ctx, executionID, exec, i, step); err != nil {
			rollback()
			return nil, err
		}
	}

	// Settlement: the only implicit effect of the engine.
	refund := exec.Remaining()
	if err := e.ledger.TransferNative(e.router, caller, refund); err != nil {
		// The refund draws on value the router received in this very call;
		// failing to return it means the ledger is inconsistent.
		rollback()
		return nil, fmt.Errorf("settlement refund: %w", err)
	}

	return &domain.Receipt{
		ExecutionID: executionID,
		Caller:      caller,
		Steps:       len(steps),
		Supplied:    supplied,
		Consumed:    exec.Used(),
		Refunded:    refund,
	}, nil
}

// dispatch resolves and invokes one step, translating every failure into a
// StepError carrying the step index.
func (e *Engine) dispatch(ctx context.Context, executionID string, exec *ports.ExecContext, index int, step domain.Step) error {
	entry, err := e.registry.Lookup(step.AdapterID)
	if err != nil {
		return &domain.StepError{Index: index, Err: err}
	}
	if !entry.Active {
		return &domain.StepError{Index: index, Err: fmt.Errorf("adapter %d: %w", step.AdapterID, domain.ErrAdapterInactive)}
	}

	event := &domain.StepEvent{
		ExecutionID: executionID,
		Index:       index,
		AdapterID:   step.AdapterID,
		Adapter:     entry.Adapter.Name(),
	}
	if e.hooks.OnStepStart != nil {
		e.hooks.OnStepStart(ctx, event)
	}

	started := time.Now()
	err = entry.Adapter.Invoke(ctx, exec, step.Payload)
	event.Duration = time.Since(started)
	event.Err = err
	if e.hooks.OnStepEnd != nil {
		e.hooks.OnStepEnd(ctx, event)
	}

	if err != nil {
		return &domain.StepError{Index: index, Err: err}
	}
	return nil
}

func (e *Engine) emitExecuteStart(ctx context.Context, executionID string, caller domain.Address, supplied uint64, steps int) {
	if e.hooks.OnExecuteStart == nil {
		return
	}
	e.hooks.OnExecuteStart(ctx, &domain.ExecutionEvent{
		ExecutionID: executionID,
		Caller:      caller,
		Steps:       steps,
		Supplied:    supplied,
	})
}

func (e *Engine) emitExecuteEnd(ctx context.Context, executionID string, caller domain.Address, supplied uint64, steps int, receipt *domain.Receipt, err error, elapsed time.Duration) {
	if e.hooks.OnExecuteEnd == nil {
		return
	}
	event := &domain.ExecutionEvent{
		ExecutionID: executionID,
		Caller:      caller,
		Steps:       steps,
		Supplied:    supplied,
		Err:         err,
		Duration:    elapsed,
	}
	if receipt != nil {
		event.Refunded = receipt.Refunded
	}
	e.hooks.OnExecuteEnd(ctx, event)
}

// record appends the execution to the journal. Journal failures are logged,
// never surfaced: the settlement already happened.
func (e *Engine) record(ctx context.Context, executionID string, caller domain.Address, supplied uint64, steps int, receipt *domain.Receipt, execErr error, started time.Time, elapsed time.Duration) {
	if e.journal == nil {
		return
	}
	rec := ports.ExecutionRecord{
		ExecutionID: executionID,
		Caller:      caller,
		Steps:       steps,
		Supplied:    supplied,
		Status:      "ok",
		StartedAt:   started,
		Duration:    elapsed,
	}
	if execErr != nil {
		rec.Status = "failed"
		rec.Reason = execErr.Error()
	} else if receipt != nil {
		rec.Consumed = receipt.Consumed
		rec.Refunded = receipt.Refunded
	}
	if err := e.journal.RecordExecution(ctx, rec); err != nil {
		e.logger.WarnContext(ctx, "journal write failed", "execution_id", executionID, "err", err)
	}
}
