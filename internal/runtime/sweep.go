package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/sluice/pkg/domain"
	"github.com/aretw0/sluice/pkg/ports"
)

// The sweep surface is the one place router-held balances move outside an
// Execute call: recovery of assets left over from an under-consuming step or
// pushed to the router by mistake. Every entry point is administrator-only.

// SweepNative moves native currency held by the router to recipient.
func (e *Engine) SweepNative(ctx context.Context, caller, recipient domain.Address, amount uint64) error {
	if err := e.authorize(caller); err != nil {
		return err
	}
	if err := e.ledger.TransferNative(e.router, recipient, amount); err != nil {
		return fmt.Errorf("sweep native: %w", err)
	}
	e.recordSweep(ctx, ports.SweepRecord{Class: "native", Recipient: recipient, Amount: amount})
	return nil
}

// SweepFungible moves fungible tokens held by the router to recipient.
func (e *Engine) SweepFungible(ctx context.Context, caller domain.Address, token domain.Token, recipient domain.Address, amount uint64) error {
	if err := e.authorize(caller); err != nil {
		return err
	}
	if err := e.ledger.Transfer(token, e.router, recipient, amount); err != nil {
		return fmt.Errorf("sweep fungible %s: %w", token, err)
	}
	e.recordSweep(ctx, ports.SweepRecord{Class: "fungible", Token: token, Recipient: recipient, Amount: amount})
	return nil
}

// SweepNonFungible moves router-held token ids to recipient.
func (e *Engine) SweepNonFungible(ctx context.Context, caller domain.Address, token domain.Token, recipient domain.Address, ids []uint64) error {
	if err := e.authorize(caller); err != nil {
		return err
	}
	undo := e.ledger.Snapshot()
	for _, id := range ids {
		if err := e.ledger.TransferNFT(token, e.router, e.router, recipient, id); err != nil {
			e.ledger.Restore(undo)
			return fmt.Errorf("sweep nft %s/%d: %w", token, id, err)
		}
	}
	e.recordSweep(ctx, ports.SweepRecord{Class: "nonfungible", Token: token, Recipient: recipient, IDs: ids})
	return nil
}

// SweepSemiFungible moves router-held semi-fungible units to recipient.
// ids and amounts are parallel.
func (e *Engine) SweepSemiFungible(ctx context.Context, caller domain.Address, token domain.Token, recipient domain.Address, ids, amounts []uint64) error {
	if err := e.authorize(caller); err != nil {
		return err
	}
	if len(ids) != len(amounts) {
		return fmt.Errorf("sweep semi: %d ids, %d amounts", len(ids), len(amounts))
	}
	undo := e.ledger.Snapshot()
	for i, id := range ids {
		if err := e.ledger.TransferSemi(token, e.router, e.router, recipient, id, amounts[i]); err != nil {
			e.ledger.Restore(undo)
			return fmt.Errorf("sweep semi %s/%d: %w", token, id, err)
		}
	}
	e.recordSweep(ctx, ports.SweepRecord{Class: "semifungible", Token: token, Recipient: recipient, IDs: ids})
	return nil
}

func (e *Engine) recordSweep(ctx context.Context, rec ports.SweepRecord) {
	if e.journal == nil {
		return
	}
	rec.At = time.Now()
	if err := e.journal.RecordSweep(ctx, rec); err != nil {
		e.logger.WarnContext(ctx, "journal sweep write failed", "err", err)
	}
}
