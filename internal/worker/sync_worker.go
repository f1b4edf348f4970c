// Package worker mirrors archived statements to the spreadsheet. It
// consumes sync messages from the queue and periodically rescans the archive
// for statements a lost message or earlier failure left behind.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mledger/internal/amqp"
	"mledger/internal/ledger"
	"mledger/internal/storage"
)

type SyncWorker struct {
	repo     *storage.SQLiteRepository
	exporter ledger.Exporter
}

func NewSyncWorker(repo *storage.SQLiteRepository, exporter ledger.Exporter) *SyncWorker {
	return &SyncWorker{repo: repo, exporter: exporter}
}

// HandleSyncMessage mirrors one statement. Returning an error requeues the
// message; an unknown statement id is dropped instead since retrying cannot
// fix it.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.StatementSyncMessage) error {
	st, err := w.repo.GetStatement(ctx, msg.StatementID)
	if err != nil {
		slog.ErrorContext(ctx, "Sync message references unknown statement",
			"statement_id", msg.StatementID, "error", err)
		return nil
	}

	if st.SyncStatus == storage.SyncDone {
		slog.InfoContext(ctx, "Statement already synced", "statement_id", st.ID)
		return nil
	}

	txns, err := w.repo.StatementTransactions(ctx, st.ID)
	if err != nil {
		return fmt.Errorf("failed to load statement %d: %w", st.ID, err)
	}

	if err := w.exporter.ExportStatement(ctx, st.Name, txns); err != nil {
		if merr := w.repo.MarkSyncError(ctx, st.ID); merr != nil {
			slog.ErrorContext(ctx, "Failed to record sync error",
				"statement_id", st.ID, "error", merr)
		}
		return fmt.Errorf("failed to export statement %d: %w", st.ID, err)
	}

	if err := w.repo.MarkSynced(ctx, st.ID); err != nil {
		return fmt.Errorf("failed to mark statement %d synced: %w", st.ID, err)
	}

	slog.InfoContext(ctx, "Statement mirrored to sheet",
		"statement_id", st.ID, "name", st.Name, "transactions", len(txns))
	return nil
}

// RunPendingScan republishes statements stuck in pending or error state
// every interval until the context is cancelled. It covers messages lost to
// a dead broker at ingest time.
func (w *SyncWorker) RunPendingScan(ctx context.Context, client *amqp.Client, interval time.Duration, batchSize int) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		pending, err := w.repo.PendingSyncStatements(ctx, batchSize)
		if err != nil {
			slog.ErrorContext(ctx, "Pending scan failed", "error", err)
			continue
		}
		for _, st := range pending {
			if err := client.PublishStatementSync(ctx, st.ID); err != nil {
				slog.WarnContext(ctx, "Failed to requeue pending statement",
					"statement_id", st.ID, "error", err)
			}
		}
		if len(pending) > 0 {
			slog.InfoContext(ctx, "Requeued pending statements", "count", len(pending))
		}
	}
}
