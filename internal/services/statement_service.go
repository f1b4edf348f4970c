// Package services holds the use-case layer between transports and storage.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"mledger/internal/amqp"
	"mledger/internal/ledger"
	"mledger/internal/statement"
)

// StatementService ingests uploaded statement text: parse, archive, queue
// the sheet mirror.
type StatementService struct {
	store      ledger.StatementWriter
	amqpClient *amqp.Client
}

// NewStatementService wires the service. amqpClient may be nil, in which
// case ingests are stored but never mirrored.
func NewStatementService(store ledger.StatementWriter, amqpClient *amqp.Client) *StatementService {
	return &StatementService{store: store, amqpClient: amqpClient}
}

// Ingest parses statement text and replaces the active statement wholesale.
// It returns the number of transactions stored. Parse and storage failures
// abort the ingest; a failed mirror publish only logs, since the pending
// scan will retry it.
func (s *StatementService) Ingest(ctx context.Context, name, text string) (int, error) {
	txns, err := statement.Parse(text)
	if err != nil {
		return 0, fmt.Errorf("failed to parse statement %q: %w", name, err)
	}

	statementID, err := s.store.ReplaceStatement(ctx, name, txns)
	if err != nil {
		return 0, fmt.Errorf("failed to store statement %q: %w", name, err)
	}

	slog.InfoContext(ctx, "Statement ingested",
		"statement_id", statementID, "name", name, "parsed", statement.Describe(txns))

	if s.amqpClient != nil {
		if err := s.amqpClient.PublishStatementSync(ctx, statementID); err != nil {
			slog.ErrorContext(ctx, "Failed to queue statement sync",
				"statement_id", statementID, "error", err)
		}
	}

	return len(txns), nil
}

func (s *StatementService) Close() error {
	if s.amqpClient != nil {
		return s.amqpClient.Close()
	}
	return nil
}
