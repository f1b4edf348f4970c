// Package ledger defines the ports between the statement archive and its
// consumers. The SQLite repository and the in-memory store implement the
// storage side; the Google Sheets client implements the export side.
package ledger

import (
	"context"

	"mledger/internal/core"
)

type (
	// StatementWriter replaces the active statement wholesale with a newly
	// parsed one and returns its archive id.
	StatementWriter interface {
		ReplaceStatement(ctx context.Context, name string, txns []core.Transaction) (int64, error)
	}

	// TransactionLister returns the active statement's transactions in
	// store order.
	TransactionLister interface {
		ActiveTransactions(ctx context.Context) ([]core.Transaction, error)
	}

	// Store combines both sides for backends that serve reads and writes.
	Store interface {
		StatementWriter
		TransactionLister
	}

	// Exporter mirrors a parsed statement to an external destination.
	Exporter interface {
		ExportStatement(ctx context.Context, name string, txns []core.Transaction) error
	}
)
