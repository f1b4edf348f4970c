// Package memory provides an in-memory statement store for the CLI, for
// tests and for running the server without SQLite.
package memory

import (
	"context"
	"sync"

	"mledger/internal/core"
)

type Store struct {
	mu     sync.RWMutex
	nextID int64
	name   string
	txns   []core.Transaction
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) ReplaceStatement(_ context.Context, name string, txns []core.Transaction) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	s.name = name
	s.txns = make([]core.Transaction, len(txns))
	copy(s.txns, txns)
	return s.nextID, nil
}

func (s *Store) ActiveTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Transaction, len(s.txns))
	copy(out, s.txns)
	return out, nil
}

// StatementName returns the name of the most recent upload, "" before any.
func (s *Store) StatementName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}
