package core

import "errors"

var (
	ErrEmptyStatement    = errors.New("statement contains no transactions")
	ErrStatementNotFound = errors.New("statement not found")
)

// Category is the coarse classification assigned when a statement is parsed.
// Direction of money flow lives here, never in the sign of the amount.
type Category string

const (
	CategoryIncome  Category = "income"
	CategoryExpense Category = "expense"
	CategoryCharge  Category = "charge"
)

// Direction restricts a counterparty query to one flow of money.
type Direction string

const (
	DirectionSent     Direction = "sent"
	DirectionReceived Direction = "received"
	DirectionAll      Direction = "all"
)

// Transaction is one ledger event from an M-PESA statement. Amounts are
// integer cents and always non-negative.
type Transaction struct {
	Date         string // YYYY-MM-DD
	Time         string // HH:MM
	Reference    string // receipt number, "-" when unknown
	Type         string
	Party        string // counterparty, "-" when the statement has none
	Description  string
	AmountCents  int64
	Category     Category
	BalanceCents int64
}

// Snapshot is the immutable ordered transaction set a question is answered
// against. It is rebuilt wholesale on every statement reload; the order is
// the statement order (newest first) and doubles as the tie-break order for
// "highest" and "recent" answers.
type Snapshot struct {
	txns []Transaction
}

// NewSnapshot copies txns so later mutation of the slice by the caller
// cannot leak into answers.
func NewSnapshot(txns []Transaction) *Snapshot {
	copied := make([]Transaction, len(txns))
	copy(copied, txns)
	return &Snapshot{txns: copied}
}

func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.txns)
}

func (s *Snapshot) Empty() bool {
	return s.Len() == 0
}

// Transactions returns a copy of the stored transactions in store order.
func (s *Snapshot) Transactions() []Transaction {
	if s == nil {
		return nil
	}
	out := make([]Transaction, len(s.txns))
	copy(out, s.txns)
	return out
}
