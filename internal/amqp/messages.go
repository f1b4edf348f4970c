package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// StatementSyncMessage asks the worker to mirror one archived statement to
// the spreadsheet. The payload carries only the id; the worker reads the
// transactions back from the archive so the queue never holds ledger data.
type StatementSyncMessage struct {
	StatementID int64     `json:"statement_id"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewStatementSyncMessage(statementID int64) *StatementSyncMessage {
	return &StatementSyncMessage{
		StatementID: statementID,
		Timestamp:   time.Now().UTC(),
	}
}

func (m *StatementSyncMessage) ToJSON() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal statement sync message: %w", err)
	}
	return data, nil
}

func StatementSyncMessageFromJSON(data []byte) (*StatementSyncMessage, error) {
	var m StatementSyncMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal statement sync message: %w", err)
	}
	if m.StatementID <= 0 {
		return nil, fmt.Errorf("invalid statement id %d in sync message", m.StatementID)
	}
	return &m, nil
}
