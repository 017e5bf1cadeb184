package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// ChangeKind names what changed in a building's ledger.
type ChangeKind string

const (
	KindPaymentRecorded   ChangeKind = "payment_recorded"
	KindResidentAdded     ChangeKind = "resident_added"
	KindResidentsImported ChangeKind = "residents_imported"
	KindExpenseAppended   ChangeKind = "expense_appended"
)

// LedgerChangedMessage tells consumers that a building's report is stale.
// It carries identifiers only; consumers reload the ledger themselves.
type LedgerChangedMessage struct {
	BuildingID     string     `json:"building_id"`
	Kind           ChangeKind `json:"kind"`
	EntityID       string     `json:"entity_id,omitempty"`
	ReferenceMonth string     `json:"reference_month"`
	Timestamp      time.Time  `json:"timestamp"`
}

func NewLedgerChangedMessage(buildingID string, kind ChangeKind, entityID, referenceMonth string) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		BuildingID:     buildingID,
		Kind:           kind,
		EntityID:       entityID,
		ReferenceMonth: referenceMonth,
		Timestamp:      time.Now().UTC(),
	}
}

func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.BuildingID == "" {
		return nil, fmt.Errorf("ledger change without building_id")
	}
	return &msg, nil
}
