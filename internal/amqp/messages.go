package amqp

import (
	"encoding/json"
	"time"
)

// ChangeMessage tells other tracker instances that shared storage changed.
// It carries no transaction data; receivers reload from storage.
type ChangeMessage struct {
	Instance      string    `json:"instance"`
	Op            string    `json:"op"`
	TransactionID int64     `json:"transaction_id"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewChangeMessage(instance, op string, id int64, at time.Time) *ChangeMessage {
	return &ChangeMessage{
		Instance:      instance,
		Op:            op,
		TransactionID: id,
		Timestamp:     at,
	}
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON creates a message from JSON bytes
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
