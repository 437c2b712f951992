package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"costbook/internal/core"
)

// CostCreatedMessage announces a cost that has just been stored.
// It carries the whole record so consumers never read the database.
type CostCreatedMessage struct {
	ID          int64         `json:"id"`
	Year        int           `json:"year"`
	Month       int           `json:"month"`
	Day         int           `json:"day"`
	Sum         float64       `json:"sum"`
	Currency    core.Currency `json:"currency"`
	Category    string        `json:"category"`
	Description string        `json:"description"`
	Timestamp   time.Time     `json:"timestamp"`
}

// NewCostCreatedMessage builds the event for rec, stamped now.
func NewCostCreatedMessage(rec core.CostRecord) *CostCreatedMessage {
	return &CostCreatedMessage{
		ID:          rec.ID,
		Year:        rec.Year,
		Month:       rec.Month,
		Day:         rec.Day,
		Sum:         rec.Sum,
		Currency:    rec.Currency,
		Category:    rec.Category,
		Description: rec.Description,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *CostCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// Validate checks the message describes a storable cost.
func (m *CostCreatedMessage) Validate() error {
	if m.ID <= 0 {
		return fmt.Errorf("message id must be positive, got %d", m.ID)
	}
	if err := core.ValidateMonth(m.Month); err != nil {
		return err
	}
	if m.Day < 1 || m.Day > 31 {
		return core.NewValidationError("day", "must be between 1 and 31")
	}
	return m.Input().Validate()
}

// Input returns the cost fields of the message.
func (m *CostCreatedMessage) Input() core.CostInput {
	return core.CostInput{
		Sum:         m.Sum,
		Currency:    m.Currency,
		Category:    m.Category,
		Description: m.Description,
	}
}

// CostCreatedMessageFromJSON decodes a message and rejects any that fail Validate.
func CostCreatedMessageFromJSON(data []byte) (*CostCreatedMessage, error) {
	var msg CostCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid cost message: %w", err)
	}
	return &msg, nil
}
