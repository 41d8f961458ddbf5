package core

import "time"

// EventType names a bill mutation.
type EventType string

const (
	BillCreated EventType = "created"
	BillUpdated EventType = "updated"
	BillDeleted EventType = "deleted"
)

// BillEvent announces a committed change to the bill collection.
type BillEvent struct {
	Type       EventType `json:"type"`
	BillID     string    `json:"billId"`
	BillType   BillType  `json:"billType,omitempty"`
	GrandTotal Amount    `json:"grandTotal"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewBillEvent describes a change to b at the given time.
func NewBillEvent(t EventType, b Bill, at time.Time) BillEvent {
	return BillEvent{
		Type:       t,
		BillID:     b.ID,
		BillType:   b.Type,
		GrandTotal: b.GrandTotal,
		OccurredAt: at.UTC(),
	}
}
