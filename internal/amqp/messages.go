package amqp

import (
	"encoding/json"
	"fmt"

	"invoicer/internal/core"
)

// ContentType is set on every published bill event.
const ContentType = "application/json"

// MarshalBillEvent encodes an event as a message body.
func MarshalBillEvent(ev core.BillEvent) ([]byte, error) {
	return json.Marshal(ev)
}

// BillEventFromJSON decodes a message body. Events without a bill id or
// with an unknown type are rejected.
func BillEventFromJSON(data []byte) (core.BillEvent, error) {
	var ev core.BillEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return core.BillEvent{}, err
	}
	switch ev.Type {
	case core.BillCreated, core.BillUpdated, core.BillDeleted:
	default:
		return core.BillEvent{}, fmt.Errorf("unknown event type %q", ev.Type)
	}
	if ev.BillID == "" {
		return core.BillEvent{}, fmt.Errorf("event without bill id")
	}
	return ev, nil
}
