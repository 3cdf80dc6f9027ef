package mq

import "encoding/json"

// Event is the envelope published for every ledger state change. Type doubles
// as the routing key on the topic exchange.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func NewEvent(eventType string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		Type: eventType,
		Data: data,
	}, nil
}
