package line

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedPayload marks webhook bodies that are not a valid payload
// envelope. Intake code branches on it with errors.Is.
var ErrMalformedPayload = errors.New("malformed webhook payload")

// Payload is the decoded body of one webhook request: the receiving bot's
// destination ID and the events in arrival order.
type Payload struct {
	Destination string  `json:"destination"`
	Events      []Event `json:"events"`
}

// ParsePayload decodes a verified webhook body. A body without destination
// or events decodes to zero values; only structurally invalid JSON fails.
// Callers must verify the signature over the raw body first.
func ParsePayload(body []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return &p, nil
}
