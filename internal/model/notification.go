package model

import (
	"time"
)

// Notification is the event forwarded downstream for each inbound message.
// The same payload goes to the automation webhook and, when configured, to
// the JetStream event relay.
type Notification struct {
	SessionID  string    `json:"sessionId"`
	From       string    `json:"from"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"receivedAt"`
}
