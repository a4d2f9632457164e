package validation

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// EventType names a notification pushed to the domain agent owning a validator key.
type EventType string

const (
	EventValidationAwaiting        EventType = "ValidationAwaiting"
	EventValidationDispute         EventType = "ValidationDispute"
	EventValidationDisputeResolved EventType = "ValidationDisputeResolved"
)

// Notification is the envelope delivered to agents over a socket or webhook.
type Notification struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	JobID     JobID                  `json:"jobId"`
	Validator common.Address         `json:"validator"`
	Timestamp time.Time              `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}
