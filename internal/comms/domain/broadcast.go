package comms

import "time"

const (
	BroadcastDelivered = "delivered"
	BroadcastPending   = "pending"
)

// Broadcast is one entry in the append-only outbound announcement feed,
// held newest-first.
type Broadcast struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Priority  string    `json:"priority"`
	Target    string    `json:"target"`
	Status    string    `json:"status"`
	Reached   int       `json:"reached"`
	Timestamp time.Time `json:"timestamp"`
}

// EntityID implements the store identity contract.
func (b Broadcast) EntityID() string { return b.ID }

// BroadcastRequest is the payload for creating a broadcast. The server
// assigns id, status, reach and timestamp.
type BroadcastRequest struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Priority string `json:"priority"`
	Target   string `json:"target"`
}
