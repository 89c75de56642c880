package comms

const (
	DirectionIncoming = "incoming"
	DirectionOutgoing = "outgoing"
)

// Message is one chat entry. Ordering within a conversation is arrival
// order; messages are never reordered or deleted.
type Message struct {
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Direction string `json:"type"`
}

// Conversation groups the message history with a tourist or field contact.
type Conversation struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Icon              string    `json:"icon,omitempty"`
	Preview           string    `json:"preview"`
	Time              string    `json:"time"`
	Status            string    `json:"status"`
	Priority          string    `json:"priority"`
	NotificationCount int       `json:"notificationCount"`
	Messages          []Message `json:"messages"`
}

// EntityID implements the store identity contract.
func (c Conversation) EntityID() string { return c.ID }

// WithMessage returns a copy with msg appended and the list preview
// refreshed. The receiver is left untouched so the store's wholesale
// replacement stays the only mutation path.
func (c Conversation) WithMessage(msg Message, preview string) Conversation {
	next := c
	next.Messages = make([]Message, 0, len(c.Messages)+1)
	next.Messages = append(next.Messages, c.Messages...)
	next.Messages = append(next.Messages, msg)
	if preview != "" {
		next.Preview = preview
	} else {
		next.Preview = msg.Text
	}
	next.Time = "Just now"
	if msg.Direction == DirectionIncoming {
		next.NotificationCount = c.NotificationCount + 1
	}
	return next
}
