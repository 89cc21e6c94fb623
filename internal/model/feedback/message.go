package feedback

import "time"

const shortIDLength = 6

// Message is an anonymous note received by an account.
// It intentionally has no sender field.
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// ShortID is the truncated id shown next to a message on the dashboard.
func (m Message) ShortID() string {
	if len(m.ID) <= shortIDLength {
		return m.ID
	}
	return m.ID[:shortIDLength]
}

// DeliveryReceipt acknowledges an accepted submission to the sender.
// It carries no message id so the sender cannot point at the stored record.
type DeliveryReceipt struct {
	Delivered bool
}
