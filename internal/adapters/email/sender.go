package email

import "context"

// Message is one outbound email.
type Message struct {
	To      string
	From    string // empty uses the sender default
	Subject string
	HTML    string
}

// Sender delivers batches of emails through an external provider.
// Results carry provider message IDs in request order.
type Sender interface {
	SendBatch(ctx context.Context, msgs []Message) ([]string, error)
}
