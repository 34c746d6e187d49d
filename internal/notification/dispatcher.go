package notification

import "context"

// Message is one push notification to deliver
type Message struct {
	To    string                 `json:"to"`
	Title string                 `json:"title"`
	Body  string                 `json:"body"`
	Data  map[string]interface{} `json:"data,omitempty"`
}

// DeliveryResult is the per-message outcome of one dispatch. A failed
// message never aborts the batch and is never retried.
type DeliveryResult struct {
	To    string
	OK    bool
	Error string
}

// Dispatcher delivers a batch of push messages to the gateway, returning
// per-message results. Delivery is fire-and-forget from the caller's point
// of view: failures are reported, logged, and dropped.
//
// On a nil error, SendBatch returns exactly one DeliveryResult per input
// message, in input order. Callers may index results by batch position.
type Dispatcher interface {
	SendBatch(ctx context.Context, messages []Message) ([]DeliveryResult, error)
}
