// Package gateway delivers outbound notifications. The send_message tool
// and the end-of-run summary both go through a Messenger.
package gateway

// Messenger sends a message to a chat on some external channel.
type Messenger interface {
	Send(chatID string, text string) error
}

// Noop discards messages; used when no channel is configured.
type Noop struct{}

func (Noop) Send(chatID, text string) error { return nil }
