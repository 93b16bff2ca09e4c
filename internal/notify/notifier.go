package notify

// Notifier delivers a titled text message to the configured recipient.
// Delivery is fire-and-forget: implementations queue the message and report
// delivery failures through the log, not the return value.
type Notifier interface {
	Notify(title, body string) error
}
