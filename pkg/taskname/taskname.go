package taskname

const (
	// Recurring order tasks
	RecurringSweep = "recurring:sweep"

	// Webhook tasks
	WebhookDeliver = "webhook:deliver"
)
