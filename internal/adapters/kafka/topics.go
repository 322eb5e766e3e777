package kafka

// Default topic names. The usage topic can be overridden with KAFKA_USAGE_TOPIC.
const (
	TopicCommandUsage = "marketpulse.command_usage"
	TopicAlertsSent   = "marketpulse.alerts"
)
