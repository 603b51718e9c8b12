package middleware

// Limits: inbound traffic limits applied to each session
type Limits struct {
	MaxMessageSize    int64
	MessagesPerSecond float64
	BurstSize         int
}

// NewLimits: creates a new Limits configuration
func NewLimits(maxMessageSize int64, messagesPerSecond float64, burstSize int) *Limits {
	return &Limits{
		MaxMessageSize:    maxMessageSize,
		MessagesPerSecond: messagesPerSecond,
		BurstSize:         burstSize,
	}
}
