package mqtt

// Summary is the message published once a resource schedule is committed.
type Summary struct {
	MessageID string  `json:"message_id"`
	RunID     string  `json:"run_id"`
	Resource  string  `json:"resource"`
	Committed int     `json:"committed"`
	Missed    int     `json:"missed"`
	Delayed   int     `json:"delayed"`
	Energy    int64   `json:"energy_mj"`
	Budget    float64 `json:"budget_mj"`
	Attempts  int     `json:"attempts"`
	Timestamp int64   `json:"timestamp"`
}

// Publisher sends schedule summaries to a broker.
type Publisher interface {
	// PublishSummary sends s and returns the message identifier assigned to it.
	PublishSummary(s Summary) (messageID string, err error)
}
