package events

// ScheduleEvent is published when a resource schedule has been committed.
type ScheduleEvent struct {
	Resource  string
	Committed int
	Missed    int
	Delayed   int
	Energy    int64
	Budget    float64
	Attempts  int
}
