package events

// AttemptEvent is emitted after each train-and-replay attempt.
// Outcome is "finished" or "failure".
type AttemptEvent struct {
	Resource  string
	Attempt   int
	Episodes  int
	TableSize int
	Outcome   string
	Err       error
}
