package scheduler

// Action identifies a transition of the decision process. The declaration
// order of the non-terminal actions is the enumeration order used when a
// state's action set is built, so it also decides greedy tie-breaks.
type Action uint8

const (
	ActionStallToFinish Action = iota
	ActionStallToLock
	ActionSchedule
	ActionMiss
	ActionDelay
	ActionScheduleDelayed
	ActionDVFSUp
	ActionDVFSDown
	// ActionFinished and ActionFailure only appear alone in terminal sets.
	ActionFinished
	ActionFailure
)

var actionNames = [...]string{
	ActionStallToFinish:   "stall-to-finish",
	ActionStallToLock:     "stall-to-dvfs-lock",
	ActionSchedule:        "schedule",
	ActionMiss:            "miss",
	ActionDelay:           "delay",
	ActionScheduleDelayed: "schedule-delayed",
	ActionDVFSUp:          "dvfs-up",
	ActionDVFSDown:        "dvfs-down",
	ActionFinished:        "finished",
	ActionFailure:         "failure",
}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return "unknown"
}

// Terminal reports whether the action ends an episode.
func (a Action) Terminal() bool {
	return a == ActionFinished || a == ActionFailure
}

// ActionValue is one entry of a state's action set.
type ActionValue struct {
	Action Action
	Value  float64
	Reward float64
}
