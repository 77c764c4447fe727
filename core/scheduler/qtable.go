package scheduler

import "math"

// actionSet is the ordered list of actions available in a state.
type actionSet []ActionValue

// qTable maps states to their action sets. Values are updated in place
// through the slice backing arrays.
type qTable map[DecisionState]actionSet

func finishedSet(reward float64) actionSet {
	return actionSet{{Action: ActionFinished, Value: reward}}
}

func failureSet() actionSet {
	return actionSet{{Action: ActionFailure, Value: math.Inf(-1)}}
}

// terminal returns the terminal action of a terminal set.
func (s actionSet) terminal() (Action, bool) {
	if len(s) == 1 && s[0].Action.Terminal() {
		return s[0].Action, true
	}
	return 0, false
}

// greedy returns the index of the strictly greatest value. Ties keep the
// first enumerated action.
func (s actionSet) greedy() int {
	best := 0
	for i := 1; i < len(s); i++ {
		if s[i].Value > s[best].Value {
			best = i
		}
	}
	return best
}

func (s actionSet) best() float64 {
	return s[s.greedy()].Value
}

// update applies the undiscounted Q-learning rule to entry i. A target of
// -Inf marks the action as dead instead of blending it.
func (s actionSet) update(i int, rate, next float64) {
	target := s[i].Reward + next
	if math.IsInf(target, -1) || math.IsInf(s[i].Value, -1) {
		s[i].Value = math.Inf(-1)
		return
	}
	s[i].Value = (1-rate)*s[i].Value + rate*target
}
