package scheduler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecisionStateEquality(t *testing.T) {
	a := NewDecisionState(10, 2, 1, 5, 30, 0, 1)
	b := NewDecisionState(10, 2, 1, 5, 30).withDeferred(0).withDeferred(1)
	if a != b {
		t.Fatalf("same tuple built twice must be equal: %s vs %s", a, b)
	}

	others := []DecisionState{
		NewDecisionState(11, 2, 1, 5, 30, 0, 1),
		NewDecisionState(10, 3, 1, 5, 30, 0, 1),
		NewDecisionState(10, 2, 0, 5, 30, 0, 1),
		NewDecisionState(10, 2, 1, 6, 30, 0, 1),
		NewDecisionState(10, 2, 1, 5, 31, 0, 1),
		NewDecisionState(10, 2, 1, 5, 30, 1, 0),
		NewDecisionState(10, 2, 1, 5, 30, 0),
		NewDecisionState(10, 2, 1, 5, 30, 256),
	}
	table := map[DecisionState]int{a: -1}
	for i, o := range others {
		if o == a {
			t.Fatalf("state %d collides with %s", i, a)
		}
		table[o] = i
	}
	assert.Len(t, table, len(others)+1)
	assert.Equal(t, -1, table[b])
}

func TestDecisionStateDeferredQueue(t *testing.T) {
	s := NewDecisionState(0, 0, 0, 0, 0)
	_, ok := s.Head()
	assert.False(t, ok)

	s = s.withDeferred(3).withDeferred(70000)
	assert.Equal(t, []int{3, 70000}, s.Deferred())
	head, ok := s.Head()
	assert.True(t, ok)
	assert.Equal(t, 3, head)

	popped := s.popDeferred()
	assert.Equal(t, []int{70000}, popped.Deferred())
	assert.Equal(t, 2, s.DeferredLen(), "pop must not alter the original state")
	assert.Equal(t, 0, popped.popDeferred().DeferredLen())
	assert.Contains(t, s.String(), "deferred=[3 70000]")
}

func TestActionSetGreedyTieBreak(t *testing.T) {
	set := actionSet{
		{Action: ActionSchedule, Value: 1},
		{Action: ActionMiss, Value: 3},
		{Action: ActionDelay, Value: 3},
	}
	assert.Equal(t, 1, set.greedy())

	dead := actionSet{
		{Action: ActionSchedule, Value: math.Inf(-1)},
		{Action: ActionMiss, Value: math.Inf(-1)},
	}
	assert.Equal(t, 0, dead.greedy())
}

func TestActionSetUpdate(t *testing.T) {
	set := actionSet{{Action: ActionSchedule, Value: 2, Reward: 1}}
	set.update(0, 0.5, 3)
	assert.InDelta(t, 3, set[0].Value, 1e-12)

	set.update(0, 1, math.Inf(-1))
	assert.True(t, math.IsInf(set[0].Value, -1))

	// A dead action stays dead, even with a full learning rate.
	set.update(0, 1, 10)
	assert.True(t, math.IsInf(set[0].Value, -1))
	assert.False(t, math.IsNaN(set[0].Value))
}

func TestTerminalSets(t *testing.T) {
	a, ok := finishedSet(5).terminal()
	assert.True(t, ok)
	assert.Equal(t, ActionFinished, a)
	assert.Equal(t, 5.0, finishedSet(5).best())

	a, ok = failureSet().terminal()
	assert.True(t, ok)
	assert.Equal(t, ActionFailure, a)

	_, ok = actionSet{{Action: ActionStallToFinish}}.terminal()
	assert.False(t, ok)
}

func TestActionNames(t *testing.T) {
	order := []Action{ActionStallToFinish, ActionStallToLock, ActionSchedule, ActionMiss,
		ActionDelay, ActionScheduleDelayed, ActionDVFSUp, ActionDVFSDown}
	names := []string{"stall-to-finish", "stall-to-dvfs-lock", "schedule", "miss",
		"delay", "schedule-delayed", "dvfs-up", "dvfs-down"}
	for i, a := range order {
		if a.String() != names[i] || a.Terminal() {
			t.Fatalf("unexpected action %d: %s", i, a)
		}
	}
	assert.Equal(t, "unknown", Action(42).String())
}
