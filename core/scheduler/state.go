package scheduler

import (
	"encoding/binary"
	"fmt"
	"strings"
)

const deferredWidth = 4

// DecisionState is the key of the Q-table. It is a comparable value: two
// states are the same key iff all fields, including the deferred queue,
// are equal.
type DecisionState struct {
	Time           int64
	NextJob        int
	Level          int
	LastFreqChange int64
	Energy         int64
	// deferred packs the FIFO of deferred job indices as fixed-width
	// big-endian integers so that the struct stays comparable.
	deferred string
}

// NewDecisionState builds a state whose deferred queue holds the given job
// indices, head first.
func NewDecisionState(time int64, nextJob, level int, lastFreqChange, energy int64, deferred ...int) DecisionState {
	s := DecisionState{
		Time:           time,
		NextJob:        nextJob,
		Level:          level,
		LastFreqChange: lastFreqChange,
		Energy:         energy,
	}
	for _, i := range deferred {
		s = s.withDeferred(i)
	}
	return s
}

// Deferred returns a copy of the deferred queue, head first.
func (s DecisionState) Deferred() []int {
	out := make([]int, 0, s.DeferredLen())
	for i := 0; i < len(s.deferred); i += deferredWidth {
		out = append(out, int(binary.BigEndian.Uint32([]byte(s.deferred[i:i+deferredWidth]))))
	}
	return out
}

// DeferredLen returns the number of deferred jobs.
func (s DecisionState) DeferredLen() int { return len(s.deferred) / deferredWidth }

// Head returns the next deferred job index.
func (s DecisionState) Head() (int, bool) {
	if len(s.deferred) == 0 {
		return 0, false
	}
	return int(binary.BigEndian.Uint32([]byte(s.deferred[:deferredWidth]))), true
}

func (s DecisionState) withDeferred(i int) DecisionState {
	s.deferred = string(binary.BigEndian.AppendUint32([]byte(s.deferred), uint32(i)))
	return s
}

func (s DecisionState) popDeferred() DecisionState {
	if len(s.deferred) > 0 {
		s.deferred = s.deferred[deferredWidth:]
	}
	return s
}

func (s DecisionState) String() string {
	parts := make([]string, 0, s.DeferredLen())
	for _, i := range s.Deferred() {
		parts = append(parts, fmt.Sprint(i))
	}
	return fmt.Sprintf("(t=%d next=%d level=%d lock=%d energy=%d deferred=[%s])",
		s.Time, s.NextJob, s.Level, s.LastFreqChange, s.Energy, strings.Join(parts, " "))
}
