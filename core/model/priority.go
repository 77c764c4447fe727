package model

import (
	"fmt"
	"strings"
)

// Priority classifies how strictly a job deadline must be honoured.
type Priority int

const (
	PriorityHard Priority = iota
	PriorityFirm
	PrioritySoft
)

// Priorities lists every priority class in declaration order.
var Priorities = []Priority{PriorityHard, PriorityFirm, PrioritySoft}

// String returns a human-readable representation of the priority.
func (p Priority) String() string {
	switch p {
	case PriorityHard:
		return "hard"
	case PriorityFirm:
		return "firm"
	case PrioritySoft:
		return "soft"
	default:
		return "unknown"
	}
}

// Short returns the one letter form used in compact reports.
func (p Priority) Short() string {
	switch p {
	case PriorityHard:
		return "H"
	case PrioritySoft:
		return "S"
	default:
		return "F"
	}
}

// ParsePriority converts a configuration string into a Priority.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hard":
		return PriorityHard, nil
	case "firm":
		return PriorityFirm, nil
	case "soft":
		return PrioritySoft, nil
	default:
		return 0, fmt.Errorf("unknown priority %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Priority) UnmarshalText(b []byte) error {
	v, err := ParsePriority(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
