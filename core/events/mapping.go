package events

// MappingEvent is published once per resource after job-to-resource mapping.
type MappingEvent struct {
	Resource    string
	PeriodicIDs []int
	Residual    float64
}
