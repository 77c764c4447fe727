// Package events defines the scheduling related events emitted on the event bus.
//
// Available event types:
//   - MappingEvent: periodic jobs assigned to a resource
//   - AttemptEvent: outcome of one train-and-replay attempt
//   - ScheduleEvent: final schedule of a resource
package events
