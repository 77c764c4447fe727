package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/qsched/core/events"
	coremetrics "github.com/kilianp07/qsched/core/metrics"
	"github.com/kilianp07/qsched/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for events.
// It stops when the context is canceled or the bus is closed; the returned
// channel is closed once the collector has exited.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				record(sink, ev)
			}
		}
	}()
	return done
}

func record(sink coremetrics.MetricsSink, ev eventbus.Event) {
	switch e := ev.(type) {
	case events.AttemptEvent:
		if r, ok := sink.(coremetrics.AttemptRecorder); ok {
			_ = r.RecordAttempt(coremetrics.AttemptEvent{
				Resource:  e.Resource,
				Attempt:   e.Attempt,
				Finished:  e.Err == nil,
				TableSize: e.TableSize,
				Time:      time.Now(),
			})
		}
	case events.MappingEvent:
		if r, ok := sink.(coremetrics.MappingRecorder); ok {
			_ = r.RecordMapping(coremetrics.MappingEvent{
				Resource: e.Resource,
				Jobs:     len(e.PeriodicIDs),
				Residual: e.Residual,
				Time:     time.Now(),
			})
		}
	}
}
