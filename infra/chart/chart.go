// Package chart renders an HTML report of a run with go-echarts: a timeline of
// the committed jobs of every resource and the energy and frequency histories.
package chart

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/qsched/core/resource"
	"github.com/kilianp07/qsched/core/scheduler"
)

// gap breaks a line series between two points.
const gap = "-"

// Timeline draws one horizontal band per resource; each committed job is a
// thick segment from its start to its finish, in seconds.
func Timeline(schedules []*scheduler.Schedule, ticksPerSecond int64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Timeline", Subtitle: "committed jobs per resource"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time (s)", Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Resource", Type: "value", Min: -1, Max: len(schedules)}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "item"}),
	)
	for i, s := range schedules {
		data := make([]opts.LineData, 0, 3*len(s.Committed))
		for _, j := range s.Committed {
			data = append(data,
				opts.LineData{Name: fmt.Sprintf("job %d", j.PeriodicID), Value: []any{seconds(j.Start, ticksPerSecond), i}},
				opts.LineData{Name: fmt.Sprintf("job %d", j.PeriodicID), Value: []any{seconds(j.Finish, ticksPerSecond), i}},
				opts.LineData{Value: []any{seconds(j.Finish, ticksPerSecond), gap}},
			)
		}
		line.AddSeries(s.Resource, data, charts.WithLineStyleOpts(opts.LineStyle{Width: 12}))
	}
	return line
}

// Energy draws the cumulative energy history of every resource.
func Energy(schedules []*scheduler.Schedule) *charts.Line {
	return history("Energy", "Energy (mJ)", schedules, func(s *scheduler.Schedule) []resource.Sample {
		return s.EnergyHistory
	})
}

// Frequency draws the frequency history of every resource.
func Frequency(schedules []*scheduler.Schedule) *charts.Line {
	return history("Frequency", "Frequency (GHz)", schedules, func(s *scheduler.Schedule) []resource.Sample {
		return s.FrequencyHistory
	})
}

func history(title, yName string, schedules []*scheduler.Schedule, samples func(*scheduler.Schedule) []resource.Sample) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time (s)", Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName, Type: "value"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)
	for _, s := range schedules {
		pts := samples(s)
		data := make([]opts.LineData, 0, len(pts))
		for _, p := range pts {
			data = append(data, opts.LineData{Value: []any{p.Time, p.Value}})
		}
		line.AddSeries(s.Resource, data)
	}
	return line
}

// Render writes a page with the timeline, energy and frequency charts.
func Render(w io.Writer, title string, schedules []*scheduler.Schedule, ticksPerSecond int64) error {
	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(
		Timeline(schedules, ticksPerSecond),
		Energy(schedules),
		Frequency(schedules),
	)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// WriteFile renders the report to path, creating parent directories.
func WriteFile(path, title string, schedules []*scheduler.Schedule, ticksPerSecond int64) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Render(f, title, schedules, ticksPerSecond); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func seconds(ticks, tps int64) float64 {
	if tps <= 0 {
		return float64(ticks)
	}
	return float64(ticks) / float64(tps)
}
