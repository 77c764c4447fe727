// Package export writes schedules and job statistics as JSON or CSV.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/qsched/core/model"
	"github.com/kilianp07/qsched/core/scheduler"
	"github.com/kilianp07/qsched/core/stats"
)

// WriteJSON writes v to w as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteScheduleCSV writes one row per job instance of every schedule.
// Missed instances have empty start and finish columns.
func WriteScheduleCSV(w io.Writer, schedules []*scheduler.Schedule) error {
	cw := csv.NewWriter(w)
	header := []string{"resource", "periodic_id", "priority", "arrival", "deadline", "start", "finish", "delayed", "status"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, s := range schedules {
		for _, j := range s.Committed {
			if err := cw.Write(jobRow(s.Resource, j, "committed")); err != nil {
				return err
			}
		}
		for _, j := range s.Missed {
			if err := cw.Write(jobRow(s.Resource, j, "missed")); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func jobRow(resource string, j model.Job, status string) []string {
	start, finish := "", ""
	if j.Committed() {
		start = strconv.FormatInt(j.Start, 10)
		finish = strconv.FormatInt(j.Finish, 10)
	}
	return []string{
		resource,
		strconv.Itoa(j.PeriodicID),
		j.Priority.String(),
		strconv.FormatInt(j.Arrival, 10),
		strconv.FormatInt(j.Deadline, 10),
		start,
		finish,
		strconv.FormatBool(j.Delayed),
		status,
	}
}

// WriteStatsCSV writes the per-periodic-job statistics. Times are in seconds.
func WriteStatsCSV(w io.Writer, st []stats.JobStat) error {
	cw := csv.NewWriter(w)
	header := []string{"id", "resource", "priority", "instruction_count", "period_s", "instances", "missed", "delayed",
		"avg_execution_s", "avg_waiting_s", "avg_slack_s", "avg_response_s", "p95_response_s"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, s := range st {
		rec := []string{
			strconv.Itoa(s.ID),
			s.Resource,
			s.Priority.String(),
			strconv.FormatInt(s.InstructionCount, 10),
			formatFloat(s.PeriodSeconds),
			strconv.Itoa(s.Instances),
			strconv.Itoa(s.Missed),
			strconv.Itoa(s.Delayed),
			formatFloat(s.AvgExecution),
			formatFloat(s.AvgWaiting),
			formatFloat(s.AvgSlack),
			formatFloat(s.AvgResponse),
			formatFloat(s.P95Response),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
