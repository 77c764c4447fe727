package chart

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/qsched/core/model"
	"github.com/kilianp07/qsched/core/resource"
	"github.com/kilianp07/qsched/core/scheduler"
)

func testSchedules() []*scheduler.Schedule {
	a := model.NewJob(1, 10, 0, 100, model.PriorityHard)
	a.Start, a.Finish = 0, 50
	b := model.NewJob(2, 10, 100, 200, model.PrioritySoft)
	b.Start, b.Finish = 120, 180
	return []*scheduler.Schedule{
		{
			Resource:         "littlecore",
			Committed:        []model.Job{*a, *b},
			EnergyHistory:    []resource.Sample{{Time: 0, Value: 0}, {Time: 0.05, Value: 10}},
			FrequencyHistory: []resource.Sample{{Time: 0, Value: 2}, {Time: 0.05, Value: 1}},
		},
		{Resource: "bigcore"},
	}
}

func TestTimelineSeries(t *testing.T) {
	line := Timeline(testSchedules(), 1000)
	require.Len(t, line.MultiSeries, 2)
	data, ok := line.MultiSeries[0].Data.([]opts.LineData)
	require.True(t, ok)
	// two points and a gap per committed job
	assert.Len(t, data, 6)
	assert.Equal(t, []any{0.12, 0}, data[3].Value)
	assert.Equal(t, []any{0.18, gap}, data[5].Value)
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, "run", testSchedules(), 1000))
	out := buf.String()
	for _, want := range []string{"Timeline", "Energy", "Frequency", "littlecore", "bigcore"} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered page misses %q", want)
		}
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.html")
	require.NoError(t, WriteFile(path, "run", testSchedules(), 1000))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
