package metrics

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	coremetrics "github.com/kilianp07/qsched/core/metrics"
	"github.com/kilianp07/qsched/core/resource"
)

// TestInfluxSinkIntegration writes a schedule to a disposable InfluxDB 2 instance.
func TestInfluxSinkIntegration(t *testing.T) {
	if os.Getenv("DOCKER_AVAILABLE") != "true" && os.Getenv("DOCKER_AVAILABLE") != "1" {
		t.Skip("docker not available")
	}
	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "influxdb:2.7",
		ExposedPorts: []string{"8086/tcp"},
		Env: map[string]string{
			"DOCKER_INFLUXDB_INIT_MODE":        "setup",
			"DOCKER_INFLUXDB_INIT_USERNAME":    "qsched",
			"DOCKER_INFLUXDB_INIT_PASSWORD":    "qsched-password",
			"DOCKER_INFLUXDB_INIT_ORG":         "qsched",
			"DOCKER_INFLUXDB_INIT_BUCKET":      "runs",
			"DOCKER_INFLUXDB_INIT_ADMIN_TOKEN": "qsched-token",
		},
		WaitingFor: wait.ForHTTP("/health").WithPort("8086/tcp").WithStartupTimeout(time.Minute),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Fatalf("failed to start container: %v", err)
	}
	defer func() {
		if err := container.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %v", err)
		}
	}()

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "8086")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	url := fmt.Sprintf("http://%s:%s", host, port.Port())

	sink, ok := NewInfluxSinkWithFallback(url, "qsched-token", "qsched", "runs").(*InfluxSink)
	if !ok {
		t.Fatalf("expected a live influx sink")
	}
	defer sink.Close()
	err = sink.RecordSchedule(coremetrics.ScheduleResult{
		RunID:         "it",
		Resource:      "little / 1",
		Committed:     3,
		Energy:        10,
		Budget:        100,
		EnergyHistory: []resource.Sample{{Time: 0, Value: 0}, {Time: 1, Value: 10}},
		Time:          time.Now(),
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
}
