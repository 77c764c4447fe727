// Package infra groups the adapters to external systems: zerolog logging,
// Prometheus/InfluxDB/MQTT metrics sinks, the Paho publisher, Sentry and
// the go-echarts report. They implement interfaces declared under core/.
package infra
