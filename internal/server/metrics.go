package server

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the server's Prometheus collectors in a private registry.
// There is no HTTP endpoint; WriteToTextfile dumps them for a node
// exporter textfile collector.
type Metrics struct {
	registry *prometheus.Registry

	requests     *prometheus.CounterVec
	toolCalls    *prometheus.CounterVec
	toolDuration *prometheus.HistogramVec
	links        prometheus.Gauge
	symbols      prometheus.Gauge
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "legend_linker_mcp_requests_total",
				Help: "Total number of JSON-RPC requests",
			},
			[]string{"method"},
		),
		toolCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "legend_linker_tool_calls_total",
				Help: "Total number of tool calls",
			},
			[]string{"tool", "status"},
		),
		toolDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "legend_linker_tool_duration_seconds",
				Help:    "Tool call duration in seconds",
				Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"tool"},
		),
		links: factory.NewGauge(prometheus.GaugeOpts{
			Name: "legend_linker_links",
			Help: "Number of symbol-label links in the session",
		}),
		symbols: factory.NewGauge(prometheus.GaugeOpts{
			Name: "legend_linker_detected_symbols",
			Help: "Number of symbols found by the last detection",
		}),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// unknownLabel replaces client-supplied names that the server does not
// know, keeping label cardinality bounded.
const unknownLabel = "unknown"

var knownTools = sync.OnceValue(func() map[string]bool {
	names := make(map[string]bool)
	for _, t := range GetToolDefinitions() {
		names[t.Name] = true
	}
	return names
})

func toolLabel(name string) string {
	if knownTools()[name] {
		return name
	}
	return unknownLabel
}

func methodLabel(method string) string {
	switch method {
	case "initialize", "notifications/initialized", "tools/list", "tools/call", "ping":
		return method
	}
	return unknownLabel
}

func (m *Metrics) observeTool(tool string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	tool = toolLabel(tool)
	m.toolCalls.WithLabelValues(tool, status).Inc()
	m.toolDuration.WithLabelValues(tool).Observe(time.Since(start).Seconds())
}

// WriteToTextfile writes all metrics in the text exposition format.
func (m *Metrics) WriteToTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
