package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestMetricsRegistered(t *testing.T) {
	DispatchTotal.WithLabelValues("file", "200").Inc()
	DispatchDuration.WithLabelValues("file").Observe(0.01)
	HTTPRetriesTotal.Add(0)
	TempFilesActive.Set(0)

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("unexpected gather error: %v", err)
	}

	expected := map[string]bool{
		"fetchr_dispatch_total":            false,
		"fetchr_dispatch_duration_seconds": false,
		"fetchr_http_retries_total":        false,
		"fetchr_tempfiles_active":          false,
	}

	for _, mf := range families {
		if _, ok := expected[mf.GetName()]; ok {
			expected[mf.GetName()] = true
		}
	}

	for name, found := range expected {
		if !found {
			t.Errorf("metric %q not registered", name)
		}
	}
}

func TestTempFilesGauge(t *testing.T) {
	TempFilesActive.Set(0)
	TempFilesActive.Inc()
	TempFilesActive.Inc()
	TempFilesActive.Dec()

	m := &dto.Metric{}
	if err := TempFilesActive.Write(m); err != nil {
		t.Fatalf("write gauge: %v", err)
	}
	if got := m.GetGauge().GetValue(); got != 1 {
		t.Errorf("expected 1 active temp file, got %v", got)
	}
}
