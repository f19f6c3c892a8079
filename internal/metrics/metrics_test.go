// Tablemap - Restaurant Discovery and Real-Time Social Messaging
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tablemap

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

// getCounterValue extracts the value from a Prometheus counter
func getCounterValue(counter prometheus.Counter) float64 {
	var m io_prometheus_client.Metric
	if err := counter.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

// getGaugeValue extracts the value from a Prometheus gauge
func getGaugeValue(gauge prometheus.Gauge) float64 {
	var m io_prometheus_client.Metric
	if err := gauge.Write(&m); err != nil {
		return 0
	}
	return m.GetGauge().GetValue()
}

func TestRecordDBQuery(t *testing.T) {
	before := getCounterValue(DBQueryErrors.WithLabelValues("INSERT", "messages"))

	RecordDBQuery("INSERT", "messages", 5*time.Millisecond, nil)
	if got := getCounterValue(DBQueryErrors.WithLabelValues("INSERT", "messages")); got != before {
		t.Errorf("successful query changed error counter: %v -> %v", before, got)
	}

	RecordDBQuery("INSERT", "messages", 5*time.Millisecond, errors.New("constraint violation"))
	if got := getCounterValue(DBQueryErrors.WithLabelValues("INSERT", "messages")); got != before+1 {
		t.Errorf("error counter = %v, want %v", got, before+1)
	}
}

func TestRecordRecommendation(t *testing.T) {
	personalized := RecommendationsTotal.WithLabelValues("personalized")
	fallback := RecommendationsTotal.WithLabelValues("fallback")
	beforeP := getCounterValue(personalized)
	beforeF := getCounterValue(fallback)

	RecordRecommendation(false, 42, 12*time.Millisecond)
	RecordRecommendation(true, 0, time.Millisecond)
	RecordRecommendation(true, 0, time.Millisecond)

	if got := getCounterValue(personalized); got != beforeP+1 {
		t.Errorf("personalized = %v, want %v", got, beforeP+1)
	}
	if got := getCounterValue(fallback); got != beforeF+2 {
		t.Errorf("fallback = %v, want %v", got, beforeF+2)
	}
}

func TestRecordNotification(t *testing.T) {
	delivered := NotificationsTotal.WithLabelValues("like", "true")
	queued := NotificationsTotal.WithLabelValues("like", "false")
	beforeD := getCounterValue(delivered)
	beforeQ := getCounterValue(queued)

	RecordNotification("like", true)
	RecordNotification("like", false)

	if got := getCounterValue(delivered); got != beforeD+1 {
		t.Errorf("delivered = %v, want %v", got, beforeD+1)
	}
	if got := getCounterValue(queued); got != beforeQ+1 {
		t.Errorf("undelivered = %v, want %v", got, beforeQ+1)
	}
}

func TestRecordCircuitBreakerTransition(t *testing.T) {
	tests := []struct {
		to   string
		want float64
	}{
		{"open", 2},
		{"half-open", 1},
		{"closed", 0},
	}

	for _, tt := range tests {
		t.Run(tt.to, func(t *testing.T) {
			RecordCircuitBreakerTransition("recommend-test", "closed", tt.to)
			if got := getGaugeValue(CircuitBreakerState.WithLabelValues("recommend-test")); got != tt.want {
				t.Errorf("state gauge = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := getGaugeValue(APIActiveRequests)
	TrackActiveRequest(true)
	if got := getGaugeValue(APIActiveRequests); got != before+1 {
		t.Errorf("active requests = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := getGaugeValue(APIActiveRequests); got != before {
		t.Errorf("active requests = %v, want %v", got, before)
	}
}

// TestMetricGathering tests that registered metrics pass the Prometheus linter
func TestMetricGathering(t *testing.T) {
	RecordAPIRequest("GET", "/api/v1/recommendations", "200", 20*time.Millisecond)
	RecordKVOperation("memory", "update", 50*time.Microsecond)

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Fatalf("GatherAndLint() error = %v", err)
	}
	for _, p := range problems {
		if len(p.Metric) > 9 && p.Metric[:9] == "tablemap_" {
			t.Errorf("lint problem on %s: %s", p.Metric, p.Text)
		}
	}
}
