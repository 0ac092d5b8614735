package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"HTTPRequestsTotal", HTTPRequestsTotal},
		{"HTTPRequestDuration", HTTPRequestDuration},
		{"HTTPRequestsInFlight", HTTPRequestsInFlight},
		{"ResolutionsTotal", ResolutionsTotal},
		{"WarningsTotal", WarningsTotal},
		{"RendersTotal", RendersTotal},
		{"OEmbedFetchesTotal", OEmbedFetchesTotal},
		{"OEmbedFetchDuration", OEmbedFetchDuration},
		{"AppInfo", AppInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestWarningsCounter(t *testing.T) {
	c := WarningsTotal.WithLabelValues("metrics_test", "invalid_ratio")
	before := testutil.ToFloat64(c)
	c.Inc()
	if got := testutil.ToFloat64(c); got != before+1 {
		t.Errorf("counter = %v, want %v", got, before+1)
	}
}

func TestSetAppInfo(t *testing.T) {
	SetAppInfo("test", "go1.25")
	if got := testutil.ToFloat64(AppInfo.WithLabelValues("test", "go1.25")); got != 1 {
		t.Errorf("app info = %v, want 1", got)
	}
}
