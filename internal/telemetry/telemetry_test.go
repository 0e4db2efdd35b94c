package telemetry

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInstrumentClientCountsRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	before := testutil.ToFloat64(UpstreamRequests.WithLabelValues("418", "get"))

	base := &http.Client{}
	c := InstrumentClient(base)
	if base.Transport != nil {
		t.Fatalf("original client must not be modified")
	}
	resp, err := c.Get(srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	after := testutil.ToFloat64(UpstreamRequests.WithLabelValues("418", "get"))
	if after != before+1 {
		t.Fatalf("expected counter to grow by one, got %v -> %v", before, after)
	}
}

func TestObservePanelResults(t *testing.T) {
	cases := []struct {
		err     error
		applied bool
		result  string
	}{
		{nil, true, "ok"},
		{errors.New("boom"), true, "error"},
		{nil, false, "dropped"},
	}
	for _, tc := range cases {
		before := testutil.ToFloat64(PanelLoads.WithLabelValues("test", tc.result))
		ObservePanel("test", 0.1, tc.err, tc.applied)
		if got := testutil.ToFloat64(PanelLoads.WithLabelValues("test", tc.result)); got != before+1 {
			t.Fatalf("%s: expected %v, got %v", tc.result, before+1, got)
		}
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	ObservePanel("metrics", 0.2, nil, true)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "dashboard_panel_loads_total") {
		t.Fatalf("exposition missing panel counter")
	}
}
