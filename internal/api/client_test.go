package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/felixggj/happy-robot-fde/internal/api/apitest"
	"github.com/felixggj/happy-robot-fde/internal/models"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestGetLoadsEndToEnd(t *testing.T) {
	body := `[{"load_id":"LOAD001","origin":"Chicago, IL","destination":"Atlanta, GA","pickup_datetime":"2024-01-15 08:00","delivery_datetime":"2024-01-16 18:00","equipment_type":"Dry Van","loadboard_rate":2500,"weight":35000,"score":40}]`
	var got *http.Request
	c := New("https://api.example.com", "secret123")
	c.HTTPClient = &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		got = r
		return jsonResponse(http.StatusOK, body), nil
	})}

	loads, err := c.GetLoads(context.Background(), models.LoadFilter{Origin: "Chicago", MaxResults: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Method != http.MethodGet {
		t.Fatalf("expected GET, got %s", got.Method)
	}
	if u := got.URL.String(); u != "https://api.example.com/api/loads/search?origin=Chicago&max_results=5" {
		t.Fatalf("unexpected url: %s", u)
	}
	if k := got.Header.Get("x-api-key"); k != "secret123" {
		t.Fatalf("expected api key header, got %q", k)
	}

	var want []models.Load
	if err := json.Unmarshal([]byte(body), &want); err != nil {
		t.Fatalf("fixture: %v", err)
	}
	if !reflect.DeepEqual(loads, want) {
		t.Fatalf("loads changed in transit: %+v", loads)
	}
	if loads[0].Notes != nil || loads[0].Miles != nil {
		t.Fatalf("absent optional fields must stay nil: %+v", loads[0])
	}
}

func TestGetLoadsOmitsAbsentFilters(t *testing.T) {
	srv := apitest.New("")
	defer srv.Close()
	c := New(srv.URL, "")

	if _, err := c.GetLoads(context.Background(), models.LoadFilter{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec, _ := srv.LastRequest()
	if rec.Path != "/api/loads/search" || rec.RawQuery != "" {
		t.Fatalf("expected bare path, got %s?%s", rec.Path, rec.RawQuery)
	}

	if _, err := c.GetLoads(context.Background(), models.LoadFilter{Destination: "Atlanta"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec, _ = srv.LastRequest()
	q, err := url.ParseQuery(rec.RawQuery)
	if err != nil {
		t.Fatalf("parse query: %v", err)
	}
	for _, key := range []string{"origin", "equipment_type", "max_results", "pickup_from", "pickup_to"} {
		if _, ok := q[key]; ok {
			t.Fatalf("expected %s to be absent, query %q", key, rec.RawQuery)
		}
	}
	if q.Get("destination") != "Atlanta" {
		t.Fatalf("expected destination=Atlanta, query %q", rec.RawQuery)
	}
}

func TestGetLoadsSerializesMaxResults(t *testing.T) {
	srv := apitest.New("")
	defer srv.Close()
	c := New(srv.URL, "")

	filter := models.LoadFilter{Origin: "Dallas, TX", EquipmentType: "Flatbed", MaxResults: 25}
	if _, err := c.GetLoads(context.Background(), filter); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec, _ := srv.LastRequest()
	if rec.RawQuery != "origin=Dallas%2C+TX&equipment_type=Flatbed&max_results=25" {
		t.Fatalf("unexpected query: %s", rec.RawQuery)
	}
	if !strings.HasSuffix(rec.RawQuery, "&max_results=25") {
		t.Fatalf("expected max_results=25 suffix, got %s", rec.RawQuery)
	}
}

func TestGetCallSessionsLimit(t *testing.T) {
	srv := apitest.New("")
	defer srv.Close()
	c := New(srv.URL, "")

	if _, err := c.GetCallSessions(context.Background(), 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec, _ := srv.LastRequest()
	if rec.Method != http.MethodGet || rec.Path != "/api/call-sessions" || rec.RawQuery != "limit=10" {
		t.Fatalf("unexpected request: %s %s?%s", rec.Method, rec.Path, rec.RawQuery)
	}

	if _, err := c.GetCallSessions(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec, _ = srv.LastRequest()
	if rec.Path != "/api/call-sessions" || rec.RawQuery != "" {
		t.Fatalf("expected no query string, got %q", rec.RawQuery)
	}
}

func TestCallSessionsReturnedUnmodified(t *testing.T) {
	srv := apitest.New("")
	defer srv.Close()
	c := New(srv.URL, "")

	calls, err := c.GetCallSessions(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(calls, srv.Calls) {
		t.Fatalf("expected server payload unchanged, got %+v", calls)
	}
	if calls[1].NegotiatedRate != nil {
		t.Fatalf("null negotiated_rate must decode to nil")
	}
}

func TestNonSuccessStatusFails(t *testing.T) {
	srv := apitest.New("")
	defer srv.Close()
	c := New(srv.URL, "")

	cases := []struct {
		status int
		text   string
	}{
		{http.StatusBadRequest, "Bad Request"},
		{http.StatusUnauthorized, "Unauthorized"},
		{http.StatusNotFound, "Not Found"},
		{http.StatusInternalServerError, "Internal Server Error"},
		{http.StatusServiceUnavailable, "Service Unavailable"},
	}
	for _, tc := range cases {
		srv.Respond("/api/metrics", tc.status, `{"total_calls":3}`)
		_, err := c.GetMetrics(context.Background())
		if err == nil {
			t.Fatalf("status %d: expected error", tc.status)
		}
		var rf *RequestFailedError
		if !errors.As(err, &rf) {
			t.Fatalf("status %d: expected RequestFailedError, got %T", tc.status, err)
		}
		if rf.StatusCode != tc.status || rf.StatusText != tc.text {
			t.Fatalf("status %d: unexpected error fields %+v", tc.status, rf)
		}
	}
}

func TestAcceptsAny2xx(t *testing.T) {
	srv := apitest.New("")
	defer srv.Close()
	c := New(srv.URL, "")

	srv.Respond("/api/health", http.StatusAccepted, `{"status":"degraded"}`)
	health, err := c.GetHealthStatus(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if health["status"] != "degraded" {
		t.Fatalf("unexpected health payload: %v", health)
	}
}

func TestMalformedJSONFails(t *testing.T) {
	srv := apitest.New("")
	defer srv.Close()
	c := New(srv.URL, "")

	srv.Respond("/api/loads/search", http.StatusOK, `[{"load_id":`)
	_, err := c.GetLoads(context.Background(), models.LoadFilter{})
	if err == nil {
		t.Fatalf("expected decode error")
	}
	if IsRequestFailed(err) {
		t.Fatalf("decode failure must not look like a status failure: %v", err)
	}

	srv.Respond("/api/metrics", http.StatusOK, `["not","an","object"]`)
	if _, err := c.GetMetrics(context.Background()); err == nil {
		t.Fatalf("expected shape mismatch to fail")
	}
}

func TestTransportFailure(t *testing.T) {
	srv := apitest.New("")
	base := srv.URL
	srv.Close()

	c := New(base, "")
	_, err := c.GetMetrics(context.Background())
	if err == nil {
		t.Fatalf("expected transport error")
	}
	if IsRequestFailed(err) {
		t.Fatalf("transport failure must not be a RequestFailedError")
	}
	if UserMessage("metrics", err) != "Failed to fetch metrics" {
		t.Fatalf("unexpected user message: %s", UserMessage("metrics", err))
	}
}

func TestRequestHeaders(t *testing.T) {
	srv := apitest.New("")
	defer srv.Close()

	c := New(srv.URL, "")
	if _, err := c.GetHealthStatus(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec, _ := srv.LastRequest()
	if ct := rec.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected json content type, got %q", ct)
	}
	if vals, ok := rec.Header["X-Api-Key"]; !ok || len(vals) != 1 || vals[0] != "" {
		t.Fatalf("expected empty api key header, got %v", rec.Header["X-Api-Key"])
	}

	c = New(srv.URL, "k1")
	_, err := c.Request(context.Background(), "/api/health", RequestOptions{
		Headers: map[string]string{"Content-Type": "text/plain", "X-Trace-Id": "abc"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec, _ = srv.LastRequest()
	if ct := rec.Header.Get("Content-Type"); ct != "text/plain" {
		t.Fatalf("caller header should override content type, got %q", ct)
	}
	if rec.Header.Get("X-Trace-Id") != "abc" || rec.Header.Get("x-api-key") != "k1" {
		t.Fatalf("unexpected headers: %v", rec.Header)
	}
}

func TestWrongKeyRejected(t *testing.T) {
	srv := apitest.New("right")
	defer srv.Close()

	_, err := New(srv.URL, "wrong").GetMetrics(context.Background())
	var rf *RequestFailedError
	if !errors.As(err, &rf) || rf.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 RequestFailedError, got %v", err)
	}
	if _, err := New(srv.URL, "right").GetMetrics(context.Background()); err != nil {
		t.Fatalf("unexpected error with valid key: %v", err)
	}
}

func TestConcurrentCallsIndependent(t *testing.T) {
	srv := apitest.New("")
	defer srv.Close()
	srv.Respond("/api/metrics", http.StatusBadGateway, `{}`)
	c := New(srv.URL, "")

	var (
		wg         sync.WaitGroup
		metricsErr error
		loads      []models.Load
		loadsErr   error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, metricsErr = c.GetMetrics(context.Background())
	}()
	go func() {
		defer wg.Done()
		loads, loadsErr = c.GetLoads(context.Background(), models.LoadFilter{})
	}()
	wg.Wait()

	if !IsRequestFailed(metricsErr) {
		t.Fatalf("expected metrics to fail, got %v", metricsErr)
	}
	if loadsErr != nil {
		t.Fatalf("loads should succeed independently: %v", loadsErr)
	}
	if !reflect.DeepEqual(loads, srv.Loads) {
		t.Fatalf("unexpected loads: %+v", loads)
	}
}

func TestCancelledContextAbortsRequest(t *testing.T) {
	srv := apitest.New("")
	defer srv.Close()
	release := srv.Hold("/api/metrics")
	defer release()

	c := New(srv.URL, "")
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.GetMetrics(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestVerifyCarrierPostsJSON(t *testing.T) {
	srv := apitest.New("")
	defer srv.Close()
	c := New(srv.URL+"/", "")

	res, err := c.VerifyCarrier(context.Background(), "MC-123456")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Eligible || res.LegalName == nil || *res.LegalName != "Acme Freight LLC" {
		t.Fatalf("unexpected verification: %+v", res)
	}
	rec, _ := srv.LastRequest()
	if rec.Method != http.MethodPost || rec.Path != "/api/verify" {
		t.Fatalf("unexpected request: %s %s", rec.Method, rec.Path)
	}
	var sent map[string]string
	if err := json.Unmarshal(rec.Body, &sent); err != nil || sent["carrier_mc"] != "MC-123456" {
		t.Fatalf("unexpected body %s (%v)", rec.Body, err)
	}
}

func TestEvaluateOffer(t *testing.T) {
	srv := apitest.New("")
	defer srv.Close()
	c := New(srv.URL, "")

	agreed := 2400.0
	res, err := c.EvaluateOffer(context.Background(), models.OfferEvaluationRequest{LoadID: "LOAD001", InitialRate: 2300, AgreedRate: &agreed})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Decision != "accept" || res.Floor != 2350 {
		t.Fatalf("unexpected evaluation: %+v", res)
	}
}

func TestNewDefaultsBaseURL(t *testing.T) {
	c := New("  ", "")
	if c.BaseURL != DefaultBaseURL {
		t.Fatalf("expected default base url, got %q", c.BaseURL)
	}
	if c.HTTPClient.Timeout != 0 {
		t.Fatalf("client must not impose its own timeout")
	}
}
