package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/felixggj/happy-robot-fde/internal/api/apitest"
	"github.com/felixggj/happy-robot-fde/internal/models"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLoadsCommandSendsFilter(t *testing.T) {
	srv := apitest.New("secret123")
	defer srv.Close()

	out, err := run(t, "loads", "--base-url", srv.URL, "--api-key", "secret123",
		"--origin", "Chicago", "--max-results", "5", "--json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec, _ := srv.LastRequest()
	if rec.Path != "/api/loads/search" || rec.RawQuery != "origin=Chicago&max_results=5" {
		t.Fatalf("unexpected request: %s?%s", rec.Path, rec.RawQuery)
	}
	if rec.Header.Get("x-api-key") != "secret123" {
		t.Fatalf("api key flag not applied")
	}

	var loads []models.Load
	if err := json.Unmarshal([]byte(out), &loads); err != nil {
		t.Fatalf("expected JSON output: %v\n%s", err, out)
	}
	if len(loads) != len(srv.Loads) {
		t.Fatalf("unexpected loads: %+v", loads)
	}
}

func TestCallsCommandTable(t *testing.T) {
	srv := apitest.New("")
	defer srv.Close()

	out, err := run(t, "calls", "--base-url", srv.URL, "--limit", "2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Acme Freight LLC") || !strings.Contains(out, "$2,400.00") {
		t.Fatalf("table missing call data:\n%s", out)
	}
	if strings.Contains(out, "Coastal Reefer Co") {
		t.Fatalf("limit not applied:\n%s", out)
	}
}

func TestMetricsCommandFailure(t *testing.T) {
	srv := apitest.New("")
	defer srv.Close()
	srv.Respond("/api/metrics", http.StatusInternalServerError, `{}`)

	_, err := run(t, "metrics", "--base-url", srv.URL)
	if err == nil || !strings.HasPrefix(err.Error(), "Failed to fetch metrics") {
		t.Fatalf("expected generic failure message, got %v", err)
	}
}

func TestOfferCommand(t *testing.T) {
	srv := apitest.New("")
	defer srv.Close()

	out, err := run(t, "offer", "--base-url", srv.URL, "--load-id", "LOAD001", "--initial-rate", "2600")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "decision: counter") || !strings.Contains(out, "$2,350.00") {
		t.Fatalf("unexpected offer output:\n%s", out)
	}

	rec, _ := srv.LastRequest()
	var sent map[string]any
	if err := json.Unmarshal(rec.Body, &sent); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if _, ok := sent["agreed_rate"]; ok {
		t.Fatalf("agreed_rate must be omitted when the flag is not set: %s", rec.Body)
	}

	if _, err := run(t, "offer", "--base-url", srv.URL); err == nil {
		t.Fatalf("expected missing --load-id to fail")
	}
}

func TestVerifyCommand(t *testing.T) {
	srv := apitest.New("")
	defer srv.Close()

	out, err := run(t, "verify", "MC-123456", "--base-url", srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "eligible: true") || !strings.Contains(out, "Acme Freight LLC") {
		t.Fatalf("unexpected verify output:\n%s", out)
	}
}
