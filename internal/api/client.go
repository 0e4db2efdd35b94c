package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/felixggj/happy-robot-fde/internal/models"
)

const DefaultBaseURL = "https://happy-robot-fde-production.up.railway.app"

const apiKeyHeader = "x-api-key"

// Client talks to the carrier sales API. It is safe for concurrent use and
// holds no state between calls.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

type RequestOptions struct {
	Method  string
	Body    any
	Headers map[string]string
}

// New builds a client. An empty baseURL falls back to DefaultBaseURL; an
// empty apiKey is still sent and left to the server to reject.
func New(baseURL, apiKey string) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{},
		Logger:     zerolog.Nop(),
	}
}

// Request issues one call and returns the raw JSON body. Non-2xx responses
// fail with *RequestFailedError whatever the body holds.
func (c *Client) Request(ctx context.Context, path string, opts RequestOptions) (json.RawMessage, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if opts.Body != nil {
		b, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", path, err)
		}
		body = bytes.NewReader(b)
	}

	endpoint := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, c.APIKey)
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		c.Logger.Debug().Err(err).Str("method", method).Str("path", path).Msg("upstream request failed")
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.Logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("upstream request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newRequestFailed(method, path, resp)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("decode %s: invalid JSON body", path)
	}
	return raw, nil
}

func (c *Client) GetHealthStatus(ctx context.Context) (models.HealthStatus, error) {
	var out models.HealthStatus
	err := c.getJSON(ctx, "/api/health", &out)
	return out, err
}

func (c *Client) GetMetrics(ctx context.Context) (models.Metrics, error) {
	var out models.Metrics
	err := c.getJSON(ctx, "/api/metrics", &out)
	return out, err
}

// GetLoads searches loads. Ordering and filtering belong to the server; the
// result is returned exactly as sent.
func (c *Client) GetLoads(ctx context.Context, filter models.LoadFilter) ([]models.Load, error) {
	var q query
	q.add("origin", filter.Origin)
	q.add("destination", filter.Destination)
	q.add("equipment_type", filter.EquipmentType)
	q.add("pickup_from", filter.PickupFrom)
	q.add("pickup_to", filter.PickupTo)
	if filter.MaxResults > 0 {
		q.add("max_results", strconv.Itoa(filter.MaxResults))
	}

	var out []models.Load
	err := c.getJSON(ctx, "/api/loads/search"+q.encode(), &out)
	return out, err
}

// GetCallSessions lists recent calls. A non-positive limit leaves the page
// size to the server.
func (c *Client) GetCallSessions(ctx context.Context, limit int) ([]models.CallSession, error) {
	var q query
	if limit > 0 {
		q.add("limit", strconv.Itoa(limit))
	}

	var out []models.CallSession
	err := c.getJSON(ctx, "/api/call-sessions"+q.encode(), &out)
	return out, err
}

func (c *Client) VerifyCarrier(ctx context.Context, carrierMC string) (models.CarrierVerification, error) {
	var out models.CarrierVerification
	payload := map[string]string{"carrier_mc": carrierMC}
	err := c.doJSON(ctx, "/api/verify", RequestOptions{Method: http.MethodPost, Body: payload}, &out)
	return out, err
}

func (c *Client) EvaluateOffer(ctx context.Context, offer models.OfferEvaluationRequest) (models.OfferEvaluation, error) {
	var out models.OfferEvaluation
	err := c.doJSON(ctx, "/api/offers/evaluate", RequestOptions{Method: http.MethodPost, Body: offer}, &out)
	return out, err
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, path, RequestOptions{}, out)
}

func (c *Client) doJSON(ctx context.Context, path string, opts RequestOptions, out any) error {
	raw, err := c.Request(ctx, path, opts)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// query keeps parameters in insertion order, unlike url.Values.Encode which
// sorts by key.
type query struct {
	parts []string
}

func (q *query) add(key, value string) {
	if value == "" {
		return
	}
	q.parts = append(q.parts, url.QueryEscape(key)+"="+url.QueryEscape(value))
}

func (q *query) encode() string {
	if len(q.parts) == 0 {
		return ""
	}
	return "?" + strings.Join(q.parts, "&")
}
