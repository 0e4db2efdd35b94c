// Package apitest runs an in-process carrier sales API for tests. It serves
// fixed fixtures, records every request, and lets a test force a status,
// a raw body, or a stall on any path.
package apitest

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/felixggj/happy-robot-fde/internal/models"
)

type Recorded struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     []byte
}

type override struct {
	status int
	body   string
}

type Server struct {
	*httptest.Server

	APIKey  string
	Metrics models.Metrics
	Loads   []models.Load
	Calls   []models.CallSession

	mu        sync.Mutex
	requests  []Recorded
	overrides map[string]override
	holds     map[string]chan struct{}
}

// New starts a server. A non-empty apiKey is enforced the way the real API
// does: a missing or wrong x-api-key gets 401.
func New(apiKey string) *Server {
	s := &Server{
		APIKey:    apiKey,
		Metrics:   FixtureMetrics(),
		Loads:     FixtureLoads(),
		Calls:     FixtureCalls(),
		overrides: map[string]override{},
		holds:     map[string]chan struct{}{},
	}
	s.Server = httptest.NewServer(s.router())
	return s
}

// Respond makes path answer with status and a raw body instead of fixtures.
func (s *Server) Respond(path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[path] = override{status: status, body: body}
}

// Hold stalls requests to path until release is called or the caller gives
// up on the request.
func (s *Server) Hold(path string) (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.holds[path] = ch
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() { close(ch) })
	}
}

func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Recorded, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) LastRequest() (Recorded, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Recorded{}, false
	}
	return s.requests[len(s.requests)-1], true
}

func (s *Server) router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(s.record(), s.intercept())

	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(s.requireKey())
	{
		api.GET("/metrics", func(c *gin.Context) {
			c.JSON(http.StatusOK, s.Metrics)
		})
		api.GET("/loads/search", s.searchLoads)
		api.GET("/call-sessions", s.callSessions)
		api.POST("/verify", s.verify)
		api.POST("/offers/evaluate", s.evaluate)
	}
	return r
}

func (s *Server) record() gin.HandlerFunc {
	return func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		s.mu.Lock()
		s.requests = append(s.requests, Recorded{
			Method:   c.Request.Method,
			Path:     c.Request.URL.Path,
			RawQuery: c.Request.URL.RawQuery,
			Header:   c.Request.Header.Clone(),
			Body:     body,
		})
		s.mu.Unlock()
		c.Next()
	}
}

func (s *Server) intercept() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		s.mu.Lock()
		hold, held := s.holds[path]
		ov, overridden := s.overrides[path]
		s.mu.Unlock()

		if held {
			select {
			case <-hold:
			case <-c.Request.Context().Done():
				c.Abort()
				return
			}
		}
		if overridden {
			c.Data(ov.status, "application/json", []byte(ov.body))
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *Server) requireKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.APIKey == "" {
			c.Next()
			return
		}
		if c.GetHeader("x-api-key") != s.APIKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Invalid API key"})
			return
		}
		c.Next()
	}
}

func (s *Server) searchLoads(c *gin.Context) {
	n := len(s.Loads)
	if v, err := strconv.Atoi(c.Query("max_results")); err == nil && v >= 0 && v < n {
		n = v
	}
	c.JSON(http.StatusOK, s.Loads[:n])
}

func (s *Server) callSessions(c *gin.Context) {
	limit := len(s.Calls)
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v >= 0 && v < limit {
		limit = v
	}
	c.JSON(http.StatusOK, s.Calls[:limit])
}

func (s *Server) verify(c *gin.Context) {
	var req struct {
		CarrierMC string `json:"carrier_mc"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.CarrierMC == "" {
		status := "invalid"
		c.JSON(http.StatusOK, models.CarrierVerification{
			Status:    &status,
			RiskNotes: []string{"MC number is required"},
		})
		return
	}
	name := "Acme Freight LLC"
	status := "active"
	c.JSON(http.StatusOK, models.CarrierVerification{
		Eligible:  true,
		LegalName: &name,
		Status:    &status,
		RiskNotes: []string{},
	})
}

func (s *Server) evaluate(c *gin.Context) {
	var req models.OfferEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	for _, l := range s.Loads {
		if l.LoadID != req.LoadID {
			continue
		}
		floor := l.LoadboardRate * 0.9
		if alt := l.LoadboardRate - 150; alt > floor {
			floor = alt
		}
		if req.AgreedRate != nil && *req.AgreedRate >= floor {
			c.JSON(http.StatusOK, models.OfferEvaluation{Decision: "accept", Rate: req.AgreedRate, Floor: floor, Reason: "Final offer accepted"})
			return
		}
		if req.AgreedRate != nil {
			c.JSON(http.StatusOK, models.OfferEvaluation{Decision: "reject", Floor: floor, Reason: "Final offer below floor"})
			return
		}
		counter := floor
		c.JSON(http.StatusOK, models.OfferEvaluation{Decision: "counter", Rate: &counter, Floor: floor, Reason: "Counter offer"})
		return
	}
	c.JSON(http.StatusOK, models.OfferEvaluation{Decision: "reject", Reason: "Load not found"})
}
