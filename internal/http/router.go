package httpapi

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/felixggj/happy-robot-fde/internal/config"
	"github.com/felixggj/happy-robot-fde/internal/http/handlers"
	"github.com/felixggj/happy-robot-fde/internal/http/middleware"
	"github.com/felixggj/happy-robot-fde/internal/telemetry"

	_ "github.com/felixggj/happy-robot-fde/docs"
)

func Router(cfg config.Config, upstream handlers.Upstream, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.DashboardKeyHeader, middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = splitOrigins(cfg.CORSAllowed)
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		API:             upstream,
		Validator:       validator.New(),
		Logger:          logger,
		LoadsMaxResults: cfg.LoadsMaxResults,
		CallsLimit:      cfg.CallsLimit,
	}

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(telemetry.Handler()))

	dash := r.Group("/api/dashboard")
	dash.Use(middleware.DashboardKey(cfg.DashboardKey))
	{
		dash.GET("/metrics", h.Metrics)
		dash.GET("/loads", h.Loads)
		dash.GET("/call-sessions", h.CallSessions)
		dash.GET("/overview", h.Overview)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func splitOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
