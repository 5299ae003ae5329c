package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/anchorvcs/anchor/docs"
)

// HealthChecker reports whether the server is ready to accept traffic.
// internal/snapshot.Repo and internal/objectstore.Store don't have a
// single "are you alive" call, so the sidecar takes a closure instead of
// depending on either package directly.
type HealthChecker func() error

// Server is the admin sidecar: a small gin app on its own listen address
// exposing liveness, Prometheus metrics, and a Swagger UI for the main
// HTTP surface.
type Server struct {
	http   *http.Server
	engine *gin.Engine
}

// NewServer builds the sidecar app around addr. ready is consulted by
// GET /readyz; a nil ready always reports ready.
func NewServer(addr string, ready HealthChecker) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/healthz", handleHealthz)
	engine.GET("/readyz", handleReadyz(ready))
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return &Server{
		engine: engine,
		http: &http.Server{
			Addr:              addr,
			Handler:           engine,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start runs the sidecar until the process is asked to stop; it returns
// nil on a clean Shutdown and any other listen error otherwise.
func (s *Server) Start() error {
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("metrics sidecar: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the sidecar.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// healthzResponse and readyzResponse are the JSON bodies of /healthz and
// /readyz.
type healthzResponse struct {
	Status string `json:"status"`
}

type readyzResponse struct {
	Ready bool   `json:"ready"`
	Error string `json:"error,omitempty"`
}

// handleHealthz godoc
//
//	@Summary		Liveness probe
//	@Description	Reports the sidecar process is up. Always 200.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	healthzResponse
//	@Router			/healthz [get]
func handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, healthzResponse{Status: "ok"})
}

// handleReadyz godoc
//
//	@Summary		Readiness probe
//	@Description	Reports whether the server can currently serve requests.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	readyzResponse
//	@Failure		503	{object}	readyzResponse
//	@Router			/readyz [get]
func handleReadyz(ready HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ready == nil {
			c.JSON(http.StatusOK, readyzResponse{Ready: true})
			return
		}
		if err := ready(); err != nil {
			c.JSON(http.StatusServiceUnavailable, readyzResponse{Ready: false, Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, readyzResponse{Ready: true})
	}
}
