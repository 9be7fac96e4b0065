package server

import (
	"net/http"
	"time"

	"pellematic2mqtt/internal/core/domain"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	if s.httpLog {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())

	e.GET("/healthcheck", s.HealthCheckHandler)
	e.POST("/rediscover", s.RediscoverHandler)

	return e
}

func (s *Server) HealthCheckHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.ActorHealthRequest{}, 10*time.Second).Result()
	if err != nil {
		return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
	}
	if response, ok := res.(domain.ActorHealthResponse); ok && response.Healthy {
		return c.String(http.StatusOK, "health_check: OK")
	}
	return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
}

// RediscoverHandler forces a fresh discovery pass, republishing the Home
// Assistant configs. Useful after the heating installation changes.
func (s *Server) RediscoverHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.TriggerDiscoveryRequest{}, 30*time.Second).Result()
	if err != nil {
		return c.String(http.StatusServiceUnavailable, "rediscover: FAIL")
	}
	if _, ok := res.(domain.TriggerDiscoveryResponse); ok {
		return c.String(http.StatusOK, "rediscover: OK")
	}
	return c.String(http.StatusServiceUnavailable, "rediscover: FAIL")
}
