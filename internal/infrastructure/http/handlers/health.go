package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Checker reports whether one dependency is reachable.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// CheckFunc adapts a function to Checker.
type CheckFunc struct {
	Dependency string
	Fn         func(ctx context.Context) error
}

func (c CheckFunc) Name() string                    { return c.Dependency }
func (c CheckFunc) Check(ctx context.Context) error { return c.Fn(ctx) }

// MongoChecker pings the database with a ping command.
func MongoChecker(db *mongo.Database) Checker {
	return CheckFunc{Dependency: "mongodb", Fn: func(ctx context.Context) error {
		return db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
	}}
}

// RedisChecker pings the Redis server.
func RedisChecker(rdb *redis.Client) Checker {
	return CheckFunc{Dependency: "redis", Fn: func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}}
}

// HealthHandler serves GET /health, the liveness probe, and GET /health/ready,
// the readiness probe over the configured dependencies.
type HealthHandler struct {
	checkers []Checker
	timeout  time.Duration
}

func NewHealthHandler(checkers ...Checker) *HealthHandler {
	return &HealthHandler{checkers: checkers, timeout: 3 * time.Second}
}

// Liveness answers 200 as long as the process serves requests.
//
// @Summary  Liveness probe
// @Tags     health
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   /health [get]
func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

// Readiness checks every dependency and answers 503 when one is down.
//
// @Summary  Readiness probe
// @Tags     health
// @Produce  json
// @Success  200  {object}  readinessResponse
// @Failure  503  {object}  readinessResponse
// @Router   /health/ready [get]
func (h *HealthHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	deps := make(map[string]dependencyStatus, len(h.checkers))
	healthy := true

	checkers := append([]Checker(nil), h.checkers...)
	sort.Slice(checkers, func(i, j int) bool { return checkers[i].Name() < checkers[j].Name() })
	for _, chk := range checkers {
		if err := chk.Check(ctx); err != nil {
			deps[chk.Name()] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
			healthy = false
			continue
		}
		deps[chk.Name()] = dependencyStatus{Status: "ok"}
	}

	status := "ok"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}
