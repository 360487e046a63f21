package server

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthStatus is the status of a health check.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

const healthCheckTimeout = 2 * time.Second

// HealthResponse is the /health body.
type HealthResponse struct {
	Status  HealthStatus           `json:"status"`
	Service string                 `json:"service"`
	Version string                 `json:"version"`
	Uptime  string                 `json:"uptime"`
	Checks  map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is one named check.
type CheckResult struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
	Latency string       `json:"latency,omitempty"`
}

// HealthChecker runs one check.
type HealthChecker func(ctx context.Context) CheckResult

// MemoryHealth is the /health/memory body.
type MemoryHealth struct {
	Timestamp    time.Time `json:"timestamp"`
	HeapAllocMB  float64   `json:"heap_alloc_mb"`
	HeapInuseMB  float64   `json:"heap_inuse_mb"`
	StackInuseMB float64   `json:"stack_inuse_mb"`
	NumGC        uint32    `json:"num_gc"`
	NumGoroutine int       `json:"num_goroutine"`
}

// RegisterHealthRoutes adds GET/HEAD /health and GET /health/memory.
func RegisterHealthRoutes(router *gin.Engine, service, version string, checks map[string]HealthChecker) {
	started := time.Now()

	router.GET("/health", func(c *gin.Context) {
		resp := HealthResponse{
			Status:  HealthStatusHealthy,
			Service: service,
			Version: version,
			Uptime:  time.Since(started).Truncate(time.Second).String(),
		}

		if len(checks) > 0 {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
			defer cancel()

			resp.Checks = make(map[string]CheckResult, len(checks))
			for name, check := range checks {
				result := check(ctx)
				resp.Checks[name] = result
				switch {
				case result.Status == HealthStatusUnhealthy:
					resp.Status = HealthStatusUnhealthy
				case result.Status == HealthStatusDegraded && resp.Status == HealthStatusHealthy:
					resp.Status = HealthStatusDegraded
				}
			}
		}

		code := http.StatusOK
		if resp.Status == HealthStatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, resp)
	})

	router.HEAD("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	router.GET("/health/memory", func(c *gin.Context) {
		var stats runtime.MemStats
		runtime.ReadMemStats(&stats)

		const mb = 1024 * 1024
		c.JSON(http.StatusOK, MemoryHealth{
			Timestamp:    time.Now().UTC(),
			HeapAllocMB:  float64(stats.Alloc) / mb,
			HeapInuseMB:  float64(stats.HeapInuse) / mb,
			StackInuseMB: float64(stats.StackInuse) / mb,
			NumGC:        stats.NumGC,
			NumGoroutine: runtime.NumGoroutine(),
		})
	})
}

// DatabaseHealthChecker reports unhealthy when ping fails.
func DatabaseHealthChecker(ping func(ctx context.Context) error) HealthChecker {
	return pingChecker("Database", HealthStatusUnhealthy, ping)
}

// RedisHealthChecker reports degraded when ping fails.
func RedisHealthChecker(ping func(ctx context.Context) error) HealthChecker {
	return pingChecker("Redis", HealthStatusDegraded, ping)
}

func pingChecker(name string, failStatus HealthStatus, ping func(ctx context.Context) error) HealthChecker {
	return func(ctx context.Context) CheckResult {
		start := time.Now()
		err := ping(ctx)
		latency := time.Since(start).String()

		if err != nil {
			return CheckResult{Status: failStatus, Message: name + " connection failed", Latency: latency}
		}
		return CheckResult{Status: HealthStatusHealthy, Message: name + " connection OK", Latency: latency}
	}
}
