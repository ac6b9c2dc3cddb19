package orderserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apierrors "github.com/Apurer/go-gin-orders-api/internal/shared/errors"
)

// HealthCheck reports the readiness of one dependency.
type HealthCheck func(ctx context.Context) error

// HealthAPI serves the liveness and readiness probe.
type HealthAPI struct {
	checks map[string]HealthCheck
}

// NewHealthAPI creates a HealthAPI running the named checks on every probe.
func NewHealthAPI(checks map[string]HealthCheck) HealthAPI {
	return HealthAPI{checks: checks}
}

// Get /health
func (api *HealthAPI) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	results := make(map[string]string, len(api.checks))
	healthy := true
	for name, check := range api.checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			healthy = false
			continue
		}
		results[name] = "ok"
	}
	if !healthy {
		respondProblem(c, apierrors.ErrUnavailable.WithExtension("checks", results))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": results})
}
