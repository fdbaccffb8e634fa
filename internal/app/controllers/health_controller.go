package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studyhub/internal/app/models/dto"
)

// Pinger is anything whose connectivity can be checked
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController reports whether the backing stores are reachable
type HealthController struct {
	checks map[string]Pinger
}

// NewHealthController creates a HealthController. Nil pingers are skipped.
func NewHealthController(checks map[string]Pinger) *HealthController {
	active := make(map[string]Pinger, len(checks))
	for name, p := range checks {
		if p != nil {
			active[name] = p
		}
	}
	return &HealthController{checks: active}
}

// Health pings every dependency
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} dto.APIResponse
// @Failure 503 {object} dto.APIResponse
// @Router /health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	result := make(map[string]string, len(c.checks))
	for name, p := range c.checks {
		if err := p.Ping(reqCtx); err != nil {
			result[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		result[name] = "up"
	}

	resp := dto.NewSuccessResponse(result)
	resp.Success = status == http.StatusOK
	ctx.JSON(status, resp)
}
