package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	pingDB    func() error
	pingRedis func() error
}

func NewHealthHandler(pingDB, pingRedis func() error) *HealthHandler {
	return &HealthHandler{
		pingDB:    pingDB,
		pingRedis: pingRedis,
	}
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz reports ready only when both backing stores answer.
func (h *HealthHandler) Readyz(ctx *gin.Context) {
	if h.pingDB != nil {
		if err := h.pingDB(); err != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "db": err.Error()})
			return
		}
	}

	if h.pingRedis != nil {
		if err := h.pingRedis(); err != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "redis": err.Error()})
			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
}
