// Package api is the thin HTTP consumer of the bridge facade: a
// request/response endpoint for one-shot snapshots and a WebSocket endpoint
// projecting the push subscription. It exposes data, not presentation.
package api

import (
	"context"

	"github.com/gin-gonic/gin"

	"chargerbridge/pkg/models"
)

// Bridge is the facade surface the HTTP layer consumes.
type Bridge interface {
	GetSnapshot(ctx context.Context) models.SnapshotResult
	Subscribe(onUpdate func(models.BridgeEvent)) func()
	Chargers() []models.ChargerRecord
	Charger(ip string) (models.ChargerRecord, bool)
	Monitoring() bool
	RestartMonitor() error
}

// NewRouter builds the gin engine with all bridge routes registered.
func NewRouter(bridge Bridge) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	h := &handlers{bridge: bridge}

	g := router.Group("/api")
	{
		g.GET("/snapshot", h.snapshot)
		g.GET("/chargers", h.listChargers)
		g.GET("/chargers/:ip", h.getCharger)
		g.GET("/stream", h.stream)
		g.POST("/monitor/restart", h.restartMonitor)
		g.GET("/health", h.health)
	}

	return router
}
