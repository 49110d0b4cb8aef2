package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type handlers struct {
	bridge Bridge
}

// snapshot triggers the one-shot snapshot call. Producer failures come back
// as a discriminated result, projected to 502 so the shell can tell "the
// producer failed" apart from "the bridge failed".
func (h *handlers) snapshot(c *gin.Context) {
	result := h.bridge.GetSnapshot(c.Request.Context())
	if !result.Success {
		c.JSON(http.StatusBadGateway, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// listChargers returns the registry's current contents in stable order.
func (h *handlers) listChargers(c *gin.Context) {
	c.JSON(http.StatusOK, h.bridge.Chargers())
}

// getCharger returns the last known record for one device.
func (h *handlers) getCharger(c *gin.Context) {
	record, ok := h.bridge.Charger(c.Param("ip"))
	if !ok {
		c.JSON(http.StatusNotFound, errorBody("charger not found"))
		return
	}
	c.JSON(http.StatusOK, record)
}

// restartMonitor deliberately respawns the monitoring session. No-op with
// 200 when a session is already active (singleton enforcement lives in the
// supervisor).
func (h *handlers) restartMonitor(c *gin.Context) {
	if err := h.bridge.RestartMonitor(); err != nil {
		c.JSON(http.StatusBadGateway, errorBody(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"monitoring": h.bridge.Monitoring()})
}

// health reports monitor liveness and registry size.
func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"monitoring": h.bridge.Monitoring(),
		"chargers":   len(h.bridge.Chargers()),
	})
}
