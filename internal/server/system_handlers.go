package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SystemInfoResponse describes the running server
type SystemInfoResponse struct {
	Version string `json:"version"`
	TLS     bool   `json:"tls"`
}

// @Router /health [get]
// @Success 200 {object} map[string]interface{}
func (s *Server) healthCheck(c *gin.Context) {
	status := http.StatusOK
	state := "online"

	if sqlDB, err := s.db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}

	c.JSON(status, gin.H{
		"status":    state,
		"timestamp": time.Now().UTC(),
		"service":   "terra-api",
	})
}

// @Router /system/info [get]
// @Success 200 {object} SystemInfoResponse
func (s *Server) getSystemInfo(c *gin.Context) {
	c.JSON(http.StatusOK, SystemInfoResponse{
		Version: s.version,
		TLS:     s.config.Server.Secure(),
	})
}
