package api

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// handleHealth returns liveness plus a few process counters.
func (s *Server) handleHealth(c *gin.Context) {
	resp := gin.H{
		"status":      "ok",
		"service":     "gserver",
		"uptime":      time.Since(s.started).Round(time.Second).String(),
		"connections": s.registry.Count(),
		"goroutines":  runtime.NumGoroutine(),
	}

	if stats, err := currentProcessStats(c.Request.Context()); err == nil {
		resp["rss_bytes"] = stats.RSS
		resp["cpu_percent"] = stats.CPUPercent
		resp["open_files"] = stats.OpenFiles
	}

	c.JSON(http.StatusOK, resp)
}

// handleConnections lists every live connection ordered by id.
func (s *Server) handleConnections(c *gin.Context) {
	conns := s.registry.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"total":       len(conns),
		"connections": conns,
	})
}

// handleConnection returns one connection.
func (s *Server) handleConnection(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid connection id"})
		return
	}

	info, ok := s.registry.Lookup(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "connection not found"})
		return
	}
	c.JSON(http.StatusOK, info)
}
