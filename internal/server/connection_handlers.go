package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jdoherty/fhir-admin/config"
)

// createConnection godoc
// @Summary Register a store connection
// @Description Connects to the cluster, waits for the bucket and keeps the connection under its name.
// @Tags Connections
// @Accept json
// @Produce json
// @Param request body config.ConnectionConfig true "Connection parameters"
// @Success 201 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/connections [post]
func (s *Server) createConnection(c *gin.Context) {
	var cfg config.ConnectionConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}

	if err := s.connections.Register(c.Request.Context(), cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("failed to connect: %v", err)})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": fmt.Sprintf("Connection %q registered", cfg.Name)})
}

// listConnections godoc
// @Summary List registered connections
// @Tags Connections
// @Produce json
// @Success 200 {array} store.ConnectionInfo
// @Router /api/connections [get]
func (s *Server) listConnections(c *gin.Context) {
	c.JSON(http.StatusOK, s.connections.List())
}

// deleteConnection godoc
// @Summary Close and remove a connection
// @Tags Connections
// @Produce json
// @Param name path string true "Connection name"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/connections/{name} [delete]
func (s *Server) deleteConnection(c *gin.Context) {
	name := c.Param("name")

	if err := s.connections.Close(name); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Connection %q closed", name)})
}
