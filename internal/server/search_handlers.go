package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ensureSearchIndex godoc
// @Summary Create or update a search index
// @Description Takes a console-export index definition, rewrites it for the target bucket and upserts it.
// @Tags Search
// @Accept json
// @Produce json
// @Param name path string true "Index name"
// @Param request body EnsureIndexRequest true "Index parameters"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/fts/indexes/{name} [put]
func (s *Server) ensureSearchIndex(c *gin.Context) {
	var req EnsureIndexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}

	name := c.Param("name")
	err := s.search.EnsureIndex(c.Request.Context(), req.ConnectionName, req.BucketName, name, req.Definition)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Search index %q upserted", name)})
}

// listSearchIndexes godoc
// @Summary List search indexes
// @Tags Search
// @Produce json
// @Param connection query string true "Connection name"
// @Success 200 {array} search.IndexInfo
// @Failure 400 {object} ErrorResponse
// @Router /api/fts/indexes [get]
func (s *Server) listSearchIndexes(c *gin.Context) {
	indexes, err := s.search.ListIndexes(c.Request.Context(), c.Query("connection"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, indexes)
}

// dropSearchIndex godoc
// @Summary Drop a search index
// @Tags Search
// @Produce json
// @Param name path string true "Index name"
// @Param connection query string true "Connection name"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/fts/indexes/{name} [delete]
func (s *Server) dropSearchIndex(c *gin.Context) {
	name := c.Param("name")

	err := s.search.DropIndex(c.Request.Context(), c.Query("connection"), name)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Search index %q dropped", name)})
}
