package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jdoherty/fhir-admin/config"
	"github.com/jdoherty/fhir-admin/internal/job"
	"github.com/jdoherty/fhir-admin/internal/sampledata"
	"github.com/jdoherty/fhir-admin/internal/search"
	"github.com/jdoherty/fhir-admin/internal/store"
	"github.com/jdoherty/fhir-admin/internal/users"
)

// Server handles HTTP requests for the FHIR admin API
type Server struct {
	cfg    *config.Config
	router *gin.Engine

	connections *store.Manager
	samples     *sampledata.Service
	users       *users.Service
	search      *search.Service
	jobs        *job.Manager
}

// New creates a new HTTP server instance
func New(
	cfg *config.Config,
	connections *store.Manager,
	samples *sampledata.Service,
	userService *users.Service,
	searchService *search.Service,
) *Server {
	router := gin.Default()

	server := &Server{
		cfg:         cfg,
		router:      router,
		connections: connections,
		samples:     samples,
		users:       userService,
		search:      searchService,
		jobs:        job.NewManager(),
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes() {
	// Add CORS middleware
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check endpoint
	s.router.GET("/health", s.health)

	api := s.router.Group("/api")
	{
		sample := api.Group("/sample-data")
		{
			sample.POST("/load", s.loadSampleData)
			sample.POST("/load-with-progress", s.loadSampleDataWithProgress)
			sample.GET("/availability", s.sampleDataAvailability)
			sample.GET("/stats", s.sampleDataStats)
			sample.GET("/health", s.sampleDataHealth)
		}

		api.GET("/jobs", s.listJobs)
		api.GET("/jobs/:id", s.getJobStatus)

		api.POST("/connections", s.createConnection)
		api.GET("/connections", s.listConnections)
		api.DELETE("/connections/:name", s.deleteConnection)

		api.POST("/users", s.createUser)
		api.GET("/users", s.listUsers)
		api.GET("/users/:id", s.getUser)

		fts := api.Group("/fts")
		{
			fts.PUT("/indexes/:name", s.ensureSearchIndex)
			fts.GET("/indexes", s.listSearchIndexes)
			fts.DELETE("/indexes/:name", s.dropSearchIndex)
		}
	}
}

// Start starts the HTTP server
func (s *Server) Start(port string) error {
	return s.router.Run(":" + port)
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// health godoc
// @Summary Health check
// @Tags Utility
// @Produce json
// @Success 200 {object} MessageResponse
// @Router /health [get]
func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
		"service":   "fhir-admin",
	})
}
