package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jdoherty/fhir-admin/internal/sampledata"
)

// sseTimeout caps how long a progress stream stays open. The load itself
// keeps running after the stream closes; the job registry holds the rest.
const sseTimeout = 5 * time.Minute

// eventBuffer sizes the channel between the load goroutine and the SSE
// writer. A slow client drops intermediate snapshots rather than stalling
// the load.
const eventBuffer = 256

// loadSampleData godoc
// @Summary Load sample FHIR data
// @Description Loads the packaged sample archive into the given bucket and blocks until done.
// @Tags SampleData
// @Accept json
// @Produce json
// @Param request body sampledata.Request true "Load parameters"
// @Success 200 {object} sampledata.Result
// @Failure 400 {object} sampledata.Result
// @Router /api/sample-data/load [post]
func (s *Server) loadSampleData(c *gin.Context) {
	var req sampledata.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}

	jobStatus := s.jobs.CreateJob(req)
	s.jobs.Start(jobStatus.ID)
	c.Header("X-Job-ID", jobStatus.ID)

	reporter := sampledata.ReporterFunc(func(p sampledata.Progress) {
		s.jobs.AppendEvent(jobStatus.ID, p)
	})

	result := s.samples.LoadWithProgress(c.Request.Context(), req, reporter)
	s.jobs.Complete(jobStatus.ID, result)

	if result.Success {
		c.JSON(http.StatusOK, result)
	} else {
		c.JSON(http.StatusBadRequest, result)
	}
}

// loadSampleDataWithProgress godoc
// @Summary Load sample FHIR data with live progress
// @Description Streams progress snapshots over Server-Sent Events while the load runs in the background. Closing the stream does not stop the load.
// @Tags SampleData
// @Accept json
// @Produce text/event-stream
// @Param request body sampledata.Request true "Load parameters"
// @Success 200 {object} sampledata.Progress
// @Failure 400 {object} ErrorResponse
// @Router /api/sample-data/load-with-progress [post]
func (s *Server) loadSampleDataWithProgress(c *gin.Context) {
	var req sampledata.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %v", err)})
		return
	}

	jobStatus := s.jobs.CreateJob(req)
	s.jobs.Start(jobStatus.ID)
	c.Header("X-Job-ID", jobStatus.ID)

	slog.Info("Starting sample data load with progress",
		"jobId", jobStatus.ID, "connection", req.ConnectionName, "bucket", req.BucketName)

	events := make(chan sampledata.Progress, eventBuffer)
	reporter := sampledata.ReporterFunc(func(p sampledata.Progress) {
		s.jobs.AppendEvent(jobStatus.ID, p)
		select {
		case events <- p:
		default:
			slog.Warn("Dropping progress event for slow stream", "jobId", jobStatus.ID)
		}
	})

	// The load is detached from the request context: a disconnecting client
	// stops the stream, not the load.
	go func() {
		defer close(events)
		result := s.samples.LoadWithProgress(context.Background(), req, reporter)
		s.jobs.Complete(jobStatus.ID, result)
	}()

	timeout := time.After(sseTimeout)
	c.Stream(func(w io.Writer) bool {
		select {
		case p, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("progress", p)
			return !p.Terminal()
		case <-timeout:
			slog.Warn("Progress stream timed out", "jobId", jobStatus.ID)
			c.SSEvent("error", gin.H{"message": "Progress stream timed out"})
			return false
		}
	})
}

// sampleDataAvailability godoc
// @Summary Check sample data availability
// @Tags SampleData
// @Produce json
// @Success 200 {object} sampledata.Result
// @Router /api/sample-data/availability [get]
func (s *Server) sampleDataAvailability(c *gin.Context) {
	c.JSON(http.StatusOK, s.samples.Availability(c.Request.Context()))
}

// sampleDataStats godoc
// @Summary Get sample data statistics without loading
// @Tags SampleData
// @Produce json
// @Param sampleType query string false "Dataset selector"
// @Success 200 {object} sampledata.Result
// @Failure 400 {object} sampledata.Result
// @Router /api/sample-data/stats [get]
func (s *Server) sampleDataStats(c *gin.Context) {
	result := s.samples.Stats(c.Request.Context(), c.Query("sampleType"))
	if result.Success {
		c.JSON(http.StatusOK, result)
	} else {
		c.JSON(http.StatusBadRequest, result)
	}
}

// sampleDataHealth godoc
// @Summary Health check for the sample data feature
// @Tags SampleData
// @Produce json
// @Success 200 {object} sampledata.Result
// @Router /api/sample-data/health [get]
func (s *Server) sampleDataHealth(c *gin.Context) {
	availability := s.samples.Availability(c.Request.Context())
	if availability.Success {
		c.JSON(http.StatusOK, sampledata.Result{Success: true, Message: "Sample data feature is healthy"})
	} else {
		c.JSON(http.StatusOK, sampledata.Result{Success: false, Message: "Sample data not available"})
	}
}
