package portal

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skillbridge-dev/skillbridge/internal/models"
	"github.com/skillbridge-dev/skillbridge/internal/tasks"
)

// ReportResponse is one stored report snapshot
type ReportResponse struct {
	ID          string          `json:"id"`
	Kind        string          `json:"kind"`
	SubjectID   string          `json:"subject_id,omitempty"`
	GeneratedAt time.Time       `json:"generated_at"`
	Data        json.RawMessage `json:"data"`
}

// @Summary List reports
// @Description Returns the latest snapshot of every report
// @Tags reports
// @Produce json
// @Success 200 {array} ReportResponse
// @Router /admin/reports [get]
func (s *Server) listReports(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Reports are not available"})
		return
	}

	snapshots, err := models.LatestSnapshots(s.db.WithContext(c.Request.Context()))
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to load report snapshots")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load reports"})
		return
	}

	response := make([]ReportResponse, 0, len(snapshots))
	for _, snap := range snapshots {
		response = append(response, ReportResponse{
			ID:          snap.ID,
			Kind:        snap.Kind,
			SubjectID:   snap.SubjectID,
			GeneratedAt: snap.GeneratedAt,
			Data:        json.RawMessage(snap.Payload),
		})
	}
	c.JSON(http.StatusOK, response)
}

// @Summary Refresh reports
// @Description Queues a background refresh of every report
// @Tags reports
// @Produce json
// @Success 202 {object} map[string]interface{}
// @Router /admin/reports/refresh [post]
func (s *Server) refreshReports(c *gin.Context) {
	if s.enqueuer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Report worker is not configured"})
		return
	}

	profile := profileFor(c)
	task, err := tasks.NewReportsRefreshTask(profile.ID)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to create refresh task")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue refresh"})
		return
	}

	info, err := s.enqueuer.EnqueueContext(c.Request.Context(), task)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to enqueue report refresh")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue refresh"})
		return
	}

	s.logger.Info().Str("task_id", info.ID).Str("requested_by", profile.ID).Msg("Report refresh queued")
	c.JSON(http.StatusAccepted, gin.H{"message": "Report refresh queued", "task_id": info.ID})
}
