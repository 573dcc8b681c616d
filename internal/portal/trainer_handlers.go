package portal

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillbridge-dev/skillbridge/internal/api"
)

func (s *Server) trainerDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	client := clientFor(c)
	id := profileFor(c).ID

	batches, err := client.TrainerBatches(ctx, id)
	if err != nil {
		s.respondAPIError(c, err, "Failed to load batches")
		return
	}
	rating, err := client.AverageTrainerRating(ctx, id)
	if err != nil {
		s.respondAPIError(c, err, "Failed to load rating")
		return
	}

	c.JSON(http.StatusOK, gin.H{"batches": batches, "averageRating": rating})
}

func (s *Server) trainerBatches(c *gin.Context) {
	batches, err := clientFor(c).TrainerBatches(c.Request.Context(), profileFor(c).ID)
	if err != nil {
		s.respondAPIError(c, err, "Failed to load batches")
		return
	}
	c.JSON(http.StatusOK, batches)
}

func (s *Server) trainerStudents(c *gin.Context) {
	students, err := clientFor(c).TrainerStudents(c.Request.Context(), profileFor(c).ID)
	if err != nil {
		s.respondAPIError(c, err, "Failed to load students")
		return
	}
	c.JSON(http.StatusOK, students)
}

func (s *Server) trainerReceivedFeedback(c *gin.Context) {
	feedback, err := clientFor(c).StudentFeedbackForTrainer(c.Request.Context(), profileFor(c).ID)
	if err != nil {
		s.respondAPIError(c, err, "Failed to load feedback")
		return
	}
	c.JSON(http.StatusOK, feedback)
}

func (s *Server) trainerGiveFeedback(c *gin.Context) {
	var req api.TrainerFeedbackRequest
	if !bindBody(c, &req) {
		return
	}
	feedback, err := clientFor(c).AddTrainerFeedback(c.Request.Context(), profileFor(c).ID, req)
	if err != nil {
		s.respondAPIError(c, err, "Failed to submit feedback")
		return
	}
	c.JSON(http.StatusCreated, feedback)
}

func (s *Server) trainerUpdateProgress(c *gin.Context) {
	var update api.ProgressUpdate
	if !bindBody(c, &update) {
		return
	}
	progress, err := clientFor(c).UpdateProgress(c.Request.Context(), profileFor(c).ID, update)
	if err != nil {
		s.respondAPIError(c, err, "Failed to update progress")
		return
	}
	c.JSON(http.StatusOK, progress)
}
