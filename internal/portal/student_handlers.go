package portal

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillbridge-dev/skillbridge/internal/api"
)

// StudentDashboard is the student landing view
type StudentDashboard struct {
	Profile         *api.Student              `json:"profile"`
	History         []api.BatchHistory        `json:"history"`
	Recommendations []api.BatchRecommendation `json:"recommendations"`
	AverageRating   float64                   `json:"averageRating"`
}

func (s *Server) studentDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	client := clientFor(c)
	id := profileFor(c).ID

	var (
		dash StudentDashboard
		err  error
	)
	if dash.Profile, err = client.CurrentStudentProfile(ctx); err != nil {
		s.respondAPIError(c, err, "Failed to load profile")
		return
	}
	if dash.History, err = client.BatchHistory(ctx, id); err != nil {
		s.respondAPIError(c, err, "Failed to load batch history")
		return
	}
	if dash.Recommendations, err = client.RecommendBatches(ctx, id); err != nil {
		s.respondAPIError(c, err, "Failed to load recommendations")
		return
	}
	if dash.AverageRating, err = client.AverageStudentRating(ctx, id); err != nil {
		s.respondAPIError(c, err, "Failed to load rating")
		return
	}

	c.JSON(http.StatusOK, dash)
}

func (s *Server) studentProfile(c *gin.Context) {
	student, err := clientFor(c).CurrentStudentProfile(c.Request.Context())
	if err != nil {
		s.respondAPIError(c, err, "Failed to load profile")
		return
	}
	c.JSON(http.StatusOK, student)
}

func (s *Server) studentUpdateProfile(c *gin.Context) {
	var student api.Student
	if !bindBody(c, &student) {
		return
	}
	// the backend owns credentials; the profile form never changes them
	student.Password = ""

	updated, err := clientFor(c).UpdateStudentProfile(c.Request.Context(), student)
	if err != nil {
		s.respondAPIError(c, err, "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) studentBatches(c *gin.Context) {
	history, err := clientFor(c).BatchHistory(c.Request.Context(), profileFor(c).ID)
	if err != nil {
		s.respondAPIError(c, err, "Failed to load batches")
		return
	}
	c.JSON(http.StatusOK, history)
}

func (s *Server) studentReceivedFeedback(c *gin.Context) {
	feedback, err := clientFor(c).TrainerFeedbackForStudent(c.Request.Context(), profileFor(c).ID)
	if err != nil {
		s.respondAPIError(c, err, "Failed to load feedback")
		return
	}
	c.JSON(http.StatusOK, feedback)
}

func (s *Server) studentGiveFeedback(c *gin.Context) {
	var req api.StudentFeedbackRequest
	if !bindBody(c, &req) {
		return
	}
	feedback, err := clientFor(c).AddStudentFeedback(c.Request.Context(), profileFor(c).ID, req)
	if err != nil {
		s.respondAPIError(c, err, "Failed to submit feedback")
		return
	}
	c.JSON(http.StatusCreated, feedback)
}

func (s *Server) studentProgress(c *gin.Context) {
	progress, err := clientFor(c).StudentProgress(c.Request.Context(), profileFor(c).ID, c.Param("batchId"))
	if err != nil {
		s.respondAPIError(c, err, "Failed to load progress")
		return
	}
	c.JSON(http.StatusOK, progress)
}
