package portal

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillbridge-dev/skillbridge/internal/api"
)

// AdminDashboard is the admin landing view
type AdminDashboard struct {
	Batches     []api.Batch      `json:"batches"`
	Students    []api.Student    `json:"students"`
	Trainers    []api.Trainer    `json:"trainers"`
	Companies   []api.Company    `json:"companies"`
	TopTrainers []api.TopTrainer `json:"topTrainers"`
}

func (s *Server) adminDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	client := clientFor(c)

	var (
		dash AdminDashboard
		err  error
	)
	if dash.Batches, err = client.ListBatches(ctx, 0, 10); err != nil {
		s.respondAPIError(c, err, "Failed to load batches")
		return
	}
	if dash.Students, err = client.ListStudents(ctx, 0, 10); err != nil {
		s.respondAPIError(c, err, "Failed to load students")
		return
	}
	if dash.Trainers, err = client.ListTrainers(ctx, 0, 10); err != nil {
		s.respondAPIError(c, err, "Failed to load trainers")
		return
	}
	if dash.Companies, err = client.ListCompanies(ctx, 0, 10); err != nil {
		s.respondAPIError(c, err, "Failed to load companies")
		return
	}
	if dash.TopTrainers, err = client.TopTrainers(ctx, s.config.Reports.TopLimit); err != nil {
		s.respondAPIError(c, err, "Failed to load top trainers")
		return
	}

	c.JSON(http.StatusOK, dash)
}

func (s *Server) adminListStudents(c *gin.Context) {
	page, size := pageParams(c)
	var (
		students []api.Student
		err      error
	)
	if skill := c.Query("skill"); skill != "" {
		students, err = clientFor(c).StudentsBySkill(c.Request.Context(), skill)
	} else {
		students, err = clientFor(c).ListStudents(c.Request.Context(), page, size)
	}
	if err != nil {
		s.respondAPIError(c, err, "Failed to list students")
		return
	}
	c.JSON(http.StatusOK, students)
}

func (s *Server) adminListTrainers(c *gin.Context) {
	page, size := pageParams(c)
	trainers, err := clientFor(c).ListTrainers(c.Request.Context(), page, size)
	if err != nil {
		s.respondAPIError(c, err, "Failed to list trainers")
		return
	}
	c.JSON(http.StatusOK, trainers)
}

func (s *Server) adminListCompanies(c *gin.Context) {
	page, size := pageParams(c)
	var (
		companies []api.Company
		err       error
	)
	if domain := c.Query("domain"); domain != "" {
		companies, err = clientFor(c).CompaniesByDomain(c.Request.Context(), domain)
	} else {
		companies, err = clientFor(c).ListCompanies(c.Request.Context(), page, size)
	}
	if err != nil {
		s.respondAPIError(c, err, "Failed to list companies")
		return
	}
	c.JSON(http.StatusOK, companies)
}

func (s *Server) adminListColleges(c *gin.Context) {
	colleges, err := clientFor(c).ListColleges(c.Request.Context())
	if err != nil {
		s.respondAPIError(c, err, "Failed to list colleges")
		return
	}
	c.JSON(http.StatusOK, colleges)
}

func (s *Server) adminListBatches(c *gin.Context) {
	page, size := pageParams(c)
	var (
		batches []api.Batch
		err     error
	)
	if status := c.Query("status"); status != "" {
		batches, err = clientFor(c).ListBatchesByStatus(c.Request.Context(), status)
	} else {
		batches, err = clientFor(c).ListBatches(c.Request.Context(), page, size)
	}
	if err != nil {
		s.respondAPIError(c, err, "Failed to list batches")
		return
	}
	c.JSON(http.StatusOK, batches)
}

func (s *Server) adminCreateBatch(c *gin.Context) {
	var batch api.Batch
	if !bindBody(c, &batch) {
		return
	}
	created, err := clientFor(c).CreateBatch(c.Request.Context(), batch)
	if err != nil {
		s.respondAPIError(c, err, "Failed to create batch")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// BatchDetail is a batch with its assigned trainers and hiring companies
type BatchDetail struct {
	*api.Batch
	Trainers  []api.Trainer `json:"trainers"`
	Companies []api.Company `json:"companies"`
}

func (s *Server) adminGetBatch(c *gin.Context) {
	ctx := c.Request.Context()
	client := clientFor(c)
	id := c.Param("id")

	batch, err := client.GetBatch(ctx, id)
	if err != nil {
		s.respondAPIError(c, err, "Failed to load batch")
		return
	}
	detail := BatchDetail{Batch: batch}
	if detail.Trainers, err = client.BatchTrainers(ctx, id); err != nil {
		s.respondAPIError(c, err, "Failed to load batch trainers")
		return
	}
	if detail.Companies, err = client.BatchCompanies(ctx, id); err != nil {
		s.respondAPIError(c, err, "Failed to load batch companies")
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (s *Server) adminUpdateBatch(c *gin.Context) {
	var batch api.Batch
	if !bindBody(c, &batch) {
		return
	}
	updated, err := clientFor(c).UpdateBatch(c.Request.Context(), c.Param("id"), batch)
	if err != nil {
		s.respondAPIError(c, err, "Failed to update batch")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) adminDeleteBatch(c *gin.Context) {
	if err := clientFor(c).DeleteBatch(c.Request.Context(), c.Param("id")); err != nil {
		s.respondAPIError(c, err, "Failed to delete batch")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Batch deleted"})
}

func (s *Server) adminAddStudent(c *gin.Context) {
	if err := clientFor(c).AddStudentToBatch(c.Request.Context(), c.Param("id"), c.Param("studentId")); err != nil {
		s.respondAPIError(c, err, "Failed to add student to batch")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Student added to batch"})
}

func (s *Server) adminRemoveStudent(c *gin.Context) {
	if err := clientFor(c).RemoveStudentFromBatch(c.Request.Context(), c.Param("id"), c.Param("studentId")); err != nil {
		s.respondAPIError(c, err, "Failed to remove student from batch")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Student removed from batch"})
}

func (s *Server) adminAssignTrainer(c *gin.Context) {
	if err := clientFor(c).AssignTrainer(c.Request.Context(), c.Param("trainerId"), c.Param("id")); err != nil {
		s.respondAPIError(c, err, "Failed to assign trainer")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Trainer assigned to batch"})
}

func (s *Server) adminBatchFeedback(c *gin.Context) {
	summary, err := clientFor(c).FeedbackSummaryForBatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondAPIError(c, err, "Failed to load feedback summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}
