package portal

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillbridge-dev/skillbridge/internal/api"
	"github.com/skillbridge-dev/skillbridge/internal/models"
	"github.com/skillbridge-dev/skillbridge/internal/session"
)

// LoginResponse is returned after a successful login or registration
type LoginResponse struct {
	User     *models.Profile `json:"user"`
	Redirect string          `json:"redirect"`
}

func (s *Server) loginView(c *gin.Context) {
	next := safeNext(c.Query("next"))

	rs := getRequestSession(c)
	if rs != nil && rs.id != "" {
		res := rs.resolver.EnsureSession(c.Request.Context())
		if res.Authenticated {
			c.Redirect(http.StatusFound, landingFor(res.User.Role, next))
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"view": "login", "next": next})
}

// @Summary Login
// @Description Signs in against the SkillBridge backend and starts a portal session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body api.LoginRequest true "Login request"
// @Success 200 {object} LoginResponse
// @Failure 401 {object} map[string]interface{}
// @Router /login [post]
func (s *Server) login(c *gin.Context) {
	var req api.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	previous := ""
	if rs := getRequestSession(c); rs != nil {
		previous = rs.id
	}
	rs, err := s.startPortalSession(c)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to start portal session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	result := rs.resolver.Login(c.Request.Context(), req.Email, req.Password)
	if !result.Success {
		s.discardPortalSession(c, rs.id)
		c.JSON(http.StatusUnauthorized, gin.H{"error": result.Message})
		return
	}
	if err := s.issuePortalSession(c, rs, previous); err != nil {
		s.discardPortalSession(c, rs.id)
		s.logger.Error().Err(err).Msg("Failed to issue portal session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		User:     result.User,
		Redirect: landingFor(result.User.Role, c.Query("next")),
	})
}

// registrationPayload decodes the body for a registration kind. "account"
// maps to the plain register endpoint.
func registrationPayload(c *gin.Context, kind string) (string, any, bool) {
	var payload any
	switch kind {
	case "account":
		kind = ""
		payload = &api.RegisterRequest{}
	case "admin":
		payload = &api.AdminRegistrationRequest{}
	case "student":
		payload = &api.StudentRegistrationRequest{}
	case "trainer":
		payload = &api.TrainerRegistrationRequest{}
	default:
		return "", nil, false
	}
	if err := c.ShouldBindJSON(payload); err != nil {
		return "", nil, false
	}
	return kind, payload, true
}

// @Summary Register
// @Description Creates an account of the given kind and starts a portal session
// @Tags auth
// @Accept json
// @Produce json
// @Param kind path string true "account, admin, student or trainer"
// @Success 201 {object} LoginResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /register/{kind} [post]
func (s *Server) register(c *gin.Context) {
	kind, payload, ok := registrationPayload(c, c.Param("kind"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid registration request"})
		return
	}

	previous := ""
	if rs := getRequestSession(c); rs != nil {
		previous = rs.id
	}
	rs, err := s.startPortalSession(c)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to start portal session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	result := rs.resolver.Register(c.Request.Context(), kind, payload)
	if !result.Success {
		s.discardPortalSession(c, rs.id)
		status := http.StatusBadRequest
		if result.Message == session.MsgEmailTaken {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": result.Message})
		return
	}
	if err := s.issuePortalSession(c, rs, previous); err != nil {
		s.discardPortalSession(c, rs.id)
		s.logger.Error().Err(err).Msg("Failed to issue portal session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, LoginResponse{
		User:     result.User,
		Redirect: dashboardFor(result.User.Role),
	})
}

// discardPortalSession drops a session that never authenticated. The
// browser keeps whatever session its cookie already names.
func (s *Server) discardPortalSession(c *gin.Context, id string) {
	if err := s.sessions.Destroy(c.Request.Context(), id); err != nil {
		s.logger.Warn().Err(err).Str("session_id", id).Msg("Failed to discard portal session")
	}
}

// @Summary Logout
// @Description Signs out of the backend and ends the portal session
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /logout [post]
func (s *Server) logout(c *gin.Context) {
	rs := getRequestSession(c)
	if rs != nil && rs.id != "" {
		rs.resolver.Logout(c.Request.Context())
		if err := s.sessions.Destroy(c.Request.Context(), rs.id); err != nil {
			s.logger.Warn().Err(err).Str("session_id", rs.id).Msg("Failed to destroy portal session")
		}
	}
	s.clearPortalCookie(c)

	c.JSON(http.StatusOK, gin.H{"message": "Logged out", "redirect": "/login"})
}

func (s *Server) me(c *gin.Context) {
	profile, _ := GetProfile(c)
	c.JSON(http.StatusOK, gin.H{"user": profile, "dashboard": dashboardFor(profile.Role)})
}

// refresh re-validates the session against the backend, bypassing the cache
func (s *Server) refresh(c *gin.Context) {
	rs := getRequestSession(c)
	res := rs.resolver.Refresh(c.Request.Context())
	if !res.Authenticated {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired", "redirect": "/login"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": res.User})
}
