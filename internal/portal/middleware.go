package portal

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/skillbridge-dev/skillbridge/internal/api"
	"github.com/skillbridge-dev/skillbridge/internal/models"
	"github.com/skillbridge-dev/skillbridge/internal/session"
	"github.com/skillbridge-dev/skillbridge/internal/sessionstore"
)

const (
	portalCookie = "sb_portal"

	ctxSession = "portal_session"
	ctxProfile = "profile"

	// nginx's code for a client that closed the connection first
	statusClientClosedRequest = 499
)

// requestSession is one browser's portal session bound to a single request:
// the session's store, an API client using its credentials and a resolver
type requestSession struct {
	id       string
	store    sessionstore.SessionStore
	client   *api.Client
	resolver *session.Resolver
}

func (s *Server) newRequestSession(id string) *requestSession {
	store := s.sessions.For(id)
	client := api.New(s.config.API.URL,
		api.WithHTTPClient(s.httpClient),
		api.WithCredentials(store),
		api.WithLogger(s.logger),
	)
	resolver := session.NewResolver(store, client, s.logger)
	// any 401 from a data call drops the cached profile
	client.SetUnauthorizedHandler(resolver.Invalidate)

	return &requestSession{id: id, store: store, client: client, resolver: resolver}
}

func setRequestSession(c *gin.Context, rs *requestSession) {
	c.Set(ctxSession, rs)
}

func getRequestSession(c *gin.Context) *requestSession {
	v, ok := c.Get(ctxSession)
	if ok {
		if rs, ok := v.(*requestSession); ok {
			return rs
		}
	}
	return nil
}

// GetProfile returns the profile the role gate admitted
func GetProfile(c *gin.Context) (*models.Profile, bool) {
	v, exists := c.Get(ctxProfile)
	if !exists {
		return nil, false
	}
	profile, ok := v.(*models.Profile)
	return profile, ok
}

// sessionMiddleware binds the request to the browser's portal session.
// Requests without a valid cookie get an anonymous session with an empty id.
func (s *Server) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := s.portalSessionID(c)
		setRequestSession(c, s.newRequestSession(id))
		c.Next()
	}
}

func (s *Server) portalSessionID(c *gin.Context) string {
	raw, err := c.Cookie(portalCookie)
	if err != nil || raw == "" {
		return ""
	}

	claims, err := s.tokens.ValidateToken(raw)
	if err != nil {
		s.logger.Debug().Err(err).Msg("Discarding invalid portal cookie")
		s.clearPortalCookie(c)
		return ""
	}

	ok, err := s.sessions.Exists(c.Request.Context(), claims.SessionID)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", claims.SessionID).Msg("Failed to look up portal session")
		return ""
	}
	if !ok {
		s.clearPortalCookie(c)
		return ""
	}
	return claims.SessionID
}

// startPortalSession creates a fresh, not yet authenticated portal session.
// The browser's current session and cookie are left alone until
// issuePortalSession promotes the new one.
func (s *Server) startPortalSession(c *gin.Context) (*requestSession, error) {
	id, err := s.sessions.Create(c.Request.Context())
	if err != nil {
		return nil, err
	}
	return s.newRequestSession(id), nil
}

// issuePortalSession hands the browser a cookie for rs and destroys the
// session it replaces.
func (s *Server) issuePortalSession(c *gin.Context, rs *requestSession, previous string) error {
	token, err := s.tokens.GenerateToken(rs.id)
	if err != nil {
		return err
	}
	if previous != "" && previous != rs.id {
		if err := s.sessions.Destroy(c.Request.Context(), previous); err != nil {
			s.logger.Warn().Err(err).Str("session_id", previous).Msg("Failed to destroy previous portal session")
		}
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(portalCookie, token, int(s.config.Portal.SessionTTL.Seconds()), "/", "", s.config.Portal.CookieSecure, true)
	setRequestSession(c, rs)
	return nil
}

func (s *Server) clearPortalCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(portalCookie, "", -1, "/", "", s.config.Portal.CookieSecure, true)
}

// RoleGate admits requests whose session holds the required role. Anything
// else is sent to the login page with the original path as next.
func (s *Server) RoleGate(required models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		rs := getRequestSession(c)
		if rs == nil || rs.id == "" {
			redirectToLogin(c)
			return
		}

		state, profile := session.NewGate(rs.resolver, required).Authorize(c.Request.Context())
		switch state {
		case session.Authorized:
			c.Set(ctxProfile, profile)
			c.Next()
		case session.Checking:
			// client went away mid-check; nothing to render
			c.AbortWithStatus(statusClientClosedRequest)
		default:
			s.logger.Debug().
				Str("path", c.Request.URL.Path).
				Str("required_role", string(required)).
				Msg("Role gate denied request")
			redirectToLogin(c)
		}
	}
}

func redirectToLogin(c *gin.Context) {
	target := "/login?next=" + url.QueryEscape(c.Request.URL.RequestURI())
	c.Redirect(http.StatusFound, target)
	c.Abort()
}

// safeNext keeps post-login redirects on this host
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	return next
}

// dashboardFor is where a freshly authenticated user lands
func dashboardFor(role models.Role) string {
	switch role {
	case models.RoleAdmin:
		return "/admin/dashboard"
	case models.RoleTrainer:
		return "/trainer/dashboard"
	case models.RoleStudent:
		return "/student/dashboard"
	}
	return "/login"
}

// landingFor honours next only when it belongs to the user's area
func landingFor(role models.Role, next string) string {
	next = safeNext(next)
	if next == "" {
		return dashboardFor(role)
	}
	if strings.HasPrefix(next, "/app/") || strings.HasPrefix(next, "/"+strings.ToLower(string(role))+"/") {
		return next
	}
	return dashboardFor(role)
}
