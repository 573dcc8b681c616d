package portal

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/skillbridge-dev/skillbridge/internal/api"
	"github.com/skillbridge-dev/skillbridge/internal/models"
)

// respondAPIError maps a backend call failure onto the portal response
func (s *Server) respondAPIError(c *gin.Context, err error, message string) {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Status == http.StatusUnauthorized:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired", "redirect": "/login"})
		case apiErr.Status >= 500:
			s.logger.Error().Err(err).Msg(message)
			c.JSON(http.StatusBadGateway, gin.H{"error": message})
		default:
			msg := apiErr.UserMessage()
			if msg == "" {
				msg = message
			}
			c.JSON(apiErr.Status, gin.H{"error": msg})
		}
		return
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.logger.Error().Err(err).Msg(message)
	c.JSON(http.StatusBadGateway, gin.H{"error": message})
}

// pageParams reads page and size query parameters
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	if page < 0 {
		page = 0
	}
	if size <= 0 || size > 100 {
		size = 10
	}
	return page, size
}

func clientFor(c *gin.Context) *api.Client {
	return getRequestSession(c).client
}

func profileFor(c *gin.Context) *models.Profile {
	profile, _ := GetProfile(c)
	return profile
}

func bindBody(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return false
	}
	return true
}
