package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/terra-dev/terra/internal/auth"
)

// StatusResponse reports whether the caller holds a session and at which tier
type StatusResponse struct {
	Auth bool      `json:"auth"`
	Tier auth.Tier `json:"tier"`
}

// LoginRequest exchanges a one-time access code for a session
type LoginRequest struct {
	User string `json:"user" validate:"required,max=64"`
	Otac string `json:"otac" validate:"required,len=5,alpha"`
}

// OTACRequest asks for a one-time access code for a user
type OTACRequest struct {
	User string `json:"user" validate:"required,max=64"`
}

// OTACResponse carries an issued code
type OTACResponse struct {
	Otac string `json:"otac"`
}

// @Summary Session status
// @Description Reports whether the session cookie is valid and its tier
// @Tags auth
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /auth/status [get]
func (s *Server) authStatus(c *gin.Context) {
	session, ok := GetSessionData(c)
	if !ok || session.Method != auth.MethodCookie {
		c.JSON(http.StatusOK, StatusResponse{Auth: false, Tier: auth.NotAuthorized})
		return
	}

	c.JSON(http.StatusOK, StatusResponse{Auth: true, Tier: session.Tier})
}

// @Summary Login
// @Description Exchange a one-time access code for the _auth session cookie
// @Tags auth
// @Accept json
// @Param request body LoginRequest true "Login request"
// @Success 200
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 429 {object} map[string]interface{}
// @Router /auth/login [post]
func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.validator.Struct(req); err != nil {
		respondWithError(c, s.logger, http.StatusUnauthorized, err, "Unauthorized")
		return
	}

	token, session, err := s.auth.Login(c.Request.Context(), req.User, req.Otac)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondWithError(c, s.logger, http.StatusUnauthorized, err, "Unauthorized")
			return
		}
		s.logger.Error().Err(err).Str("user", req.User).Msg("Login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	s.setSessionCookie(c, token, int(s.auth.SessionTTL().Seconds()))

	s.logger.Info().
		Str("user", session.User).
		Str("tier", session.Tier.String()).
		Str("session_id", session.ID).
		Msg("User logged in")

	c.Status(http.StatusOK)
}

// @Summary Logout
// @Description Revoke the current session and clear the cookie
// @Tags auth
// @Success 200
// @Router /auth/logout [post]
func (s *Server) logout(c *gin.Context) {
	if session, ok := GetSessionData(c); ok && session.Method == auth.MethodCookie {
		if err := s.auth.Logout(c.Request.Context(), session); err != nil {
			s.logger.Error().Err(err).Str("session_id", session.ID).Msg("Failed to revoke session")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		s.logger.Info().Str("user", session.User).Str("session_id", session.ID).Msg("User logged out")
	}

	s.setSessionCookie(c, "", -1)
	c.Status(http.StatusOK)
}

// @Summary Issue one-time access code
// @Description Issue a login code for a user (server tier)
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body OTACRequest true "OTAC request"
// @Success 200 {object} OTACResponse
// @Router /auth/otac [post]
func (s *Server) issueOTAC(c *gin.Context) {
	var req OTACRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	code, err := s.auth.IssueOTAC(c.Request.Context(), req.User)
	if err != nil {
		s.logger.Error().Err(err).Str("user", req.User).Msg("Failed to issue code")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, OTACResponse{Otac: code})
}

func (s *Server) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(sessionCookieName, value, maxAge, "/", s.config.Server.CookieDomain, true, true)
}
