package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lrcr/todoplane/internal/auth"
	"github.com/lrcr/todoplane/internal/models"
	"github.com/lrcr/todoplane/internal/services"
	"github.com/lrcr/todoplane/internal/store/memory"
)

const oauthStateCookie = "oauth_state"

type registerRequest struct {
	DisplayName string `json:"displayName" binding:"required,max=255"`
	Email       string `json:"email" binding:"required,email,max=255"`
	Password    string `json:"password" binding:"required,min=6,max=255"`
}

type loginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email,max=255"`
	Password string `json:"password" form:"password" binding:"required,min=6,max=255"`
}

func (h *handlerImpl) HandleRegister(c *gin.Context) {
	var req registerRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.DisplayName, req.Email, req.Password)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to register user")
		abortServiceError(c, err)
		return
	}

	err = h.issueSession(c, user)
	if err != nil {
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}
	c.JSON(http.StatusCreated, publicUser(user))
}

func (h *handlerImpl) HandleLogin(c *gin.Context) {
	var req loginRequest
	err := c.ShouldBind(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind request body")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to login")
		switch {
		case errors.Is(err, services.ErrUserNotFound),
			errors.Is(err, services.ErrUserPasswordMismatch):
			abort(c, newUnauthorizedError("invalid email or password"))
		default:
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	err = h.issueSession(c, user)
	if err != nil {
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}
	c.JSON(http.StatusOK, publicUser(user))
}

func (h *handlerImpl) HandleLogout(c *gin.Context) {
	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *handlerImpl) HandleGoogleLogin(c *gin.Context) {
	if h.google == nil || !h.google.Enabled() {
		abort(c, newAPIError(http.StatusNotImplemented, "google login is not configured"))
		return
	}

	state, err := auth.NewState()
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to generate oauth state")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	const stateTTL = 300
	c.SetCookie(oauthStateCookie, state, stateTTL, "/", "", h.secureCookie, true)
	c.Redirect(http.StatusFound, h.google.AuthURL(state))
}

func (h *handlerImpl) HandleGoogleCallback(c *gin.Context) {
	if h.google == nil || !h.google.Enabled() {
		abort(c, newAPIError(http.StatusNotImplemented, "google login is not configured"))
		return
	}

	state, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || state != c.Query("state") {
		h.logger.Warn().Msg("oauth state mismatch")
		c.Redirect(http.StatusFound, "/login")
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", h.secureCookie, true)

	profile, err := h.google.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to exchange oauth code")
		c.Redirect(http.StatusFound, "/login")
		return
	}

	user, err := h.users.EnsureGoogleUser(c.Request.Context(), profile)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to provision google user")
		c.Redirect(http.StatusFound, "/login")
		return
	}

	err = h.issueSession(c, user)
	if err != nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	c.Redirect(http.StatusFound, "/")
}

type demoLoginRequest struct {
	UserType string `json:"userType"`
}

// HandleDemoLogin signs in as one of the seeded demo users. Only
// served in demo mode.
func (h *handlerImpl) HandleDemoLogin(c *gin.Context) {
	if !h.demoEnabled {
		abort(c, newNotFoundError(http.StatusText(http.StatusNotFound)))
		return
	}

	var req demoLoginRequest
	_ = c.ShouldBindJSON(&req)

	userID := memory.DemoUserID
	if req.UserType == models.RoleAdmin {
		userID = memory.DemoAdminID
	}

	user, err := h.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("demo user missing")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	err = h.issueSession(c, user)
	if err != nil {
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    publicUser(user),
	})
}

// HandleDemoAutoLogin issues a session for the demo user when demo
// mode is on and the request carries no session cookie, so opening
// the app needs no login step. The fresh cookie is also attached to
// the request for the session middleware behind it.
func (h *handlerImpl) HandleDemoAutoLogin(c *gin.Context) {
	if !h.demoEnabled {
		c.Next()
		return
	}
	existing, err := c.Cookie(auth.SessionCookie)
	if err == nil && existing != "" {
		c.Next()
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), memory.DemoUserID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("demo user missing")
		c.Next()
		return
	}

	token, _, err := h.codec.Issue(user)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to issue demo session token")
		c.Next()
		return
	}

	maxAge := int(h.codec.TTL().Seconds())
	c.SetCookie(auth.SessionCookie, token, maxAge, "/", "", h.secureCookie, true)
	c.Request.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: token})
	c.Next()
}

func (h *handlerImpl) HandleCurrentUser(c *gin.Context) {
	identity := identityFromContext(c)

	user, err := h.users.GetUser(c.Request.Context(), identity.ID)
	if err != nil {
		abortServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, publicUser(user))
}

func (h *handlerImpl) issueSession(c *gin.Context, user *models.User) error {
	token, _, err := h.codec.Issue(user)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to issue session token")
		return err
	}

	maxAge := int(h.codec.TTL().Seconds())
	const httpOnly = true
	c.SetCookie(auth.SessionCookie, token, maxAge, "/", "", h.secureCookie, httpOnly)
	return nil
}

func (h *handlerImpl) clearSessionCookie(c *gin.Context) {
	c.SetCookie(auth.SessionCookie, "", -1, "/", "", h.secureCookie, true)
}

func publicUser(user *models.User) gin.H {
	return gin.H{
		"id":          user.ID,
		"displayName": user.DisplayName,
		"email":       user.Email,
		"role":        user.Role,
	}
}
