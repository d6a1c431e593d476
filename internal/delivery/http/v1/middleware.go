package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lrcr/todoplane/internal/auth"
	"github.com/lrcr/todoplane/internal/models"
	"github.com/lrcr/todoplane/internal/services"
)

const identityCtxKey = "identity"

// wantsHTML reports whether the client prefers an HTML response, so
// browsers get redirects and pages while API callers get JSON.
func wantsHTML(c *gin.Context) bool {
	return c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) == gin.MIMEHTML
}

// HandleSessionMiddleware verifies the session cookie and attaches the
// resulting identity to the request. The user is reloaded from the
// store on every request, so a role change bites on the next check.
func (h *handlerImpl) HandleSessionMiddleware(c *gin.Context) {
	tokenString, err := c.Cookie(auth.SessionCookie)
	if err != nil || tokenString == "" {
		h.rejectUnauthenticated(c, "Unauthorized. Please log in.")
		return
	}

	identity, err := h.verifier.Verify(c.Request.Context(), tokenString)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("session verification failed")
		h.rejectUnauthenticated(c, "Invalid or expired session. Please log in.")
		return
	}

	c.Set(identityCtxKey, identity)
	c.Next()
}

func (h *handlerImpl) rejectUnauthenticated(c *gin.Context, message string) {
	if wantsHTML(c) {
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
		return
	}
	abort(c, newUnauthorizedError(message))
}

const forbiddenPage = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Access Denied</title>
</head>
<body>
    <h1>Access Denied</h1>
    <p>You do not have permission to view this page.</p>
    <a href="/">Return</a>
</body>
</html>
`

// HandleAdminMiddleware gates the admin surface. Must run after the
// session middleware.
func (h *handlerImpl) HandleAdminMiddleware(c *gin.Context) {
	identity := identityFromContext(c)
	if identity.Role != models.RoleAdmin {
		if wantsHTML(c) {
			c.Data(http.StatusForbidden, gin.MIMEHTML, []byte(forbiddenPage))
			c.Abort()
			return
		}
		abort(c, newAPIError(http.StatusForbidden, "Forbidden: You do not have permission"))
		return
	}
	c.Next()
}

func identityFromContext(c *gin.Context) services.Identity {
	value, exists := c.Get(identityCtxKey)
	if !exists {
		return services.Identity{}
	}
	identity, _ := value.(services.Identity)
	return identity
}
