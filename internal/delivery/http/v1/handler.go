package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/lrcr/todoplane/internal/auth"
	"github.com/lrcr/todoplane/internal/images"
	"github.com/lrcr/todoplane/internal/services"
)

type Handler interface {
	HandleSessionMiddleware(c *gin.Context)
	HandleAdminMiddleware(c *gin.Context)

	HandleRegister(c *gin.Context)
	HandleLogin(c *gin.Context)
	HandleLogout(c *gin.Context)
	HandleGoogleLogin(c *gin.Context)
	HandleGoogleCallback(c *gin.Context)
	HandleDemoLogin(c *gin.Context)
	HandleDemoAutoLogin(c *gin.Context)
	HandleCurrentUser(c *gin.Context)

	HandleListTasks(c *gin.Context)
	HandleGetTask(c *gin.Context)
	HandleCreateTask(c *gin.Context)
	HandlePatchTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)

	HandleAdminListTasks(c *gin.Context)
	HandleAdminDeleteTask(c *gin.Context)
	HandleAdminListUsers(c *gin.Context)
	HandleAdminUpdateRole(c *gin.Context)
	HandleAdminDeleteUser(c *gin.Context)

	HandleListImages(c *gin.Context)
}

type Deps struct {
	Logger   zerolog.Logger
	Tasks    services.TaskService
	Users    services.UserService
	Verifier auth.Verifier
	Codec    *auth.TokenCodec
	Google   *auth.GoogleProvider
	Images   images.Lister

	SecureCookie bool
	DemoEnabled  bool
}

type handlerImpl struct {
	logger   zerolog.Logger
	tasks    services.TaskService
	users    services.UserService
	verifier auth.Verifier
	codec    *auth.TokenCodec
	google   *auth.GoogleProvider
	images   images.Lister

	secureCookie bool
	demoEnabled  bool
}

func New(deps Deps) Handler {
	return &handlerImpl{
		logger:       deps.Logger,
		tasks:        deps.Tasks,
		users:        deps.Users,
		verifier:     deps.Verifier,
		codec:        deps.Codec,
		google:       deps.Google,
		images:       deps.Images,
		secureCookie: deps.SecureCookie,
		demoEnabled:  deps.DemoEnabled,
	}
}
