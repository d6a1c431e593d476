package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/lrcr/todoplane/internal/auth"
	"github.com/lrcr/todoplane/internal/config"
	v1 "github.com/lrcr/todoplane/internal/delivery/http/v1"
	"github.com/lrcr/todoplane/internal/images"
	"github.com/lrcr/todoplane/internal/services"
)

func MustListenAndServeHTTP() {
	cfg := config.Global()
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	httpCfg := cfg.HTTP

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	registerRoutes(router)

	server := &http.Server{
		Addr:    net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler: router,
	}

	go func() {
		globalLogger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			globalLogger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
	}()

	// Wait for the interrupt signal to gracefully
	// shut down the server with a timeout of 5 seconds.
	quit := make(chan os.Signal, 1)
	// kill (no params) by default sends syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	// kill -9 is syscall.SIGKILL but can't be caught, so don't need to add it
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	globalLogger.Info().
		Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}
	globalLogger.Info().Msg("shut down http server")
}

func registerRoutes(router *gin.Engine) {
	cfg := config.Global()

	userService := services.NewUserService(globalLogger, globalStore, cfg.Google.AdminEmail)
	taskService := services.NewTaskService(globalLogger, globalStore)

	codec := auth.NewTokenCodec(cfg.Session.Issuer, []byte(cfg.Session.Secret), cfg.Session.TTL)
	verifier := auth.NewSessionVerifier(codec, userService)
	google := auth.NewGoogleProvider(
		cfg.Google.ClientID,
		cfg.Google.ClientSecret,
		cfg.Google.RedirectURL,
	)

	demoEnabled := cfg.Demo.Enabled && cfg.Store.Driver == config.StoreDriverMemory

	handler := v1.New(v1.Deps{
		Logger:       globalLogger,
		Tasks:        taskService,
		Users:        userService,
		Verifier:     verifier,
		Codec:        codec,
		Google:       google,
		Images:       newImageLister(cfg.Images),
		SecureCookie: cfg.Session.Secure,
		DemoEnabled:  demoEnabled,
	})

	registerStaticRoutes(router, cfg.HTTP.StaticDir, handler)

	router.POST("/auth/register", handler.HandleRegister)
	router.POST("/auth/login", handler.HandleLogin)
	router.POST("/auth/logout", handler.HandleLogout)
	router.GET("/auth/google", handler.HandleGoogleLogin)
	router.GET("/auth/google/callback", handler.HandleGoogleCallback)
	router.POST("/demo-login", handler.HandleDemoLogin)
	// Kept for front ends that post to the bare path.
	router.POST("/logout", handler.HandleLogout)

	session := router.Group("/", handler.HandleSessionMiddleware)

	session.GET("/tasks", handler.HandleListTasks)
	session.POST("/tasks", handler.HandleCreateTask)
	session.GET("/tasks/:id", handler.HandleGetTask)
	session.PATCH("/tasks/:id", handler.HandlePatchTask)
	session.DELETE("/tasks/:id", handler.HandleDeleteTask)

	session.GET("/api/tasks", handler.HandleListTasks)
	session.GET("/api/current_user", handler.HandleCurrentUser)
	session.GET("/images", handler.HandleListImages)

	admin := session.Group("/api/admin", handler.HandleAdminMiddleware)
	admin.GET("/tasks", handler.HandleAdminListTasks)
	admin.DELETE("/tasks/:id", handler.HandleAdminDeleteTask)
	admin.GET("/users", handler.HandleAdminListUsers)
	admin.PATCH("/users/:id/role", handler.HandleAdminUpdateRole)
	admin.DELETE("/users/:id", handler.HandleAdminDeleteUser)
}

func registerStaticRoutes(router *gin.Engine, staticDir string, handler v1.Handler) {
	index := filepath.Join(staticDir, "index.html")
	login := filepath.Join(staticDir, "login.html")
	adminPage := filepath.Join(staticDir, "admin-dashboard.html")

	router.Static("/static", staticDir)
	router.GET("/login", func(c *gin.Context) {
		c.File(login)
	})
	router.GET("/",
		handler.HandleDemoAutoLogin,
		handler.HandleSessionMiddleware,
		func(c *gin.Context) {
			c.File(index)
		},
	)
	router.GET("/admin",
		handler.HandleSessionMiddleware,
		handler.HandleAdminMiddleware,
		func(c *gin.Context) {
			c.File(adminPage)
		},
	)
}

func newImageLister(cfg config.ImagesConfig) images.Lister {
	if cfg.S3Bucket == "" {
		// Without a bucket the front end still gets a stable set of
		// background URLs.
		return images.NewStaticLister([]string{
			"/static/backgrounds/bg1.png",
			"/static/backgrounds/bg2.png",
			"/static/backgrounds/bg3.png",
		})
	}

	lister, err := images.NewS3Lister(context.Background(), images.S3Config{
		Bucket:   cfg.S3Bucket,
		Region:   cfg.S3Region,
		Endpoint: cfg.S3Endpoint,
		Prefix:   cfg.S3Prefix,
	})
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to build s3 image lister")
		panic(err)
	}
	return lister
}
