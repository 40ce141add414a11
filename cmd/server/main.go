package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/yukikurage/workspace-rbac-api/internal/auth"
	"github.com/yukikurage/workspace-rbac-api/internal/config"
	"github.com/yukikurage/workspace-rbac-api/internal/database"
	"github.com/yukikurage/workspace-rbac-api/internal/handlers"
	"github.com/yukikurage/workspace-rbac-api/internal/logging"
	"github.com/yukikurage/workspace-rbac-api/internal/metrics"
	"github.com/yukikurage/workspace-rbac-api/internal/middleware"
	"github.com/yukikurage/workspace-rbac-api/internal/repository"
	"github.com/yukikurage/workspace-rbac-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.GinMode)

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}

	// Run migrations
	if err := database.Migrate(db, log); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}

	// Connect to the token revocation store
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	tokenStore := auth.NewTokenStore(redisClient)
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := tokenStore.Ping(pingCtx); err != nil {
		cancelPing()
		log.WithError(err).Fatal("Failed to connect to Redis")
	}
	cancelPing()

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	workspaceRepo := repository.NewWorkspaceRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	// Services
	tokenService := auth.NewTokenService(auth.NewJWTService(cfg.JWTSecret), tokenStore, cfg.AccessTokenTTL, m)
	authService := services.NewAuthService(userRepo, memberRepo, auth.NewPasswordHasher(cfg.BcryptCost), tokenService, log)
	roleService := services.NewRoleService(roleRepo, log)
	memberService := services.NewMemberService(memberRepo, workspaceRepo, userRepo, roleService, cfg.OwnerRoleChangeRequiresOwner, log)
	authorizationService := services.NewAuthorizationService(memberService, roleRepo, log)
	workspaceService := services.NewWorkspaceService(workspaceRepo, m, log)
	projectService := services.NewProjectService(projectRepo, workspaceRepo, m, log)
	taskService := services.NewTaskService(taskRepo, projectRepo, userRepo, cfg.StrictAssignee, log)

	var googleProvider *auth.OAuthProvider
	if cfg.GoogleOAuthEnabled() {
		googleProvider = auth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI)
	} else {
		log.Info("Google sign-in disabled: GOOGLE_CLIENT_ID or GOOGLE_CLIENT_SECRET not set")
	}
	oauthStates := auth.NewOAuthStateStore(redisClient, cfg.OAuthStateTTL)

	if cfg.SeedRoles {
		if err := roleService.Seed(context.Background(), false); err != nil {
			log.WithError(err).Fatal("Failed to seed roles")
		}
	}

	// Initialize Gin router
	r := gin.New()
	r.Use(
		middleware.Recovery(log),
		middleware.RequestLogger(log),
		m.Middleware(),
		middleware.RequestTimeout(cfg.RequestTimeout),
	)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Workspace RBAC API is running",
		})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	// API routes
	routes := &handlers.Routes{
		Auth:        handlers.NewAuthHandler(authService, log),
		OAuth:       handlers.NewOAuthHandler(googleProvider, oauthStates, authService, log),
		Roles:       handlers.NewRoleHandler(roleService, log),
		Workspace:   handlers.NewWorkspaceHandler(workspaceService, memberService, log),
		Members:     handlers.NewMemberHandler(memberService, authService, log),
		Projects:    handlers.NewProjectHandler(projectService, log),
		Tasks:       handlers.NewTaskHandler(taskService, log),
		RequireAuth: middleware.RequireAuth(tokenService, authService, log),
		RBAC:        middleware.NewRBAC(authorizationService, m, log),
	}
	routes.Register(r.Group("/api"))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server
	go func() {
		log.WithField("addr", srv.Addr).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shut down")
	}
}
