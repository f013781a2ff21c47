package api

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gerenciadorpro/roster-api/internal/api/handler"
	"github.com/gerenciadorpro/roster-api/internal/api/middleware"
	"github.com/gerenciadorpro/roster-api/internal/core/domain"
	"github.com/gerenciadorpro/roster-api/internal/core/ports"
	"github.com/gerenciadorpro/roster-api/internal/core/service"
	"github.com/gerenciadorpro/roster-api/internal/infrastructure/config"
	mongodb "github.com/gerenciadorpro/roster-api/internal/infrastructure/db/mongo"
	redisdb "github.com/gerenciadorpro/roster-api/internal/infrastructure/db/redis"
	"github.com/gerenciadorpro/roster-api/internal/infrastructure/queue"
)

// Deps bundles the infrastructure clients the router wires together.
type Deps struct {
	DB        *mongo.Database
	Redis     *redis.Client
	Store     ports.BackupStore
	Generator ports.TextGenerator
	Config    *config.Config
	Logger    zerolog.Logger
}

// NewRouter builds the Echo instance with all routes registered and starts
// the bulk-reminder worker pool. Workers stop when ctx is cancelled.
func NewRouter(ctx context.Context, deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())

	// --- Dependencies ---
	snapshotRepo := mongodb.NewSnapshotRepository(deps.DB)
	rosterService := service.NewRosterService(snapshotRepo, deps.Logger)
	backupService := service.NewBackupService(rosterService, deps.Store, deps.Logger)

	textCache := redisdb.NewTextCache(deps.Redis)
	assistService := service.NewAssistService(deps.Generator, textCache, deps.Logger)
	jobResults := redisdb.NewJobResults(deps.Redis)

	dispatcher := queue.NewDispatcher(deps.Config.BulkWorkers, assistService, jobResults, deps.Logger)
	dispatcher.Start(ctx)

	authRepo := mongodb.NewAuthRepository(deps.DB)
	authService := service.NewAuthService(authRepo, deps.Config.JWTSecret, 24*time.Hour)

	rosterHandler := handler.NewRosterHandler(rosterService)
	backupHandler := handler.NewBackupHandler(backupService)
	assistHandler := handler.NewAssistHandler(rosterService, assistService, dispatcher, jobResults)
	authHandler := handler.NewAuthHandler(authService)
	authMiddleware := middleware.Auth(deps.Config.JWTSecret)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/register", authHandler.Register, authMiddleware, middleware.RBAC(domain.RoleAdmin))

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.DB, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// --- Authenticated API ---
	v1 := e.Group("/v1", authMiddleware)

	v1.GET("/roster", rosterHandler.View)
	v1.GET("/roster/stats", rosterHandler.Stats)
	v1.GET("/roster/export", rosterHandler.Export)

	v1.POST("/clients", rosterHandler.Create)
	v1.PUT("/clients/order", rosterHandler.Reorder)
	v1.PUT("/clients/:id", rosterHandler.Update)
	v1.DELETE("/clients/:id", rosterHandler.Delete)
	v1.POST("/clients/:id/renew", rosterHandler.Renew)

	v1.GET("/backup", backupHandler.Export)
	v1.POST("/restore", backupHandler.Restore)
	v1.POST("/backup/cloud", backupHandler.CloudUpload)
	v1.GET("/backup/cloud", backupHandler.CloudList)
	v1.POST("/restore/cloud", backupHandler.CloudRestore)

	v1.POST("/assist/reminder", assistHandler.Reminder)
	v1.POST("/assist/summary", assistHandler.Summary)
	v1.POST("/assist/password", assistHandler.Password)
	v1.POST("/assist/parse-client", assistHandler.ParseClient)
	v1.POST("/assist/reminders/bulk", assistHandler.BulkReminders)
	v1.GET("/assist/reminders/bulk/:job_id", assistHandler.BulkRemindersStatus)

	return e
}
