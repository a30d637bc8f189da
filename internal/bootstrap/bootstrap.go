package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/yigit/campusdesk/internal/app/controllers"
	appMigrations "github.com/yigit/campusdesk/internal/app/migrations"
	appRepos "github.com/yigit/campusdesk/internal/app/repositories"
	appRoutes "github.com/yigit/campusdesk/internal/app/routes"
	appServices "github.com/yigit/campusdesk/internal/app/services"
	"github.com/yigit/campusdesk/internal/config"
	"github.com/yigit/campusdesk/internal/db"
	appMiddleware "github.com/yigit/campusdesk/internal/middleware"
	"github.com/yigit/campusdesk/internal/pkg/assistant"
	pkgAuth "github.com/yigit/campusdesk/internal/pkg/auth"
	"github.com/yigit/campusdesk/internal/pkg/email"
	"github.com/yigit/campusdesk/internal/pkg/filestorage"
	"github.com/yigit/campusdesk/internal/pkg/helpers"
	"github.com/yigit/campusdesk/internal/pkg/logger"
	"github.com/yigit/campusdesk/internal/pkg/metrics"
	"github.com/yigit/campusdesk/internal/pkg/notifications"
	"github.com/yigit/campusdesk/internal/pkg/realtime"
	"github.com/yigit/campusdesk/internal/pkg/validation"
	"github.com/yigit/campusdesk/internal/pkg/websocket"
	"github.com/yigit/campusdesk/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Database *db.PostgresDB
	Redis    *db.Redis // nil when redis is disabled or unreachable
	Repos    *appRepos.Repositories
	Storage  filestorage.Storage

	JWTService *pkgAuth.JWTService
	Denylist   pkgAuth.Denylist
	Limiter    appMiddleware.Limiter

	Hub        *websocket.Hub
	Manager    *realtime.Manager
	Supervisor *realtime.Supervisor

	AuthService         *appServices.AuthService
	NotificationService *appServices.NotificationService

	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := config.GetEnv("CONFIG_PATH", filepath.Join("configs", "config.yaml"))
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and seeds default data.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Msg("Running database migrations...")
	if err := appMigrations.NewMigrator(database.Pool).MigrateFromDirectory(ctx, migrationsDir); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	admin := seed.AdminAccount{Email: cfg.Seed.AdminEmail, Password: cfg.Seed.AdminPassword}
	if err := seed.CreateDefaultData(ctx, appRepos.NewUserRepository(database.Pool), admin, lgr); err != nil {
		// Startup continues without the seed account
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, nil
}

// SetupRedis connects to redis when it is enabled. An unreachable redis is
// logged and nil is returned so callers fall back to in-memory implementations.
func SetupRedis(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) *db.Redis {
	if !cfg.Redis.Enabled {
		lgr.Info().Msg("Redis disabled, using in-memory token denylist and rate limiter")
		return nil
	}
	r, err := db.NewRedis(ctx, cfg)
	if err != nil {
		lgr.Warn().Err(err).Msg("Redis unavailable, using in-memory token denylist and rate limiter")
		return nil
	}
	lgr.Info().Msg("Redis connection established.")
	return r
}

// SetupStorage creates the configured object storage backend.
func SetupStorage(ctx context.Context, cfg *config.Config) (filestorage.Storage, error) {
	switch cfg.Storage.Backend {
	case "s3":
		s3cfg := cfg.Storage.S3
		return filestorage.NewS3Storage(ctx, filestorage.S3Config{
			Bucket:         s3cfg.Bucket,
			Region:         s3cfg.Region,
			AccessKeyID:    s3cfg.AccessKeyID,
			SecretKey:      s3cfg.SecretKey,
			Endpoint:       s3cfg.Endpoint,
			PublicURL:      s3cfg.PublicURL,
			ForcePathStyle: s3cfg.ForcePathStyle,
		})
	default:
		baseURL := strings.TrimRight(cfg.Server.BaseURL, "/") + "/uploads"
		return filestorage.NewLocalStorage(cfg.Storage.LocalPath, baseURL)
	}
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(ctx context.Context, cfg *config.Config, database *db.PostgresDB, redis *db.Redis, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Database: database, Redis: redis, Logger: lgr}

	if err := validation.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	deps.Repos = appRepos.NewRepositories(database.Pool)

	storage, err := SetupStorage(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Str("backend", cfg.Storage.Backend).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}
	deps.Storage = storage

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	if redis != nil {
		deps.Denylist = pkgAuth.NewRedisDenylist(redis.Client, "campusdesk:denylist:")
		deps.Limiter = appMiddleware.NewRedisLimiter(redis.Client, "campusdesk:ratelimit:", cfg.RateLimit.PerMinute, cfg.RateLimit.Burst)
	} else {
		deps.Denylist = pkgAuth.NewMemoryDenylist()
		deps.Limiter = appMiddleware.NewTokenBucket(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst)
	}

	emailService := email.NewEmailService(email.SMTPConfig{
		Host:        cfg.SMTP.Host,
		Port:        cfg.SMTP.Port,
		Username:    cfg.SMTP.Username,
		Password:    cfg.SMTP.Password,
		FromName:    cfg.SMTP.FromName,
		FromEmail:   cfg.SMTP.From,
		UseTLS:      cfg.SMTP.UseTLS,
		FrontendURL: cfg.Server.FrontendURL,
	}, logger.WithComponent("email"))

	// Realtime: the hub pushes to sockets, the manager fans change-stream
	// events out to per-user subscriptions, the supervisor keeps the listener alive.
	deps.Hub = websocket.NewHub(logger.WithComponent("websocket"))
	deps.Manager = realtime.NewManager(logger.WithComponent("realtime"))
	registry := notifications.NewRegistry(cfg.Realtime.StoreCapacity)
	deps.NotificationService = appServices.NewNotificationService(registry, deps.Manager, deps.Hub, logger.WithComponent("notifications"))
	deps.Hub.SetPresence(deps.NotificationService)

	deps.Supervisor = realtime.NewSupervisor(
		realtime.NewPgListener(database.Pool, cfg.Realtime.Channel, logger.WithComponent("pg-listener")),
		deps.Repos.RealtimeLoader,
		deps.Manager,
		realtime.Backoff{Min: cfg.Realtime.MinBackoff, Max: cfg.Realtime.MaxBackoff},
		logger.WithComponent("supervisor"),
	)

	// Initialize services
	deps.AuthService = appServices.NewAuthService(appServices.AuthDeps{
		Users:     deps.Repos.UserRepository,
		Roles:     deps.Repos.RoleRepository,
		Profiles:  deps.Repos.ProfileRepository,
		Faculty:   deps.Repos.FacultyProfileRepository,
		Tokens:    deps.Repos.TokenRepository,
		Resets:    deps.Repos.PasswordResetRepository,
		JWT:       deps.JWTService,
		Denylist:  deps.Denylist,
		Email:     emailService,
		Publisher: deps.NotificationService,
	}, lgr)

	profileService := appServices.NewProfileService(deps.Repos.ProfileRepository, deps.Repos.FacultyProfileRepository,
		emailService, deps.NotificationService, lgr)
	roleService := appServices.NewRoleService(deps.Repos.RoleRepository, deps.NotificationService, lgr)
	attendanceService := appServices.NewAttendanceService(deps.Repos.AttendanceRepository, lgr)
	markService := appServices.NewMarkService(deps.Repos.MarkRepository, lgr)
	electionService := appServices.NewElectionService(deps.Repos.ElectionRepository, deps.Repos.CandidateRepository,
		deps.Repos.VoteRepository, storage, lgr)
	placementService := appServices.NewPlacementService(deps.Repos.PlacementRepository, deps.Repos.ApplicationRepository, lgr)
	noticeService := appServices.NewNoticeService(deps.Repos.NoticeRepository, storage, lgr)
	materialService := appServices.NewStudyMaterialService(deps.Repos.StudyMaterialRepository, storage, lgr)
	timetableService := appServices.NewTimetableService(deps.Repos.TimetableRepository, lgr)
	feedbackService := appServices.NewFeedbackService(deps.Repos.FeedbackRepository, lgr)
	reportService := appServices.NewReportService(deps.Repos.ReportRepository, deps.Repos.ClassRepRepository, lgr)
	alertService := appServices.NewAlertService(deps.Repos.AlertRepository, lgr)

	assistantClient := assistant.New(cfg.Assistant.GatewayURL, cfg.Assistant.APIKey, cfg.Assistant.Timeout)
	if !assistantClient.Configured() {
		lgr.Warn().Msg("Assistant gateway URL not set, assistant endpoints will answer 503")
	}
	assistantService := appServices.NewAssistantService(assistantClient, deps.Repos.MarkRepository,
		deps.Repos.AttendanceRepository, logger.WithComponent("assistant"))

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.Denylist, deps.AuthService, lgr)

	var redisHealth appControllers.HealthChecker
	if redis != nil {
		redisHealth = redis
	}

	deps.Controllers = appRoutes.Controllers{
		Auth:         appControllers.NewAuthController(deps.AuthService, lgr),
		Profile:      appControllers.NewProfileController(profileService),
		Academic:     appControllers.NewAcademicController(attendanceService, markService),
		Election:     appControllers.NewElectionController(electionService),
		Placement:    appControllers.NewPlacementController(placementService),
		Notice:       appControllers.NewNoticeController(noticeService, materialService),
		Campus:       appControllers.NewCampusController(timetableService, feedbackService, reportService),
		Notification: appControllers.NewNotificationController(deps.NotificationService, alertService),
		Assistant:    appControllers.NewAssistantController(assistantService),
		Admin:        appControllers.NewAdminController(roleService),
		Health:       appControllers.NewHealthController(database, redisHealth, deps.Manager),
		Websocket:    websocket.NewHandler(deps.Hub, cfg.Server.AllowedOrigins, logger.WithComponent("websocket")),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.MaxMultipartMemory = cfg.Storage.MaxUploadSize
	router.Use(
		appMiddleware.Recovery(lgr),
		appMiddleware.RequestLogger(lgr),
		metrics.GinMiddleware(),
		appMiddleware.SecurityHeaders(),
		appMiddleware.CORS(cfg.Server.AllowedOrigins),
	)
	if cfg.RateLimit.Enabled {
		router.Use(appMiddleware.RateLimit(deps.Limiter, lgr))
	}

	appRoutes.SetupSwagger(router)
	router.GET("/metrics", metrics.Handler())

	// Candidate photos are public; notices and materials go through their
	// download endpoints so audience rules apply.
	if cfg.Storage.Backend != "s3" {
		photos := filepath.Join(cfg.Storage.LocalPath, filestorage.BucketCandidatePhotos)
		router.Static("/uploads/"+filestorage.BucketCandidatePhotos, photos)
		lgr.Info().Str("path", photos).Msg("Static file serving configured for candidate photos")
	}

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
