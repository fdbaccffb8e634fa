package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/studyhub/internal/app/auth"
	appControllers "github.com/yigit/studyhub/internal/app/controllers"
	appMigrations "github.com/yigit/studyhub/internal/app/migrations"
	appRepos "github.com/yigit/studyhub/internal/app/repositories"
	appRoutes "github.com/yigit/studyhub/internal/app/routes"
	appServices "github.com/yigit/studyhub/internal/app/services"
	"github.com/yigit/studyhub/internal/config"
	"github.com/yigit/studyhub/internal/db"
	appMiddleware "github.com/yigit/studyhub/internal/middleware"
	pkgAuth "github.com/yigit/studyhub/internal/pkg/auth"
	"github.com/yigit/studyhub/internal/pkg/logger"
	"github.com/yigit/studyhub/internal/pkg/metrics"
	"github.com/yigit/studyhub/internal/pkg/tokenstore"
	"github.com/yigit/studyhub/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	SubjectService  appServices.SubjectService
	AuthService     appServices.AuthService
	ProfileService  appServices.ProfileService
	GroupService    appServices.GroupService
	ResourceService appServices.ResourceService
	MatchService    appServices.MatchService

	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	Repos          *appRepos.Repositories
	JWTService     *pkgAuth.JWTService
	TokenStore     tokenstore.Store
	Redis          *redis.Client // nil when revocations are kept in memory
	Policy         appAuth.Policy
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr := logger.Component("api")
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and
// seeds the subject catalog.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := dbPool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		dbPool.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		dbPool.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Str("path", migrationsDir).Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool, logger.Component("migrations"))
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		dbPool.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.CreateDefaultData(ctx, appRepos.NewSubjectRepository(dbPool), lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return dbPool, nil
}

// SetupTokenStore connects to redis when an address is configured and
// otherwise falls back to the in-process store.
func SetupTokenStore(cfg *config.Config, lgr zerolog.Logger) (tokenstore.Store, *redis.Client) {
	if cfg.Redis.Addr == "" {
		lgr.Warn().Msg("Redis not configured, revoked tokens are kept in memory")
		return tokenstore.NewMemoryStore(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	store := tokenstore.NewRedisStore(client, cfg.Redis.KeyPrefix)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		lgr.Error().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unreachable, revoked tokens are kept in memory")
		_ = client.Close()
		return tokenstore.NewMemoryStore(), nil
	}

	lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Redis token store connected")
	return store, client
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, conn db.Beginner, pinger appControllers.Pinger, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(conn)
	deps.Policy = appAuth.PolicyFromConfig(cfg)
	deps.TokenStore, deps.Redis = SetupTokenStore(cfg, lgr)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: cfg.AccessTokenTTL(),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	repos := deps.Repos
	deps.SubjectService = appServices.NewSubjectService(repos.SubjectRepository, logger.Component("subjects"))
	deps.AuthService = appServices.NewAuthService(repos.UserRepository, deps.JWTService, deps.TokenStore, logger.Component("auth"))
	deps.ProfileService = appServices.NewProfileService(repos.UserRepository, repos.GroupRepository, logger.Component("profiles"))
	deps.GroupService = appServices.NewGroupService(repos.GroupRepository, repos.ResourceRepository, logger.Component("groups"))
	deps.ResourceService = appServices.NewResourceService(repos.GroupRepository, repos.ResourceRepository, logger.Component("resources"))
	deps.MatchService = appServices.NewMatchService(repos.UserRepository, logger.Component("matches"))

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.TokenStore, repos.UserRepository, logger.Component("auth"))

	checks := map[string]appControllers.Pinger{"database": pinger}
	if rs, ok := deps.TokenStore.(*tokenstore.RedisStore); ok {
		checks["redis"] = rs
	}

	deps.Controllers = appRoutes.Controllers{
		Auth:     appControllers.NewAuthController(deps.AuthService),
		Subject:  appControllers.NewSubjectController(deps.SubjectService),
		Group:    appControllers.NewGroupController(deps.GroupService),
		Resource: appControllers.NewResourceController(deps.ResourceService),
		Profile:  appControllers.NewProfileController(deps.ProfileService, deps.MatchService),
		Health:   appControllers.NewHealthController(checks),
	}

	return deps
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

	appMiddleware.RegisterValidation()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger(logger.Component("http")))
	router.Use(metrics.Middleware())

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, deps.Policy)

	return router
}
