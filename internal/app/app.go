package app

import (
	"context"
	"database/sql"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appconfig "evolt/internal/config"
	httpserver "evolt/internal/http"
	"evolt/internal/http/handlers"
	"evolt/internal/http/middleware"
	"evolt/internal/password"
	"evolt/internal/repository"
	"evolt/internal/service"
	"evolt/internal/sessions"
	"evolt/libs/db"
	libredis "evolt/libs/redis"
)

// App wires dependencies for the station API.
type App struct {
	server *httpserver.Server
	db     *sql.DB
	redis  *goredis.Client
	logger *zap.Logger
}

// New builds application graph.
func New(cfg *appconfig.Config, logger *zap.Logger) (*App, error) {
	sqlDB, err := db.NewPostgresDB(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	redisClient, err := libredis.NewClient(cfg.Redis.Addr, cfg.Redis.Password)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}

	userRepo := repository.NewUserRepository(sqlDB)
	stationRepo := repository.NewStationRepository(sqlDB)

	hasher := password.NewBcryptHasher(0)
	tokenSvc := service.NewTokenService(cfg.JWT.Secret, cfg.JWTExpiration())
	sessionStore := sessions.NewStore(redisClient, cfg.JWTExpiration())

	authSvc := service.NewAuthService(userRepo, hasher, tokenSvc, sessionStore, logger)
	stationSvc := service.NewStationService(stationRepo, logger)

	router := httpserver.NewRouter(httpserver.RouterDeps{
		Auth:     handlers.NewAuthHandlers(authSvc, logger),
		Stations: handlers.NewStationHandlers(stationSvc, logger),
		Health:   handlers.NewHealthHandler(),
		Tokens:   tokenSvc,
	})

	handler := middleware.CORS(cfg.AllowedOrigins())(
		middleware.RequestLogger(logger)(router),
	)

	server := httpserver.NewServer(cfg.HTTPAddress(), handler, logger)

	return &App{
		server: server,
		db:     sqlDB,
		redis:  redisClient,
		logger: logger,
	}, nil
}

// Run starts serving HTTP traffic until context cancellation.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases acquired resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
