package main

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/antoniosasso00/manta-management-system-sub000/internal/routes"
	"github.com/antoniosasso00/manta-management-system-sub000/pkg/config"
	"github.com/antoniosasso00/manta-management-system-sub000/pkg/database/postgresql"
	"github.com/antoniosasso00/manta-management-system-sub000/pkg/eventbus"
	applogger "github.com/antoniosasso00/manta-management-system-sub000/pkg/logger"
	appmw "github.com/antoniosasso00/manta-management-system-sub000/pkg/middleware"
	"github.com/antoniosasso00/manta-management-system-sub000/pkg/utils"
)

func main() {
	e := echo.New()
	e.HideBanner = true

	logger := applogger.NewLogger()
	defer logger.Sync() //nolint:errcheck

	cfg := config.New()

	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("panic recovered",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				return c.JSON(http.StatusInternalServerError, map[string]string{"message": "internal server error"})
			}
			return err
		},
	}))
	e.Use(appmw.RequestLogger(logger))
	e.Use(echomw.CORS())

	e.Validator = utils.NewValidator(validator.New())

	dbConn := postgresql.ConnectDB(cfg.Postgres.DSN)
	defer dbConn.Close()

	if err := postgresql.Migrate(cfg.Postgres.DSN); err != nil {
		logger.Fatal("failed to apply migrations", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Warn("redis unavailable, lookup caches disabled", zap.Error(err))
	}

	bus := eventbus.New(logger)

	routes.InitRouter(e, dbConn, redisClient, bus, cfg, logger)

	logger.Info("server starting", zap.String("port", cfg.Server.Port))
	if err := e.Start(":" + cfg.Server.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
