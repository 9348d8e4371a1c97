package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/antoniosasso00/manta-management-system-sub000/internal/controllers"
	"github.com/antoniosasso00/manta-management-system-sub000/internal/listeners"
	"github.com/antoniosasso00/manta-management-system-sub000/internal/repositories"
	"github.com/antoniosasso00/manta-management-system-sub000/internal/services"
	"github.com/antoniosasso00/manta-management-system-sub000/pkg/config"
	"github.com/antoniosasso00/manta-management-system-sub000/pkg/eventbus"
)

// InitRouter builds the whole object graph and mounts every route under
// /api. Repositories share the connection pool; services share the
// event bus for post-commit side effects.
func InitRouter(e *echo.Echo, dbConn *pgxpool.Pool, redisClient *redis.Client, bus *eventbus.Bus, cfg *config.Config, logger *zap.Logger) {
	api := e.Group("/api")

	txManager := repositories.NewTxManager(dbConn)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)

	workOrderRepo := repositories.NewWorkOrderRepository(dbConn)
	departmentRepo := repositories.NewDepartmentRepository(dbConn)
	userRepo := repositories.NewUserRepository(dbConn)
	eventRepo := repositories.NewProductionEventRepository(dbConn)
	timeMetricRepo := repositories.NewTimeMetricRepository(dbConn)
	partStatRepo := repositories.NewPartStatisticRepository(dbConn)
	cureBatchRepo := repositories.NewCureBatchRepository(dbConn)

	workflowService := services.NewWorkflowService(
		txManager, workOrderRepo, departmentRepo, eventRepo, cureBatchRepo,
		cacheRepo, bus, cfg.Workflow, cfg.Cache, logger,
	)
	trackingService := services.NewTrackingService(
		txManager, workOrderRepo, departmentRepo, userRepo, eventRepo,
		timeMetricRepo, cacheRepo, workflowService, bus, cfg.Cache, logger,
	)
	metricsService := services.NewTimeMetricsService(
		workOrderRepo, eventRepo, timeMetricRepo, partStatRepo, logger,
	)
	exportService := services.NewStatisticsExportService(partStatRepo, logger)
	notificationService := services.NewLogNotificationService(logger)

	listeners.NewTimeMetricsListener(metricsService, logger).Register(bus)
	listeners.NewSupervisorListener(notificationService, userRepo, logger).Register(bus)

	trackingCtrl := controllers.NewTrackingController(trackingService, logger)
	workflowCtrl := controllers.NewWorkflowController(workflowService, logger)
	departmentCtrl := controllers.NewDepartmentController(departmentRepo, logger)
	statisticsCtrl := controllers.NewStatisticsController(metricsService, exportService, logger)

	runTrackingRouter(api, trackingCtrl)
	runWorkflowRouter(api, workflowCtrl)
	runDepartmentRouter(api, departmentCtrl)
	runStatisticsRouter(api, statisticsCtrl)

	logger.Info("routes mounted")
}
