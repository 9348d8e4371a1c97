package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/antoniosasso00/manta-management-system-sub000/internal/services"
	apperrors "github.com/antoniosasso00/manta-management-system-sub000/pkg/errors"
	"github.com/antoniosasso00/manta-management-system-sub000/pkg/utils"
)

type StatisticsController struct {
	metricsService services.TimeMetricsServiceInterface
	exportService  services.StatisticsExportServiceInterface
	logger         *zap.Logger
}

func NewStatisticsController(
	metricsService services.TimeMetricsServiceInterface,
	exportService services.StatisticsExportServiceInterface,
	logger *zap.Logger,
) *StatisticsController {
	return &StatisticsController{
		metricsService: metricsService,
		exportService:  exportService,
		logger:         logger,
	}
}

func (c *StatisticsController) GetPartStatistics(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	res, err := c.metricsService.GetPartStatistics(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Part statistics retrieved", http.StatusOK)
}

func (c *StatisticsController) GetPartStatisticsForPart(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	partID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewInvalidInputError("invalid part id %q", ctx.Param("id")))
	}

	res, err := c.metricsService.GetPartStatisticsForPart(reqCtx, partID)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Part statistics retrieved", http.StatusOK)
}

func (c *StatisticsController) GetWorkOrderMetrics(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	workOrderID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewInvalidInputError("invalid work order id %q", ctx.Param("id")))
	}
	departmentID, err := strconv.ParseUint(ctx.Param("departmentId"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewInvalidInputError("invalid department id %q", ctx.Param("departmentId")))
	}

	res, err := c.metricsService.GetWorkOrderMetrics(reqCtx, workOrderID, departmentID)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Time metrics retrieved", http.StatusOK)
}

func (c *StatisticsController) ExportPartStatistics(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	buf, err := c.exportService.ExportPartStatistics(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	filename := "part-statistics-" + time.Now().Format("2006-01-02") + ".xlsx"
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return ctx.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}
