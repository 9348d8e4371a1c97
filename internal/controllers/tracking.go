package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/antoniosasso00/manta-management-system-sub000/internal/dto"
	"github.com/antoniosasso00/manta-management-system-sub000/internal/repositories"
	"github.com/antoniosasso00/manta-management-system-sub000/internal/services"
	apperrors "github.com/antoniosasso00/manta-management-system-sub000/pkg/errors"
	"github.com/antoniosasso00/manta-management-system-sub000/pkg/utils"
)

type TrackingController struct {
	trackingService services.TrackingServiceInterface
	logger          *zap.Logger
}

func NewTrackingController(trackingService services.TrackingServiceInterface, logger *zap.Logger) *TrackingController {
	return &TrackingController{trackingService: trackingService, logger: logger}
}

func (c *TrackingController) CreateEvent(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.CreateProductionEventDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.ErrBadRequest)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.trackingService.CreateProductionEvent(reqCtx, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Production event recorded", http.StatusCreated)
}

func (c *TrackingController) CreateAssignment(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.CreateAssignmentEventDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.ErrBadRequest)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.trackingService.CreateAssignmentEvent(reqCtx, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Work order assigned", http.StatusCreated)
}

func (c *TrackingController) GetTrackingStatus(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewInvalidInputError("invalid work order id %q", ctx.Param("id")))
	}

	res, err := c.trackingService.GetWorkOrderTrackingStatus(reqCtx, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Tracking status retrieved", http.StatusOK)
}

func (c *TrackingController) GetWorkOrderEvents(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewInvalidInputError("invalid work order id %q", ctx.Param("id")))
	}

	res, err := c.trackingService.GetWorkOrderEvents(reqCtx, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Work order events retrieved", http.StatusOK)
}

func (c *TrackingController) ListEvents(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	filter := repositories.EventFilter{
		EventType: ctx.QueryParam("eventType"),
	}
	if v := ctx.QueryParam("workOrderId"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return utils.ErrorResponse(ctx, apperrors.NewInvalidInputError("invalid work order id %q", v))
		}
		filter.WorkOrderID = id
	}
	if v := ctx.QueryParam("departmentId"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return utils.ErrorResponse(ctx, apperrors.NewInvalidInputError("invalid department id %q", v))
		}
		filter.DepartmentID = id
	}
	if v := ctx.QueryParam("automatic"); v != "" {
		auto, err := strconv.ParseBool(v)
		if err != nil {
			return utils.ErrorResponse(ctx, apperrors.NewInvalidInputError("invalid automatic flag %q", v))
		}
		filter.Automatic = &auto
	}
	if v := ctx.QueryParam("limit"); v != "" {
		limit, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return utils.ErrorResponse(ctx, apperrors.NewInvalidInputError("invalid limit %q", v))
		}
		filter.Limit = limit
	}
	if v := ctx.QueryParam("offset"); v != "" {
		offset, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return utils.ErrorResponse(ctx, apperrors.NewInvalidInputError("invalid offset %q", v))
		}
		filter.Offset = offset
	}

	res, total, err := c.trackingService.ListProductionEvents(reqCtx, filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, map[string]interface{}{
		"events":     res,
		"totalCount": total,
	}, "Production events retrieved", http.StatusOK)
}

func (c *TrackingController) GetDepartmentBoard(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewInvalidInputError("invalid department id %q", ctx.Param("id")))
	}

	res, err := c.trackingService.GetDepartmentWorkOrderList(reqCtx, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Department board retrieved", http.StatusOK)
}
