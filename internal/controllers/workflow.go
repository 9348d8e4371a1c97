package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/antoniosasso00/manta-management-system-sub000/internal/dto"
	"github.com/antoniosasso00/manta-management-system-sub000/internal/services"
	"github.com/antoniosasso00/manta-management-system-sub000/pkg/constants"
	apperrors "github.com/antoniosasso00/manta-management-system-sub000/pkg/errors"
	"github.com/antoniosasso00/manta-management-system-sub000/pkg/utils"
)

type WorkflowController struct {
	workflowService services.WorkflowServiceInterface
	logger          *zap.Logger
}

func NewWorkflowController(workflowService services.WorkflowServiceInterface, logger *zap.Logger) *WorkflowController {
	return &WorkflowController{workflowService: workflowService, logger: logger}
}

func (c *WorkflowController) GetNextDepartment(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	t := constants.DepartmentType(ctx.Param("type"))
	if !constants.IsValidDepartmentType(t) {
		return utils.ErrorResponse(ctx, apperrors.NewInvalidInputError("unknown department type %q", ctx.Param("type")))
	}

	dept, err := c.workflowService.GetNextDepartment(reqCtx, t)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	if dept == nil {
		return utils.SuccessResponse(ctx, nil, "No next department: terminal or excluded from the workflow", http.StatusOK)
	}
	return utils.SuccessResponse(ctx, dto.DepartmentSummaryDTO{
		ID:   dept.ID,
		Code: dept.Code,
		Name: dept.Name,
		Type: string(dept.Type),
	}, "Next department resolved", http.StatusOK)
}

func (c *WorkflowController) ValidateTransfer(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.ValidateTransferDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.ErrBadRequest)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	opts := services.TransferOptions{
		ForceTransfer:     payload.ForceTransfer,
		CheckDependencies: true,
	}
	if payload.CheckDependencies != nil {
		opts.CheckDependencies = *payload.CheckDependencies
	}

	res, err := c.workflowService.ValidateTransfer(reqCtx, payload.WorkOrderID, payload.DepartmentID, opts)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Transfer validation completed", http.StatusOK)
}

func (c *WorkflowController) ExecuteTransfer(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.ExecuteTransferDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.ErrBadRequest)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.workflowService.ExecuteAutoTransfer(reqCtx, payload.WorkOrderID, payload.DepartmentID, payload.UserID, payload.Notes)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Transfer executed", http.StatusOK)
}

func (c *WorkflowController) RollbackTransfer(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var payload dto.RollbackTransferDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.ErrBadRequest)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	if err := c.workflowService.RollbackTransfer(reqCtx, payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Transfer rolled back", http.StatusOK)
}
