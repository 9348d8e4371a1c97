package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/antoniosasso00/manta-management-system-sub000/internal/dto"
	"github.com/antoniosasso00/manta-management-system-sub000/internal/entities"
	"github.com/antoniosasso00/manta-management-system-sub000/internal/repositories"
	apperrors "github.com/antoniosasso00/manta-management-system-sub000/pkg/errors"
	"github.com/antoniosasso00/manta-management-system-sub000/pkg/utils"
)

type DepartmentController struct {
	departmentRepo repositories.DepartmentRepositoryInterface
	logger         *zap.Logger
}

func NewDepartmentController(departmentRepo repositories.DepartmentRepositoryInterface, logger *zap.Logger) *DepartmentController {
	return &DepartmentController{departmentRepo: departmentRepo, logger: logger}
}

func (c *DepartmentController) GetDepartments(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	departments, err := c.departmentRepo.GetDepartments(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	summaries := make([]dto.DepartmentSummaryDTO, 0, len(departments))
	for _, d := range departments {
		summaries = append(summaries, departmentToSummary(d))
	}
	return utils.SuccessResponse(ctx, summaries, "Departments retrieved", http.StatusOK)
}

func (c *DepartmentController) FindDepartment(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewInvalidInputError("invalid department id %q", ctx.Param("id")))
	}

	dept, err := c.departmentRepo.FindDepartment(reqCtx, id)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, departmentToSummary(*dept), "Department retrieved", http.StatusOK)
}

func departmentToSummary(d entities.Department) dto.DepartmentSummaryDTO {
	return dto.DepartmentSummaryDTO{
		ID:   d.ID,
		Code: d.Code,
		Name: d.Name,
		Type: string(d.Type),
	}
}
