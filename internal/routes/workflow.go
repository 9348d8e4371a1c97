package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/antoniosasso00/manta-management-system-sub000/internal/controllers"
)

func runWorkflowRouter(g *echo.Group, ctrl *controllers.WorkflowController) {
	g.GET("/workflow/next/:type", ctrl.GetNextDepartment)
	g.POST("/workflow/transfers/validate", ctrl.ValidateTransfer)
	g.POST("/workflow/transfers", ctrl.ExecuteTransfer)
	g.POST("/workflow/transfers/rollback", ctrl.RollbackTransfer)
}
