package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/antoniosasso00/manta-management-system-sub000/internal/controllers"
)

func runDepartmentRouter(g *echo.Group, ctrl *controllers.DepartmentController) {
	g.GET("/departments", ctrl.GetDepartments)
	g.GET("/departments/:id", ctrl.FindDepartment)
}
