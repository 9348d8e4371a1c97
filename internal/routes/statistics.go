package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/antoniosasso00/manta-management-system-sub000/internal/controllers"
)

func runStatisticsRouter(g *echo.Group, ctrl *controllers.StatisticsController) {
	g.GET("/statistics/parts", ctrl.GetPartStatistics)
	g.GET("/statistics/parts/:id", ctrl.GetPartStatisticsForPart)
	g.GET("/statistics/parts/export", ctrl.ExportPartStatistics)
	g.GET("/statistics/work-orders/:id/departments/:departmentId", ctrl.GetWorkOrderMetrics)
}
