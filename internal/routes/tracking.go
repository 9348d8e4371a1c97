package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/antoniosasso00/manta-management-system-sub000/internal/controllers"
)

func runTrackingRouter(g *echo.Group, ctrl *controllers.TrackingController) {
	g.POST("/tracking/events", ctrl.CreateEvent)
	g.GET("/tracking/events", ctrl.ListEvents)
	g.POST("/tracking/assignments", ctrl.CreateAssignment)
	g.GET("/tracking/work-orders/:id", ctrl.GetTrackingStatus)
	g.GET("/tracking/work-orders/:id/events", ctrl.GetWorkOrderEvents)
	g.GET("/tracking/departments/:id/board", ctrl.GetDepartmentBoard)
}
