package events

import (
	"github.com/antoniosasso00/manta-management-system-sub000/internal/entities"
)

// ProductionEventRecorded is published after the event + status write
// commits. Listeners (time metrics) run outside the transaction; their
// failure never rolls back the recorded event.
type ProductionEventRecorded struct {
	Event entities.ProductionEvent
}

func (e ProductionEventRecorded) Name() string {
	return "production.event.recorded"
}

// WorkOrderTransferred is published after a successful auto-transfer so
// the supervisors of the receiving department can be notified
// best-effort.
type WorkOrderTransferred struct {
	WorkOrder      entities.WorkOrder
	FromDepartment entities.Department
	ToDepartment   *entities.Department
	NewStatus      string
}

func (e WorkOrderTransferred) Name() string {
	return "workflow.transfer.executed"
}
