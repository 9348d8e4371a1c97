package entities

import (
	"time"

	"github.com/aarondl/null/v8"

	"github.com/antoniosasso00/manta-management-system-sub000/pkg/constants"
)

// ProductionEvent is an immutable fact about an ODL's interaction with
// a department. Never updated or deleted after insert.
type ProductionEvent struct {
	ID           uint64
	WorkOrderID  uint64
	DepartmentID uint64
	EventType    constants.EventType
	UserID       uint64
	Notes        null.String
	DurationMs   null.Int64
	IsAutomatic  bool
	CreatedAt    time.Time
}
