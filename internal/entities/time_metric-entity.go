package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

// TimeMetric is the per-(ODL, department) timing record owned by the
// time metrics service. Created on ENTRY, updated on PAUSE/RESUME/EXIT.
type TimeMetric struct {
	ID                 uint64
	WorkOrderID        uint64
	DepartmentID       uint64
	EntryAt            time.Time
	ExitAt             null.Time
	PauseMinutes       int64
	AdvancementMinutes null.Int64
	WorkingMinutes     null.Int64
	WaitingMinutes     null.Int64
	Completed          bool
}
