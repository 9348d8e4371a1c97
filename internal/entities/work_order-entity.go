package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

// WorkOrder is an ODL: a production lot of a part moving through the
// plant. Status is a cached projection of the event log, written only
// through accepted production events. Version increments on every
// status write and guards optimistic updates, so a status value that
// legitimately repeats cannot mask a concurrent change.
type WorkOrder struct {
	ID          uint64
	OrderNumber string
	PartID      uint64
	PartNumber  string
	Quantity    int
	Priority    string
	Status      string
	Version     uint64
	CreatedAt   time.Time
	UpdatedAt   null.Time
}
