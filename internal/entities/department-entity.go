package entities

import (
	"time"

	"github.com/antoniosasso00/manta-management-system-sub000/pkg/constants"
)

// Department is a work center. Immutable reference data for this
// subsystem.
type Department struct {
	ID        uint64
	Code      string
	Name      string
	Type      constants.DepartmentType
	IsActive  bool
	CreatedAt time.Time
}
