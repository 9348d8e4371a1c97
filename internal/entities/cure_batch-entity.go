package entities

import "time"

const (
	CureBatchPlanned   = "PLANNED"
	CureBatchActive    = "ACTIVE"
	CureBatchCompleted = "COMPLETED"
)

// CureBatch groups ODLs loaded together into an autoclave cycle. The
// batch layout itself comes from the external optimizer; this subsystem
// only checks membership before allowing a transfer out of AUTOCLAVE.
type CureBatch struct {
	ID          uint64
	AutoclaveID uint64
	Status      string
	CreatedAt   time.Time
}
