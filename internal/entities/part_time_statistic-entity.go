package entities

// PartTimeStatistic is the streaming per-(part, department) aggregate:
// incremented on every completed department visit, never recomputed
// from scratch.
type PartTimeStatistic struct {
	ID                      uint64
	PartID                  uint64
	PartNumber              string
	DepartmentID            uint64
	DepartmentCode          string
	CompletedCount          int64
	TotalAdvancementMinutes int64
	TotalWorkingMinutes     int64
	TotalWaitingMinutes     int64
	AvgAdvancementMinutes   float64
	AvgWorkingMinutes       float64
	AvgWaitingMinutes       float64
}
