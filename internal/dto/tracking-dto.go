package dto

type CreateProductionEventDTO struct {
	WorkOrderID  uint64 `json:"workOrderId" validate:"required"`
	DepartmentID uint64 `json:"departmentId" validate:"required"`
	EventType    string `json:"eventType" validate:"required,oneof=ASSIGNED ENTRY EXIT PAUSE RESUME NOTE"`
	UserID       uint64 `json:"userId" validate:"required"`
	Notes        string `json:"notes,omitempty"`
	DurationMs   int64  `json:"durationMs,omitempty" validate:"omitempty,min=0"`
}

type CreateAssignmentEventDTO struct {
	WorkOrderID  uint64 `json:"workOrderId" validate:"required"`
	DepartmentID uint64 `json:"departmentId" validate:"required"`
	UserID       uint64 `json:"userId" validate:"required"`
	Notes        string `json:"notes,omitempty"`
}

type WorkOrderSummaryDTO struct {
	ID          uint64 `json:"id"`
	OrderNumber string `json:"orderNumber"`
	PartNumber  string `json:"partNumber"`
	Status      string `json:"status"`
}

type DepartmentSummaryDTO struct {
	ID   uint64 `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type UserSummaryDTO struct {
	ID       uint64 `json:"id"`
	FullName string `json:"fullName"`
}

// ProductionEventDTO is the persisted event enriched with summaries and
// the auto-transfer outcome, when the event triggered one.
type ProductionEventDTO struct {
	ID           uint64                 `json:"id"`
	EventType    string                 `json:"eventType"`
	Notes        string                 `json:"notes,omitempty"`
	DurationMs   *int64                 `json:"durationMs,omitempty"`
	IsAutomatic  bool                   `json:"isAutomatic"`
	CreatedAt    string                 `json:"createdAt"`
	WorkOrder    WorkOrderSummaryDTO    `json:"workOrder"`
	Department   DepartmentSummaryDTO   `json:"department"`
	User         UserSummaryDTO         `json:"user"`
	AutoTransfer *AutoTransferResultDTO `json:"autoTransfer,omitempty"`
}

type TrackingStatusDTO struct {
	WorkOrderID                uint64                `json:"workOrderId"`
	OrderNumber                string                `json:"orderNumber"`
	Status                     string                `json:"status"`
	CurrentDepartment          *DepartmentSummaryDTO `json:"currentDepartment,omitempty"`
	LastEvent                  *EventSummaryDTO      `json:"lastEvent,omitempty"`
	MinutesInCurrentDepartment int64                 `json:"minutesInCurrentDepartment"`
	TotalProductionMinutes     int64                 `json:"totalProductionMinutes"`
	Paused                     bool                  `json:"paused"`
}

type EventSummaryDTO struct {
	EventType    string `json:"eventType"`
	DepartmentID uint64 `json:"departmentId"`
	IsAutomatic  bool   `json:"isAutomatic"`
	CreatedAt    string `json:"createdAt"`
}

// DepartmentBoardDTO buckets every ODL relevant to one department. The
// four buckets are a partition: an ODL appears in at most one of them.
type DepartmentBoardDTO struct {
	Department    DepartmentSummaryDTO `json:"department"`
	Incoming      []BoardItemDTO       `json:"incoming"`
	InPreparation []BoardItemDTO       `json:"inPreparation"`
	InProduction  []BoardItemDTO       `json:"inProduction"`
	Completed     []BoardItemDTO       `json:"completed"`
	Stats         BoardStatsDTO        `json:"stats"`
}

type BoardItemDTO struct {
	WorkOrderID             uint64 `json:"workOrderId"`
	OrderNumber             string `json:"orderNumber"`
	PartNumber              string `json:"partNumber"`
	Quantity                int    `json:"quantity"`
	Priority                string `json:"priority"`
	Status                  string `json:"status"`
	TimeInDepartmentMinutes *int64 `json:"timeInDepartmentMinutes,omitempty"`
}

type BoardStatsDTO struct {
	IncomingCount       int     `json:"incomingCount"`
	ActiveCount         int     `json:"activeCount"`
	CompletedCount      int     `json:"completedCount"`
	AvgCycleTimeMinutes float64 `json:"avgCycleTimeMinutes"`
	EfficiencyPercent   int     `json:"efficiencyPercent"`
}
