package dto

// TransferValidationDTO is the report returned by transfer validation:
// whether the ODL may leave its current department, where it would go,
// and what blocks it otherwise.
type TransferValidationDTO struct {
	Allowed         bool                  `json:"allowed"`
	Reason          string                `json:"reason,omitempty"`
	RequiredActions []string              `json:"requiredActions,omitempty"`
	CurrentStatus   string                `json:"currentStatus"`
	RequiredStatus  string                `json:"requiredStatus"`
	TargetStatus    string                `json:"targetStatus,omitempty"`
	NextDepartment  *DepartmentSummaryDTO `json:"nextDepartment,omitempty"`
}

type AutoTransferResultDTO struct {
	Success        bool                  `json:"success"`
	Message        string                `json:"message"`
	PreviousStatus string                `json:"previousStatus,omitempty"`
	NewStatus      string                `json:"newStatus,omitempty"`
	NextDepartment *DepartmentSummaryDTO `json:"nextDepartment,omitempty"`
}

type ValidateTransferDTO struct {
	WorkOrderID       uint64 `json:"workOrderId" validate:"required"`
	DepartmentID      uint64 `json:"departmentId" validate:"required"`
	ForceTransfer     bool   `json:"forceTransfer"`
	CheckDependencies *bool  `json:"checkDependencies,omitempty"`
}

type ExecuteTransferDTO struct {
	WorkOrderID  uint64 `json:"workOrderId" validate:"required"`
	DepartmentID uint64 `json:"departmentId" validate:"required"`
	UserID       uint64 `json:"userId" validate:"required"`
	Notes        string `json:"notes,omitempty"`
}

type RollbackTransferDTO struct {
	WorkOrderID    uint64 `json:"workOrderId" validate:"required"`
	PreviousStatus string `json:"previousStatus" validate:"required"`
	UserID         uint64 `json:"userId" validate:"required"`
	Reason         string `json:"reason" validate:"required"`
}
