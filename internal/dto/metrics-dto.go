package dto

type PartTimeStatisticDTO struct {
	PartNumber            string  `json:"partNumber"`
	DepartmentCode        string  `json:"departmentCode"`
	CompletedCount        int64   `json:"completedCount"`
	AvgAdvancementMinutes float64 `json:"avgAdvancementMinutes"`
	AvgWorkingMinutes     float64 `json:"avgWorkingMinutes"`
	AvgWaitingMinutes     float64 `json:"avgWaitingMinutes"`
}

type TimeMetricDTO struct {
	WorkOrderID        uint64 `json:"workOrderId"`
	DepartmentID       uint64 `json:"departmentId"`
	EntryAt            string `json:"entryAt"`
	ExitAt             string `json:"exitAt,omitempty"`
	PauseMinutes       int64  `json:"pauseMinutes"`
	AdvancementMinutes *int64 `json:"advancementMinutes,omitempty"`
	WorkingMinutes     *int64 `json:"workingMinutes,omitempty"`
	WaitingMinutes     *int64 `json:"waitingMinutes,omitempty"`
	Completed          bool   `json:"completed"`
}
