package constants

import "strings"

// --- ODL STATUSES (match the codes stored on the odl table) ---
//
// The full set is CREATED, ASSIGNED_TO_<T>, IN_<T>, <T>_COMPLETED for
// every department type T, plus the terminal/exception statuses below.
// The status column is a cached projection of the event log; it is only
// ever written through department entry/exit/assignment events.
const (
	StatusCreated   = "CREATED"
	StatusCompleted = "COMPLETED"
	StatusOnHold    = "ON_HOLD"
	StatusCancelled = "CANCELLED"
)

func StatusAssignedTo(t DepartmentType) string {
	return "ASSIGNED_TO_" + string(t)
}

func StatusIn(t DepartmentType) string {
	return "IN_" + string(t)
}

func StatusDeptCompleted(t DepartmentType) string {
	return string(t) + "_COMPLETED"
}

// FinalStatuses are terminal: no event may move an ODL out of them.
var FinalStatuses = []string{
	StatusCompleted,
	StatusCancelled,
}

func IsFinalStatus(code string) bool {
	for _, s := range FinalStatuses {
		if s == code {
			return true
		}
	}
	return false
}

// AllStatuses enumerates every legal status code.
func AllStatuses() []string {
	all := []string{StatusCreated, StatusCompleted, StatusOnHold, StatusCancelled}
	types := append([]DepartmentType{}, WorkflowSequence...)
	types = append(types, DeptHoneycomb, DeptMotori)
	for _, t := range types {
		all = append(all, StatusAssignedTo(t), StatusIn(t), StatusDeptCompleted(t))
	}
	return all
}

func IsValidStatus(code string) bool {
	for _, s := range AllStatuses() {
		if s == code {
			return true
		}
	}
	return false
}

// StatusCategory is the coarse classification a department board uses
// before looking at the event log.
type StatusCategory string

const (
	CategoryNone          StatusCategory = "NONE"
	CategoryCreated       StatusCategory = "CREATED"
	CategoryAssigned      StatusCategory = "ASSIGNED"
	CategoryInDepartment  StatusCategory = "IN_DEPARTMENT"
	CategoryDeptCompleted StatusCategory = "DEPT_COMPLETED"
	CategoryInPrevious    StatusCategory = "IN_PREVIOUS"
)

// ClassifyStatus matches a status code against a department's own type
// by recognizing the CREATED / ASSIGNED_TO_<T> / IN_<T> / <T>_COMPLETED
// prefixes. IN_<prev(T)> is reported separately so boards can build the
// incoming bucket.
func ClassifyStatus(status string, t DepartmentType) StatusCategory {
	switch status {
	case StatusCreated:
		return CategoryCreated
	case StatusAssignedTo(t):
		return CategoryAssigned
	case StatusIn(t):
		return CategoryInDepartment
	case StatusDeptCompleted(t):
		return CategoryDeptCompleted
	}
	if prev, ok := PreviousDepartmentType(t); ok && status == StatusIn(prev) {
		return CategoryInPrevious
	}
	return CategoryNone
}

// StatusDepartmentType extracts the department type a status refers to,
// if any (e.g. IN_AUTOCLAVE -> AUTOCLAVE).
func StatusDepartmentType(status string) (DepartmentType, bool) {
	switch {
	case strings.HasPrefix(status, "ASSIGNED_TO_"):
		t := DepartmentType(strings.TrimPrefix(status, "ASSIGNED_TO_"))
		if IsValidDepartmentType(t) {
			return t, true
		}
	case strings.HasPrefix(status, "IN_"):
		t := DepartmentType(strings.TrimPrefix(status, "IN_"))
		if IsValidDepartmentType(t) {
			return t, true
		}
	case strings.HasSuffix(status, "_COMPLETED") && status != StatusCompleted:
		t := DepartmentType(strings.TrimSuffix(status, "_COMPLETED"))
		if IsValidDepartmentType(t) {
			return t, true
		}
	}
	return "", false
}

// --- PRIORITIES ---
const (
	PriorityLow    = "LOW"
	PriorityNormal = "NORMAL"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)
