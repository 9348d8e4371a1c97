package constants

// WorkflowTransition is one row of the fixed workflow table: leaving
// From requires RequiredStatus on the ODL and lands it in TargetStatus.
// An empty To marks the terminal row (final quality control closes the
// order instead of handing it to another department).
type WorkflowTransition struct {
	From           DepartmentType
	To             DepartmentType
	RequiredStatus string
	TargetStatus   string
}

// WorkflowTable is the whole production routing, as data. HONEYCOMB and
// MOTORI have no row here: they are never chained automatically.
var WorkflowTable = []WorkflowTransition{
	{From: DeptCleanroom, To: DeptAutoclave, RequiredStatus: StatusDeptCompleted(DeptCleanroom), TargetStatus: StatusIn(DeptAutoclave)},
	{From: DeptAutoclave, To: DeptControlloNumerico, RequiredStatus: StatusDeptCompleted(DeptAutoclave), TargetStatus: StatusIn(DeptControlloNumerico)},
	{From: DeptControlloNumerico, To: DeptNDI, RequiredStatus: StatusDeptCompleted(DeptControlloNumerico), TargetStatus: StatusIn(DeptNDI)},
	{From: DeptNDI, To: DeptMontaggio, RequiredStatus: StatusDeptCompleted(DeptNDI), TargetStatus: StatusIn(DeptMontaggio)},
	{From: DeptMontaggio, To: DeptVerniciatura, RequiredStatus: StatusDeptCompleted(DeptMontaggio), TargetStatus: StatusIn(DeptVerniciatura)},
	{From: DeptVerniciatura, To: DeptControlloQualita, RequiredStatus: StatusDeptCompleted(DeptVerniciatura), TargetStatus: StatusIn(DeptControlloQualita)},
	{From: DeptControlloQualita, To: "", RequiredStatus: StatusDeptCompleted(DeptControlloQualita), TargetStatus: StatusCompleted},
}

// TransitionFrom looks up the workflow row leaving the given type.
func TransitionFrom(t DepartmentType) (WorkflowTransition, bool) {
	for _, tr := range WorkflowTable {
		if tr.From == t {
			return tr, true
		}
	}
	return WorkflowTransition{}, false
}

// NextDepartmentType resolves the department type that follows t, or
// false when t is terminal or workflow-excluded.
func NextDepartmentType(t DepartmentType) (DepartmentType, bool) {
	tr, ok := TransitionFrom(t)
	if !ok || tr.To == "" {
		return "", false
	}
	return tr.To, true
}

// DeriveStatus is the deterministic (department type, event type) ->
// status table. Events that never touch the status (PAUSE, RESUME,
// NOTE) report ok=false.
func DeriveStatus(t DepartmentType, e EventType) (string, bool) {
	switch e {
	case EventAssigned:
		return StatusAssignedTo(t), true
	case EventEntry:
		return StatusIn(t), true
	case EventExit:
		return StatusDeptCompleted(t), true
	default:
		return "", false
	}
}

// CanEnter reports whether an ODL with the given cached status may
// record an ENTRY in a department of type t: it must be assigned to it,
// have completed the previous department, or, for the head of the
// sequence and for the excluded types, still be freshly created.
func CanEnter(status string, t DepartmentType) bool {
	if status == StatusAssignedTo(t) {
		return true
	}
	if IsWorkflowExcluded(t) {
		return status == StatusCreated
	}
	idx := SequenceIndex(t)
	if idx == 0 {
		return status == StatusCreated
	}
	if prev, ok := PreviousDepartmentType(t); ok {
		return status == StatusDeptCompleted(prev)
	}
	return false
}

// CanExit reports whether an ODL may record an EXIT from a department
// of type t: it must currently be inside it.
func CanExit(status string, t DepartmentType) bool {
	return status == StatusIn(t)
}

// RequiredEntryStatus names the status an ODL normally needs before
// entering t, for "illegal transition" error messages.
func RequiredEntryStatus(t DepartmentType) string {
	if IsWorkflowExcluded(t) || SequenceIndex(t) == 0 {
		return StatusAssignedTo(t) + " or " + StatusCreated
	}
	prev, _ := PreviousDepartmentType(t)
	return StatusAssignedTo(t) + " or " + StatusDeptCompleted(prev)
}
