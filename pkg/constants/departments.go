package constants

// DepartmentType identifies a manufacturing work center class.
type DepartmentType string

const (
	DeptCleanroom         DepartmentType = "CLEANROOM"
	DeptAutoclave         DepartmentType = "AUTOCLAVE"
	DeptControlloNumerico DepartmentType = "CONTROLLO_NUMERICO"
	DeptNDI               DepartmentType = "NDI"
	DeptMontaggio         DepartmentType = "MONTAGGIO"
	DeptVerniciatura      DepartmentType = "VERNICIATURA"
	DeptControlloQualita  DepartmentType = "CONTROLLO_QUALITA"

	// HONEYCOMB and MOTORI run outside the main sequence and are
	// advanced manually, never by auto-transfer.
	DeptHoneycomb DepartmentType = "HONEYCOMB"
	DeptMotori    DepartmentType = "MOTORI"
)

// WorkflowSequence is the fixed, ordered chain of department types an
// ODL moves through. Index order is what "earlier/later department"
// comparisons are based on.
var WorkflowSequence = []DepartmentType{
	DeptCleanroom,
	DeptAutoclave,
	DeptControlloNumerico,
	DeptNDI,
	DeptMontaggio,
	DeptVerniciatura,
	DeptControlloQualita,
}

// SequenceIndex returns the position of a department type in the main
// sequence, or -1 for workflow-excluded types.
func SequenceIndex(t DepartmentType) int {
	for i, s := range WorkflowSequence {
		if s == t {
			return i
		}
	}
	return -1
}

// IsWorkflowExcluded reports whether the type never participates in
// automatic chaining.
func IsWorkflowExcluded(t DepartmentType) bool {
	return t == DeptHoneycomb || t == DeptMotori
}

// IsValidDepartmentType reports whether t is one of the known types.
func IsValidDepartmentType(t DepartmentType) bool {
	return SequenceIndex(t) >= 0 || IsWorkflowExcluded(t)
}

// PreviousDepartmentType returns the department type preceding t in the
// main sequence. The first department and excluded types have none.
func PreviousDepartmentType(t DepartmentType) (DepartmentType, bool) {
	idx := SequenceIndex(t)
	if idx <= 0 {
		return "", false
	}
	return WorkflowSequence[idx-1], true
}

// LaterDepartmentTypes returns every type strictly after t in the main
// sequence. Empty for the last department and for excluded types.
func LaterDepartmentTypes(t DepartmentType) []DepartmentType {
	idx := SequenceIndex(t)
	if idx < 0 || idx+1 >= len(WorkflowSequence) {
		return nil
	}
	later := make([]DepartmentType, 0, len(WorkflowSequence)-idx-1)
	later = append(later, WorkflowSequence[idx+1:]...)
	return later
}
