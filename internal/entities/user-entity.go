package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

type User struct {
	ID           uint64
	FullName     string
	Email        string
	PasswordHash string
	DepartmentID null.Uint64
	IsSupervisor bool
	IsActive     bool
	CreatedAt    time.Time
}
