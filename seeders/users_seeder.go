package seeders

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/antoniosasso00/manta-management-system-sub000/pkg/utils"
)

var usersData = []struct {
	FullName       string
	Email          string
	DepartmentCode string
	IsSupervisor   bool
}{
	{FullName: "Elena Martini", Email: "e.martini@example.com", DepartmentCode: "CR-1", IsSupervisor: true},
	{FullName: "Paolo Ricci", Email: "p.ricci@example.com", DepartmentCode: "CR-1"},
	{FullName: "Giorgio Villa", Email: "g.villa@example.com", DepartmentCode: "AC-1", IsSupervisor: true},
	{FullName: "Sara Colombo", Email: "s.colombo@example.com", DepartmentCode: "CN-1", IsSupervisor: true},
	{FullName: "Marco Ferraro", Email: "m.ferraro@example.com", DepartmentCode: "NDI-1", IsSupervisor: true},
	{FullName: "Luca Greco", Email: "l.greco@example.com", DepartmentCode: "MON-1", IsSupervisor: true},
	{FullName: "Anna Rizzo", Email: "a.rizzo@example.com", DepartmentCode: "VER-1", IsSupervisor: true},
	{FullName: "Davide Conti", Email: "d.conti@example.com", DepartmentCode: "CQ-1", IsSupervisor: true},
}

const defaultPassword = "changeme"

func seedUsers(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - seeding users...")

	hash, err := utils.HashPassword(defaultPassword)
	if err != nil {
		return fmt.Errorf("failed to hash default password: %w", err)
	}

	for _, u := range usersData {
		var departmentID uint64
		if err := db.QueryRow(ctx, "SELECT id FROM departments WHERE code = $1", u.DepartmentCode).Scan(&departmentID); err != nil {
			return fmt.Errorf("department %s not found for user %s: %w", u.DepartmentCode, u.Email, err)
		}
		_, err := db.Exec(ctx,
			`INSERT INTO users (full_name, email, password_hash, department_id, is_supervisor)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (email) DO NOTHING`,
			u.FullName, u.Email, hash, departmentID, u.IsSupervisor)
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.Email, err)
		}
	}
	return nil
}
