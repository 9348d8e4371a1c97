package seeders

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/antoniosasso00/manta-management-system-sub000/pkg/constants"
)

var departmentsData = []struct {
	Code string
	Name string
	Type constants.DepartmentType
}{
	{Code: "CR-1", Name: "Clean Room 1", Type: constants.DeptCleanroom},
	{Code: "AC-1", Name: "Autoclave Hall", Type: constants.DeptAutoclave},
	{Code: "CN-1", Name: "CNC Machining", Type: constants.DeptControlloNumerico},
	{Code: "NDI-1", Name: "Non-Destructive Inspection", Type: constants.DeptNDI},
	{Code: "MON-1", Name: "Assembly", Type: constants.DeptMontaggio},
	{Code: "VER-1", Name: "Painting", Type: constants.DeptVerniciatura},
	{Code: "CQ-1", Name: "Final Quality Control", Type: constants.DeptControlloQualita},
	{Code: "HC-1", Name: "Honeycomb Shop", Type: constants.DeptHoneycomb},
	{Code: "MOT-1", Name: "Engine Shop", Type: constants.DeptMotori},
}

func seedDepartments(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - seeding departments...")
	for _, d := range departmentsData {
		_, err := db.Exec(ctx,
			`INSERT INTO departments (code, name, type, is_active)
			 VALUES ($1, $2, $3, TRUE)
			 ON CONFLICT (code) DO NOTHING`,
			d.Code, d.Name, string(d.Type))
		if err != nil {
			return fmt.Errorf("failed to seed department %s: %w", d.Code, err)
		}
	}
	return nil
}
