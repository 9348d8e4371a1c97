package seeders

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

var partsData = []struct {
	PartNumber  string
	Description string
}{
	{PartNumber: "8G5350-001", Description: "Wing leading edge panel"},
	{PartNumber: "8G5350-002", Description: "Wing trailing edge panel"},
	{PartNumber: "8G7240-010", Description: "Fuselage frame section"},
	{PartNumber: "8G9911-005", Description: "Engine nacelle cowling"},
	{PartNumber: "8G1123-021", Description: "Honeycomb core spacer"},
}

func seedParts(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - seeding parts...")
	for _, p := range partsData {
		_, err := db.Exec(ctx,
			`INSERT INTO parts (part_number, description)
			 VALUES ($1, $2)
			 ON CONFLICT (part_number) DO NOTHING`,
			p.PartNumber, p.Description)
		if err != nil {
			return fmt.Errorf("failed to seed part %s: %w", p.PartNumber, err)
		}
	}
	return nil
}
