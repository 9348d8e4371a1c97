package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SeedDictionaries fills the reference tables the plant needs before
// any production event can be recorded: departments, parts, users.
func SeedDictionaries(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("seeding reference data...")

	if err := seedDepartments(ctx, db); err != nil {
		log.Fatalf("failed to seed departments: %v", err)
	}
	if err := seedParts(ctx, db); err != nil {
		log.Fatalf("failed to seed parts: %v", err)
	}
	if err := seedUsers(ctx, db); err != nil {
		log.Fatalf("failed to seed users: %v", err)
	}
	log.Println("reference data seeded")
}

// SeedDemoData creates a handful of open work orders for local
// development.
func SeedDemoData(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("seeding demo work orders...")

	if err := seedWorkOrders(ctx, db); err != nil {
		log.Fatalf("failed to seed work orders: %v", err)
	}
	log.Println("demo work orders seeded")
}
