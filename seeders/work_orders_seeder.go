package seeders

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/antoniosasso00/manta-management-system-sub000/pkg/constants"
)

var workOrdersData = []struct {
	OrderNumber string
	PartNumber  string
	Quantity    int
	Priority    string
}{
	{OrderNumber: "ODL-2025-0001", PartNumber: "8G5350-001", Quantity: 2, Priority: constants.PriorityHigh},
	{OrderNumber: "ODL-2025-0002", PartNumber: "8G5350-002", Quantity: 2, Priority: constants.PriorityNormal},
	{OrderNumber: "ODL-2025-0003", PartNumber: "8G7240-010", Quantity: 1, Priority: constants.PriorityUrgent},
	{OrderNumber: "ODL-2025-0004", PartNumber: "8G1123-021", Quantity: 10, Priority: constants.PriorityLow},
}

func seedWorkOrders(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - seeding work orders...")
	for _, wo := range workOrdersData {
		var partID uint64
		if err := db.QueryRow(ctx, "SELECT id FROM parts WHERE part_number = $1", wo.PartNumber).Scan(&partID); err != nil {
			return fmt.Errorf("part %s not found for order %s: %w", wo.PartNumber, wo.OrderNumber, err)
		}
		_, err := db.Exec(ctx,
			`INSERT INTO odl (order_number, part_id, quantity, priority)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (order_number) DO NOTHING`,
			wo.OrderNumber, partID, wo.Quantity, wo.Priority)
		if err != nil {
			return fmt.Errorf("failed to seed work order %s: %w", wo.OrderNumber, err)
		}
	}
	return nil
}
