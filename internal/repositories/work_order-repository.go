package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/antoniosasso00/manta-management-system-sub000/internal/entities"
	apperrors "github.com/antoniosasso00/manta-management-system-sub000/pkg/errors"
)

const (
	odlTable  = "odl"
	odlFields = "o.id, o.order_number, o.part_id, p.part_number, o.quantity, o.priority, o.status, o.version, o.created_at, o.updated_at"
	odlJoin   = "FROM odl o JOIN parts p ON p.id = o.part_id"
)

type WorkOrderRepositoryInterface interface {
	FindWorkOrder(ctx context.Context, id uint64) (*entities.WorkOrder, error)
	// FindWorkOrderInTx reads the row under the transaction's isolation
	// level, for status checks that must be consistent with the updates
	// in the same unit.
	FindWorkOrderInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.WorkOrder, error)
	ListByStatuses(ctx context.Context, statuses []string) ([]entities.WorkOrder, error)
	// UpdateStatusIfInTx performs the optimistic status update: it
	// only succeeds when the row still carries expectedVersion, and
	// increments the version with the write. Zero affected rows and
	// serialization failures both surface as ErrConflict so the caller
	// can retry.
	UpdateStatusIfInTx(ctx context.Context, tx pgx.Tx, id uint64, expectedVersion uint64, newStatus string) error
	// UpdateStatusInTx sets the status unconditionally. Only manual
	// rollback recovery goes through this.
	UpdateStatusInTx(ctx context.Context, tx pgx.Tx, id uint64, newStatus string) error
}

type WorkOrderRepository struct {
	storage *pgxpool.Pool
}

func NewWorkOrderRepository(storage *pgxpool.Pool) WorkOrderRepositoryInterface {
	return &WorkOrderRepository{storage: storage}
}

func scanWorkOrder(row pgx.Row) (*entities.WorkOrder, error) {
	var wo entities.WorkOrder
	err := row.Scan(&wo.ID, &wo.OrderNumber, &wo.PartID, &wo.PartNumber, &wo.Quantity, &wo.Priority, &wo.Status, &wo.Version, &wo.CreatedAt, &wo.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan work order: %w", err)
	}
	return &wo, nil
}

func (r *WorkOrderRepository) findByID(ctx context.Context, q querier, id uint64) (*entities.WorkOrder, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE o.id = $1", odlFields, odlJoin)
	return scanWorkOrder(q.QueryRow(ctx, query, id))
}

func (r *WorkOrderRepository) FindWorkOrder(ctx context.Context, id uint64) (*entities.WorkOrder, error) {
	return r.findByID(ctx, r.storage, id)
}

func (r *WorkOrderRepository) FindWorkOrderInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.WorkOrder, error) {
	return r.findByID(ctx, tx, id)
}

func (r *WorkOrderRepository) ListByStatuses(ctx context.Context, statuses []string) ([]entities.WorkOrder, error) {
	if len(statuses) == 0 {
		return []entities.WorkOrder{}, nil
	}
	query := fmt.Sprintf("SELECT %s %s WHERE o.status = ANY($1) ORDER BY o.priority DESC, o.created_at", odlFields, odlJoin)
	rows, err := r.storage.Query(ctx, query, statuses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]entities.WorkOrder, 0)
	for rows.Next() {
		wo, err := scanWorkOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *wo)
	}
	return orders, rows.Err()
}

func (r *WorkOrderRepository) UpdateStatusIfInTx(ctx context.Context, tx pgx.Tx, id uint64, expectedVersion uint64, newStatus string) error {
	query := fmt.Sprintf("UPDATE %s SET status = $1, version = version + 1, updated_at = NOW() WHERE id = $2 AND version = $3", odlTable)
	result, err := tx.Exec(ctx, query, newStatus, id, expectedVersion)
	if err != nil {
		var pgErr *pgconn.PgError
		// 40001: serialization failure, same conflict class as a lost
		// optimistic precondition.
		if errors.As(err, &pgErr) && pgErr.Code == "40001" {
			return apperrors.ErrConflict
		}
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrConflict
	}
	return nil
}

func (r *WorkOrderRepository) UpdateStatusInTx(ctx context.Context, tx pgx.Tx, id uint64, newStatus string) error {
	query := fmt.Sprintf("UPDATE %s SET status = $1, version = version + 1, updated_at = NOW() WHERE id = $2", odlTable)
	result, err := tx.Exec(ctx, query, newStatus, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
