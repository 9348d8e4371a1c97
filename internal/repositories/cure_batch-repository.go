package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/antoniosasso00/manta-management-system-sub000/internal/entities"
)

type CureBatchRepositoryInterface interface {
	// HasActiveBatchForWorkOrder reports whether the ODL is currently
	// attached to a running curing cycle. Autoclave transfers are
	// blocked while this holds.
	HasActiveBatchForWorkOrder(ctx context.Context, workOrderID uint64) (bool, error)
}

type CureBatchRepository struct {
	storage *pgxpool.Pool
}

func NewCureBatchRepository(storage *pgxpool.Pool) CureBatchRepositoryInterface {
	return &CureBatchRepository{storage: storage}
}

func (r *CureBatchRepository) HasActiveBatchForWorkOrder(ctx context.Context, workOrderID uint64) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (
		SELECT 1 FROM cure_batch_odl m
		JOIN cure_batches b ON b.id = m.cure_batch_id
		WHERE m.odl_id = $1 AND b.status = '%s')`, entities.CureBatchActive)

	var exists bool
	if err := r.storage.QueryRow(ctx, query, workOrderID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
