package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/antoniosasso00/manta-management-system-sub000/internal/entities"
	apperrors "github.com/antoniosasso00/manta-management-system-sub000/pkg/errors"
)

const (
	timeMetricTable  = "odl_time_metrics"
	timeMetricFields = "id, odl_id, department_id, entry_at, exit_at, pause_minutes, advancement_minutes, working_minutes, waiting_minutes, completed"
)

type TimeMetricRepositoryInterface interface {
	FindMetric(ctx context.Context, workOrderID, departmentID uint64) (*entities.TimeMetric, error)
	// UpsertEntry records (or refreshes, on re-entry) the entry side of
	// the timing record and resets completion.
	UpsertEntry(ctx context.Context, m entities.TimeMetric) (*entities.TimeMetric, error)
	AddPauseMinutes(ctx context.Context, workOrderID, departmentID uint64, minutes int64) error
	// CompleteMetric closes an open timing record. An already-completed
	// record reports ErrNotFound, so a duplicate exit can never count a
	// visit twice.
	CompleteMetric(ctx context.Context, m entities.TimeMetric) (*entities.TimeMetric, error)
	MetricsByDepartment(ctx context.Context, departmentID uint64, workOrderIDs []uint64) (map[uint64]entities.TimeMetric, error)
	// TotalAdvancementMinutes sums completed visits across all
	// departments for one work order.
	TotalAdvancementMinutes(ctx context.Context, workOrderID uint64) (int64, error)
}

type TimeMetricRepository struct {
	storage *pgxpool.Pool
}

func NewTimeMetricRepository(storage *pgxpool.Pool) TimeMetricRepositoryInterface {
	return &TimeMetricRepository{storage: storage}
}

func scanTimeMetric(row pgx.Row) (*entities.TimeMetric, error) {
	var m entities.TimeMetric
	err := row.Scan(&m.ID, &m.WorkOrderID, &m.DepartmentID, &m.EntryAt, &m.ExitAt, &m.PauseMinutes, &m.AdvancementMinutes, &m.WorkingMinutes, &m.WaitingMinutes, &m.Completed)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan time metric: %w", err)
	}
	return &m, nil
}

func (r *TimeMetricRepository) FindMetric(ctx context.Context, workOrderID, departmentID uint64) (*entities.TimeMetric, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE odl_id = $1 AND department_id = $2", timeMetricFields, timeMetricTable)
	return scanTimeMetric(r.storage.QueryRow(ctx, query, workOrderID, departmentID))
}

func (r *TimeMetricRepository) UpsertEntry(ctx context.Context, m entities.TimeMetric) (*entities.TimeMetric, error) {
	query := fmt.Sprintf(`INSERT INTO %s (odl_id, department_id, entry_at, waiting_minutes)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (odl_id, department_id) DO UPDATE
		SET entry_at = EXCLUDED.entry_at, waiting_minutes = EXCLUDED.waiting_minutes,
		    exit_at = NULL, advancement_minutes = NULL, working_minutes = NULL, completed = FALSE
		RETURNING %s`, timeMetricTable, timeMetricFields)
	return scanTimeMetric(r.storage.QueryRow(ctx, query, m.WorkOrderID, m.DepartmentID, m.EntryAt, m.WaitingMinutes))
}

func (r *TimeMetricRepository) AddPauseMinutes(ctx context.Context, workOrderID, departmentID uint64, minutes int64) error {
	query := fmt.Sprintf("UPDATE %s SET pause_minutes = pause_minutes + $1 WHERE odl_id = $2 AND department_id = $3", timeMetricTable)
	result, err := r.storage.Exec(ctx, query, minutes, workOrderID, departmentID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *TimeMetricRepository) CompleteMetric(ctx context.Context, m entities.TimeMetric) (*entities.TimeMetric, error) {
	query := fmt.Sprintf(`UPDATE %s
		SET exit_at = $1, advancement_minutes = $2, working_minutes = $3, completed = TRUE
		WHERE odl_id = $4 AND department_id = $5 AND NOT completed
		RETURNING %s`, timeMetricTable, timeMetricFields)
	return scanTimeMetric(r.storage.QueryRow(ctx, query, m.ExitAt, m.AdvancementMinutes, m.WorkingMinutes, m.WorkOrderID, m.DepartmentID))
}

func (r *TimeMetricRepository) MetricsByDepartment(ctx context.Context, departmentID uint64, workOrderIDs []uint64) (map[uint64]entities.TimeMetric, error) {
	metrics := make(map[uint64]entities.TimeMetric)
	if len(workOrderIDs) == 0 {
		return metrics, nil
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE department_id = $1 AND odl_id = ANY($2)", timeMetricFields, timeMetricTable)
	rows, err := r.storage.Query(ctx, query, departmentID, workOrderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		m, err := scanTimeMetric(rows)
		if err != nil {
			return nil, err
		}
		metrics[m.WorkOrderID] = *m
	}
	return metrics, rows.Err()
}

func (r *TimeMetricRepository) TotalAdvancementMinutes(ctx context.Context, workOrderID uint64) (int64, error) {
	query := fmt.Sprintf("SELECT COALESCE(SUM(advancement_minutes), 0) FROM %s WHERE odl_id = $1 AND completed", timeMetricTable)
	var total int64
	if err := r.storage.QueryRow(ctx, query, workOrderID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
