package repositories

import (
	"context"
	"fmt"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/antoniosasso00/manta-management-system-sub000/internal/entities"
)

const partStatTable = "part_time_statistics"

type PartStatisticRepositoryInterface interface {
	// Increment folds one completed department visit into the running
	// per-(part, department) aggregate. Totals and averages are
	// maintained incrementally, never recomputed from the metric rows.
	Increment(ctx context.Context, partID, departmentID uint64, advancement, working int64, waiting null.Int64) error
	GetStatistics(ctx context.Context) ([]entities.PartTimeStatistic, error)
	GetStatisticsForPart(ctx context.Context, partID uint64) ([]entities.PartTimeStatistic, error)
}

type PartStatisticRepository struct {
	storage *pgxpool.Pool
}

func NewPartStatisticRepository(storage *pgxpool.Pool) PartStatisticRepositoryInterface {
	return &PartStatisticRepository{storage: storage}
}

func (r *PartStatisticRepository) Increment(ctx context.Context, partID, departmentID uint64, advancement, working int64, waiting null.Int64) error {
	// Missing waiting time (first department of a lot) contributes 0
	// to the waiting total but still counts one completion.
	waitingMinutes := int64(0)
	if waiting.Valid {
		waitingMinutes = waiting.Int64
	}

	query := fmt.Sprintf(`INSERT INTO %s
		(part_id, department_id, completed_count, total_advancement_minutes, total_working_minutes, total_waiting_minutes,
		 avg_advancement_minutes, avg_working_minutes, avg_waiting_minutes)
		VALUES ($1, $2, 1, $3, $4, $5, $3, $4, $5)
		ON CONFLICT (part_id, department_id) DO UPDATE SET
		  completed_count           = %[1]s.completed_count + 1,
		  total_advancement_minutes = %[1]s.total_advancement_minutes + EXCLUDED.total_advancement_minutes,
		  total_working_minutes     = %[1]s.total_working_minutes + EXCLUDED.total_working_minutes,
		  total_waiting_minutes     = %[1]s.total_waiting_minutes + EXCLUDED.total_waiting_minutes,
		  avg_advancement_minutes   = (%[1]s.total_advancement_minutes + EXCLUDED.total_advancement_minutes)::float8 / (%[1]s.completed_count + 1),
		  avg_working_minutes       = (%[1]s.total_working_minutes + EXCLUDED.total_working_minutes)::float8 / (%[1]s.completed_count + 1),
		  avg_waiting_minutes       = (%[1]s.total_waiting_minutes + EXCLUDED.total_waiting_minutes)::float8 / (%[1]s.completed_count + 1)`,
		partStatTable)

	_, err := r.storage.Exec(ctx, query, partID, departmentID, advancement, working, waitingMinutes)
	return err
}

const partStatSelect = `SELECT s.id, s.part_id, p.part_number, s.department_id, d.code,
	s.completed_count, s.total_advancement_minutes, s.total_working_minutes, s.total_waiting_minutes,
	s.avg_advancement_minutes, s.avg_working_minutes, s.avg_waiting_minutes
	FROM part_time_statistics s
	JOIN parts p ON p.id = s.part_id
	JOIN departments d ON d.id = s.department_id`

func (r *PartStatisticRepository) GetStatistics(ctx context.Context) ([]entities.PartTimeStatistic, error) {
	return r.queryStatistics(ctx, partStatSelect+" ORDER BY p.part_number, d.id")
}

func (r *PartStatisticRepository) GetStatisticsForPart(ctx context.Context, partID uint64) ([]entities.PartTimeStatistic, error) {
	return r.queryStatistics(ctx, partStatSelect+" WHERE s.part_id = $1 ORDER BY d.id", partID)
}

func (r *PartStatisticRepository) queryStatistics(ctx context.Context, query string, args ...interface{}) ([]entities.PartTimeStatistic, error) {
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make([]entities.PartTimeStatistic, 0)
	for rows.Next() {
		var s entities.PartTimeStatistic
		if err := rows.Scan(&s.ID, &s.PartID, &s.PartNumber, &s.DepartmentID, &s.DepartmentCode,
			&s.CompletedCount, &s.TotalAdvancementMinutes, &s.TotalWorkingMinutes, &s.TotalWaitingMinutes,
			&s.AvgAdvancementMinutes, &s.AvgWorkingMinutes, &s.AvgWaitingMinutes); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
