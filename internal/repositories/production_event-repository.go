package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/antoniosasso00/manta-management-system-sub000/internal/entities"
	"github.com/antoniosasso00/manta-management-system-sub000/pkg/constants"
	apperrors "github.com/antoniosasso00/manta-management-system-sub000/pkg/errors"
)

const (
	eventTable  = "production_events"
	eventFields = "id, odl_id, department_id, event_type, user_id, notes, duration_ms, is_automatic, created_at"
)

// EventFilter narrows the event-log listing. Zero values mean "any".
type EventFilter struct {
	WorkOrderID  uint64
	DepartmentID uint64
	EventType    string
	Automatic    *bool
	Limit        uint64
	Offset       uint64
}

type ProductionEventRepositoryInterface interface {
	// CreateEventInTx appends to the event log. The log is the source
	// of truth for ODL history; rows are never updated or deleted.
	CreateEventInTx(ctx context.Context, tx pgx.Tx, e entities.ProductionEvent) (*entities.ProductionEvent, error)
	GetEventsForWorkOrder(ctx context.Context, workOrderID uint64) ([]entities.ProductionEvent, error)
	ListEvents(ctx context.Context, filter EventFilter) ([]entities.ProductionEvent, uint64, error)
	LastEventForWorkOrder(ctx context.Context, workOrderID uint64) (*entities.ProductionEvent, error)
	LastEventInDepartment(ctx context.Context, workOrderID, departmentID uint64) (*entities.ProductionEvent, error)
	// LastExitOutsideDepartment finds the most recent EXIT for the
	// work order in any other department; waiting time is derived from
	// its timestamp.
	LastExitOutsideDepartment(ctx context.Context, workOrderID, departmentID uint64) (*entities.ProductionEvent, error)
	// LastPauseInDepartment finds the PAUSE that an incoming RESUME
	// closes.
	LastPauseInDepartment(ctx context.Context, workOrderID, departmentID uint64, before time.Time) (*entities.ProductionEvent, error)
	// LastEventsByDepartment returns, per work order, the most recent
	// event recorded in the given department.
	LastEventsByDepartment(ctx context.Context, departmentID uint64) (map[uint64]entities.ProductionEvent, error)
	// WorkOrdersWithEntryInTypes reports which of the given work
	// orders have an ENTRY event in a department of any of the given
	// types. Boards use it to drop orders that already moved on.
	WorkOrdersWithEntryInTypes(ctx context.Context, workOrderIDs []uint64, types []constants.DepartmentType) (map[uint64]bool, error)
}

type ProductionEventRepository struct {
	storage *pgxpool.Pool
}

func NewProductionEventRepository(storage *pgxpool.Pool) ProductionEventRepositoryInterface {
	return &ProductionEventRepository{storage: storage}
}

func scanEvent(row pgx.Row) (*entities.ProductionEvent, error) {
	var e entities.ProductionEvent
	err := row.Scan(&e.ID, &e.WorkOrderID, &e.DepartmentID, &e.EventType, &e.UserID, &e.Notes, &e.DurationMs, &e.IsAutomatic, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan production event: %w", err)
	}
	return &e, nil
}

func (r *ProductionEventRepository) CreateEventInTx(ctx context.Context, tx pgx.Tx, e entities.ProductionEvent) (*entities.ProductionEvent, error) {
	query := fmt.Sprintf(`INSERT INTO %s (odl_id, department_id, event_type, user_id, notes, duration_ms, is_automatic)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING %s`, eventTable, eventFields)
	return scanEvent(tx.QueryRow(ctx, query,
		e.WorkOrderID, e.DepartmentID, string(e.EventType), e.UserID, e.Notes, e.DurationMs, e.IsAutomatic))
}

func (r *ProductionEventRepository) GetEventsForWorkOrder(ctx context.Context, workOrderID uint64) ([]entities.ProductionEvent, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE odl_id = $1 ORDER BY created_at, id", eventFields, eventTable)
	rows, err := r.storage.Query(ctx, query, workOrderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (r *ProductionEventRepository) ListEvents(ctx context.Context, filter EventFilter) ([]entities.ProductionEvent, uint64, error) {
	conds := sq.And{}
	if filter.WorkOrderID != 0 {
		conds = append(conds, sq.Eq{"odl_id": filter.WorkOrderID})
	}
	if filter.DepartmentID != 0 {
		conds = append(conds, sq.Eq{"department_id": filter.DepartmentID})
	}
	if filter.EventType != "" {
		conds = append(conds, sq.Eq{"event_type": filter.EventType})
	}
	if filter.Automatic != nil {
		conds = append(conds, sq.Eq{"is_automatic": *filter.Automatic})
	}

	countBuilder := sq.Select("COUNT(*)").From(eventTable).PlaceholderFormat(sq.Dollar)
	if len(conds) > 0 {
		countBuilder = countBuilder.Where(conds)
	}
	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.ProductionEvent{}, 0, nil
	}

	builder := sq.Select(eventFields).From(eventTable).
		PlaceholderFormat(sq.Dollar).
		OrderBy("created_at DESC", "id DESC")
	if len(conds) > 0 {
		builder = builder.Where(conds)
	}
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit).Offset(filter.Offset)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events, err := collectEvents(rows)
	return events, total, err
}

func (r *ProductionEventRepository) LastEventForWorkOrder(ctx context.Context, workOrderID uint64) (*entities.ProductionEvent, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE odl_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1", eventFields, eventTable)
	return scanEvent(r.storage.QueryRow(ctx, query, workOrderID))
}

func (r *ProductionEventRepository) LastEventInDepartment(ctx context.Context, workOrderID, departmentID uint64) (*entities.ProductionEvent, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE odl_id = $1 AND department_id = $2 ORDER BY created_at DESC, id DESC LIMIT 1", eventFields, eventTable)
	return scanEvent(r.storage.QueryRow(ctx, query, workOrderID, departmentID))
}

func (r *ProductionEventRepository) LastExitOutsideDepartment(ctx context.Context, workOrderID, departmentID uint64) (*entities.ProductionEvent, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s
		WHERE odl_id = $1 AND department_id <> $2 AND event_type = 'EXIT'
		ORDER BY created_at DESC, id DESC LIMIT 1`, eventFields, eventTable)
	return scanEvent(r.storage.QueryRow(ctx, query, workOrderID, departmentID))
}

func (r *ProductionEventRepository) LastPauseInDepartment(ctx context.Context, workOrderID, departmentID uint64, before time.Time) (*entities.ProductionEvent, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s
		WHERE odl_id = $1 AND department_id = $2 AND event_type = 'PAUSE' AND created_at <= $3
		ORDER BY created_at DESC, id DESC LIMIT 1`, eventFields, eventTable)
	return scanEvent(r.storage.QueryRow(ctx, query, workOrderID, departmentID, before))
}

func (r *ProductionEventRepository) LastEventsByDepartment(ctx context.Context, departmentID uint64) (map[uint64]entities.ProductionEvent, error) {
	query := fmt.Sprintf(`SELECT DISTINCT ON (odl_id) %s FROM %s
		WHERE department_id = $1
		ORDER BY odl_id, created_at DESC, id DESC`, eventFields, eventTable)
	rows, err := r.storage.Query(ctx, query, departmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	last := make(map[uint64]entities.ProductionEvent)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		last[e.WorkOrderID] = *e
	}
	return last, rows.Err()
}

func (r *ProductionEventRepository) WorkOrdersWithEntryInTypes(ctx context.Context, workOrderIDs []uint64, types []constants.DepartmentType) (map[uint64]bool, error) {
	result := make(map[uint64]bool)
	if len(workOrderIDs) == 0 || len(types) == 0 {
		return result, nil
	}

	typeStrings := make([]string, 0, len(types))
	for _, t := range types {
		typeStrings = append(typeStrings, string(t))
	}

	query, args, err := sq.Select("DISTINCT e.odl_id").
		From(eventTable + " e").
		Join(departmentTable + " d ON d.id = e.department_id").
		Where(sq.Eq{"e.odl_id": workOrderIDs}).
		Where(sq.Eq{"e.event_type": string(constants.EventEntry)}).
		Where(sq.Eq{"d.type": typeStrings}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result[id] = true
	}
	return result, rows.Err()
}

func collectEvents(rows pgx.Rows) ([]entities.ProductionEvent, error) {
	events := make([]entities.ProductionEvent, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}
