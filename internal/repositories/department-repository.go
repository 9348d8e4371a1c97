package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/antoniosasso00/manta-management-system-sub000/internal/entities"
	"github.com/antoniosasso00/manta-management-system-sub000/pkg/constants"
	apperrors "github.com/antoniosasso00/manta-management-system-sub000/pkg/errors"
)

const (
	departmentTable  = "departments"
	departmentFields = "id, code, name, type, is_active, created_at"
)

type DepartmentRepositoryInterface interface {
	GetDepartments(ctx context.Context) ([]entities.Department, error)
	FindDepartment(ctx context.Context, id uint64) (*entities.Department, error)
	// FindActiveByType resolves the active department for a workflow
	// type; auto-transfer targets are looked up this way.
	FindActiveByType(ctx context.Context, t constants.DepartmentType) (*entities.Department, error)
}

type DepartmentRepository struct {
	storage *pgxpool.Pool
}

func NewDepartmentRepository(storage *pgxpool.Pool) DepartmentRepositoryInterface {
	return &DepartmentRepository{storage: storage}
}

func scanDepartment(row pgx.Row) (*entities.Department, error) {
	var d entities.Department
	err := row.Scan(&d.ID, &d.Code, &d.Name, &d.Type, &d.IsActive, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan department: %w", err)
	}
	return &d, nil
}

func (r *DepartmentRepository) GetDepartments(ctx context.Context) ([]entities.Department, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY id", departmentFields, departmentTable)
	rows, err := r.storage.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	departments := make([]entities.Department, 0)
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		departments = append(departments, *d)
	}
	return departments, rows.Err()
}

func (r *DepartmentRepository) FindDepartment(ctx context.Context, id uint64) (*entities.Department, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", departmentFields, departmentTable)
	return scanDepartment(r.storage.QueryRow(ctx, query, id))
}

func (r *DepartmentRepository) FindActiveByType(ctx context.Context, t constants.DepartmentType) (*entities.Department, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE type = $1 AND is_active ORDER BY id LIMIT 1", departmentFields, departmentTable)
	return scanDepartment(r.storage.QueryRow(ctx, query, string(t)))
}
