package scheduling

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/futa-medical/clinic-booking/pkg/database"
	"github.com/futa-medical/clinic-booking/pkg/logger"
	"github.com/futa-medical/clinic-booking/pkg/types"
)

// DepartmentRepository implements department persistence on PostgreSQL
type DepartmentRepository struct {
	db     *database.DB
	logger *logger.Logger
	now    func() time.Time
}

// NewDepartmentRepository creates a new department repository
func NewDepartmentRepository(db *database.DB, log *logger.Logger) *DepartmentRepository {
	return &DepartmentRepository{
		db:     db,
		logger: log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

const selectDepartment = `SELECT id, name, description, is_active, created_at FROM departments`

// ListActive returns the active departments ordered by name
func (r *DepartmentRepository) ListActive(ctx context.Context) ([]*types.Department, error) {
	rows, err := r.db.QueryContext(ctx, selectDepartment+` WHERE is_active = TRUE ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	defer rows.Close()

	departments := make([]*types.Department, 0)
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

// GetByID retrieves a department by id
func (r *DepartmentRepository) GetByID(ctx context.Context, id string) (*types.Department, error) {
	return r.get(ctx, selectDepartment+` WHERE id = $1`, id)
}

// GetByName retrieves a department by its unique name
func (r *DepartmentRepository) GetByName(ctx context.Context, name string) (*types.Department, error) {
	return r.get(ctx, selectDepartment+` WHERE name = $1`, name)
}

func (r *DepartmentRepository) get(ctx context.Context, query, arg string) (*types.Department, error) {
	d, err := scanDepartment(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return d, nil
}

// EnsureDepartment inserts an active department unless the name is taken
func (r *DepartmentRepository) EnsureDepartment(ctx context.Context, name, description string) error {
	query := `
		INSERT INTO departments (id, name, description, is_active, created_at)
		VALUES ($1, $2, $3, TRUE, $4)
		ON CONFLICT (name) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, uuid.New().String(), name, description, r.now()); err != nil {
		return fmt.Errorf("failed to ensure department %s: %w", name, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDepartment(row rowScanner) (*types.Department, error) {
	var (
		d           types.Department
		description sql.NullString
	)
	if err := row.Scan(&d.ID, &d.Name, &description, &d.IsActive, &d.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan department: %w", err)
	}
	d.Description = database.StringPtr(description)
	return &d, nil
}
