package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	inspection "inspection-cloud/internal/inspection/domain"
)

const defaultInspectionTable = "inspections"

// InspectionRepository is a Postgres implementation for inspection records.
type InspectionRepository struct {
	db    *sql.DB
	table string
}

// RepositoryOption configures the repository.
type RepositoryOption func(*InspectionRepository)

// WithTable overrides the default table name.
func WithTable(table string) RepositoryOption {
	return func(repo *InspectionRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// NewInspectionRepository constructs a repository with default table name.
func NewInspectionRepository(db *sql.DB, opts ...RepositoryOption) *InspectionRepository {
	repo := &InspectionRepository{db: db, table: defaultInspectionTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// GetByID returns one inspection or inspection.ErrNotFound.
func (r *InspectionRepository) GetByID(ctx context.Context, id int64) (*inspection.Inspection, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("inspection repo: nil db")
	}

	query := fmt.Sprintf(`
SELECT id, asset_id, status, primary_inspector_id, created_at, updated_at
FROM %s
WHERE id = $1`, r.table)

	row := r.db.QueryRowContext(ctx, query, id)
	var item inspection.Inspection
	var inspectorID sql.NullInt64
	if err := row.Scan(&item.ID, &item.AssetID, &item.Status, &inspectorID, &item.CreatedAt, &item.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, inspection.ErrNotFound
		}
		return nil, err
	}
	if inspectorID.Valid {
		item.PrimaryInspectorID = inspectorID.Int64
	}
	return &item, nil
}

// ListByStatus returns all inspections in the given lifecycle state.
func (r *InspectionRepository) ListByStatus(ctx context.Context, status inspection.Status) ([]inspection.Inspection, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("inspection repo: nil db")
	}
	if !status.Valid() {
		return nil, errors.New("inspection repo: invalid status")
	}

	query := fmt.Sprintf(`
SELECT id, asset_id, status, primary_inspector_id, created_at, updated_at
FROM %s
WHERE status = $1
ORDER BY id ASC`, r.table)

	rows, err := r.db.QueryContext(ctx, query, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]inspection.Inspection, 0)
	for rows.Next() {
		var item inspection.Inspection
		var inspectorID sql.NullInt64
		if err := rows.Scan(&item.ID, &item.AssetID, &item.Status, &inspectorID, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		if inspectorID.Valid {
			item.PrimaryInspectorID = inspectorID.Int64
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
