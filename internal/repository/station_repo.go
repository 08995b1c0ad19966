package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"evolt/internal/models"
)

// ErrStationNotFound represents missing station rows.
var ErrStationNotFound = errors.New("station not found")

// StationRepository handles CRUD for the stations table.
type StationRepository struct {
	db *sql.DB
}

// NewStationRepository returns repository instance.
func NewStationRepository(db *sql.DB) *StationRepository {
	return &StationRepository{db: db}
}

// Create inserts a new station; id and timestamps come back from the database.
func (r *StationRepository) Create(ctx context.Context, station *models.Station) error {
	const query = `
		INSERT INTO stations (name, latitude, longitude, status, power_output, connector_type, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		station.Name,
		station.Location.Latitude,
		station.Location.Longitude,
		station.Status,
		station.PowerOutput,
		station.ConnectorType,
		station.CreatedBy,
	).Scan(&station.ID, &station.CreatedAt, &station.UpdatedAt)
}

// List returns stations matching the filters, newest first, with the owner
// name/email joined in for enrichment.
func (r *StationRepository) List(ctx context.Context, filters models.StationFilters) ([]models.StationListItem, error) {
	query := `
		SELECT s.id, s.name, s.latitude, s.longitude, s.status, s.power_output,
		       s.connector_type, s.created_by, s.created_at, s.updated_at,
		       u.name, u.email
		FROM stations s
		JOIN users u ON u.id = s.created_by
	`

	var conditions []string
	var args []interface{}

	if filters.Status != "" {
		args = append(args, filters.Status)
		conditions = append(conditions, fmt.Sprintf("s.status = $%d", len(args)))
	}
	if filters.ConnectorType != "" {
		args = append(args, filters.ConnectorType)
		conditions = append(conditions, fmt.Sprintf("s.connector_type = $%d", len(args)))
	}
	if filters.MinPower != nil {
		args = append(args, *filters.MinPower)
		conditions = append(conditions, fmt.Sprintf("s.power_output >= $%d", len(args)))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY s.created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.StationListItem, 0)
	for rows.Next() {
		var item models.StationListItem
		var owner models.OwnerSummary
		if err := rows.Scan(
			&item.ID,
			&item.Name,
			&item.Location.Latitude,
			&item.Location.Longitude,
			&item.Status,
			&item.PowerOutput,
			&item.ConnectorType,
			&item.CreatedBy,
			&item.CreatedAt,
			&item.UpdatedAt,
			&owner.Name,
			&owner.Email,
		); err != nil {
			return nil, err
		}
		item.Owner = &owner
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetByID fetches a single station.
func (r *StationRepository) GetByID(ctx context.Context, id int64) (*models.Station, error) {
	const query = `
		SELECT id, name, latitude, longitude, status, power_output, connector_type,
		       created_by, created_at, updated_at
		FROM stations
		WHERE id = $1
		LIMIT 1
	`
	var station models.Station
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&station.ID,
		&station.Name,
		&station.Location.Latitude,
		&station.Location.Longitude,
		&station.Status,
		&station.PowerOutput,
		&station.ConnectorType,
		&station.CreatedBy,
		&station.CreatedAt,
		&station.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStationNotFound
		}
		return nil, err
	}
	return &station, nil
}

// Update persists mutable fields of a station. created_by is deliberately
// absent from the SET list so ownership can never be reassigned.
func (r *StationRepository) Update(ctx context.Context, station *models.Station) error {
	const query = `
		UPDATE stations
		SET name = $1, latitude = $2, longitude = $3, status = $4,
		    power_output = $5, connector_type = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		station.Name,
		station.Location.Latitude,
		station.Location.Longitude,
		station.Status,
		station.PowerOutput,
		station.ConnectorType,
		station.ID,
	).Scan(&station.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrStationNotFound
	}
	return err
}

// Delete removes a station row.
func (r *StationRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM stations WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrStationNotFound
	}
	return nil
}
