package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/hazard_alert_relay/internal/models"
	"github.com/shenikar/hazard_alert_relay/internal/service"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) service.UserRepository {
	return &UserRepository{
		db: db,
	}
}

// Upsert inserts the user or refreshes the name fields on every contact.
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, first_name, last_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			updated_at = NOW()
		RETURNING created_at, updated_at;
	`
	err := r.db.QueryRow(ctx, query,
		user.ID,
		user.FirstName,
		user.LastName,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// GetByID returns a user by id.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, first_name, last_name, latitude, longitude, located_at, pending, created_at, updated_at
		FROM users
		WHERE id = $1;
	`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Latitude,
		&user.Longitude,
		&user.LocatedAt,
		&user.Pending,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user with id %s not found", id)
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

// All returns a snapshot of the whole registry for classification and
// display. Ordering is not significant; id order keeps output stable.
func (r *UserRepository) All(ctx context.Context) ([]*models.User, error) {
	query := `
		SELECT id, first_name, last_name, latitude, longitude, located_at, pending, created_at, updated_at
		FROM users
		ORDER BY id;
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user := &models.User{}
		err := rows.Scan(
			&user.ID,
			&user.FirstName,
			&user.LastName,
			&user.Latitude,
			&user.Longitude,
			&user.LocatedAt,
			&user.Pending,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return users, nil
}

// SetAllPending bulk-sets the pending-response flag for every
// registered user.
func (r *UserRepository) SetAllPending(ctx context.Context, pending bool) error {
	query := `
		UPDATE users SET
			pending = $1,
			updated_at = NOW();
	`
	if _, err := r.db.Exec(ctx, query, pending); err != nil {
		return fmt.Errorf("failed to set pending flag for all users: %w", err)
	}
	return nil
}

// RecordLocation stores the user's last known coordinates and clears
// their pending flag. An unknown id creates the row rather than
// erroring.
func (r *UserRepository) RecordLocation(ctx context.Context, id string, lat, lon float64) error {
	query := `
		INSERT INTO users (id, latitude, longitude, located_at, pending)
		VALUES ($1, $2, $3, NOW(), FALSE)
		ON CONFLICT (id) DO UPDATE SET
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			located_at = NOW(),
			pending = FALSE,
			updated_at = NOW();
	`
	if _, err := r.db.Exec(ctx, query, id, lat, lon); err != nil {
		return fmt.Errorf("failed to record location: %w", err)
	}
	return nil
}

// SaveLocationCheck stores an audit record of a location check.
func (r *UserRepository) SaveLocationCheck(ctx context.Context, check *models.LocationCheck) error {
	query := `
		INSERT INTO location_checks (user_id, latitude, longitude, is_danger)
		VALUES ($1, $2, $3, $4) RETURNING id, checked_at;
	`
	err := r.db.QueryRow(ctx, query,
		check.UserID,
		check.Latitude,
		check.Longitude,
		check.IsDanger,
	).Scan(&check.ID, &check.CheckedAt)
	if err != nil {
		return fmt.Errorf("failed to save location check: %w", err)
	}
	return nil
}

// GetLocationCheckStats returns the number of distinct users that
// shared a location within the window.
func (r *UserRepository) GetLocationCheckStats(ctx context.Context, minutes int) (int, error) {
	query := `
		SELECT COUNT(DISTINCT user_id)
		FROM location_checks
		WHERE checked_at >= NOW() - ($1 * INTERVAL '1 minute');
	`
	var count int
	err := r.db.QueryRow(ctx, query, minutes).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get location check stats: %w", err)
	}
	return count, nil
}
