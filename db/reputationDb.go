package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"julenisse/models"
)

var ErrReputationNotFound = errors.New("reputation not found")

type ReputationRepository interface {
	GetByName(ctx context.Context, name string) (*models.Reputation, error)
	AddScore(ctx context.Context, name string, delta int) (*models.Reputation, error)
	TopNice(ctx context.Context, limit int) ([]*models.Reputation, error)
	TopNaughty(ctx context.Context, limit int) ([]*models.Reputation, error)
	ListAll(ctx context.Context) ([]*models.Reputation, error)
}

type SQLReputationRepository struct {
	db *Database
}

func NewReputationRepository(database *Database) *SQLReputationRepository {
	return &SQLReputationRepository{db: database}
}

func (r *SQLReputationRepository) GetByName(ctx context.Context, name string) (*models.Reputation, error) {
	query := r.db.Rebind(`
		SELECT name, nice_meter, updates
		FROM naughty_nice
		WHERE name = ?`)

	reputation := &models.Reputation{}
	row := r.db.db.QueryRowContext(ctx, query, name)

	err := row.Scan(&reputation.Name, &reputation.Score, &reputation.Updates)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrReputationNotFound, name)
		}
		return nil, fmt.Errorf("failed to get reputation: %w", err)
	}

	return reputation, nil
}

// AddScore adds delta to the running total for name in a single statement,
// creating the row with updates = 1 when it does not exist yet.
func (r *SQLReputationRepository) AddScore(ctx context.Context, name string, delta int) (*models.Reputation, error) {
	query := r.db.Rebind(`
		INSERT INTO naughty_nice (name, nice_meter)
		VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE
		SET nice_meter = naughty_nice.nice_meter + excluded.nice_meter,
			updates = naughty_nice.updates + 1
		RETURNING name, nice_meter, updates`)

	reputation := &models.Reputation{}
	row := r.db.db.QueryRowContext(ctx, query, name, delta)

	err := row.Scan(&reputation.Name, &reputation.Score, &reputation.Updates)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert reputation: %w", err)
	}

	return reputation, nil
}

func (r *SQLReputationRepository) TopNice(ctx context.Context, limit int) ([]*models.Reputation, error) {
	query := r.db.Rebind(`
		SELECT name, nice_meter, updates
		FROM naughty_nice
		WHERE nice_meter > 0
		ORDER BY nice_meter DESC, name ASC
		LIMIT ?`)

	return r.queryReputations(ctx, query, limit)
}

func (r *SQLReputationRepository) TopNaughty(ctx context.Context, limit int) ([]*models.Reputation, error) {
	query := r.db.Rebind(`
		SELECT name, nice_meter, updates
		FROM naughty_nice
		WHERE nice_meter <= 0
		ORDER BY nice_meter ASC, name ASC
		LIMIT ?`)

	return r.queryReputations(ctx, query, limit)
}

func (r *SQLReputationRepository) ListAll(ctx context.Context) ([]*models.Reputation, error) {
	query := `
		SELECT name, nice_meter, updates
		FROM naughty_nice
		ORDER BY name ASC`

	return r.queryReputations(ctx, query)
}

func (r *SQLReputationRepository) queryReputations(ctx context.Context, query string, args ...any) ([]*models.Reputation, error) {
	rows, err := r.db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reputations: %w", err)
	}
	defer rows.Close()

	reputations := make([]*models.Reputation, 0)
	for rows.Next() {
		reputation := &models.Reputation{}
		if err := rows.Scan(&reputation.Name, &reputation.Score, &reputation.Updates); err != nil {
			return nil, fmt.Errorf("failed to scan reputation: %w", err)
		}
		reputations = append(reputations, reputation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over reputations: %w", err)
	}

	return reputations, nil
}
