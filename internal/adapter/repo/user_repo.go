package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"linguachat/internal/domain"
)

// UserRepositoryPG reads user profiles owned by the identity subsystem.
type UserRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepositoryPG.
func NewUserRepository(pool *pgxpool.Pool) *UserRepositoryPG {
	return &UserRepositoryPG{pool: pool}
}

const userColumns = `id, username, email, preferred_lang, COALESCE(image, ''), plan`

// GetByID fetches a profile by user id.
func (r *UserRepositoryPG) GetByID(ctx context.Context, id string) (*domain.UserProfile, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByEmail fetches a profile by exact email, used by recipient search.
func (r *UserRepositoryPG) GetByEmail(ctx context.Context, email string) (*domain.UserProfile, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	return scanUser(row)
}

// PlanByUserID resolves the plan limits in force for a user. Implements
// quota.PlanResolver.
func (r *UserRepositoryPG) PlanByUserID(ctx context.Context, userID string) (domain.Plan, error) {
	var planName string
	err := r.pool.QueryRow(ctx, `SELECT plan FROM users WHERE id = $1`, userID).Scan(&planName)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.FreePlan(), nil
	}
	if err != nil {
		return domain.Plan{}, err
	}
	return domain.PlanByName(planName), nil
}

func scanUser(row pgx.Row) (*domain.UserProfile, error) {
	var u domain.UserProfile
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PreferredLang, &u.Image, &u.Plan); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
