package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/telesdesk/helpdesk-service/internal/domain"
)

// ProfileRepository manages account profiles and their roles.
type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) error
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
	Update(ctx context.Context, profile *domain.Profile) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Profile, error)
}

type profileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository instantiates repository.
func NewProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepository{pool: pool}
}

const profileSelect = `
        SELECT p.id, p.full_name, p.email, p.avatar_url, p.password_hash,
               COALESCE(r.role, 'user'), p.created_at, p.updated_at
        FROM profiles p
        LEFT JOIN user_roles r ON r.user_id = p.id`

func (r *profileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insertProfile = `
        INSERT INTO profiles (full_name, email, avatar_url, password_hash)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, insertProfile,
		profile.FullName,
		profile.Email,
		profile.AvatarURL,
		profile.PasswordHash,
	).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt); err != nil {
		return err
	}

	const insertRole = `INSERT INTO user_roles (user_id, role) VALUES ($1,$2)`
	if _, err := tx.Exec(ctx, insertRole, profile.ID, profile.Role); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	return r.fetchSingle(ctx, profileSelect+` WHERE p.id=$1`, id)
}

func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	return r.fetchSingle(ctx, profileSelect+` WHERE p.email=$1`, email)
}

func (r *profileRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Profile, error) {
	var profile domain.Profile
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&profile.ID,
		&profile.FullName,
		&profile.Email,
		&profile.AvatarURL,
		&profile.PasswordHash,
		&profile.Role,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) Update(ctx context.Context, profile *domain.Profile) error {
	const query = `
        UPDATE profiles SET full_name=$1, avatar_url=$2, updated_at=NOW()
        WHERE id=$3`
	_, err := r.pool.Exec(ctx, query, profile.FullName, profile.AvatarURL, profile.ID)
	return err
}

func (r *profileRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `UPDATE profiles SET password_hash=$1, updated_at=NOW() WHERE id=$2`
	_, err := r.pool.Exec(ctx, query, passwordHash, id)
	return err
}

func (r *profileRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id=$1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM profiles WHERE id=$1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *profileRepository) List(ctx context.Context) ([]domain.Profile, error) {
	rows, err := r.pool.Query(ctx, profileSelect+` ORDER BY p.full_name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Profile
	for rows.Next() {
		var profile domain.Profile
		if err := rows.Scan(
			&profile.ID,
			&profile.FullName,
			&profile.Email,
			&profile.AvatarURL,
			&profile.PasswordHash,
			&profile.Role,
			&profile.CreatedAt,
			&profile.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, profile)
	}
	return result, rows.Err()
}
