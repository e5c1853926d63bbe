package userrepo

import (
	"context"
	"strings"
	"time"

	"github.com/yanqian/lifeboard/internal/domain/auth"
	"github.com/yanqian/lifeboard/internal/infra/postgres"
)

const userColumns = "id::text, email, password_hash, created_at, updated_at, last_login"

// PostgresRepository persists users in Postgres.
type PostgresRepository struct {
	pool postgres.DB
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool postgres.DB) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new user row.
func (r *PostgresRepository) Create(ctx context.Context, email, passwordHash string) (auth.User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING `+userColumns, strings.ToLower(email), passwordHash)
	user, err := scanUser(row)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return auth.User{}, auth.ErrEmailExists
		}
		return auth.User{}, err
	}
	return user, nil
}

// GetByEmail fetches a user by email.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (auth.User, bool, error) {
	return r.getOne(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE lower(email) = lower($1)
		LIMIT 1
	`, strings.ToLower(email))
}

// GetByID fetches by primary key.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (auth.User, bool, error) {
	return r.getOne(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1::uuid
		LIMIT 1
	`, id)
}

// UpdatePassword replaces the stored hash.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, id, passwordHash string) (auth.User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET password_hash = $2, updated_at = now()
		WHERE id = $1::uuid
		RETURNING `+userColumns, id, passwordHash)
	user, err := scanUser(row)
	if err != nil {
		if postgres.IsNoRows(err) {
			return auth.User{}, auth.ErrUserNotFound
		}
		return auth.User{}, err
	}
	return user, nil
}

// UpdateLastLogin stamps the login time.
func (r *PostgresRepository) UpdateLastLogin(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET last_login = now(), updated_at = now()
		WHERE id = $1::uuid
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (auth.User, bool, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return auth.User{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return auth.User{}, false, rows.Err()
	}
	user, err := scanUser(rows)
	if err != nil {
		return auth.User{}, false, err
	}
	return user, true, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (auth.User, error) {
	var (
		user             auth.User
		created, updated time.Time
		lastLogin        *time.Time
	)
	if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &created, &updated, &lastLogin); err != nil {
		return auth.User{}, err
	}
	user.CreatedAt = created.UTC()
	user.UpdatedAt = updated.UTC()
	if lastLogin != nil {
		utc := lastLogin.UTC()
		user.LastLogin = &utc
	}
	return user, nil
}

var _ auth.Repository = (*PostgresRepository)(nil)
