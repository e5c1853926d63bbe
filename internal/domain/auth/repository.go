package auth

import "context"

// Repository abstracts user persistence. Implementations store emails
// lower-cased and report duplicates as ErrEmailExists.
type Repository interface {
	Create(ctx context.Context, email, passwordHash string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, bool, error)
	GetByID(ctx context.Context, id string) (User, bool, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) (User, error)
	UpdateLastLogin(ctx context.Context, id string) error
}
