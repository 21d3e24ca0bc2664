package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tidemark/internal/domain/user"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewUserRepository(pool *pgxpool.Pool, log *slog.Logger) *UserRepository {
	return &UserRepository{
		pool: pool,
		log:  log.With("component", "user_repository"),
	}
}

type UserRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func (r *UserRepository) Create(ctx context.Context, u user.User) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash) VALUES ($1, $2, $3)`,
		u.ID, u.Email, u.PasswordHash)
	if isUniqueViolation(err) {
		return user.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User
	var hash, subject *string
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, provider_subject, created_at FROM users WHERE email = $1`, email).
		Scan(&u.ID, &u.Email, &hash, &subject, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return u, user.ErrNotFound
	}
	if err != nil {
		return u, fmt.Errorf("select user: %w", err)
	}
	u.PasswordHash = deref(hash)
	u.ProviderSubject = deref(subject)
	return u, nil
}

// UpsertByProvider links the subject to an existing account with the same email,
// or creates a provider-only account under id.
func (r *UserRepository) UpsertByProvider(ctx context.Context, id string, identity user.Identity) (user.User, error) {
	var u user.User
	var hash, subject *string
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (id, email, provider_subject) VALUES ($1, $2, $3)
		 ON CONFLICT (email) DO UPDATE SET provider_subject = EXCLUDED.provider_subject
		 RETURNING id, email, password_hash, provider_subject, created_at`,
		id, identity.Email, identity.Subject).
		Scan(&u.ID, &u.Email, &hash, &subject, &u.CreatedAt)
	if isUniqueViolation(err) {
		// Same subject already linked under another email.
		err = r.pool.QueryRow(ctx,
			`SELECT id, email, password_hash, provider_subject, created_at FROM users WHERE provider_subject = $1`,
			identity.Subject).
			Scan(&u.ID, &u.Email, &hash, &subject, &u.CreatedAt)
	}
	if err != nil {
		return user.User{}, fmt.Errorf("upsert provider user: %w", err)
	}
	u.PasswordHash = deref(hash)
	u.ProviderSubject = deref(subject)
	r.log.Debug("provider user linked", "user_id", u.ID)
	return u, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
