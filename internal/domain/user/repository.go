package user

import (
	"context"
)

type Repository interface {
	// Create stores a password account. ErrAlreadyExists on a taken email.
	Create(ctx context.Context, u User) error
	FindByEmail(ctx context.Context, email string) (User, error)
	// UpsertByProvider returns the user linked to the provider subject, creating it on first sight.
	UpsertByProvider(ctx context.Context, id string, identity Identity) (User, error)
}
