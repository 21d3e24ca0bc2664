package user

import "time"

type User struct {
	ID              string
	Email           string
	PasswordHash    string
	ProviderSubject string
	CreatedAt       time.Time
}

// Identity is what an identity provider vouches for.
type Identity struct {
	Subject string
	Email   string
}
