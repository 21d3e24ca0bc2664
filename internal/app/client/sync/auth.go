package sync

import (
	"context"
	"fmt"

	"tidemark/internal/app/client/remote"
)

// Login exchanges a provider token for a session and runs the first pull.
func (e *Engine) Login(ctx context.Context, providerToken string) (remote.User, error) {
	sess, err := e.remote.Exchange(ctx, providerToken)
	if err != nil {
		return remote.User{}, fmt.Errorf("exchange provider token: %w", err)
	}
	return e.signIn(ctx, sess), nil
}

func (e *Engine) LoginPassword(ctx context.Context, email, password string) (remote.User, error) {
	sess, err := e.remote.Login(ctx, email, password)
	if err != nil {
		return remote.User{}, fmt.Errorf("login: %w", err)
	}
	return e.signIn(ctx, sess), nil
}

func (e *Engine) Register(ctx context.Context, email, password string) (remote.User, error) {
	sess, err := e.remote.Register(ctx, email, password)
	if err != nil {
		return remote.User{}, fmt.Errorf("register: %w", err)
	}
	return e.signIn(ctx, sess), nil
}

func (e *Engine) signIn(ctx context.Context, sess remote.Session) remote.User {
	e.remote.SetToken(sess.Token)

	user := sess.User
	e.update(ctx, "signed in", func(s *State) {
		if s.User == nil || s.User.ID != user.ID {
			s.LastSyncedAt = initialState().LastSyncedAt
		}
		s.JWT = sess.Token
		s.User = &user
		s.Status = StatusSynced
		s.LastError = ""
	})
	e.log.Info("signed in", "user_id", user.ID)

	if err := e.Pull(ctx); err != nil {
		e.log.Warn("initial pull failed", "error", err)
	}
	return user
}

// Logout forgets the session. Queued mutations are kept for the next login.
func (e *Engine) Logout(ctx context.Context) {
	e.remote.SetToken("")
	e.update(ctx, "signed out", func(s *State) {
		s.JWT = ""
		s.User = nil
		s.Status = StatusOffline
	})
	e.log.Info("signed out")
}
