// Package types holds what the command packages share: the application in
// the command context and table output.
package types

import (
	"context"
	"errors"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"tidemark/internal/app/client"
	"tidemark/internal/domain/entity"
)

type appKey struct{}

// ClientAppKey is the context key the root command stores the application under.
var ClientAppKey = appKey{}

var ErrNoApp = errors.New("application is not initialized")

func WithApp(ctx context.Context, app *client.App) context.Context {
	return context.WithValue(ctx, ClientAppKey, app)
}

// App returns the application set up by the root command.
func App(cmd *cobra.Command) (*client.App, error) {
	app, ok := cmd.Context().Value(ClientAppKey).(*client.App)
	if !ok || app == nil {
		return nil, ErrNoApp
	}
	return app, nil
}

// NewTable returns a table writer mirrored to the command output.
func NewTable(cmd *cobra.Command, header ...any) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row(header))
	return t
}

// Ago renders t relative to now, or "never" for the epoch.
func Ago(t entity.Time) string {
	if t.IsZero() || t.Equal(entity.Epoch.Time) {
		return "never"
	}
	return time.Since(t.Time).Truncate(time.Second).String() + " ago"
}

// Short trims an id for table output.
func Short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
