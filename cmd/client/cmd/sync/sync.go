// Package sync holds the commands driving the sync engine and the direct connection.
package sync

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"tidemark/cmd/client/cmd/types"
	"tidemark/internal/app/client"
)

var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull remote changes and push queued ones now",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		if err := app.Engine().SyncNow(cmd.Context()); err != nil {
			return fmt.Errorf("sync: %w", err)
		}
		printStatus(cmd, app)
		return nil
	},
}

var StatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the sync status",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		printStatus(cmd, app)
		return nil
	},
}

var servePeer bool

var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Keep syncing in the foreground",
	Long: `Poll the sync service, probe the desktop peer and, with --peer, accept
direct pushes from other clients until interrupted.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		return app.Run(cmd.Context(), servePeer)
	},
}

func printStatus(cmd *cobra.Command, app *client.App) {
	st := app.Engine().State()
	t := types.NewTable(cmd, "Field", "Value")

	account := "-"
	if st.User != nil {
		account = st.User.Email
	}
	t.AppendRow(table.Row{"Status", st.Status})
	t.AppendRow(table.Row{"Account", account})
	t.AppendRow(table.Row{"Server", app.Config().ServerURL})
	t.AppendRow(table.Row{"Last synced", types.Ago(st.LastSyncedAt)})
	t.AppendRow(table.Row{"Queued changes", len(st.Queue)})
	t.AppendRow(table.Row{"Peer buffer", len(app.Monitor().Snapshot())})
	if st.LastError != "" {
		t.AppendRow(table.Row{"Last error", st.LastError})
	}
	t.Render()
}

func init() {
	RunCmd.Flags().BoolVar(&servePeer, "peer", false, "serve the desktop peer endpoints")
}
