package sync

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"tidemark/cmd/client/cmd/types"
)

var QueueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Inspect changes waiting for the sync service",
}

var queueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List queued changes in the order they will be pushed",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		queue := app.Engine().Queue()
		if len(queue) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty.")
			return nil
		}

		t := types.NewTable(cmd, "#", "Action", "Entity", "Queued", "Attempts", "Last error")
		for i, it := range queue {
			t.AppendRow(table.Row{i + 1, it.Action, it.EntityID, types.Ago(it.QueuedAt), it.Attempts, it.LastError})
		}
		t.Render()
		return nil
	},
}

var queueClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every queued change",
	Long: `Drop every queued change. Local data is kept but the dropped changes
never reach the sync service.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		n := app.Engine().ClearQueue(cmd.Context())
		fmt.Fprintf(cmd.OutOrStdout(), "Dropped %d queued changes.\n", n)
		return nil
	},
}

func init() {
	QueueCmd.AddCommand(queueListCmd, queueClearCmd)
}
