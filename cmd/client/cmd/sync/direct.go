package sync

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"tidemark/cmd/client/cmd/types"
)

var DirectCmd = &cobra.Command{
	Use:   "direct",
	Short: "Inspect the direct connection to the desktop peer",
}

var directStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Probe the peer and list buffered pushes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		monitor := app.Monitor()

		reachable := "yes"
		if err := monitor.Ping(cmd.Context()); err != nil {
			reachable = "no (" + err.Error() + ")"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Peer:      %s\n", app.Config().Direct.PeerURL)
		fmt.Fprintf(cmd.OutOrStdout(), "Reachable: %s\n", reachable)

		items := monitor.Snapshot()
		if len(items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Buffer is empty.")
			return nil
		}

		t := types.NewTable(cmd, "#", "Endpoint", "Buffered", "Size")
		for i, it := range items {
			t.AppendRow(table.Row{i + 1, it.Endpoint, types.Ago(it.BufferedAt), len(it.Body)})
		}
		t.Render()
		return nil
	},
}

func init() {
	DirectCmd.AddCommand(directStatusCmd)
}
