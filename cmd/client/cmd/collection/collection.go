// Package collection holds the add, list and delete commands of the three
// synchronized collections.
package collection

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"tidemark/cmd/client/cmd/types"
	"tidemark/internal/app/client"
)

// deleteCmd builds "<kind> delete <id>" around one engine delete.
func deleteCmd(kind string, del func(context.Context, *client.App, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a " + kind,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := types.App(cmd)
			if err != nil {
				return err
			}
			if err := del(cmd.Context(), app, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %s\n", kind, args[0])
			return nil
		},
	}
}

func printSaved(cmd *cobra.Command, kind, id string, app *client.App) {
	st := app.Engine().State()
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s %s (%s", kind, id, st.Status)
	if n := len(st.Queue); n > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), ", %d queued", n)
	}
	fmt.Fprintln(cmd.OutOrStdout(), ")")
}
