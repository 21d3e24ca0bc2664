package auth

import (
	"fmt"

	"github.com/spf13/cobra"

	"tidemark/cmd/client/cmd/types"
)

var LogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the session",
	Long:  `Forget the session token. Local data and queued changes are kept.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		app.Engine().Logout(cmd.Context())

		if n := len(app.Engine().Queue()); n > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Signed out. %d queued changes will be pushed after the next login.\n", n)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
		return nil
	},
}
