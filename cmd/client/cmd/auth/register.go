package auth

import (
	"fmt"

	"github.com/spf13/cobra"

	"tidemark/cmd/client/cmd/types"
)

var registerEmail string

var RegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an email and password account",
	Long: `Create an account on the sync service and sign in with it.

The password needs 8 to 72 bytes with at least one letter and one digit.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		password, err := readSecret(cmd, "Password: ")
		if err != nil {
			return err
		}
		confirm, err := readSecret(cmd, "Repeat password: ")
		if err != nil {
			return err
		}
		if password != confirm {
			return fmt.Errorf("passwords do not match")
		}

		user, err := app.Engine().Register(cmd.Context(), registerEmail, password)
		if err != nil {
			return err
		}
		printSignedIn(cmd, user, app.Engine().State())
		return nil
	},
}

func init() {
	RegisterCmd.Flags().StringVar(&registerEmail, "email", "", "account email")
	_ = RegisterCmd.MarkFlagRequired("email")
}
