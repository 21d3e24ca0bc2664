package auth

import (
	"fmt"

	"github.com/spf13/cobra"

	"tidemark/cmd/client/cmd/types"
	"tidemark/internal/app/client/remote"
)

var (
	providerToken string
	loginEmail    string
)

var LoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the sync service",
	Long: `Sign in with an identity provider access token, or with an email and
password account using --email.

After signing in the client pulls everything changed since the last sync and
pushes any changes queued while offline.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}
		engine := app.Engine()

		var user remote.User
		if loginEmail != "" {
			password, err := readSecret(cmd, "Password: ")
			if err != nil {
				return err
			}
			user, err = engine.LoginPassword(cmd.Context(), loginEmail, password)
			if err != nil {
				return err
			}
		} else {
			token := providerToken
			if token == "" {
				if token, err = readSecret(cmd, "Provider token: "); err != nil {
					return err
				}
			}
			if token == "" {
				return fmt.Errorf("provider token is required")
			}
			user, err = engine.Login(cmd.Context(), token)
			if err != nil {
				return err
			}
		}

		printSignedIn(cmd, user, engine.State())
		return nil
	},
}

func init() {
	LoginCmd.Flags().StringVar(&providerToken, "token", "", "identity provider access token")
	LoginCmd.Flags().StringVar(&loginEmail, "email", "", "sign in with an email and password account")
	LoginCmd.MarkFlagsMutuallyExclusive("token", "email")
}
