// Package auth holds the session commands.
package auth

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tidemark/internal/app/client/remote"
	clientsync "tidemark/internal/app/client/sync"
)

// readSecret prompts on stderr and reads without echo when stdin is a terminal.
func readSecret(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func printSignedIn(cmd *cobra.Command, user remote.User, st clientsync.State) {
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", user.Email, user.ID)
	fmt.Fprintf(cmd.OutOrStdout(), "Status: %s\n", st.Status)
	if n := len(st.Queue); n > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%d queued changes pending\n", n)
	}
}
