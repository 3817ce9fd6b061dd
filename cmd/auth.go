package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/drivemcp/drivemcp/internal/google"
)

func newAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth [account]",
		Short: "Authorize Google Drive access for an account",
		Long: `Authorize drivemcp to access Google Drive on behalf of an account.

Prints an OAuth authorization URL, waits for the resulting authorization
code on stdin, and stores the token for later use by the serve command.
The account name defaults to "default"; use distinct names to keep tokens
for multiple Google accounts side by side.

OAuth client credentials are read from the GOOGLE_OAUTH_CLIENT_ID and
GOOGLE_OAUTH_CLIENT_SECRET environment variables.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account := "default"
			if len(args) == 1 {
				account = args[0]
			}

			if os.Getenv("GOOGLE_OAUTH_CLIENT_ID") == "" || os.Getenv("GOOGLE_OAUTH_CLIENT_SECRET") == "" {
				return fmt.Errorf("GOOGLE_OAUTH_CLIENT_ID and GOOGLE_OAUTH_CLIENT_SECRET must be set")
			}

			if err := google.MigrateDefaultToken(); err != nil {
				return fmt.Errorf("failed to migrate legacy token: %w", err)
			}

			if google.HasTokenForAccount(account) {
				fmt.Printf("A token for account %q already exists and will be replaced.\n\n", account)
			}

			fmt.Printf("Open the following URL in your browser and authorize access:\n\n%s\n\n", google.GetAuthURLForAccount(account))
			fmt.Print("Enter the authorization code: ")

			reader := bufio.NewReader(os.Stdin)
			code, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("failed to read authorization code: %w", err)
			}
			code = strings.TrimSpace(code)
			if code == "" {
				return fmt.Errorf("no authorization code provided")
			}

			if err := google.SaveTokenForAccount(cmd.Context(), account, code); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			fmt.Printf("Token saved for account %q.\n", account)
			return nil
		},
	}
}
