package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmcleod/stockroom/client"
)

var (
	username string
	password string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		if username == "" {
			return errors.New("--username is required")
		}
		pw := password
		if pw == "" {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return errors.New("--password is required")
			}
			pw = strings.TrimRight(line, "\r\n")
		}

		s, err := openSession(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer s.close()

		if err := s.client.Login(cmd.Context(), username, pw); err != nil {
			if errors.Is(err, client.ErrUnauthorized) {
				return fmt.Errorf("invalid username or password")
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", username)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer s.close()
		return s.client.Logout(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd)
	loginCmd.Flags().StringVarP(&username, "username", "u", "", "Account username")
	loginCmd.Flags().StringVarP(&password, "password", "p", "", "Account password (read from stdin when omitted)")
}
