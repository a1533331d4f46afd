package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"health-portal/internal/client"
	"health-portal/internal/fixtures"
	"health-portal/internal/models"
	"health-portal/internal/session"
)

var errBadCredentials = errors.New("invalid email or password")

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := &session.Session{}
			if a.demo {
				u := fixtures.UserByEmail(email)
				if u == nil || password != fixtures.DemoPassword {
					return errBadCredentials
				}
				s.Begin(u, demoTokenPrefix+u.ID)
			} else if _, err := a.client(cmd, s).Login(cmd.Context(), email, password); err != nil {
				if errors.Is(err, client.ErrAuthRequired) {
					return errBadCredentials
				}
				return err
			}
			if err := a.sessionStore().Save(s); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			u := s.User()
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", u.Name, u.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.loadSession()
			if err != nil {
				return err
			}
			// The local session is cleared whether or not the server accepts the logout.
			var remoteErr error
			if s.Active() && !isDemoToken(s.Token()) {
				remoteErr = a.client(cmd, s).Logout(cmd.Context())
			}
			s.End()
			if err := a.sessionStore().Save(s); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			if remoteErr != nil {
				a.logger.Warn().Err(remoteErr).Msg("server logout failed")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.loadSession()
			if err != nil {
				return err
			}
			if !s.Active() {
				return errSignedOut
			}
			u := s.User()
			if !isDemoToken(s.Token()) {
				if u, err = a.client(cmd, s).CurrentUser(cmd.Context()); err != nil {
					return err
				}
				if u == nil {
					return a.noUser(s)
				}
				if err := a.sessionStore().Save(s); err != nil {
					return fmt.Errorf("save session: %w", err)
				}
			}
			if u == nil {
				return errSignedOut
			}
			renderUser(cmd.OutOrStdout(), u)
			return nil
		},
	}
}

func describeRole(u *models.User) string {
	if u.Role == models.RoleProvider && u.Specialty != "" {
		return fmt.Sprintf("%s, %s", u.Role, u.Specialty)
	}
	return string(u.Role)
}
