package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/diamond_shop/internal/models"
	"github.com/Skotchmaster/diamond_shop/internal/transport"
)

type whoami struct {
	LoggedIn bool            `json:"loggedIn"`
	Profile  string          `json:"profile"`
	User     *models.Session `json:"user,omitempty"`
}

func (a *app) whoami() whoami {
	return a.describe(a.ws.Session.Current())
}

// describe never exposes the token.
func (a *app) describe(s *models.Session) whoami {
	v := whoami{LoggedIn: s.LoggedIn(), Profile: a.ws.Session.Profile()}
	if s != nil {
		u := *s
		u.Token = ""
		v.User = &u
	}
	return v
}

func newLoginCmd(a *app) *cobra.Command {
	var req transport.LoginRequest
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session under the profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if req.Password == "" {
				req.Password = os.Getenv("DIAMOND_PASSWORD")
			}
			if _, err := a.ws.Login(cmd.Context(), req); err != nil {
				return fail(err)
			}
			return a.print(a.whoami())
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "account password (default $DIAMOND_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newRegisterCmd(a *app) *cobra.Command {
	var (
		req  transport.RegisterRequest
		role string
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req.Role = models.Role(role)
			if req.Password == "" {
				req.Password = os.Getenv("DIAMOND_PASSWORD")
			}
			s, err := a.ws.Register(cmd.Context(), req)
			if err != nil {
				return fail(err)
			}
			return a.print(a.describe(s))
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "display name")
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "account password (default $DIAMOND_PASSWORD)")
	cmd.Flags().StringVar(&role, "role", string(models.RoleBuyer), "Buyer or Supplier")
	cmd.Flags().StringVar(&req.Company, "company", "", "company name (suppliers)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the profile's session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ws.Logout(cmd.Context()); err != nil {
				return fail(err)
			}
			return a.print(a.whoami())
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the profile's session",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.print(a.whoami())
		},
	}
}
