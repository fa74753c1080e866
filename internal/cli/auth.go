package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"shopfront.io/storefront/api"
)

// NewLoginCommand creates the login command. Signing in migrates any
// anonymous cart into the account's server-side cart.
func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and migrate the local cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				email = prompt(cmd, "email: ")
			}
			if password == "" {
				password = prompt(cmd, "password: ")
			}

			svc, err := newService(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			user, err := svc.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s\n", user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			return svc.Logout(cmd.Context())
		},
	}
}

// NewSignupCommand creates the signup command.
func NewSignupCommand(rootOpts *RootOptions) *cobra.Command {
	var params api.SignupParams

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Register a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if params.PasswordConfirmation == "" {
				params.PasswordConfirmation = params.Password
			}

			svc, err := newService(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			if err = svc.Signup(cmd.Context(), params); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "account created, run `storefront login`")
			return nil
		},
	}

	cmd.Flags().StringVar(&params.Email, "email", "", "account email")
	cmd.Flags().StringVar(&params.Username, "username", "", "account username")
	cmd.Flags().StringVar(&params.Password, "password", "", "account password")
	cmd.Flags().StringVar(&params.PasswordConfirmation, "password-confirmation", "", "repeat the password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

// NewWhoamiCommand creates the whoami command.
func NewWhoamiCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newService(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer func() { _ = svc.Close() }()

			user, ok := svc.CurrentUser()
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "not signed in")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", user.Username, user.Email)
			return nil
		},
	}
}

func prompt(cmd *cobra.Command, label string) string {
	fmt.Fprint(cmd.OutOrStdout(), label)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
