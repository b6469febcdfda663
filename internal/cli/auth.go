package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"Kashar/internal/auth"
	"Kashar/internal/backend"
	"Kashar/internal/tutor"

	"github.com/spf13/cobra"
)

type credentialFlags struct {
	email    string
	password string
}

func (f *credentialFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.email, "email", "", "Account email")
	cmd.Flags().StringVar(&f.password, "password", "", "Account password (prompted when omitted)")
}

// resolve prompts on the command's input for anything not given as a flag
func (f *credentialFlags) resolve(cmd *cobra.Command) (string, string, error) {
	reader := bufio.NewReader(cmd.InOrStdin())
	email, password := f.email, f.password
	var err error
	if email == "" {
		if email, err = prompt(cmd.OutOrStdout(), reader, "Email: "); err != nil {
			return "", "", err
		}
	}
	if password == "" {
		if password, err = prompt(cmd.OutOrStdout(), reader, "Password: "); err != nil {
			return "", "", err
		}
	}
	return email, password, nil
}

func prompt(out io.Writer, r *bufio.Reader, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read %s: %w", strings.TrimSuffix(label, ": "), err)
	}
	return strings.TrimSpace(line), nil
}

func printUser(out io.Writer, verb string, user *backend.User) {
	fmt.Fprintf(out, "%s as %s (id %s)\n", verb, user.Email, user.ID)
}

func newLoginCommand(current func() *app) *cobra.Command {
	var f credentialFlags
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			email, password, err := f.resolve(cmd)
			if err != nil {
				return err
			}
			user, err := a.auth.Login(cmd.Context(), email, password)
			if err != nil {
				return errors.New(tutor.Describe(err, "Login failed"))
			}
			printUser(cmd.OutOrStdout(), "Signed in", user)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newSignupCommand(current func() *app) *cobra.Command {
	var f credentialFlags
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			email, password, err := f.resolve(cmd)
			if err != nil {
				return err
			}
			user, err := a.auth.Signup(cmd.Context(), email, password)
			if errors.Is(err, auth.ErrConfirmationPending) {
				fmt.Fprintf(cmd.OutOrStdout(), "Account created for %s. Confirm your email, then run kashar login.\n", user.Email)
				return nil
			}
			if err != nil {
				return errors.New(tutor.Describe(err, "Signup failed"))
			}
			printUser(cmd.OutOrStdout(), "Account created, signed in", user)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newLogoutCommand(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := current().auth.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoamiCommand(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := current().auth.CurrentUser(cmd.Context())
			if err != nil {
				return errors.New(tutor.Describe(err, "Could not load the current user"))
			}
			printUser(cmd.OutOrStdout(), "Signed in", user)
			return nil
		},
	}
}
