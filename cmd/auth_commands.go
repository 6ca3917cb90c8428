package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/leave-management/internal/user"
	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string

	passwdCurrent string
	passwdNew     string
	passwdConfirm string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the session",
	RunE: withClient(func(ctx context.Context, app *clientApp, _ []string) error {
		u, err := app.users.Authenticate(ctx, loginEmail, loginPassword)
		if err != nil {
			return fmt.Errorf("%s: %w", app.users.Err(), err)
		}
		fmt.Fprintf(app.out, "Signed in as %s (%s)\n", u.Name, u.Role)
		return nil
	}),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: withClient(func(_ context.Context, app *clientApp, _ []string) error {
		if err := app.users.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(app.out, "Signed out")
		return nil
	}),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: withClient(func(_ context.Context, app *clientApp, _ []string) error {
		u, err := app.currentUser()
		if err != nil {
			return err
		}
		printUser(app, u)
		return nil
	}),
}

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change the signed-in user's password",
	RunE: withClient(func(ctx context.Context, app *clientApp, _ []string) error {
		u, err := app.currentUser()
		if err != nil {
			return err
		}
		err = app.users.ChangePassword(ctx, u.ID, user.ChangePasswordDTO{
			CurrentPassword: passwdCurrent,
			NewPassword:     passwdNew,
			ConfirmPassword: passwdConfirm,
		})
		if err != nil {
			return fmt.Errorf("%s: %w", app.users.Err(), err)
		}
		fmt.Fprintln(app.out, "Password changed")
		return nil
	}),
}

func printUser(app *clientApp, u *user.User) {
	tw := app.table()
	fmt.Fprintf(tw, "ID\t%s\n", u.ID)
	fmt.Fprintf(tw, "Name\t%s\n", u.Name)
	fmt.Fprintf(tw, "Email\t%s\n", u.Email)
	fmt.Fprintf(tw, "Role\t%s\n", u.Role)
	if u.Department != "" {
		fmt.Fprintf(tw, "Department\t%s\n", u.Department)
	}
	if u.Position != "" {
		fmt.Fprintf(tw, "Position\t%s\n", u.Position)
	}
	_ = tw.Flush()
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "account email")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")

	passwdCmd.Flags().StringVar(&passwdCurrent, "current", "", "current password")
	passwdCmd.Flags().StringVar(&passwdNew, "new", "", "new password")
	passwdCmd.Flags().StringVar(&passwdConfirm, "confirm", "", "new password again")
	_ = passwdCmd.MarkFlagRequired("current")
	_ = passwdCmd.MarkFlagRequired("new")
	_ = passwdCmd.MarkFlagRequired("confirm")
}
