package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/leave-management/internal/user"
	"github.com/spf13/cobra"
)

var registerDTO user.RegisterUserDTO

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Work with user accounts",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every user",
	RunE: withClient(func(ctx context.Context, app *clientApp, _ []string) error {
		if err := app.users.Refresh(ctx); err != nil {
			return fmt.Errorf("%s: %w", app.users.Err(), err)
		}
		users := app.users.Users()
		if len(users) == 0 {
			fmt.Fprintln(app.out, "No users")
			return nil
		}
		tw := app.table()
		fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tDEPARTMENT")
		for _, u := range users {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role, u.Department)
		}
		return tw.Flush()
	}),
}

var usersRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new user (supervisors only)",
	RunE: withClient(func(ctx context.Context, app *clientApp, _ []string) error {
		if _, err := app.requireSupervisor(); err != nil {
			return err
		}
		if err := app.users.Refresh(ctx); err != nil {
			return fmt.Errorf("%s: %w", app.users.Err(), err)
		}
		created, err := app.users.AddUser(ctx, registerDTO)
		if err != nil {
			return fmt.Errorf("%s: %w", app.users.Err(), err)
		}
		fmt.Fprintf(app.out, "%s has been registered successfully! (id %s)\n", created.Name, created.ID)
		return nil
	}),
}

var usersShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one user",
	Args:  cobra.ExactArgs(1),
	RunE: withClient(func(ctx context.Context, app *clientApp, args []string) error {
		u, err := app.users.GetUserByID(ctx, args[0])
		if err != nil {
			return fmt.Errorf("%s: %w", app.users.Err(), err)
		}
		printUser(app, u)
		return nil
	}),
}

func init() {
	f := usersRegisterCmd.Flags()
	f.StringVar(&registerDTO.Name, "name", "", "full name")
	f.StringVar(&registerDTO.Email, "email", "", "email address")
	f.StringVar(&registerDTO.Password, "password", "", "initial password")
	f.StringVar(&registerDTO.ConfirmPassword, "confirm", "", "initial password again")
	f.StringVar((*string)(&registerDTO.Role), "role", string(user.RoleEmployee), "employee or supervisor")
	f.StringVar(&registerDTO.Department, "department", "", "department")
	f.StringVar(&registerDTO.Position, "position", "", "position")

	usersCmd.AddCommand(usersListCmd, usersRegisterCmd, usersShowCmd)
}
