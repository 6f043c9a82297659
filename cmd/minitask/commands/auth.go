package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/minitask/client/internal/application/flows"
)

func newLoginCommand(opts *rootOptions) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session on this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openClient(cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			if email == "" {
				if email, err = app.prompt("Email"); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = app.prompt("Password"); err != nil {
					return err
				}
			}

			auth := flows.NewAuthFlow(app.api, app.sessions, app.log)
			if _, err := auth.Login(cmd.Context(), email, password); err != nil {
				return err
			}

			fmt.Fprintln(app.out, "Login successful")
			return renderHome(app)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	return cmd
}

func newSignupCommand(opts *rootOptions) *cobra.Command {
	var email, password, confirm string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Register a new account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openClient(cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			if email == "" {
				if email, err = app.prompt("Email"); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = app.prompt("Password"); err != nil {
					return err
				}
			}
			if confirm == "" {
				if confirm, err = app.prompt("Confirm password"); err != nil {
					return err
				}
			}

			auth := flows.NewAuthFlow(app.api, app.sessions, app.log)
			_, message, err := auth.Signup(cmd.Context(), email, password, confirm)
			if err != nil {
				return err
			}

			fmt.Fprintln(app.out, message)
			fmt.Fprintln(app.out, "Run `minitask login` to continue.")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	cmd.Flags().StringVar(&confirm, "confirm", "", "password confirmation (prompted when omitted)")
	return cmd
}

func newLogoutCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openClient(cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			auth := flows.NewAuthFlow(app.api, app.sessions, app.log)
			if _, err := auth.Logout(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintln(app.out, "Logged out")
			return nil
		},
	}
}

func newHomeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "home",
		Short: "Show the dashboard, or the login hint when logged out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openClient(cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			screen, err := app.shell.Boot(cmd.Context())
			if screen == flows.ScreenLogin {
				if err != nil {
					fmt.Fprintln(app.out, flows.Message(err))
				}
				fmt.Fprintln(app.out, "Not logged in. Run `minitask login` or `minitask signup`.")
				return nil
			}
			return renderHome(app)
		},
	}
}

var actionHints = map[flows.Screen]string{
	flows.ScreenCreateTask: "minitask tasks create",
	flows.ScreenTaskList:   "minitask tasks list",
}

func renderHome(app *clientApp) error {
	view := app.shell.Home()
	fmt.Fprintln(app.out, view.Greeting)
	for _, action := range view.Actions {
		fmt.Fprintf(app.out, "  %-12s %s\n", action, actionHints[action])
	}
	fmt.Fprintf(app.out, "  %-12s %s\n", "Logout", "minitask logout")
	return nil
}
