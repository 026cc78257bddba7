package cli

import (
	"fmt"

	"github.com/setlog/setlog/internal/app"
	"github.com/setlog/setlog/internal/prefs"

	"github.com/spf13/cobra"
)

func newLoginCmd(a *app.App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the auth token locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := a.Auth.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("login rejected, check email and password")
			}
			user, err := a.Auth.CurrentUser()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s\n", user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the stored token and all cached data",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.Auth.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the locally stored identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.Auth.CurrentUser()
			if err != nil {
				return err
			}
			if user == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "not logged in")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", user.FullName, user.Email)
			return nil
		},
	}
}

func newProfileCmd(a *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show and update the account profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.Auth.Me(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "name:   %s\n", user.FullName)
			fmt.Fprintf(out, "email:  %s\n", user.Email)
			fmt.Fprintf(out, "weight: %.1f kg\n", user.Weight)
			fmt.Fprintf(out, "height: %.0f cm\n", user.Height)
			return nil
		},
	}

	var name, weight, height string
	update := &cobra.Command{
		Use:   "update",
		Short: "Update profile fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := a.Auth.Me(cmd.Context())
			if err != nil {
				return err
			}
			if name == "" {
				name = current.FullName
			}
			err = a.Auth.UpdateProfile(cmd.Context(), name,
				parseNumberOrZero(cmd, "weight", weight),
				parseNumberOrZero(cmd, "height", height),
			)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "profile updated")
			return nil
		},
	}
	update.Flags().StringVar(&name, "name", "", "full name")
	update.Flags().StringVar(&weight, "weight", "", "body weight in kg")
	update.Flags().StringVar(&height, "height", "", "height in cm")

	cmd.AddCommand(update)
	return cmd
}

func newThemeCmd(a *app.App) *cobra.Command {
	return newPrefCmd(a, "theme", prefs.KeyTheme, "UI theme (dark or light)")
}

func newLocaleCmd(a *app.App) *cobra.Command {
	return newPrefCmd(a, "locale", prefs.KeyLocale, "display language")
}

// newPrefCmd builds a get/set command for one local preference: no argument
// prints the value, one argument stores it.
func newPrefCmd(a *app.App, use, key, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [value]",
		Short: "Show or set the " + short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				value, found, err := a.Prefs.Get(key)
				if err != nil {
					return err
				}
				if !found {
					fmt.Fprintf(cmd.OutOrStdout(), "%s not set\n", use)
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), value)
				return nil
			}
			if err := a.Prefs.Set(key, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s set to %s\n", use, args[0])
			return nil
		},
	}
}
