package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newLoginCommand(e *env) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Example: `  hrmctl login --email hr@example.com
  HRMCTL_PASSWORD=secret hrmctl login --email hr@example.com`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("HRMCTL_PASSWORD")
			}
			email = strings.TrimSpace(email)
			if email == "" || password == "" {
				return errors.New("email and password are required")
			}
			res, err := e.client.Login(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}
			if err := e.prefs.SaveSession(res.Token, res.User.Email); err != nil {
				return err
			}
			cmd.Printf("%s %s (%s)\n", e.t("Logged in as"), res.User.Email, res.User.RoleName)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (or HRMCTL_PASSWORD)")
	return cmd
}

func newLogoutCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if token, _ := e.prefs.Token(); token != "" {
				if err := e.client.Post(cmd.Context(), "/api/v1/auth/logout", nil, nil); err != nil {
					e.log.Warnf("server logout failed: %v", err)
				}
			}
			if err := e.prefs.ClearSession(); err != nil {
				return err
			}
			cmd.Println(e.t("Logged out"))
			return nil
		},
	}
}

func newLangCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lang",
		Short: "Show or change the interface language",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "get",
			Short: "Print the current language",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cmd.Println(e.i18n.Language())
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List available languages",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				current := e.i18n.Language()
				for _, lang := range e.i18n.Bundle().Languages() {
					marker := " "
					if lang == current {
						marker = "*"
					}
					cmd.Printf("%s %s\n", marker, lang)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:     "set <language>",
			Short:   "Switch language locally and, when signed in, on the server",
			Example: "  hrmctl lang set es",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := e.i18n.SetLanguage(args[0]); err != nil {
					return err
				}
				lang := e.i18n.Language()
				if token, _ := e.prefs.Token(); token != "" {
					if err := e.client.Put(cmd.Context(), "/api/v1/me/language", map[string]string{"language": lang}, nil); err != nil {
						e.log.Warnf("server language update failed: %v", err)
					}
				}
				cmd.Printf("%s: %s\n", e.t("Language"), lang)
				return nil
			},
		},
	)
	return cmd
}
