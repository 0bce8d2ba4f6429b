package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/idilsaglam/issuetracker/internal/auth"
	"github.com/idilsaglam/issuetracker/internal/ui"
)

func (a *app) authCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the Admin API access token",
	}
	cmd.AddCommand(a.authLoginCommand(), a.authLogoutCommand(), a.authStatusCommand())
	return cmd
}

func (a *app) authLoginCommand() *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an Admin API access token",
		Long: `Store an Admin API access token in ~/.issuetracker/credentials.json.

Without --token the token is read from an interactive prompt.
` + auth.EnvToken + ` always takes precedence over the stored token.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			shop := a.cfg.ShopDomain
			if token == "" {
				form := huh.NewForm(huh.NewGroup(
					huh.NewInput().
						Title("Shop domain").
						Placeholder("demo.myshopify.com").
						Value(&shop),
					huh.NewInput().
						Title("Access token").
						Description("Admin API access token (shpat_...)").
						EchoMode(huh.EchoModePassword).
						Value(&token).
						Validate(func(s string) error {
							if strings.TrimSpace(s) == "" {
								return errors.New("token is required")
							}
							return nil
						}),
				))
				if err := form.Run(); err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						ui.Warn("login cancelled")
						return nil
					}
					return fmt.Errorf("prompt: %w", err)
				}
			}
			if err := a.creds.Set(token, shop); err != nil {
				return fmt.Errorf("save token: %w", err)
			}
			ui.OK("logged in")
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "access token (skips the prompt)")
	return cmd
}

func (a *app) authLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Delete the stored access token",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			ti, _ := a.creds.Get()
			if ti != nil && ti.Source == auth.SourceEnv {
				ui.OK("token is provided by " + auth.EnvToken + " (nothing to delete)")
				return nil
			}
			if err := a.creds.Delete(); err != nil {
				return fmt.Errorf("logout: %w", err)
			}
			ui.OK("logged out")
			return nil
		},
	}
}

func (a *app) authStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show where the access token comes from",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			ti, err := a.creds.Get()
			if err != nil {
				return err
			}
			if ti == nil {
				fmt.Fprintln(out, ui.C(ui.Current().Muted, "not logged in"))
				fmt.Fprintln(out, "Run: issuetracker auth login")
				return nil
			}
			fmt.Fprintf(out, "source: %s\n", ti.Source)
			fmt.Fprintf(out, "token:  %s\n", auth.Mask(ti.Token))
			shop := a.cfg.ShopDomain
			if shop == "" {
				shop = ti.ShopDomain
			}
			if shop == "" {
				shop = "(unset)"
			}
			fmt.Fprintf(out, "shop:   %s\n", shop)
			fmt.Fprintln(out, "env override: "+auth.EnvToken)
			return nil
		},
	}
}
