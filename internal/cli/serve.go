package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/issuetracker/internal/auth"
	"github.com/idilsaglam/issuetracker/internal/sandbox"
	"github.com/idilsaglam/issuetracker/internal/server"
)

func (a *app) serveCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the issue form over HTTP",
		Long: `Serve the issue form over HTTP.

  GET  /products/:id/issues   list a product's issues
  POST /products/:id/issues   {"title": "...", "description": "..."}
  GET  /healthz`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.newStore(cmd.Context())
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			fmt.Fprintf(cmd.OutOrStdout(), "listening on %s\n", addr)
			return server.New(st, a.logger.Named("server")).ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from server.addr)")
	return cmd
}

func (a *app) sandboxCommand() *cobra.Command {
	var addr, token string
	cmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Run a local stand-in for the Admin GraphQL API",
		Long: `Run a local stand-in for the Admin GraphQL API.

It answers product metafield reads and metafieldsSet from memory. Point the
other commands at it with --endpoint:

  issuetracker sandbox --addr :8089 &
  issuetracker --endpoint http://localhost:8089/admin/api/2025-10/graphql.json create 1`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.cfg.Sandbox.Addr
			}
			if token == "" {
				if ti, _ := a.creds.Get(); ti != nil && ti.Source == auth.SourceEnv {
					token = ti.Token
				}
			}
			srv, err := sandbox.New(sandbox.Options{AccessToken: token, Logger: a.logger.Named("sandbox")})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sandbox listening on %s\n", addr)
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from sandbox.addr)")
	cmd.Flags().StringVar(&token, "token", "", "require this X-Shopify-Access-Token")
	return cmd
}
