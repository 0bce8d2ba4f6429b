package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/issuetracker/internal/issueform"
	"github.com/idilsaglam/issuetracker/internal/model"
	"github.com/idilsaglam/issuetracker/internal/store"
	"github.com/idilsaglam/issuetracker/internal/tui"
	"github.com/idilsaglam/issuetracker/internal/ui"
)

func (a *app) listCommand() *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:     "ls <product-id>",
		Aliases: []string{"list"},
		Short:   "List a product's issues",
		Long: `List a product's issues.

The interactive list is read-only; press "a" to open the create-issue form
for the same product, "/" to filter, "q" to quit. --plain prints a panel.`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.newStore(cmd.Context())
			if err != nil {
				return err
			}
			if plain {
				ui.Panel(ui.IssuePanelLines(args[0], a.loadIssues(cmd.Context(), st, args[0])))
				return nil
			}
			return a.browse(cmd.Context(), st, args[0])
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print a static panel instead of the interactive list")
	return cmd
}

// loadIssues reads through the form so a failed read degrades the same way.
func (a *app) loadIssues(ctx context.Context, st store.Store, productID string) []model.Issue {
	return issueform.New(&cliHost{productID: productID}, st, a.logger).Load(ctx)
}

func (a *app) browse(ctx context.Context, st store.Store, productID string) error {
	for {
		var action tui.ListAction
		err := a.quietLogs(func() (err error) {
			action, err = tui.RunList(productID, a.loadIssues(ctx, st, productID))
			return err
		})
		if err != nil {
			return err
		}
		if action != tui.ListCreate {
			return nil
		}
		// back to the refreshed list once the form closes
		if _, err := a.openForm(ctx, st, productID); err != nil {
			return err
		}
	}
}
