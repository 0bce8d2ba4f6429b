package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/issuetracker/internal/issueform"
	"github.com/idilsaglam/issuetracker/internal/model"
	"github.com/idilsaglam/issuetracker/internal/store"
	"github.com/idilsaglam/issuetracker/internal/tui"
	"github.com/idilsaglam/issuetracker/internal/ui"
)

// cliHost is the non-interactive host: the product comes from the command
// line and closing only marks the form finished.
type cliHost struct {
	productID string
	closed    bool
}

func (h *cliHost) SelectedProductID() string { return h.productID }
func (h *cliHost) Close()                    { h.closed = true }

func (a *app) createCommand() *cobra.Command {
	var title, description string
	cmd := &cobra.Command{
		Use:   "create <product-id>",
		Short: "Open the create-issue form for a product",
		Long: `Open the create-issue form for a product.

Without --title/--description an interactive form is shown:
  - Tab/Shift+Tab: move between fields and buttons
  - Ctrl+S or Enter on "Create": submit
  - Esc or "Cancel": close without saving

With --title and --description the form is submitted directly.`,
		Example: `  issuetracker create 8123456789
  issuetracker create gid://shopify/Product/8123456789 --title "Loose button" --description "Second button from the top"`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.newStore(cmd.Context())
			if err != nil {
				return err
			}
			headless := cmd.Flags().Changed("title") || cmd.Flags().Changed("description")
			if headless {
				return a.createHeadless(cmd.Context(), st, args[0], model.Draft{Title: title, Description: description})
			}
			return a.createInteractive(cmd.Context(), st, args[0])
		},
	}
	cmd.Flags().StringVar(&title, "title", "", fmt.Sprintf("issue title (max %d chars)", model.TitleMaxLen))
	cmd.Flags().StringVar(&description, "description", "", fmt.Sprintf("issue description (max %d chars)", model.DescriptionMaxLen))
	return cmd
}

func (a *app) createHeadless(ctx context.Context, st store.Store, productID string, d model.Draft) error {
	if tooLong := model.WithinLimits(d); tooLong.Any() {
		if tooLong.Title {
			ui.Fail(fmt.Sprintf("title must be %d characters or less", model.TitleMaxLen))
		}
		if tooLong.Description {
			ui.Fail(fmt.Sprintf("description must be %d characters or less", model.DescriptionMaxLen))
		}
		return &exitError{code: ExitUsage}
	}

	host := &cliHost{productID: productID}
	f := issueform.New(host, st, a.logger)
	f.Load(ctx)
	res := f.Submit(ctx, d)
	if res.Errors.Any() {
		if res.Errors.Title {
			ui.Fail("Please enter a title")
		}
		if res.Errors.Description {
			ui.Fail("Please enter a description")
		}
		return &exitError{code: ExitUsage}
	}
	return reportCreated(res)
}

func (a *app) createInteractive(ctx context.Context, st store.Store, productID string) error {
	res, err := a.openForm(ctx, st, productID)
	if err != nil {
		return err
	}
	if res == nil {
		ui.Warn("cancelled")
		return nil
	}
	// like the admin modal, the interactive form never surfaces a failed
	// write; it is in the log
	if res.Persisted {
		return reportCreated(*res)
	}
	return nil
}

func (a *app) openForm(ctx context.Context, st store.Store, productID string) (*issueform.Result, error) {
	host := &tui.Host{ProductID: productID}
	f := issueform.New(host, st, a.logger)
	var res *issueform.Result
	err := a.quietLogs(func() (err error) {
		res, err = tui.RunForm(ctx, f, host)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("tui: %w", err)
	}
	return res, nil
}

// reportCreated prints the outcome. The form has closed either way; for
// scripted use a failed write, already logged, turns into exit code 1.
func reportCreated(res issueform.Result) error {
	if res.Created == nil {
		return nil
	}
	if !res.Persisted {
		return &exitError{code: ExitError, msg: fmt.Sprintf("issue #%d was not saved", res.Created.ID)}
	}
	ui.OK(fmt.Sprintf("created issue #%d: %s", res.Created.ID, res.Created.Title))
	return nil
}
