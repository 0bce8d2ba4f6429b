// Package issueform holds the "create issue" form logic shared by every host:
// load the product's issues, validate a draft, append it with the next id,
// write the whole list back and close.
package issueform

import (
	"context"

	"go.uber.org/zap"

	"github.com/idilsaglam/issuetracker/internal/model"
	"github.com/idilsaglam/issuetracker/internal/store"
)

// Host is what the surrounding environment hands the form: the product the
// form was opened for and a way to dismiss it.
type Host interface {
	SelectedProductID() string
	Close()
}

// Result describes what Submit did.
type Result struct {
	Errors  model.FieldErrors
	Created *model.Issue
	// Persisted is false when the write failed; the form closes regardless.
	Persisted bool
}

// Form is one open instance of the create-issue form.
// It is not safe for concurrent use; a host opens one form per action.
type Form struct {
	host   Host
	store  store.Store
	logger *zap.Logger

	productID string
	issues    []model.Issue
}

// New wires a form to its host and store.
func New(host Host, st store.Store, logger *zap.Logger) *Form {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := host.SelectedProductID()
	return &Form{
		host:      host,
		store:     st,
		logger:    logger.With(zap.String("product_id", id)),
		productID: id,
		issues:    []model.Issue{},
	}
}

// ProductID is the product the form edits.
func (f *Form) ProductID() string { return f.productID }

// Issues is the working list as loaded.
func (f *Form) Issues() []model.Issue { return f.issues }

// Load fetches the product's current issues. Any failure degrades to an
// empty list and is only logged.
func (f *Form) Load(ctx context.Context) []model.Issue {
	issues, err := f.store.Issues(ctx, f.productID)
	if err != nil {
		f.logger.Warn("load issues failed, starting from an empty list", zap.Error(err))
		issues = nil
	}
	if issues == nil {
		issues = []model.Issue{}
	}
	f.issues = issues
	f.logger.Debug("issues loaded", zap.Int("count", len(issues)))
	return issues
}

// Submit validates draft and, when valid, appends the new issue to the loaded
// list, writes the full list and closes the host. Invalid drafts return their
// field errors and leave the form open.
func (f *Form) Submit(ctx context.Context, draft model.Draft) Result {
	errs, ok := model.Validate(draft)
	if !ok {
		return Result{Errors: errs}
	}

	issue := model.New(model.NextID(f.issues), draft)
	next := make([]model.Issue, 0, len(f.issues)+1)
	next = append(next, f.issues...)
	next = append(next, issue)

	res := Result{Created: &issue, Persisted: true}
	if err := f.store.UpdateIssues(ctx, f.productID, next); err != nil {
		f.logger.Error("update issues failed", zap.Int("issue_id", issue.ID), zap.Error(err))
		res.Persisted = false
	} else {
		f.issues = next
		f.logger.Info("issue created", zap.Int("issue_id", issue.ID))
	}

	f.host.Close()
	return res
}

// Cancel dismisses the form without writing.
func (f *Form) Cancel() {
	f.host.Close()
}
