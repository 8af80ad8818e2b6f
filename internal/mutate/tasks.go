// Package mutate executes create/update/delete against the gateway and
// reconciles the local store afterward. Failed mutations never touch the
// store: every failure leaves the client in a previously-valid state.
package mutate

import (
	"context"

	"github.com/sirupsen/logrus"

	"taskdeck-cli/internal/api"
	"taskdeck-cli/internal/attach"
	"taskdeck-cli/internal/model"
	"taskdeck-cli/internal/query"
	"taskdeck-cli/internal/store"
)

type Pipeline struct {
	gw   *api.Client
	db   *store.DB
	ctrl *query.Controller
	log  *logrus.Logger
}

func NewPipeline(gw *api.Client, db *store.DB, ctrl *query.Controller) *Pipeline {
	return &Pipeline{gw: gw, db: db, ctrl: ctrl, log: logrus.StandardLogger()}
}

// refetch restores canonical server ordering/pagination after a mutation.
// Its failure is not the mutation's failure: the mutation already
// succeeded, so we log and leave the store's fetch-error state to tell
// the rest of the story.
func (p *Pipeline) refetch(ctx context.Context) {
	if err := p.ctrl.Refresh(ctx); err != nil {
		p.log.WithError(err).Warn("mutate: refetch after mutation failed")
	}
}

// CreateTask validates the attachments (purely, before any network call),
// issues the multipart create, and on success triggers a refetch with the
// current query state. The new record is deliberately NOT inserted into
// the store directly: its position in the sorted/filtered/paginated view
// is the server's decision, and a full refetch is the only correct way to
// place it.
func (p *Pipeline) CreateTask(ctx context.Context, fields api.TaskFields, docs []api.Upload) (string, error) {
	if fields.Title == "" {
		return "", ErrMissingTitle
	}
	if fields.DueDate == "" {
		return "", ErrMissingDueDate
	}

	candidates := make([]attach.Candidate, 0, len(docs))
	for _, d := range docs {
		candidates = append(candidates, attach.Candidate{Name: d.Filename, ContentType: d.ContentType})
	}
	if _, err := attach.Validate(nil, candidates); err != nil {
		return "", err
	}

	id, err := p.gw.CreateTask(ctx, fields, docs)
	if err != nil {
		return "", err
	}
	p.refetch(ctx)
	return id, nil
}

// UpdateTask sends a metadata-only update. Pessimistic: the local patch is
// applied only after the server acknowledges, for immediate feedback, and
// a refetch then restores canonical ordering (which may drop the record
// from the page if it no longer matches the active filter).
func (p *Pipeline) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) error {
	if patch.Empty() {
		return ErrNoFields
	}
	if err := p.gw.UpdateTask(ctx, id, patch); err != nil {
		return err
	}
	p.db.PatchTask(id, patch)
	p.refetch(ctx)
	return nil
}

// DeleteTask deletes the task (and, server-side, its attached documents)
// and removes it from the store. Destructive and irreversible: the caller
// is responsible for explicit user confirmation before invoking this.
func (p *Pipeline) DeleteTask(ctx context.Context, id string) error {
	if err := p.gw.DeleteTask(ctx, id); err != nil {
		return err
	}
	p.db.RemoveTask(id)
	return nil
}
