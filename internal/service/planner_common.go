package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/noah-isme/academic-planner-api/internal/models"
	appErrors "github.com/noah-isme/academic-planner-api/pkg/errors"
)

// changePublisher is the outbound side of the change notification channel.
type changePublisher interface {
	Publish(event models.ChangeEvent)
}

type nopPublisher struct{}

func (nopPublisher) Publish(models.ChangeEvent) {}

// Confirmer answers the yes/no prompt guarding destructive operations.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

// Confirmed is a Confirmer with a fixed answer, used when the client already answered.
type Confirmed bool

// Confirm implements Confirmer.
func (c Confirmed) Confirm(context.Context, string) bool {
	return bool(c)
}

func requireSession(session models.Session) error {
	if !session.Valid() {
		return appErrors.ErrUnauthorized
	}
	return nil
}

// storeError maps a record store failure to an API error.
func storeError(err error, notFound, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Store(err, message)
}

func changeEvent(session models.Session, collection models.ChangeCollection, id string, action models.ChangeAction, at time.Time) models.ChangeEvent {
	return models.ChangeEvent{
		UserID:     session.UserID,
		Collection: collection,
		RecordID:   id,
		Action:     action,
		OccurredAt: at.UTC(),
	}
}
