package repository

import (
	"context"

	"github.com/contactform/backend/internal/model"
)

// MessageRepository owns the persisted message collection.
// Implementations return messages in insertion order.
type MessageRepository interface {
	// Load returns the whole collection. A store that has never been written
	// yields an empty collection, not an error.
	Load(ctx context.Context) ([]*model.Message, error)
	// Save replaces the whole persisted collection with msgs.
	Save(ctx context.Context, msgs []*model.Message) error
	// Append adds msg to the end of the collection.
	Append(ctx context.Context, msg *model.Message) error
	// UpdateStatus sets the status of the message with the given id.
	// Returns ErrNotFound if there is no such message.
	UpdateStatus(ctx context.Context, id, status string) error
}
