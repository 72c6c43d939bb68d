package service

import (
	"context"

	"github.com/contactform/backend/internal/model"
)

// MessageService defines the business logic for contact form submissions.
type MessageService interface {
	// Submit stores a new message. ID, Datetime and Status are assigned by the
	// implementation; an empty ProjectType is replaced by the default.
	Submit(ctx context.Context, msg *model.Message) error

	// List returns every message, newest first.
	List(ctx context.Context) ([]*model.Message, error)

	// UpdateStatus changes the status of a message.
	// Returns repository.ErrNotFound for an unknown id.
	UpdateStatus(ctx context.Context, id, status string) error
}

// Notifier is told about every stored message. Implementations must not block.
type Notifier interface {
	Notify(msg *model.Message)
}
