package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/contactform/backend/internal/model"
	"github.com/contactform/backend/internal/repository"
	"github.com/google/uuid"
)

// messageServiceImpl is the production implementation of MessageService.
type messageServiceImpl struct {
	repo     repository.MessageRepository
	notifier Notifier

	now   func() time.Time
	newID func() (string, error)
}

// NewMessageService creates a MessageService backed by the given repository.
// notifier may be nil.
func NewMessageService(repo repository.MessageRepository, notifier Notifier) MessageService {
	return &messageServiceImpl{
		repo:     repo,
		notifier: notifier,
		now:      time.Now,
		newID:    newMessageID,
	}
}

// newMessageID returns a UUIDv7, which is unique and sorts by creation time.
func newMessageID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Submit assigns id, timestamp and the initial status, appends the message and
// then hands it to the notifier. The notifier only runs after a successful save.
func (s *messageServiceImpl) Submit(ctx context.Context, msg *model.Message) error {
	id, err := s.newID()
	if err != nil {
		return fmt.Errorf("generate message id: %w", err)
	}
	msg.ID = id
	msg.Datetime = s.now().UTC().Truncate(time.Millisecond)
	msg.Status = model.StatusNew
	if strings.TrimSpace(msg.ProjectType) == "" {
		msg.ProjectType = model.DefaultProjectType
	}

	if err := s.repo.Append(ctx, msg); err != nil {
		return fmt.Errorf("append message: %w", err)
	}

	if s.notifier != nil {
		snapshot := *msg
		s.notifier.Notify(&snapshot)
	}
	return nil
}

// List loads the collection and orders it by Datetime descending. The sort is
// stable: messages with equal timestamps keep their stored order.
func (s *messageServiceImpl) List(ctx context.Context) ([]*model.Message, error) {
	msgs, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	slices.SortStableFunc(msgs, func(a, b *model.Message) int {
		return b.Datetime.Compare(a.Datetime)
	})
	return msgs, nil
}

func (s *messageServiceImpl) UpdateStatus(ctx context.Context, id, status string) error {
	return s.repo.UpdateStatus(ctx, id, status)
}
