// Package notify relays new contact messages to an external chat service.
// Delivery is best-effort: it runs off the request goroutine and failures
// are only logged.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/contactform/backend/internal/model"
)

// DefaultTimeout bounds a single delivery attempt.
const DefaultTimeout = 10 * time.Second

// Sender delivers a text blob. *telegram.Client implements it.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// Dispatcher sends one notification per message on its own goroutine.
// A nil Sender makes Notify a no-op.
type Dispatcher struct {
	sender  Sender
	timeout time.Duration
	logger  *slog.Logger

	wg sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. timeout <= 0 uses DefaultTimeout and a
// nil logger uses slog.Default().
func NewDispatcher(sender Sender, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{sender: sender, timeout: timeout, logger: logger}
}

// Notify starts delivery of msg and returns immediately. The send uses a
// background context so it outlives the request that triggered it.
func (d *Dispatcher) Notify(msg *model.Message) {
	if d == nil || d.sender == nil {
		return
	}
	text := Format(msg)
	id := msg.ID

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("notification panicked", "message_id", id, "panic", r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.sender.Send(ctx, text); err != nil {
			d.logger.Error("notification failed", "message_id", id, "error", err)
			return
		}
		d.logger.Debug("notification sent", "message_id", id)
	}()
}

// Wait blocks until in-flight notifications finish or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	if d == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Format renders msg as the plain-text notification body.
func Format(msg *model.Message) string {
	var b strings.Builder
	b.WriteString("New contact message\n\n")
	fmt.Fprintf(&b, "Name: %s\n", msg.Name)
	fmt.Fprintf(&b, "Email: %s\n", msg.Email)
	fmt.Fprintf(&b, "Project type: %s\n", msg.ProjectType)
	fmt.Fprintf(&b, "Date: %s\n\n", msg.Datetime.UTC().Format(time.RFC3339))
	b.WriteString(msg.Message)
	return b.String()
}
