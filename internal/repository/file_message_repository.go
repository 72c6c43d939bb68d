package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/contactform/backend/internal/model"
)

// FileMessageRepository keeps the whole collection in a single JSON file.
// Every read loads the full file and every write rewrites it, so it is only
// meant for contact-form volumes. All operations are serialized by a mutex,
// which closes the lost-update window between concurrent read-modify-write
// cycles inside one process. It does not coordinate between processes.
type FileMessageRepository struct {
	path string
	mu   sync.Mutex
}

// NewFileMessageRepository creates a FileMessageRepository backed by path.
// The file does not need to exist yet.
func NewFileMessageRepository(path string) *FileMessageRepository {
	return &FileMessageRepository{path: path}
}

// Ensure FileMessageRepository implements MessageRepository at compile time.
var _ MessageRepository = (*FileMessageRepository)(nil)

// Path returns the file backing the repository.
func (r *FileMessageRepository) Path() string {
	return r.path
}

func (r *FileMessageRepository) Load(_ context.Context) ([]*model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

func (r *FileMessageRepository) Save(_ context.Context, msgs []*model.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(msgs)
}

func (r *FileMessageRepository) Append(_ context.Context, msg *model.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	msgs, err := r.load()
	if err != nil {
		return err
	}
	return r.save(append(msgs, msg))
}

func (r *FileMessageRepository) UpdateStatus(_ context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	msgs, err := r.load()
	if err != nil {
		return err
	}
	for _, m := range msgs {
		if m.ID == id {
			m.Status = status
			return r.save(msgs)
		}
	}
	return ErrNotFound
}

// load reads the collection. Caller must hold r.mu.
func (r *FileMessageRepository) load() ([]*model.Message, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []*model.Message{}, nil
		}
		return nil, fmt.Errorf("store: read %s: %w", r.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []*model.Message{}, nil
	}

	var msgs []*model.Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, fmt.Errorf("store: decode %s: %w", r.path, err)
	}
	if msgs == nil {
		msgs = []*model.Message{}
	}
	return msgs, nil
}

// save writes msgs to a temp file next to the target and renames it into
// place, so readers never see a half-written collection. Caller must hold r.mu.
func (r *FileMessageRepository) save(msgs []*model.Message) error {
	if msgs == nil {
		msgs = []*model.Message{}
	}
	data, err := json.MarshalIndent(msgs, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("store: create temp: %w", err)
	}
	tmpName := tmp.Name()
	// No-op once the rename has succeeded.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("store: write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("store: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: close: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("store: chmod: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("store: rename: %w", err)
	}
	return nil
}
