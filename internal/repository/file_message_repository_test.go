package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/contactform/backend/internal/model"
	"github.com/google/go-cmp/cmp"
)

func newTestMessage(id string, at time.Time) *model.Message {
	return &model.Message{
		ID:          id,
		Name:        "Alice " + id,
		Email:       id + "@example.com",
		ProjectType: model.DefaultProjectType,
		Message:     "Hello from " + id,
		Datetime:    at,
		Status:      model.StatusNew,
	}
}

func newTestRepo(t *testing.T) *FileMessageRepository {
	t.Helper()
	return NewFileMessageRepository(filepath.Join(t.TempDir(), "messages.json"))
}

// ---------------------------------------------------------------------------
// Load
// ---------------------------------------------------------------------------

func TestFileRepo_Load_MissingFileIsEmpty(t *testing.T) {
	repo := newTestRepo(t)

	msgs, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned unexpected error: %v", err)
	}
	if msgs == nil || len(msgs) != 0 {
		t.Errorf("expected empty non-nil collection, got %#v", msgs)
	}
}

func TestFileRepo_Load_EmptyFileIsEmpty(t *testing.T) {
	repo := newTestRepo(t)
	if err := os.WriteFile(repo.Path(), []byte("  \n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	msgs, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned unexpected error: %v", err)
	}
	if len(msgs) != 0 {
		t.Errorf("expected 0 messages, got %d", len(msgs))
	}
}

func TestFileRepo_Load_CorruptFileIsError(t *testing.T) {
	repo := newTestRepo(t)
	if err := os.WriteFile(repo.Path(), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := repo.Load(context.Background()); err == nil {
		t.Error("expected decode error for corrupt file, got nil")
	}
}

// TestFileRepo_Load_ExistingFormat reads a file in the format written by
// earlier deployments (millisecond ISO timestamps, numeric-string ids).
func TestFileRepo_Load_ExistingFormat(t *testing.T) {
	repo := newTestRepo(t)
	content := `[
  {
    "id": "1717171717171",
    "name": "Test User",
    "email": "test@example.com",
    "projectType": "DeFi",
    "message": "This is a test message",
    "datetime": "2024-05-31T16:08:37.171Z",
    "status": "new"
  }
]`
	if err := os.WriteFile(repo.Path(), []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	msgs, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []*model.Message{{
		ID:          "1717171717171",
		Name:        "Test User",
		Email:       "test@example.com",
		ProjectType: "DeFi",
		Message:     "This is a test message",
		Datetime:    time.Date(2024, 5, 31, 16, 8, 37, 171_000_000, time.UTC),
		Status:      "new",
	}}
	if diff := cmp.Diff(want, msgs); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}
}

// ---------------------------------------------------------------------------
// Save
// ---------------------------------------------------------------------------

func TestFileRepo_Save_PrettyPrintedArray(t *testing.T) {
	repo := newTestRepo(t)
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	if err := repo.Save(context.Background(), []*model.Message{newTestMessage("a", at)}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(repo.Path())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(string(data), "[\n  {\n    \"id\": \"a\",") {
		t.Errorf("expected 2-space indented JSON array, got:\n%s", data)
	}

	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("file is not a JSON array: %v", err)
	}
	for _, key := range []string{"id", "name", "email", "projectType", "message", "datetime", "status"} {
		if _, ok := raw[0][key]; !ok {
			t.Errorf("persisted message missing key %q", key)
		}
	}
}

func TestFileRepo_Save_NilWritesEmptyArray(t *testing.T) {
	repo := newTestRepo(t)

	if err := repo.Save(context.Background(), nil); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(repo.Path())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("expected [], got %q", data)
	}
}

func TestFileRepo_Save_OverwritesEverything(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_ = repo.Save(ctx, []*model.Message{newTestMessage("a", at), newTestMessage("b", at)})
	if err := repo.Save(ctx, []*model.Message{newTestMessage("c", at)}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	msgs, _ := repo.Load(ctx)
	if len(msgs) != 1 || msgs[0].ID != "c" {
		t.Errorf("expected only message c after overwrite, got %+v", msgs)
	}
}

func TestFileRepo_Save_CreatesParentDir(t *testing.T) {
	repo := NewFileMessageRepository(filepath.Join(t.TempDir(), "data", "nested", "messages.json"))

	if err := repo.Save(context.Background(), []*model.Message{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(repo.Path()); err != nil {
		t.Errorf("expected store file to exist: %v", err)
	}
}

func TestFileRepo_Save_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	repo := NewFileMessageRepository(filepath.Join(dir, "messages.json"))
	at := time.Now().UTC()

	for i := 0; i < 3; i++ {
		if err := repo.Append(context.Background(), newTestMessage(fmt.Sprint(i), at)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected only messages.json, got %v", names)
	}
}

func TestFileRepo_Save_UnwritableDirIsError(t *testing.T) {
	dir := t.TempDir()
	// A regular file where the parent directory should be.
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	repo := NewFileMessageRepository(filepath.Join(blocker, "messages.json"))

	if err := repo.Save(context.Background(), []*model.Message{}); err == nil {
		t.Error("expected error when parent path is a file, got nil")
	}
}

// ---------------------------------------------------------------------------
// Append
// ---------------------------------------------------------------------------

func TestFileRepo_Append_PreservesInsertionOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	want := []*model.Message{
		newTestMessage("1", base.Add(2*time.Hour)),
		newTestMessage("2", base),
		newTestMessage("3", base.Add(time.Hour)),
	}
	for _, m := range want {
		if err := repo.Append(ctx, m); err != nil {
			t.Fatalf("Append(%s): %v", m.ID, err)
		}
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load after Append mismatch (-want +got):\n%s", diff)
	}
}

func TestFileRepo_Append_CorruptFileIsError(t *testing.T) {
	repo := newTestRepo(t)
	if err := os.WriteFile(repo.Path(), []byte("garbage"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := repo.Append(context.Background(), newTestMessage("x", time.Now())); err == nil {
		t.Fatal("expected error, got nil")
	}
	// The corrupt file must not be replaced by a fresh collection.
	data, _ := os.ReadFile(repo.Path())
	if string(data) != "garbage" {
		t.Errorf("corrupt file was overwritten: %q", data)
	}
}

func TestFileRepo_Append_ConcurrentWritersLoseNothing(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	at := time.Now().UTC()

	const writers = 25
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := repo.Append(ctx, newTestMessage(fmt.Sprint(i), at)); err != nil {
				t.Errorf("Append(%d): %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	msgs, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(msgs) != writers {
		t.Errorf("expected %d messages, got %d", writers, len(msgs))
	}
}

// ---------------------------------------------------------------------------
// UpdateStatus
// ---------------------------------------------------------------------------

func TestFileRepo_UpdateStatus_Persists(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	at := time.Now().UTC()
	_ = repo.Append(ctx, newTestMessage("a", at))
	_ = repo.Append(ctx, newTestMessage("b", at))

	if err := repo.UpdateStatus(ctx, "b", "replied"); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	reopened := NewFileMessageRepository(repo.Path())
	msgs, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if msgs[0].Status != model.StatusNew {
		t.Errorf("message a: expected status unchanged, got %q", msgs[0].Status)
	}
	if msgs[1].Status != "replied" {
		t.Errorf("message b: expected status=replied, got %q", msgs[1].Status)
	}
}

func TestFileRepo_UpdateStatus_NotFound(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	_ = repo.Append(ctx, newTestMessage("a", time.Now().UTC()))
	before, _ := os.ReadFile(repo.Path())

	err := repo.UpdateStatus(ctx, "missing", "read")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	after, _ := os.ReadFile(repo.Path())
	if string(before) != string(after) {
		t.Error("collection was rewritten for an unknown id")
	}
}

func TestFileRepo_UpdateStatus_EmptyStoreNotFound(t *testing.T) {
	repo := newTestRepo(t)

	if err := repo.UpdateStatus(context.Background(), "a", "read"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := os.Stat(repo.Path()); !os.IsNotExist(err) {
		t.Error("expected no store file to be created")
	}
}

func TestFileRepo_ConcurrentAppendAndUpdate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	at := time.Now().UTC()
	_ = repo.Append(ctx, newTestMessage("seed", at))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = repo.Append(ctx, newTestMessage(fmt.Sprint(i), at))
		}(i)
		go func(i int) {
			defer wg.Done()
			_ = repo.UpdateStatus(ctx, "seed", fmt.Sprintf("status-%d", i))
		}(i)
	}
	wg.Wait()

	msgs, _ := repo.Load(ctx)
	if len(msgs) != 11 {
		t.Errorf("expected 11 messages, got %d", len(msgs))
	}
	if msgs[0].ID != "seed" || !strings.HasPrefix(msgs[0].Status, "status-") {
		t.Errorf("expected seed status update to survive, got %+v", msgs[0])
	}
}
