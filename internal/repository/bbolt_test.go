package repository_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/NamanBalaji/fetchr/internal/repository"
)

func openRepo(t *testing.T) *repository.BboltRepository {
	t.Helper()
	repo, err := repository.NewBboltRepository(filepath.Join(t.TempDir(), "state", "tempfiles.db"))
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestNewBboltRepository_OpenError(t *testing.T) {
	dir := t.TempDir()
	_, err := repository.NewBboltRepository(dir)
	if err == nil {
		t.Errorf("Expected error when opening DB on directory path, got nil")
	}
}

func TestSaveInvalidRecord(t *testing.T) {
	repo := openRepo(t)

	err := repo.Save(nil)
	if err == nil || err.Error() != "cannot save nil record" {
		t.Errorf("Expected error 'cannot save nil record', got %v", err)
	}

	if err := repo.Save(&repository.Record{Path: "/tmp/x"}); !errors.Is(err, repository.ErrEmptyID) {
		t.Errorf("Expected ErrEmptyID, got %v", err)
	}
}

func TestSaveFindAllDelete(t *testing.T) {
	repo := openRepo(t)

	list, err := repo.FindAll()
	if err != nil {
		t.Fatalf("FindAll error: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("Expected empty list, got %d items", len(list))
	}

	rec := &repository.Record{
		ID:        uuid.New(),
		Path:      "/tmp/fetchr-s3-123",
		URL:       "s3://bucket/key",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := repo.Save(rec); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	got, err := repo.Find(rec.ID)
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	if got.Path != rec.Path || got.URL != rec.URL || !got.CreatedAt.Equal(rec.CreatedAt) {
		t.Errorf("Find returned %+v, want %+v", got, rec)
	}

	list, err = repo.FindAll()
	if err != nil {
		t.Fatalf("FindAll error: %v", err)
	}
	if len(list) != 1 || list[0].ID != rec.ID {
		t.Errorf("Expected one record with ID %s, got %v", rec.ID, list)
	}

	if err := repo.Delete(rec.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}

	if _, err := repo.Find(rec.ID); !errors.Is(err, repository.ErrRecordNotFound) {
		t.Errorf("Expected ErrRecordNotFound after delete, got %v", err)
	}

	if err := repo.Delete(rec.ID); !errors.Is(err, repository.ErrRecordNotFound) {
		t.Errorf("Expected ErrRecordNotFound on second delete, got %v", err)
	}
}

func TestEmptyIDRejected(t *testing.T) {
	repo := openRepo(t)

	if _, err := repo.Find(uuid.Nil); !errors.Is(err, repository.ErrEmptyID) {
		t.Errorf("Find: expected ErrEmptyID, got %v", err)
	}
	if err := repo.Delete(uuid.Nil); !errors.Is(err, repository.ErrEmptyID) {
		t.Errorf("Delete: expected ErrEmptyID, got %v", err)
	}
}

func TestRecordsSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tempfiles.db")

	repo, err := repository.NewBboltRepository(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	id := uuid.New()
	if err := repo.Save(&repository.Record{ID: id, Path: "/tmp/orphan"}); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	repo.Close()

	repo, err = repository.NewBboltRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()

	rec, err := repo.Find(id)
	if err != nil {
		t.Fatalf("Find after reopen: %v", err)
	}
	if rec.Path != "/tmp/orphan" {
		t.Errorf("Expected path /tmp/orphan, got %q", rec.Path)
	}
}
