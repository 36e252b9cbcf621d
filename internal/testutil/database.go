// Package testutil provides shared fixtures for tests: in-memory manifests
// and synthetic waveform data.
package testutil

import (
	"context"
	"testing"

	"github.com/trifetch/trifetch/internal/model"
	"github.com/trifetch/trifetch/internal/storage"
)

// SetupTestDB creates a migrated in-memory manifest with automatic cleanup.
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

// SeedEvents inserts the given events into the manifest.
func SeedEvents(t *testing.T, store *storage.SQLiteStorage, events ...model.Event) {
	t.Helper()

	ctx := context.Background()
	for _, ev := range events {
		if err := store.SaveEvent(ctx, ev); err != nil {
			t.Fatalf("failed to seed event %q: %v", ev.ID, err)
		}
	}
}
