package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guestsnap/internal/media"
	"guestsnap/internal/server/models"
	"guestsnap/internal/server/storage"
)

func deletionFixture(t *testing.T, m *fakeRepoManager) (*DeletionService, *EventService, string) {
	t.Helper()
	root := t.TempDir()
	events := NewEventService(nil, m, testConfig())
	factory := &storage.Factory{
		FilesystemRoot: root,
		Repo:           m.media,
		Log:            discardLogger(),
	}
	return NewDeletionService(nil, m, events, factory, discardLogger()), events, root
}

func TestDeletionService_RemovesRowsAndBytes(t *testing.T) {
	m := newFakeRepoManager()
	m.events.event = &models.Event{ID: "e1", BucketType: models.BucketFilesystem}
	m.media.deleteRows = []*models.Media{
		{ID: "m1", Filename: "m1.png", MagicDeleteID: "tok1"},
	}
	s, _, root := deletionFixture(t, m)

	// plant the stored bytes the row points at
	dir := filepath.Join(root, media.UploadedMediaFolder("e1"))
	require.NoError(t, os.MkdirAll(dir, 0o770))
	path := filepath.Join(dir, "m1.png")
	require.NoError(t, os.WriteFile(path, []byte("bytes"), 0o660))

	result, err := s.DeleteByMagicTokens(context.Background(), "e1", []string{"tok1"})
	require.NoError(t, err)

	assert.Equal(t, 1, result.DeletedCount)
	assert.Equal(t, []string{"tok1"}, result.DeletedIDs)
	assert.Empty(t, result.StorageErrors)
	assert.Equal(t, []string{"tok1"}, m.media.deletedIDs)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "stored bytes should be gone")
}

func TestDeletionService_UnknownTokensMatchNothing(t *testing.T) {
	m := newFakeRepoManager()
	m.events.event = &models.Event{ID: "e1", BucketType: models.BucketFilesystem}
	s, _, _ := deletionFixture(t, m)

	result, err := s.DeleteByMagicTokens(context.Background(), "e1", []string{"never-issued"})
	require.NoError(t, err)
	assert.Zero(t, result.DeletedCount)
	assert.Empty(t, result.StorageErrors)
}

func TestDeletionService_InvalidatesCountCache(t *testing.T) {
	m := newFakeRepoManager()
	m.events.event = &models.Event{ID: "e1", BucketType: models.BucketFilesystem}
	m.media.deleteRows = []*models.Media{{ID: "m1", Filename: "m1.png"}}
	s, events, _ := deletionFixture(t, m)

	_, err := events.PictureCount(context.Background(), "e1")
	require.NoError(t, err)
	require.Equal(t, 1, m.media.countCalls)

	_, err = s.DeleteByMagicTokens(context.Background(), "e1", []string{"tok1"})
	require.NoError(t, err)

	_, err = events.PictureCount(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, 2, m.media.countCalls, "deletion should drop the cached count")
}
