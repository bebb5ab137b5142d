package archive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourthplaces/rootsignal/test/storagetest"
)

func TestStore_UpsertSourceIsIdempotentOnCanonicalValue(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	ctx := context.Background()
	store := NewStore(client.DB())

	id1, err := store.UpsertSource(ctx, "example.org/feed", PlatformFeed)
	require.NoError(t, err)
	id2, err := store.UpsertSource(ctx, "example.org/feed", PlatformFeed)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)
}

func TestStore_InsertContentDedupesByURLAndHash(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	ctx := context.Background()
	store := NewStore(client.DB())

	sourceID, err := store.UpsertSource(ctx, "example.org", PlatformGenericWeb)
	require.NoError(t, err)

	id1, err := store.InsertContent(ctx, ContentTypePage, sourceID, "example.org/a", "hash-1", "# hello")
	require.NoError(t, err)
	id2, err := store.InsertContent(ctx, ContentTypePage, sourceID, "example.org/a", "hash-1", "# hello")
	require.NoError(t, err)
	assert.Equal(t, id1, id2, "identical (url, content_hash) should not create a second row")

	rows, err := store.Latest(ctx, ContentTypePage, sourceID, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "# hello", rows[0].Content)
}

func TestStore_InsertErrorRecordsFailureForReplay(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	ctx := context.Background()
	store := NewStore(client.DB())

	sourceID, err := store.UpsertSource(ctx, "example.org/down", PlatformGenericWeb)
	require.NoError(t, err)

	_, err = store.InsertError(ctx, ContentTypePage, sourceID, "example.org/down", "timeout fetching page")
	require.NoError(t, err)

	rows, err := store.Latest(ctx, ContentTypePage, sourceID, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "timeout fetching page", rows[0].Error)
	assert.Empty(t, rows[0].Content)
}

func TestStore_FileDedupAcrossTwoOwners(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	ctx := context.Background()
	store := NewStore(client.DB())

	sourceID, err := store.UpsertSource(ctx, "example.org", PlatformGenericWeb)
	require.NoError(t, err)
	pageID, err := store.InsertContent(ctx, ContentTypePage, sourceID, "example.org/flyer", "hash-page", "see attached")
	require.NoError(t, err)
	postID, err := store.InsertContent(ctx, ContentTypePost, sourceID, "example.org/post/1", "hash-post", "see attached too")
	require.NoError(t, err)

	fileID1, err := store.GetOrCreateFile(ctx, "example.org/flyer.pdf", "file-hash", "application/pdf", 1024)
	require.NoError(t, err)
	fileID2, err := store.GetOrCreateFile(ctx, "example.org/flyer.pdf", "file-hash", "application/pdf", 1024)
	require.NoError(t, err)
	assert.Equal(t, fileID1, fileID2)

	require.NoError(t, store.AttachFile(ctx, ContentTypePage, pageID, fileID1))
	require.NoError(t, store.AttachFile(ctx, ContentTypePost, postID, fileID2))

	pageFiles, err := store.FilesFor(ctx, ContentTypePage, pageID)
	require.NoError(t, err)
	require.Len(t, pageFiles, 1)
	postFiles, err := store.FilesFor(ctx, ContentTypePost, postID)
	require.NoError(t, err)
	require.Len(t, postFiles, 1)
	assert.Equal(t, pageFiles[0].ID, postFiles[0].ID, "one file row shared by two owners via the attachments join")
}
