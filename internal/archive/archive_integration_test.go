package archive

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourthplaces/rootsignal/test/storagetest"
)

// fakePageService is a generic-web Service stub: it counts fetches so
// tests can assert the cache actually prevented a refetch.
type fakePageService struct {
	fetches  int
	markdown string
	err      error
}

func (f *fakePageService) FetchPage(ctx context.Context, sourceURL string) (FetchedPage, error) {
	f.fetches++
	if f.err != nil {
		return FetchedPage{}, f.err
	}
	return FetchedPage{URL: sourceURL, Markdown: f.markdown}, nil
}

func TestArchive_PageFetch_PersistsAndRoutesByPlatform(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	ctx := context.Background()
	store := NewStore(client.DB())
	services := NewServices()
	svc := &fakePageService{markdown: "# Mutual Aid Drive"}
	services.Register(PlatformGenericWeb, svc)

	a := New(store, services, nil)
	h, err := a.Source(ctx, "https://example.org/drive")
	require.NoError(t, err)
	assert.Equal(t, PlatformGenericWeb, h.Platform())

	page, err := h.Page().Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "# Mutual Aid Drive", page.Markdown)
	assert.Equal(t, 1, svc.fetches)
}

func TestArchive_PageFetch_MaxAgeServesCacheWithoutRefetch(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	ctx := context.Background()
	store := NewStore(client.DB())
	services := NewServices()
	svc := &fakePageService{markdown: "# First version"}
	services.Register(PlatformGenericWeb, svc)

	a := New(store, services, nil)
	h, err := a.Source(ctx, "https://example.org/drive")
	require.NoError(t, err)

	_, err = h.Page().Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, svc.fetches)

	svc.markdown = "# Second version"
	page, err := h.Page().MaxAge(time.Hour).Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "# First version", page.Markdown, "fresh-enough cache should be served instead of refetching")
	assert.Equal(t, 1, svc.fetches, "MaxAge should not have triggered a second fetch")
}

func TestArchive_PageFetch_CachedOnlyWithoutPriorFetchReturnsNotFound(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	ctx := context.Background()
	store := NewStore(client.DB())
	a := New(store, NewServices(), nil)

	h, err := a.Source(ctx, "https://example.org/never-fetched")
	require.NoError(t, err)

	_, err = h.Page().CachedOnly().Fetch(ctx)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestArchive_PageFetch_UnsupportedPlatformCapability(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	ctx := context.Background()
	store := NewStore(client.DB())
	a := New(store, NewServices(), nil) // no Service registered for any platform

	h, err := a.Source(ctx, "https://example.org/drive")
	require.NoError(t, err)

	_, err = h.Page().Fetch(ctx)
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestArchive_PageFetch_NetworkFailurePersistsErrorRowAndSurfacesErr(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	ctx := context.Background()
	store := NewStore(client.DB())
	services := NewServices()
	wantErr := errors.New("upstream returned 503")
	services.Register(PlatformGenericWeb, &fakePageService{err: wantErr})

	a := New(store, services, nil)
	h, err := a.Source(ctx, "https://example.org/flaky")
	require.NoError(t, err)

	_, err = h.Page().Fetch(ctx)
	assert.ErrorIs(t, err, wantErr)

	rows, err := store.Latest(ctx, ContentTypePage, h.SourceID(), 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "upstream returned 503", rows[0].Error)
}

// fakePageWithAttachmentService implements both PageFetcher and
// FileFetcher, so one registered value lets the orchestration layer fetch
// a page, discover its attachment, and download that attachment too.
type fakePageWithAttachmentService struct {
	pageFetches int
	fileFetches int
}

func (f *fakePageWithAttachmentService) FetchPage(ctx context.Context, sourceURL string) (FetchedPage, error) {
	f.pageFetches++
	return FetchedPage{
		URL:              sourceURL,
		Markdown:         "see flyer",
		AttachedFileURLs: []string{"https://example.org/flyer.pdf"},
	}, nil
}

func (f *fakePageWithAttachmentService) FetchFile(ctx context.Context, url string) (FetchedFile, error) {
	f.fileFetches++
	return FetchedFile{URL: url, MimeType: "application/pdf", Data: []byte("%PDF-1.4 fake")}, nil
}

// fakeAnalyzer echoes back a fixed transcript so the attach + analyze
// path can be asserted without a real OCR/transcription provider.
type fakeAnalyzer struct{ calls int }

func (f *fakeAnalyzer) Analyze(ctx context.Context, mimeType string, data []byte) (string, error) {
	f.calls++
	return "extracted flyer text", nil
}

func TestArchive_PageFetch_AttachesAndAnalyzesFilesWhenRequested(t *testing.T) {
	client, _ := storagetest.NewTestClient(t)
	ctx := context.Background()
	store := NewStore(client.DB())
	services := NewServices()
	svc := &fakePageWithAttachmentService{}
	services.Register(PlatformGenericWeb, svc)
	analyzer := &fakeAnalyzer{}

	a := New(store, services, analyzer)
	h, err := a.Source(ctx, "https://example.org/with-flyer")
	require.NoError(t, err)

	page, err := h.Page().WithTextAnalysis().Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, page.Files, 1)
	assert.Equal(t, "https://example.org/flyer.pdf", page.Files[0].URL)
	assert.Equal(t, "extracted flyer text", page.Files[0].Text)
	assert.Equal(t, 1, svc.fileFetches)
	assert.Equal(t, 1, analyzer.calls)
}
