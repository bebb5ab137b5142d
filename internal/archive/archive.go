// Package archive is the opaque fetch layer (spec §4.1). Callers never
// touch HTTP, browser automation, social APIs, or feed parsing directly —
// they resolve a SourceHandle and call one of its capability methods.
// Three layers, one dependency direction: Store (relational, platform-
// agnostic) ← Archive (orchestration, routes and maps) ← Services (one
// per platform, universal types in and out).
package archive

import (
	"context"
	"time"

	"github.com/fourthplaces/rootsignal/internal/archive/urlnorm"
)

// Archive orchestrates SourceHandle requests: routes to the right Service,
// maps its output to universal types, persists via Store, and runs the
// TextAnalyzer over attached files when asked (spec §4.1.2).
type Archive struct {
	store    *Store
	services *Services
	analyzer TextAnalyzer
}

// New wires an Archive. analyzer may be nil — WithTextAnalysis then
// becomes a no-op instead of an error, since text analysis is an
// enrichment of the fetch, not a precondition for it.
func New(store *Store, services *Services, analyzer TextAnalyzer) *Archive {
	return &Archive{store: store, services: services, analyzer: analyzer}
}

// Source normalizes rawURL, detects its platform, upserts the
// archive_sources row, and returns a handle whose capabilities depend on
// the platform (spec §4.1.1).
func (a *Archive) Source(ctx context.Context, rawURL string) (*SourceHandle, error) {
	canonical := urlnorm.Canonicalize(rawURL)
	platform := DetectPlatform(rawURL)
	sourceID, err := a.store.UpsertSource(ctx, canonical, platform)
	if err != nil {
		return nil, err
	}
	return &SourceHandle{
		archive:   a,
		sourceID:  sourceID,
		rawURL:    rawURL,
		canonical: canonical,
		platform:  platform,
	}, nil
}

// cachedFresh decides whether a request's freshness modifiers are
// satisfied by what's already on disk, without touching the network.
func (a *Archive) cachedFresh(ctx context.Context, sourceID string, ct ContentType, opts requestOpts) (bool, error) {
	if !opts.cachedOnly && !opts.hasMaxAge {
		return false, nil
	}
	last, ok, err := a.store.LastFetchedAt(ctx, sourceID, ct)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if opts.cachedOnly {
		return true, nil
	}
	return time.Since(last) <= opts.maxAge, nil
}

func (a *Archive) fileFetcherFor(platform Platform) (FileFetcher, bool) {
	if f, ok := a.services.fileFetcher(platform); ok {
		return f, true
	}
	return a.services.fileFetcher(PlatformGenericWeb)
}

// attachFiles downloads and dedupes every attachment URL a fetched
// content record carried, attaching each to ownerID. A single broken
// attachment link, or a failed text analysis, doesn't fail the whole
// fetch — both are best-effort enrichments of content that already
// fetched successfully.
func (a *Archive) attachFiles(ctx context.Context, platform Platform, ownerType ContentType, ownerID string, urls []string, withTextAnalysis bool) ([]File, error) {
	if len(urls) == 0 {
		return nil, nil
	}
	fetcher, ok := a.fileFetcherFor(platform)
	if !ok {
		return nil, nil
	}

	var files []File
	for _, u := range urls {
		fetched, err := fetcher.FetchFile(ctx, u)
		if err != nil {
			continue
		}
		hash := fileContentHash(fetched.Data)
		fileID, err := a.store.GetOrCreateFile(ctx, u, hash, fetched.MimeType, int64(len(fetched.Data)))
		if err != nil {
			return nil, err
		}
		if err := a.store.AttachFile(ctx, ownerType, ownerID, fileID); err != nil {
			return nil, err
		}
		f := File{ID: fileID, URL: u, ContentHash: hash, MimeType: fetched.MimeType, ByteSize: int64(len(fetched.Data))}
		if withTextAnalysis && a.analyzer != nil {
			if text, err := a.analyzer.Analyze(ctx, fetched.MimeType, fetched.Data); err == nil {
				f.Text = text
			}
		}
		files = append(files, f)
	}
	return files, nil
}

func (a *Archive) fetchPosts(ctx context.Context, h *SourceHandle, req *PostsRequest) ([]Post, error) {
	fresh, err := a.cachedFresh(ctx, h.sourceID, ContentTypePost, req.opts)
	if err != nil {
		return nil, err
	}
	if fresh {
		rows, err := a.store.Latest(ctx, ContentTypePost, h.sourceID, req.limit)
		if err != nil {
			return nil, err
		}
		return postsFromRows(ctx, a, h, rows)
	}
	if req.opts.cachedOnly {
		return nil, ErrNotFound
	}

	fetcher, ok := a.services.postFetcher(h.platform)
	if !ok {
		return nil, ErrUnsupported
	}
	fetched, err := fetcher.FetchPosts(ctx, h.rawURL, req.limit)
	if err != nil {
		_, _ = a.store.InsertError(ctx, ContentTypePost, h.sourceID, h.rawURL, err.Error())
		_ = a.store.TouchContentType(ctx, h.sourceID, ContentTypePost)
		return nil, err
	}

	out := make([]Post, 0, len(fetched))
	for _, fp := range fetched {
		hash := contentHash(fp.Body)
		id, err := a.store.InsertContent(ctx, ContentTypePost, h.sourceID, fp.URL, hash, fp.Body)
		if err != nil {
			return nil, err
		}
		files, err := a.attachFiles(ctx, h.platform, ContentTypePost, id, fp.AttachedFileURLs, req.opts.withTextAnalysis)
		if err != nil {
			return nil, err
		}
		out = append(out, Post{ID: id, URL: fp.URL, ContentHash: hash, Body: fp.Body, FetchedAt: time.Now(), Files: files})
	}
	if err := a.store.TouchContentType(ctx, h.sourceID, ContentTypePost); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Archive) fetchStories(ctx context.Context, h *SourceHandle, req *StoriesRequest) ([]Story, error) {
	fresh, err := a.cachedFresh(ctx, h.sourceID, ContentTypeStory, req.opts)
	if err != nil {
		return nil, err
	}
	if fresh {
		rows, err := a.store.Latest(ctx, ContentTypeStory, h.sourceID, 0)
		if err != nil {
			return nil, err
		}
		out := make([]Story, len(rows))
		for i, row := range rows {
			files, err := a.store.FilesFor(ctx, ContentTypeStory, row.ID)
			if err != nil {
				return nil, err
			}
			out[i] = Story{ID: row.ID, URL: row.URL, ContentHash: row.ContentHash, Body: row.Content, FetchedAt: row.FetchedAt, Files: files}
		}
		return out, nil
	}
	if req.opts.cachedOnly {
		return nil, ErrNotFound
	}

	fetcher, ok := a.services.socialFetcher(h.platform)
	if !ok {
		return nil, ErrUnsupported
	}
	fetched, err := fetcher.FetchStories(ctx, h.rawURL)
	if err != nil {
		_, _ = a.store.InsertError(ctx, ContentTypeStory, h.sourceID, h.rawURL, err.Error())
		_ = a.store.TouchContentType(ctx, h.sourceID, ContentTypeStory)
		return nil, err
	}

	out := make([]Story, 0, len(fetched))
	for _, fs := range fetched {
		hash := contentHash(fs.Body)
		id, err := a.store.InsertContent(ctx, ContentTypeStory, h.sourceID, fs.URL, hash, fs.Body)
		if err != nil {
			return nil, err
		}
		files, err := a.attachFiles(ctx, h.platform, ContentTypeStory, id, fs.AttachedFileURLs, req.opts.withTextAnalysis)
		if err != nil {
			return nil, err
		}
		out = append(out, Story{ID: id, URL: fs.URL, ContentHash: hash, Body: fs.Body, FetchedAt: time.Now(), Files: files})
	}
	if err := a.store.TouchContentType(ctx, h.sourceID, ContentTypeStory); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Archive) fetchShortVideos(ctx context.Context, h *SourceHandle, req *ShortVideosRequest) ([]ShortVideo, error) {
	fresh, err := a.cachedFresh(ctx, h.sourceID, ContentTypeShortVideo, req.opts)
	if err != nil {
		return nil, err
	}
	if fresh {
		rows, err := a.store.Latest(ctx, ContentTypeShortVideo, h.sourceID, req.limit)
		if err != nil {
			return nil, err
		}
		out := make([]ShortVideo, len(rows))
		for i, row := range rows {
			out[i] = ShortVideo{ID: row.ID, URL: row.URL, ContentHash: row.ContentHash, Transcript: row.Content, FetchedAt: row.FetchedAt}
		}
		return out, nil
	}
	if req.opts.cachedOnly {
		return nil, ErrNotFound
	}

	fetcher, ok := a.services.socialFetcher(h.platform)
	if !ok {
		return nil, ErrUnsupported
	}
	fetched, err := fetcher.FetchShortVideos(ctx, h.rawURL, req.limit)
	if err != nil {
		_, _ = a.store.InsertError(ctx, ContentTypeShortVideo, h.sourceID, h.rawURL, err.Error())
		_ = a.store.TouchContentType(ctx, h.sourceID, ContentTypeShortVideo)
		return nil, err
	}

	out := make([]ShortVideo, 0, len(fetched))
	for _, fv := range fetched {
		hash := contentHash(fv.Transcript)
		id, err := a.store.InsertContent(ctx, ContentTypeShortVideo, h.sourceID, fv.URL, hash, fv.Transcript)
		if err != nil {
			return nil, err
		}
		out = append(out, ShortVideo{ID: id, URL: fv.URL, ContentHash: hash, Transcript: fv.Transcript, FetchedAt: time.Now()})
	}
	if err := a.store.TouchContentType(ctx, h.sourceID, ContentTypeShortVideo); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Archive) fetchVideos(ctx context.Context, h *SourceHandle, req *VideosRequest) ([]LongVideo, error) {
	fresh, err := a.cachedFresh(ctx, h.sourceID, ContentTypeLongVideo, req.opts)
	if err != nil {
		return nil, err
	}
	if fresh {
		rows, err := a.store.Latest(ctx, ContentTypeLongVideo, h.sourceID, req.limit)
		if err != nil {
			return nil, err
		}
		out := make([]LongVideo, len(rows))
		for i, row := range rows {
			out[i] = LongVideo{ID: row.ID, URL: row.URL, ContentHash: row.ContentHash, Transcript: row.Content, FetchedAt: row.FetchedAt}
		}
		return out, nil
	}
	if req.opts.cachedOnly {
		return nil, ErrNotFound
	}

	fetcher, ok := a.services.socialFetcher(h.platform)
	if !ok {
		return nil, ErrUnsupported
	}
	fetched, err := fetcher.FetchVideos(ctx, h.rawURL, req.limit)
	if err != nil {
		_, _ = a.store.InsertError(ctx, ContentTypeLongVideo, h.sourceID, h.rawURL, err.Error())
		_ = a.store.TouchContentType(ctx, h.sourceID, ContentTypeLongVideo)
		return nil, err
	}

	out := make([]LongVideo, 0, len(fetched))
	for _, fv := range fetched {
		hash := contentHash(fv.Transcript)
		id, err := a.store.InsertContent(ctx, ContentTypeLongVideo, h.sourceID, fv.URL, hash, fv.Transcript)
		if err != nil {
			return nil, err
		}
		out = append(out, LongVideo{ID: id, URL: fv.URL, ContentHash: hash, Transcript: fv.Transcript, FetchedAt: time.Now()})
	}
	if err := a.store.TouchContentType(ctx, h.sourceID, ContentTypeLongVideo); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Archive) fetchPage(ctx context.Context, h *SourceHandle, req *PageRequest) (Page, error) {
	fresh, err := a.cachedFresh(ctx, h.sourceID, ContentTypePage, req.opts)
	if err != nil {
		return Page{}, err
	}
	if fresh {
		rows, err := a.store.Latest(ctx, ContentTypePage, h.sourceID, 1)
		if err != nil {
			return Page{}, err
		}
		if len(rows) == 0 {
			return Page{}, ErrNotFound
		}
		files, err := a.store.FilesFor(ctx, ContentTypePage, rows[0].ID)
		if err != nil {
			return Page{}, err
		}
		return Page{ID: rows[0].ID, URL: rows[0].URL, ContentHash: rows[0].ContentHash, Markdown: rows[0].Content, FetchedAt: rows[0].FetchedAt, Files: files}, nil
	}
	if req.opts.cachedOnly {
		return Page{}, ErrNotFound
	}

	fetcher, ok := a.services.pageFetcher(h.platform)
	if !ok {
		return Page{}, ErrUnsupported
	}
	fetched, err := fetcher.FetchPage(ctx, h.rawURL)
	if err != nil {
		_, _ = a.store.InsertError(ctx, ContentTypePage, h.sourceID, h.rawURL, err.Error())
		_ = a.store.TouchContentType(ctx, h.sourceID, ContentTypePage)
		return Page{}, err
	}

	hash := contentHash(fetched.Markdown)
	id, err := a.store.InsertContent(ctx, ContentTypePage, h.sourceID, fetched.URL, hash, fetched.Markdown)
	if err != nil {
		return Page{}, err
	}
	files, err := a.attachFiles(ctx, h.platform, ContentTypePage, id, fetched.AttachedFileURLs, req.opts.withTextAnalysis)
	if err != nil {
		return Page{}, err
	}
	if err := a.store.TouchContentType(ctx, h.sourceID, ContentTypePage); err != nil {
		return Page{}, err
	}
	return Page{ID: id, URL: fetched.URL, ContentHash: hash, Markdown: fetched.Markdown, FetchedAt: time.Now(), Files: files}, nil
}

func (a *Archive) fetchFeed(ctx context.Context, h *SourceHandle, req *FeedRequest) (Feed, error) {
	fresh, err := a.cachedFresh(ctx, h.sourceID, ContentTypeFeed, req.opts)
	if err != nil {
		return Feed{}, err
	}
	if fresh {
		rows, err := a.store.Latest(ctx, ContentTypeFeed, h.sourceID, 1)
		if err != nil {
			return Feed{}, err
		}
		if len(rows) == 0 {
			return Feed{}, ErrNotFound
		}
		return Feed{ID: rows[0].ID, URL: rows[0].URL, ContentHash: rows[0].ContentHash, RawXML: rows[0].Content, FetchedAt: rows[0].FetchedAt}, nil
	}
	if req.opts.cachedOnly {
		return Feed{}, ErrNotFound
	}

	fetcher, ok := a.services.feedFetcher(h.platform)
	if !ok {
		return Feed{}, ErrUnsupported
	}
	fetched, err := fetcher.FetchFeed(ctx, h.rawURL)
	if err != nil {
		_, _ = a.store.InsertError(ctx, ContentTypeFeed, h.sourceID, h.rawURL, err.Error())
		_ = a.store.TouchContentType(ctx, h.sourceID, ContentTypeFeed)
		return Feed{}, err
	}

	hash := contentHash(fetched.RawXML)
	id, err := a.store.InsertContent(ctx, ContentTypeFeed, h.sourceID, fetched.URL, hash, fetched.RawXML)
	if err != nil {
		return Feed{}, err
	}
	if err := a.store.TouchContentType(ctx, h.sourceID, ContentTypeFeed); err != nil {
		return Feed{}, err
	}
	return Feed{ID: id, URL: fetched.URL, ContentHash: hash, RawXML: fetched.RawXML, FetchedAt: time.Now()}, nil
}

func (a *Archive) fetchSearch(ctx context.Context, h *SourceHandle, req *SearchRequest) (SearchResult, error) {
	fresh, err := a.cachedFresh(ctx, h.sourceID, ContentTypeSearchResult, req.opts)
	if err != nil {
		return SearchResult{}, err
	}
	if fresh {
		rows, err := a.store.Latest(ctx, ContentTypeSearchResult, h.sourceID, 1)
		if err != nil {
			return SearchResult{}, err
		}
		if len(rows) == 0 {
			return SearchResult{}, ErrNotFound
		}
		urls, err := unmarshalResultURLs(rows[0].Content)
		if err != nil {
			return SearchResult{}, err
		}
		return SearchResult{ID: rows[0].ID, URL: rows[0].URL, ContentHash: rows[0].ContentHash, ResultURLs: urls, FetchedAt: rows[0].FetchedAt}, nil
	}
	if req.opts.cachedOnly {
		return SearchResult{}, ErrNotFound
	}

	fetcher, ok := a.services.searchFetcher(h.platform)
	if !ok {
		return SearchResult{}, ErrUnsupported
	}
	fetched, err := fetcher.FetchSearch(ctx, req.query)
	if err != nil {
		_, _ = a.store.InsertError(ctx, ContentTypeSearchResult, h.sourceID, req.query, err.Error())
		_ = a.store.TouchContentType(ctx, h.sourceID, ContentTypeSearchResult)
		return SearchResult{}, err
	}

	hash := contentHash(joinURLs(fetched.ResultURLs))
	id, err := a.store.InsertSearchResult(ctx, h.sourceID, fetched.URL, hash, fetched.ResultURLs)
	if err != nil {
		return SearchResult{}, err
	}
	if err := a.store.TouchContentType(ctx, h.sourceID, ContentTypeSearchResult); err != nil {
		return SearchResult{}, err
	}
	return SearchResult{ID: id, URL: fetched.URL, ContentHash: hash, ResultURLs: fetched.ResultURLs, FetchedAt: time.Now()}, nil
}

func (a *Archive) fetchFile(ctx context.Context, h *SourceHandle, req *FileRequest) (File, error) {
	if req.opts.cachedOnly {
		return File{}, ErrNotFound
	}
	fetcher, ok := a.fileFetcherFor(h.platform)
	if !ok {
		return File{}, ErrUnsupported
	}
	fetched, err := fetcher.FetchFile(ctx, h.rawURL)
	if err != nil {
		return File{}, err
	}
	hash := fileContentHash(fetched.Data)
	fileID, err := a.store.GetOrCreateFile(ctx, h.rawURL, hash, fetched.MimeType, int64(len(fetched.Data)))
	if err != nil {
		return File{}, err
	}
	f := File{ID: fileID, URL: h.rawURL, ContentHash: hash, MimeType: fetched.MimeType, ByteSize: int64(len(fetched.Data))}
	if req.opts.withTextAnalysis && a.analyzer != nil {
		if text, err := a.analyzer.Analyze(ctx, fetched.MimeType, fetched.Data); err == nil {
			f.Text = text
		}
	}
	return f, nil
}

func postsFromRows(ctx context.Context, a *Archive, h *SourceHandle, rows []ContentRow) ([]Post, error) {
	out := make([]Post, len(rows))
	for i, row := range rows {
		files, err := a.store.FilesFor(ctx, ContentTypePost, row.ID)
		if err != nil {
			return nil, err
		}
		out[i] = Post{ID: row.ID, URL: row.URL, ContentHash: row.ContentHash, Body: row.Content, FetchedAt: row.FetchedAt, Files: files}
	}
	return out, nil
}
