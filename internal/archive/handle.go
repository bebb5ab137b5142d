package archive

import (
	"context"
	"time"
)

// SourceHandle is what archive.Source returns: a normalized source plus
// the platform-dependent capability methods (spec §4.1.1). Capabilities
// the platform doesn't support still exist as methods — they just fail
// with ErrUnsupported at Fetch time, since platform capability is a
// Services-registry fact, not something the handle itself knows in
// advance.
type SourceHandle struct {
	archive   *Archive
	sourceID  string
	rawURL    string
	canonical string
	platform  Platform
}

// SourceID is the archive_sources row id backing this handle.
func (h *SourceHandle) SourceID() string { return h.sourceID }

// CanonicalValue is the normalized URL this handle resolved to.
func (h *SourceHandle) CanonicalValue() string { return h.canonical }

// Platform is the detected platform this handle routes capability calls to.
func (h *SourceHandle) Platform() Platform { return h.platform }

// requestOpts holds the three modifiers every capability's request
// builder supports (spec §4.1.1): WithTextAnalysis, MaxAge, CachedOnly.
type requestOpts struct {
	withTextAnalysis bool
	hasMaxAge        bool
	maxAge           time.Duration
	cachedOnly       bool
}

func (h *SourceHandle) Posts(limit int) *PostsRequest {
	return &PostsRequest{h: h, limit: limit}
}

func (h *SourceHandle) Stories() *StoriesRequest {
	return &StoriesRequest{h: h}
}

func (h *SourceHandle) ShortVideos(limit int) *ShortVideosRequest {
	return &ShortVideosRequest{h: h, limit: limit}
}

func (h *SourceHandle) Videos(limit int) *VideosRequest {
	return &VideosRequest{h: h, limit: limit}
}

func (h *SourceHandle) Page() *PageRequest {
	return &PageRequest{h: h}
}

func (h *SourceHandle) Feed() *FeedRequest {
	return &FeedRequest{h: h}
}

func (h *SourceHandle) File() *FileRequest {
	return &FileRequest{h: h}
}

func (h *SourceHandle) Search(query string) *SearchRequest {
	return &SearchRequest{h: h, query: query}
}

type PostsRequest struct {
	h     *SourceHandle
	limit int
	opts  requestOpts
}

func (r *PostsRequest) WithTextAnalysis() *PostsRequest { r.opts.withTextAnalysis = true; return r }
func (r *PostsRequest) MaxAge(d time.Duration) *PostsRequest {
	r.opts.hasMaxAge, r.opts.maxAge = true, d
	return r
}
func (r *PostsRequest) CachedOnly() *PostsRequest { r.opts.cachedOnly = true; return r }
func (r *PostsRequest) Fetch(ctx context.Context) ([]Post, error) {
	return r.h.archive.fetchPosts(ctx, r.h, r)
}

type StoriesRequest struct {
	h    *SourceHandle
	opts requestOpts
}

func (r *StoriesRequest) WithTextAnalysis() *StoriesRequest { r.opts.withTextAnalysis = true; return r }
func (r *StoriesRequest) MaxAge(d time.Duration) *StoriesRequest {
	r.opts.hasMaxAge, r.opts.maxAge = true, d
	return r
}
func (r *StoriesRequest) CachedOnly() *StoriesRequest { r.opts.cachedOnly = true; return r }
func (r *StoriesRequest) Fetch(ctx context.Context) ([]Story, error) {
	return r.h.archive.fetchStories(ctx, r.h, r)
}

type ShortVideosRequest struct {
	h     *SourceHandle
	limit int
	opts  requestOpts
}

func (r *ShortVideosRequest) MaxAge(d time.Duration) *ShortVideosRequest {
	r.opts.hasMaxAge, r.opts.maxAge = true, d
	return r
}
func (r *ShortVideosRequest) CachedOnly() *ShortVideosRequest { r.opts.cachedOnly = true; return r }
func (r *ShortVideosRequest) Fetch(ctx context.Context) ([]ShortVideo, error) {
	return r.h.archive.fetchShortVideos(ctx, r.h, r)
}

type VideosRequest struct {
	h     *SourceHandle
	limit int
	opts  requestOpts
}

func (r *VideosRequest) MaxAge(d time.Duration) *VideosRequest {
	r.opts.hasMaxAge, r.opts.maxAge = true, d
	return r
}
func (r *VideosRequest) CachedOnly() *VideosRequest { r.opts.cachedOnly = true; return r }
func (r *VideosRequest) Fetch(ctx context.Context) ([]LongVideo, error) {
	return r.h.archive.fetchVideos(ctx, r.h, r)
}

type PageRequest struct {
	h    *SourceHandle
	opts requestOpts
}

func (r *PageRequest) WithTextAnalysis() *PageRequest { r.opts.withTextAnalysis = true; return r }
func (r *PageRequest) MaxAge(d time.Duration) *PageRequest {
	r.opts.hasMaxAge, r.opts.maxAge = true, d
	return r
}
func (r *PageRequest) CachedOnly() *PageRequest { r.opts.cachedOnly = true; return r }
func (r *PageRequest) Fetch(ctx context.Context) (Page, error) {
	return r.h.archive.fetchPage(ctx, r.h, r)
}

type FeedRequest struct {
	h    *SourceHandle
	opts requestOpts
}

func (r *FeedRequest) MaxAge(d time.Duration) *FeedRequest {
	r.opts.hasMaxAge, r.opts.maxAge = true, d
	return r
}
func (r *FeedRequest) CachedOnly() *FeedRequest { r.opts.cachedOnly = true; return r }
func (r *FeedRequest) Fetch(ctx context.Context) (Feed, error) {
	return r.h.archive.fetchFeed(ctx, r.h, r)
}

type SearchRequest struct {
	h     *SourceHandle
	query string
	opts  requestOpts
}

func (r *SearchRequest) MaxAge(d time.Duration) *SearchRequest {
	r.opts.hasMaxAge, r.opts.maxAge = true, d
	return r
}
func (r *SearchRequest) CachedOnly() *SearchRequest { r.opts.cachedOnly = true; return r }
func (r *SearchRequest) Fetch(ctx context.Context) (SearchResult, error) {
	return r.h.archive.fetchSearch(ctx, r.h, r)
}

type FileRequest struct {
	h    *SourceHandle
	opts requestOpts
}

func (r *FileRequest) WithTextAnalysis() *FileRequest { r.opts.withTextAnalysis = true; return r }
func (r *FileRequest) CachedOnly() *FileRequest       { r.opts.cachedOnly = true; return r }
func (r *FileRequest) Fetch(ctx context.Context) (File, error) {
	return r.h.archive.fetchFile(ctx, r.h, r)
}
