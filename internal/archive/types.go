package archive

import "time"

// ContentType names one of the per-content-type tables the Store owns
// (spec §6.4). It doubles as the content-type prefix in an archive_ref
// ("page:<uuid>"), resolved by internal/graph/enrichment's provenance
// lookup.
type ContentType string

const (
	ContentTypePost         ContentType = "post"
	ContentTypeStory        ContentType = "story"
	ContentTypeShortVideo   ContentType = "short_video"
	ContentTypeLongVideo    ContentType = "long_video"
	ContentTypePage         ContentType = "page"
	ContentTypeFeed         ContentType = "feed"
	ContentTypeSearchResult ContentType = "search_result"
	ContentTypeFile         ContentType = "file"
)

// File is a deduplicated binary artifact (spec §4.1.1: "Files are
// deduplicated by (url, content_hash)"). Text is populated only when a
// request asked for WithTextAnalysis and a TextAnalyzer was wired.
type File struct {
	ID          string
	URL         string
	ContentHash string
	MimeType    string
	ByteSize    int64
	Text        string
}

// Post, Story, ShortVideo, LongVideo, Page, Feed, and SearchResult are the
// universal content types a Service returns to the orchestration layer and
// the Archive returns to callers — platform-agnostic on both sides of the
// Store (spec §4.1.2).
type Post struct {
	ID          string
	URL         string
	ContentHash string
	Body        string
	FetchedAt   time.Time
	Files       []File
}

type Story struct {
	ID          string
	URL         string
	ContentHash string
	Body        string
	FetchedAt   time.Time
	Files       []File
}

type ShortVideo struct {
	ID          string
	URL         string
	ContentHash string
	Transcript  string
	FetchedAt   time.Time
	Files       []File
}

type LongVideo struct {
	ID          string
	URL         string
	ContentHash string
	Transcript  string
	FetchedAt   time.Time
	Files       []File
}

type Page struct {
	ID          string
	URL         string
	ContentHash string
	Markdown    string
	FetchedAt   time.Time
	Files       []File
}

type Feed struct {
	ID          string
	URL         string
	ContentHash string
	RawXML      string
	FetchedAt   time.Time
}

type SearchResult struct {
	ID          string
	URL         string
	ContentHash string
	ResultURLs  []string
	FetchedAt   time.Time
}

// FetchedPost, FetchedPage, etc. are what a per-platform Service returns —
// the same universal shape minus the Store-assigned ID/ContentHash/FetchedAt,
// plus any attachment URLs the Archive should resolve into Files.
type FetchedPost struct {
	URL              string
	Body             string
	AttachedFileURLs []string
}

type FetchedStory struct {
	URL              string
	Body             string
	AttachedFileURLs []string
}

type FetchedShortVideo struct {
	URL        string
	Transcript string
}

type FetchedLongVideo struct {
	URL        string
	Transcript string
}

type FetchedPage struct {
	URL              string
	Markdown         string
	AttachedFileURLs []string
}

type FetchedFeed struct {
	URL    string
	RawXML string
}

type FetchedSearchResult struct {
	URL        string
	ResultURLs []string
}

type FetchedFile struct {
	URL      string
	MimeType string
	Data     []byte
}
