package archive

import (
	"context"
	stdsql "database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Store is the relational layer: it knows table names, not platforms
// (spec §4.1.2). It never imports a Service or decides routing — the
// Archive orchestration layer calls it once content has already been
// fetched and mapped to a universal type.
type Store struct {
	db *stdsql.DB
}

// NewStore wires a Store against the shared storage client's connection
// pool — the same *sql.DB internal/graph/enrichment uses for its raw-SQL
// passes, since archive tables (spec §6.4) sit outside ent's schema.
func NewStore(db *stdsql.DB) *Store {
	return &Store{db: db}
}

// contentTypeSpec names the table and the type-specific content column for
// one ContentType. files has no source_id column (a file is shared across
// sources via the attachments join) so it isn't in this table; it gets its
// own methods below.
type contentTypeSpec struct {
	table  string
	column string
}

var contentTypeSpecs = map[ContentType]contentTypeSpec{
	ContentTypePost:         {"posts", "body"},
	ContentTypeStory:        {"stories", "body"},
	ContentTypeShortVideo:   {"short_videos", "transcript"},
	ContentTypeLongVideo:    {"long_videos", "transcript"},
	ContentTypePage:         {"pages", "markdown"},
	ContentTypeFeed:         {"feeds", "raw_xml"},
	ContentTypeSearchResult: {"search_results", "result_urls"},
}

// ContentRow is a generic persisted record, returned by the Store without
// any platform-specific shape — the Archive orchestration layer maps it
// into Post/Page/Feed/etc.
type ContentRow struct {
	ID          string
	URL         string
	ContentHash string
	Content     string
	Error       string
	FetchedAt   time.Time
}

// UpsertSource ensures an archive_sources row exists for the canonicalized
// URL, returning its id. Re-resolving the same canonical_value always
// returns the same source id (spec §4.1.1: "upserts a Source row").
func (s *Store) UpsertSource(ctx context.Context, canonicalValue string, platform Platform) (string, error) {
	id := uuid.New().String()
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO archive_sources (id, canonical_value, platform)
		VALUES ($1, $2, $3)
		ON CONFLICT (canonical_value) DO UPDATE SET platform = EXCLUDED.platform
		RETURNING id`,
		id, canonicalValue, string(platform)).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("upsert archive source %s: %w", canonicalValue, err)
	}
	return id, nil
}

// LastFetchedAt reports when a source was last fetched for a content
// type, used by Request.MaxAge to decide whether a cached read is fresh
// enough to skip the network.
func (s *Store) LastFetchedAt(ctx context.Context, sourceID string, ct ContentType) (time.Time, bool, error) {
	var t stdsql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT last_fetched_at FROM source_content_types WHERE source_id = $1 AND content_type = $2`,
		sourceID, string(ct)).Scan(&t)
	if errors.Is(err, stdsql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("look up last_fetched_at for %s/%s: %w", sourceID, ct, err)
	}
	if !t.Valid {
		return time.Time{}, false, nil
	}
	return t.Time, true, nil
}

// TouchContentType records that a content type was just fetched for a
// source, independent of whether the fetch succeeded — a failed fetch
// still consumed the attempt and should push back the next retry.
func (s *Store) TouchContentType(ctx context.Context, sourceID string, ct ContentType) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO source_content_types (source_id, content_type, last_fetched_at)
		VALUES ($1, $2, now())
		ON CONFLICT (source_id, content_type) DO UPDATE SET last_fetched_at = now()`,
		sourceID, string(ct))
	if err != nil {
		return fmt.Errorf("touch content type %s/%s: %w", sourceID, ct, err)
	}
	return nil
}

// InsertContent persists one successfully-fetched content record,
// deduplicated by (url, content_hash) — a re-fetch of byte-identical
// content just refreshes fetched_at rather than creating a duplicate row.
func (s *Store) InsertContent(ctx context.Context, ct ContentType, sourceID, url, contentHash, content string) (string, error) {
	spec, ok := contentTypeSpecs[ct]
	if !ok {
		return "", fmt.Errorf("archive: no content table for content type %q", ct)
	}
	id := uuid.New().String()
	query := fmt.Sprintf(`
		INSERT INTO %s (id, source_id, url, content_hash, %s, fetched_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (url, content_hash) DO UPDATE SET fetched_at = now()
		RETURNING id`, spec.table, spec.column)
	if err := s.db.QueryRowContext(ctx, query, id, sourceID, url, contentHash, content).Scan(&id); err != nil {
		return "", fmt.Errorf("insert %s row for %s: %w", spec.table, url, err)
	}
	return id, nil
}

// InsertSearchResult is InsertContent's counterpart for search_results,
// whose content column is JSONB rather than text (spec §6.4).
func (s *Store) InsertSearchResult(ctx context.Context, sourceID, url, contentHash string, resultURLs []string) (string, error) {
	payload, err := json.Marshal(resultURLs)
	if err != nil {
		return "", fmt.Errorf("marshal result_urls for %s: %w", url, err)
	}
	id := uuid.New().String()
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO search_results (id, source_id, url, content_hash, result_urls, fetched_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (url, content_hash) DO UPDATE SET fetched_at = now()
		RETURNING id`,
		id, sourceID, url, contentHash, payload).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert search_results row for %s: %w", url, err)
	}
	return id, nil
}

// InsertError persists a failed fetch attempt with its error message
// populated and no content — spec §4.1.3's "fetch failures record a row
// with error populated (replay can reproduce failures)". content_hash is
// left NULL since there's no fetched body to hash.
func (s *Store) InsertError(ctx context.Context, ct ContentType, sourceID, url, errMsg string) (string, error) {
	spec, ok := contentTypeSpecs[ct]
	if !ok {
		return "", fmt.Errorf("archive: no content table for content type %q", ct)
	}
	id := uuid.New().String()
	query := fmt.Sprintf(`
		INSERT INTO %s (id, source_id, url, error, fetched_at)
		VALUES ($1, $2, $3, $4, now())
		RETURNING id`, spec.table)
	if err := s.db.QueryRowContext(ctx, query, id, sourceID, url, errMsg).Scan(&id); err != nil {
		return "", fmt.Errorf("insert %s error row for %s: %w", spec.table, url, err)
	}
	return id, nil
}

// Latest returns the most recently fetched rows for a source/content type,
// newest first, up to limit (limit <= 0 means no cap). Rows with a
// non-empty Error represent a replayed failure, not content.
func (s *Store) Latest(ctx context.Context, ct ContentType, sourceID string, limit int) ([]ContentRow, error) {
	spec, ok := contentTypeSpecs[ct]
	if !ok {
		return nil, fmt.Errorf("archive: no content table for content type %q", ct)
	}
	query := fmt.Sprintf(`
		SELECT id, url, COALESCE(content_hash, ''), COALESCE(%s::text, ''), COALESCE(error, ''), fetched_at
		FROM %s WHERE source_id = $1 ORDER BY fetched_at DESC`, spec.column, spec.table)
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query, sourceID)
	if err != nil {
		return nil, fmt.Errorf("query latest %s for %s: %w", spec.table, sourceID, err)
	}
	defer rows.Close()

	var out []ContentRow
	for rows.Next() {
		var row ContentRow
		if err := rows.Scan(&row.ID, &row.URL, &row.ContentHash, &row.Content, &row.Error, &row.FetchedAt); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", spec.table, err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// GetOrCreateFile dedupes a file by (url, content_hash), returning its id
// whether this call created it or a previous fetch already had.
func (s *Store) GetOrCreateFile(ctx context.Context, url, contentHash, mimeType string, byteSize int64) (string, error) {
	id := uuid.New().String()
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO files (id, url, content_hash, mime_type, byte_size, fetched_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (url, content_hash) DO UPDATE SET mime_type = EXCLUDED.mime_type
		RETURNING id`,
		id, url, contentHash, mimeType, byteSize).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("get or create file %s: %w", url, err)
	}
	return id, nil
}

// AttachFile links a file to the content record that referenced it — a
// post, page, etc. may attach the same file another record already
// referenced (spec §4.1.1: "multiple content records may reference the
// same file via an attachments join").
func (s *Store) AttachFile(ctx context.Context, ownerType ContentType, ownerID, fileID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attachments (id, owner_type, owner_id, file_id) VALUES ($1, $2, $3, $4)`,
		uuid.New().String(), string(ownerType), ownerID, fileID)
	if err != nil {
		return fmt.Errorf("attach file %s to %s %s: %w", fileID, ownerType, ownerID, err)
	}
	return nil
}

// unmarshalResultURLs decodes a search_results row's JSONB content column
// (scanned as text by Latest) back into a URL slice.
func unmarshalResultURLs(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var urls []string
	if err := json.Unmarshal([]byte(raw), &urls); err != nil {
		return nil, fmt.Errorf("unmarshal result_urls: %w", err)
	}
	return urls, nil
}

func joinURLs(urls []string) string {
	out := ""
	for i, u := range urls {
		if i > 0 {
			out += "\n"
		}
		out += u
	}
	return out
}

// FilesFor returns every file attached to one content record.
func (s *Store) FilesFor(ctx context.Context, ownerType ContentType, ownerID string) ([]File, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT f.id, f.url, f.content_hash, COALESCE(f.mime_type, ''), COALESCE(f.byte_size, 0)
		FROM attachments a
		JOIN files f ON f.id = a.file_id
		WHERE a.owner_type = $1 AND a.owner_id = $2`,
		string(ownerType), ownerID)
	if err != nil {
		return nil, fmt.Errorf("query files for %s %s: %w", ownerType, ownerID, err)
	}
	defer rows.Close()

	var out []File
	for rows.Next() {
		var f File
		if err := rows.Scan(&f.ID, &f.URL, &f.ContentHash, &f.MimeType, &f.ByteSize); err != nil {
			return nil, fmt.Errorf("scan file row: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
