package enrichment

import (
	"context"
	stdsql "database/sql"
	"fmt"
	"strings"
)

// provenance is what the diversity pass needs out of one archive_ref: the
// archive source it was fetched from (for source_diversity) and the
// content-type channel it was fetched as (for channel_diversity).
type provenance struct {
	SourceID string
	Channel  string
}

// contentTypeTables maps an archive_ref's content-type prefix to the
// per-content-type table it lives in (spec §6.4) — Evidence itself only
// stores the opaque "type:row_id" ref, never the source or channel
// directly, so resolving either means one lookup into the archive store.
var contentTypeTables = map[string]string{
	"post":          "posts",
	"story":         "stories",
	"short_video":   "short_videos",
	"long_video":    "long_videos",
	"page":          "pages",
	"feed":          "feeds",
	"search_result": "search_results",
	"file":          "files",
}

func resolveProvenance(ctx context.Context, db *stdsql.DB, archiveRef string) (provenance, error) {
	contentType, rowID, ok := strings.Cut(archiveRef, ":")
	if !ok {
		return provenance{}, fmt.Errorf("malformed archive_ref %q: expected \"type:id\"", archiveRef)
	}
	table, ok := contentTypeTables[contentType]
	if !ok {
		return provenance{}, fmt.Errorf("unknown archive content type %q in ref %q", contentType, archiveRef)
	}

	var sourceID string
	query := fmt.Sprintf(`SELECT source_id FROM %s WHERE id = $1`, table)
	if err := db.QueryRowContext(ctx, query, rowID).Scan(&sourceID); err != nil {
		return provenance{}, fmt.Errorf("look up %s %s: %w", table, rowID, err)
	}
	return provenance{SourceID: sourceID, Channel: contentType}, nil
}
