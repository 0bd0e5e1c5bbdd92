package shares

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/docrelay/docrelay/pkg/pagination"
	"github.com/docrelay/docrelay/pkg/query"
	"github.com/docrelay/docrelay/pkg/repository"
)

const shareColumns = `id, access_code, filename, content_type, size, is_text_content, text_content,
		title, description, owner, password_hash, max_downloads, download_count,
		expires_at, last_accessed, created_at`

type shareRepository struct {
	db *sql.DB
}

func (r *shareRepository) insert(ctx context.Context, share Share) error {
	q := `
		INSERT INTO docrelay.shares (` + shareColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := r.db.ExecContext(ctx, q,
		share.ID,
		share.AccessCode,
		share.Filename,
		share.ContentType,
		share.Size,
		share.IsTextContent,
		share.TextContent,
		share.Title,
		share.Description,
		share.Owner,
		share.PasswordHash,
		share.MaxDownloads,
		share.DownloadCount,
		share.ExpiresAt,
		share.LastAccessed,
		share.CreatedAt,
	)
	if err != nil {
		return repository.MapError(err)
	}

	return nil
}

func (r *shareRepository) getByCode(ctx context.Context, code string) (Share, error) {
	q, args := query.NewBuilder(projection()).BuildSingle("access_code", code)
	return repository.QueryOne(ctx, r.db, mapShare, q, args...)
}

func (r *shareRepository) getByID(ctx context.Context, id uuid.UUID) (Share, error) {
	q, args := query.NewBuilder(projection()).BuildSingle("id", id)
	return repository.QueryOne(ctx, r.db, mapShare, q, args...)
}

func (r *shareRepository) list(ctx context.Context, page pagination.PageRequest) ([]Share, int, error) {
	builder := query.NewBuilder(projection(), query.SortField{Field: "created_at", Descending: true}).
		WhereSearch(page.Search, "filename", "title", "access_code").
		OrderByFields(page.Sort)

	countSQL, countArgs := builder.BuildCount()
	total, err := repository.QueryCount(ctx, r.db, countSQL, countArgs...)
	if err != nil {
		return nil, 0, err
	}

	pageSQL, pageArgs := builder.BuildPage(page.Page, page.PageSize)
	results, err := repository.QueryMany(ctx, r.db, mapShare, pageSQL, pageArgs...)
	if err != nil {
		return nil, 0, err
	}

	return results, total, nil
}

func (r *shareRepository) delete(ctx context.Context, id uuid.UUID) error {
	err := repository.ExecExpectOne(ctx, r.db,
		`DELETE FROM docrelay.shares WHERE id = $1`, id)
	if errors.Is(err, repository.ErrNoRowsChanged) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return err
}

// recordAccessQuery claims one download in a single conditional UPDATE.
// The expiry and quota guards ride in the same statement as the
// increment, so concurrent requests cannot overrun max_downloads.
const recordAccessQuery = `
		UPDATE docrelay.shares
		SET download_count = download_count + 1,
		    last_accessed = $2
		WHERE access_code = $1
		  AND (expires_at IS NULL OR expires_at > $2)
		  AND (max_downloads IS NULL OR download_count < max_downloads)
		RETURNING ` + shareColumns

// recordAccess atomically claims one download. Zero rows means the
// share is expired or exhausted.
func (r *shareRepository) recordAccess(ctx context.Context, code string, now time.Time) (Share, error) {
	return repository.QueryOne(ctx, r.db, mapShare, recordAccessQuery, code, now)
}

func (r *shareRepository) listExpired(ctx context.Context, cutoff time.Time) ([]Share, error) {
	q := `
		SELECT ` + shareColumns + `
		FROM docrelay.shares
		WHERE expires_at IS NOT NULL
		  AND expires_at <= $1`

	return repository.QueryMany(ctx, r.db, mapShare, q, cutoff)
}
