package shares

import (
	"github.com/docrelay/docrelay/pkg/query"
	"github.com/docrelay/docrelay/pkg/repository"
)

func projection() *query.ProjectionMap {
	return query.NewProjectionMap("docrelay", "shares", "s").
		Project("id", "id").
		Project("access_code", "access_code").
		Project("filename", "filename").
		Project("content_type", "content_type").
		Project("size", "size").
		Project("is_text_content", "is_text_content").
		Project("text_content", "text_content").
		Project("title", "title").
		Project("description", "description").
		Project("owner", "owner").
		Project("password_hash", "password_hash").
		Project("max_downloads", "max_downloads").
		Project("download_count", "download_count").
		Project("expires_at", "expires_at").
		Project("last_accessed", "last_accessed").
		Project("created_at", "created_at")
}

func mapShare(scanner repository.Scanner) (Share, error) {
	var s Share
	err := scanner.Scan(
		&s.ID,
		&s.AccessCode,
		&s.Filename,
		&s.ContentType,
		&s.Size,
		&s.IsTextContent,
		&s.TextContent,
		&s.Title,
		&s.Description,
		&s.Owner,
		&s.PasswordHash,
		&s.MaxDownloads,
		&s.DownloadCount,
		&s.ExpiresAt,
		&s.LastAccessed,
		&s.CreatedAt,
	)
	return s, err
}
