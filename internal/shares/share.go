// Package shares implements access-code gated file sharing with
// expiry, download quotas, and optional password protection.
package shares

import (
	"time"

	"github.com/google/uuid"
)

// Share is a stored, time-limited file share. A nil ExpiresAt never
// expires; a nil MaxDownloads has no quota.
type Share struct {
	ID            uuid.UUID
	AccessCode    string
	Filename      string
	ContentType   string
	Size          int64
	IsTextContent bool
	TextContent   *string
	Title         *string
	Description   *string
	Owner         *string
	PasswordHash  *string
	MaxDownloads  *int
	DownloadCount int
	ExpiresAt     *time.Time
	LastAccessed  *time.Time
	CreatedAt     time.Time
}

// Expired reports whether the share's lifetime has elapsed.
func (s *Share) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}

// Exhausted reports whether the share's download quota is spent.
func (s *Share) Exhausted() bool {
	return s.MaxDownloads != nil && s.DownloadCount >= *s.MaxDownloads
}

// Available reports whether the share can still be downloaded. The
// check is advisory and performs no mutation.
func (s *Share) Available(now time.Time) bool {
	return !s.Expired(now) && !s.Exhausted()
}

// Protected reports whether downloads require a password.
func (s *Share) Protected() bool {
	return s.PasswordHash != nil
}

// View returns the client-facing representation of the share.
func (s *Share) View() ShareView {
	return ShareView{
		ID:            s.ID,
		AccessCode:    s.AccessCode,
		Filename:      s.Filename,
		ContentType:   s.ContentType,
		Size:          s.Size,
		IsTextContent: s.IsTextContent,
		Title:         s.Title,
		Description:   s.Description,
		Owner:         s.Owner,
		Protected:     s.Protected(),
		MaxDownloads:  s.MaxDownloads,
		DownloadCount: s.DownloadCount,
		ExpiresAt:     s.ExpiresAt,
		LastAccessed:  s.LastAccessed,
		CreatedAt:     s.CreatedAt,
	}
}

// ShareView is the JSON shape returned to clients. The password hash
// never leaves the service.
type ShareView struct {
	ID            uuid.UUID  `json:"id"`
	AccessCode    string     `json:"access_code"`
	Filename      string     `json:"filename"`
	ContentType   string     `json:"content_type"`
	Size          int64      `json:"size"`
	IsTextContent bool       `json:"is_text_content"`
	Title         *string    `json:"title,omitempty"`
	Description   *string    `json:"description,omitempty"`
	Owner         *string    `json:"owner,omitempty"`
	Protected     bool       `json:"protected"`
	MaxDownloads  *int       `json:"max_downloads,omitempty"`
	DownloadCount int        `json:"download_count"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	LastAccessed  *time.Time `json:"last_accessed,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// CreateRequest describes a new share. Exactly one of Data or Text
// carries the payload. A nil TTLHours never expires; zero expires
// immediately.
type CreateRequest struct {
	Filename     string
	ContentType  string
	Data         []byte
	Text         string
	TTLHours     *int
	MaxDownloads *int
	Password     string
	Title        *string
	Description  *string
	Owner        *string
}

// Payload is the downloadable content of a share.
type Payload struct {
	Data        []byte
	Filename    string
	ContentType string
}
