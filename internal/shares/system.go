package shares

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/docrelay/docrelay/pkg/pagination"
	"github.com/docrelay/docrelay/pkg/repository"
	"github.com/docrelay/docrelay/pkg/storage"
)

// DefaultTTLHours is applied when a create request omits the lifetime.
const DefaultTTLHours = 24

// System defines share operations.
type System interface {
	Create(ctx context.Context, req CreateRequest) (*ShareView, error)
	List(ctx context.Context, page pagination.PageRequest) (pagination.PageResult[ShareView], error)
	Get(ctx context.Context, code string) (*ShareView, error)
	Download(ctx context.Context, code, password string) (*Payload, error)
	Delete(ctx context.Context, id uuid.UUID) error
	PurgeExpired(ctx context.Context) (int, error)
}

// shareRepo is the persistence surface the system depends on.
type shareRepo interface {
	insert(ctx context.Context, share Share) error
	getByCode(ctx context.Context, code string) (Share, error)
	getByID(ctx context.Context, id uuid.UUID) (Share, error)
	list(ctx context.Context, page pagination.PageRequest) ([]Share, int, error)
	delete(ctx context.Context, id uuid.UUID) error
	recordAccess(ctx context.Context, code string, now time.Time) (Share, error)
	listExpired(ctx context.Context, cutoff time.Time) ([]Share, error)
}

type system struct {
	repo   shareRepo
	store  storage.System
	logger *slog.Logger
	pages  pagination.Config
	now    func() time.Time
}

// New creates a share System.
func New(db *sql.DB, store storage.System, logger *slog.Logger, pages pagination.Config) System {
	return &system{
		repo:   &shareRepository{db: db},
		store:  store,
		logger: logger,
		pages:  pages,
		now:    time.Now,
	}
}

func (s *system) Create(ctx context.Context, req CreateRequest) (*ShareView, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	now := s.now()
	share := Share{
		ID:            uuid.New(),
		Filename:      req.Filename,
		ContentType:   req.ContentType,
		Size:          int64(len(req.Data)),
		Title:         req.Title,
		Description:   req.Description,
		Owner:         req.Owner,
		MaxDownloads:  req.MaxDownloads,
		DownloadCount: 0,
		CreatedAt:     now,
	}

	if req.Text != "" {
		text := req.Text
		share.IsTextContent = true
		share.TextContent = &text
		share.Size = int64(len(text))
	}

	if req.TTLHours != nil {
		expires := now.Add(time.Duration(*req.TTLHours) * time.Hour)
		share.ExpiresAt = &expires
	}

	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash share password: %w", err)
		}
		hashed := string(hash)
		share.PasswordHash = &hashed
	}

	if err := s.insertWithCode(ctx, &share); err != nil {
		return nil, err
	}

	if !share.IsTextContent {
		if err := s.store.Upload(ctx, share.ID.String(), bytes.NewReader(req.Data)); err != nil {
			if delErr := s.repo.delete(ctx, share.ID); delErr != nil {
				s.logger.Error("orphaned share record after failed upload",
					"share_id", share.ID,
					"error", delErr,
				)
			}
			return nil, err
		}
	}

	s.logger.Info("share created",
		"share_id", share.ID,
		"access_code", share.AccessCode,
		"size", share.Size,
		"expires_at", share.ExpiresAt,
	)

	view := share.View()
	return &view, nil
}

// insertWithCode generates access codes until the unique constraint
// accepts one.
func (s *system) insertWithCode(ctx context.Context, share *Share) error {
	for {
		code, err := GenerateAccessCode()
		if err != nil {
			return err
		}
		share.AccessCode = code

		err = s.repo.insert(ctx, *share)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrAlreadyExists) {
			return err
		}

		s.logger.Debug("access code collision, regenerating", "access_code", code)
	}
}

func (s *system) List(ctx context.Context, page pagination.PageRequest) (pagination.PageResult[ShareView], error) {
	page.Normalize(s.pages)

	results, total, err := s.repo.list(ctx, page)
	if err != nil {
		return pagination.PageResult[ShareView]{}, err
	}

	views := make([]ShareView, len(results))
	for i, share := range results {
		views[i] = share.View()
	}

	return pagination.NewPageResult(views, total, page.Page, page.PageSize), nil
}

func (s *system) Get(ctx context.Context, code string) (*ShareView, error) {
	share, err := s.repo.getByCode(ctx, code)
	if err != nil {
		return nil, mapLookupError(err, code)
	}

	if !share.Available(s.now()) {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, code)
	}

	view := share.View()
	return &view, nil
}

func (s *system) Download(ctx context.Context, code, password string) (*Payload, error) {
	share, err := s.repo.getByCode(ctx, code)
	if err != nil {
		return nil, mapLookupError(err, code)
	}

	if share.Protected() {
		if err := bcrypt.CompareHashAndPassword([]byte(*share.PasswordHash), []byte(password)); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrAuthenticationFailed, code)
		}
	}

	// Verify the payload exists before claiming a download, so a
	// missing blob does not consume quota.
	if !share.IsTextContent {
		ok, err := s.store.Exists(ctx, share.ID.String())
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("share %s payload missing from storage", code)
		}
	}

	claimed, err := s.repo.recordAccess(ctx, code, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnavailable, code)
		}
		return nil, err
	}

	var data []byte
	if claimed.IsTextContent {
		if claimed.TextContent != nil {
			data = []byte(*claimed.TextContent)
		}
	} else {
		data, err = s.store.Download(ctx, claimed.ID.String())
		if err != nil {
			return nil, err
		}
	}

	s.logger.Info("share downloaded",
		"share_id", claimed.ID,
		"access_code", code,
		"download_count", claimed.DownloadCount,
	)

	return &Payload{
		Data:        data,
		Filename:    claimed.Filename,
		ContentType: claimed.ContentType,
	}, nil
}

func (s *system) Delete(ctx context.Context, id uuid.UUID) error {
	share, err := s.repo.getByID(ctx, id)
	if err != nil {
		return mapLookupError(err, id.String())
	}

	if err := s.repo.delete(ctx, id); err != nil {
		return err
	}

	if !share.IsTextContent {
		if err := s.store.Delete(ctx, id.String()); err != nil && !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error("orphaned blob after share delete", "share_id", id, "error", err)
		}
	}

	s.logger.Info("share deleted", "share_id", id)
	return nil
}

// PurgeExpired removes expired shares and their blobs, returning the
// number purged.
func (s *system) PurgeExpired(ctx context.Context) (int, error) {
	expired, err := s.repo.listExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, share := range expired {
		if err := s.Delete(ctx, share.ID); err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return purged, err
		}
		purged++
	}

	if purged > 0 {
		s.logger.Info("expired shares purged", "count", purged)
	}

	return purged, nil
}

func validateCreate(req CreateRequest) error {
	hasData := len(req.Data) > 0
	hasText := req.Text != ""

	if hasData == hasText {
		return fmt.Errorf("%w: exactly one of file payload or inline text is required", ErrInvalidShare)
	}
	if req.Filename == "" {
		return fmt.Errorf("%w: filename is required", ErrInvalidShare)
	}
	if req.TTLHours != nil && *req.TTLHours < 0 {
		return fmt.Errorf("%w: ttl_hours cannot be negative", ErrInvalidShare)
	}
	if req.MaxDownloads != nil && *req.MaxDownloads < 1 {
		return fmt.Errorf("%w: max_downloads must be positive", ErrInvalidShare)
	}
	return nil
}

func mapLookupError(err error, code string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, code)
	}
	return err
}
