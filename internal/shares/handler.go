package shares

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/docrelay/docrelay/pkg/handlers"
	"github.com/docrelay/docrelay/pkg/pagination"
	"github.com/docrelay/docrelay/pkg/routes"
)

const multipartMemory = 32 << 20

// Handler exposes share operations over HTTP.
type Handler struct {
	system    System
	maxUpload int64
	pages     pagination.Config
	logger    *slog.Logger
}

// NewHandler creates a share Handler. maxUpload caps the total request
// body size in bytes.
func NewHandler(system System, maxUpload int64, pages pagination.Config, logger *slog.Logger) *Handler {
	return &Handler{
		system:    system,
		maxUpload: maxUpload,
		pages:     pages,
		logger:    logger,
	}
}

// Routes returns the handler's route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/shares",
		Routes: []routes.Route{
			{Method: http.MethodGet, Pattern: "", Handler: h.list},
			{Method: http.MethodPost, Pattern: "", Handler: h.create},
			{Method: http.MethodGet, Pattern: "/{code}", Handler: h.get},
			{Method: http.MethodPost, Pattern: "/{code}/download", Handler: h.download},
			{Method: http.MethodDelete, Pattern: "/{id}", Handler: h.delete},
		},
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pages)

	result, err := h.system.List(r.Context(), page)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	req, err := h.readCreateRequest(r)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge,
				fmt.Errorf("request body exceeds %d bytes", h.maxUpload))
			return
		}
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	view, err := h.system.Create(r.Context(), req)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, view)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	view, err := h.system.Get(r.Context(), r.PathValue("code"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, view)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	password, err := readPassword(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	payload, err := h.system.Download(r.Context(), r.PathValue("code"), password)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondAttachment(w, payload.Data, payload.Filename, payload.ContentType)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest,
			fmt.Errorf("%w: invalid share id", ErrInvalidShare))
		return
	}

	if err := h.system.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// readCreateRequest accepts either a multipart file upload or a JSON
// body with inline text.
func (h *Handler) readCreateRequest(r *http.Request) (CreateRequest, error) {
	contentType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if strings.HasPrefix(contentType, "multipart/") {
		return h.readMultipartCreate(r)
	}

	return readInlineCreate(r)
}

func (h *Handler) readMultipartCreate(r *http.Request) (CreateRequest, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return CreateRequest{}, err
	}

	f, fh, err := r.FormFile("file")
	if err != nil {
		return CreateRequest{}, fmt.Errorf("%w: file is required", ErrInvalidShare)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return CreateRequest{}, fmt.Errorf("read upload %q: %w", fh.Filename, err)
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	req := CreateRequest{
		Filename:    fh.Filename,
		ContentType: contentType,
		Data:        data,
		Password:    r.FormValue("password"),
		Title:       optionalString(r.FormValue("title")),
		Description: optionalString(r.FormValue("description")),
		Owner:       optionalString(r.FormValue("owner")),
	}

	req.TTLHours, err = formInt(r, "ttl_hours")
	if err != nil {
		return CreateRequest{}, err
	}
	if req.TTLHours == nil {
		ttl := DefaultTTLHours
		req.TTLHours = &ttl
	}

	req.MaxDownloads, err = formInt(r, "max_downloads")
	if err != nil {
		return CreateRequest{}, err
	}

	return req, nil
}

type inlineCreatePayload struct {
	Text         string  `json:"text"`
	Filename     string  `json:"filename"`
	TTLHours     *int    `json:"ttl_hours"`
	MaxDownloads *int    `json:"max_downloads"`
	Password     string  `json:"password"`
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Owner        *string `json:"owner"`
}

func readInlineCreate(r *http.Request) (CreateRequest, error) {
	var payload inlineCreatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return CreateRequest{}, fmt.Errorf("%w: decode request body: %w", ErrInvalidShare, err)
	}

	if payload.Text == "" {
		return CreateRequest{}, fmt.Errorf("%w: text is required", ErrInvalidShare)
	}

	filename := payload.Filename
	if filename == "" {
		filename = "share.txt"
	}

	ttl := payload.TTLHours
	if ttl == nil {
		hours := DefaultTTLHours
		ttl = &hours
	}

	return CreateRequest{
		Filename:     filename,
		ContentType:  "text/plain; charset=utf-8",
		Text:         payload.Text,
		TTLHours:     ttl,
		MaxDownloads: payload.MaxDownloads,
		Password:     payload.Password,
		Title:        payload.Title,
		Description:  payload.Description,
		Owner:        payload.Owner,
	}, nil
}

func readPassword(r *http.Request) (string, error) {
	contentType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch {
	case contentType == "application/json":
		var body struct {
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%w: decode request body: %w", ErrInvalidShare, err)
		}
		return body.Password, nil
	default:
		if err := r.ParseForm(); err != nil {
			return "", fmt.Errorf("%w: parse form: %w", ErrInvalidShare, err)
		}
		return r.FormValue("password"), nil
	}
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func formInt(r *http.Request, field string) (*int, error) {
	v := r.FormValue(field)
	if v == "" {
		return nil, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s %q", ErrInvalidShare, field, v)
	}

	return &n, nil
}
