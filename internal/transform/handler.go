package transform

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/docrelay/docrelay/pkg/handlers"
	"github.com/docrelay/docrelay/pkg/routes"
)

// multipartMemory bounds the in-memory portion of multipart parsing;
// larger parts spill to temp files.
const multipartMemory = 32 << 20

// Handler exposes transform operations over HTTP.
type Handler struct {
	system    System
	maxUpload int64
	logger    *slog.Logger
}

// NewHandler creates a transform Handler. maxUpload caps the total
// request body size in bytes.
func NewHandler(system System, maxUpload int64, logger *slog.Logger) *Handler {
	return &Handler{
		system:    system,
		maxUpload: maxUpload,
		logger:    logger,
	}
}

// Routes returns the handler's route group.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/transforms",
		Routes: []routes.Route{
			{Method: http.MethodPost, Pattern: "/{operation}", Handler: h.apply},
		},
	}
}

func (h *Handler) apply(w http.ResponseWriter, r *http.Request) {
	op, err := ParseOperation(r.PathValue("operation"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge,
				fmt.Errorf("request body exceeds %d bytes", h.maxUpload))
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest,
			fmt.Errorf("%w: parse multipart form: %w", ErrInvalidParameter, err))
		return
	}

	inputs, err := readInputs(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	options, err := readOptions(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	result, err := h.system.Apply(r.Context(), Request{
		Operation: op,
		Inputs:    inputs,
		Options:   options,
	})
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondAttachment(w, result.Data, result.Filename, result.ContentType)
}

func readInputs(r *http.Request) ([]Input, error) {
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files provided", ErrInsufficientInputs)
	}

	inputs := make([]Input, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open upload %q: %w", fh.Filename, err)
		}

		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read upload %q: %w", fh.Filename, err)
		}

		inputs = append(inputs, Input{Name: fh.Filename, Data: data})
	}

	return inputs, nil
}

func readOptions(r *http.Request) (Options, error) {
	options := Options{
		Pages:      r.FormValue("pages"),
		Password:   r.FormValue("password"),
		Conversion: r.FormValue("to"),
	}

	if v := r.FormValue("angle"); v != "" {
		angle, err := strconv.Atoi(v)
		if err != nil {
			return Options{}, fmt.Errorf("%w: invalid angle %q", ErrInvalidParameter, v)
		}
		options.Angle = angle
	}

	return options, nil
}
