package transform

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/sync/errgroup"

	"github.com/docrelay/docrelay/internal/codec"
)

// splitWorkers bounds concurrent page extraction during split.
const splitWorkers = 4

const contentTypePDF = "application/pdf"

func (s *system) merge(ctx context.Context, req Request) (*Result, error) {
	if len(req.Inputs) < 2 {
		return nil, fmt.Errorf("%w: merge requires at least two documents", ErrInsufficientInputs)
	}

	readers := make([]io.ReadSeeker, 0, len(req.Inputs))
	for _, input := range req.Inputs {
		doc, err := codec.Open(input.Data)
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", input.Name, err)
		}
		readers = append(readers, doc.Reader())
	}

	var buf bytes.Buffer
	if err := api.MergeRaw(readers, &buf, false, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("merge documents: %w", err)
	}

	return &Result{
		Data:        buf.Bytes(),
		Filename:    "merged.pdf",
		ContentType: contentTypePDF,
	}, nil
}

func (s *system) split(ctx context.Context, req Request) (*Result, error) {
	input, err := s.single(req)
	if err != nil {
		return nil, err
	}

	doc, err := codec.Open(input.Data)
	if err != nil {
		return nil, err
	}

	if doc.PageCount() == 0 {
		return nil, fmt.Errorf("%w: no pages to split", ErrEmptyDocument)
	}

	pages := make([][]byte, doc.PageCount())

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(splitWorkers)

	for i := 1; i <= doc.PageCount(); i++ {
		g.Go(func() error {
			page, err := doc.ExtractPage(i)
			if err != nil {
				return err
			}
			pages[i-1] = page
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	entries := make([]archiveEntry, len(pages))
	for i, page := range pages {
		entries[i] = archiveEntry{
			Name: fmt.Sprintf("page_%03d.pdf", i+1),
			Data: page,
		}
	}

	data, err := buildArchive(entries)
	if err != nil {
		return nil, err
	}

	return &Result{
		Data:        data,
		Filename:    "split_pages.zip",
		ContentType: "application/zip",
	}, nil
}

func (s *system) compress(req Request) (*Result, error) {
	input, err := s.single(req)
	if err != nil {
		return nil, err
	}

	doc, err := codec.Open(input.Data)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := api.Optimize(doc.Reader(), &buf, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("compress document: %w", err)
	}

	// Optimization can inflate already-lean documents. Keep the
	// smaller of the two.
	data := buf.Bytes()
	if len(data) >= len(input.Data) {
		data = input.Data
	}

	return &Result{
		Data:        data,
		Filename:    "compressed.pdf",
		ContentType: contentTypePDF,
	}, nil
}

func (s *system) rotate(req Request) (*Result, error) {
	input, err := s.single(req)
	if err != nil {
		return nil, err
	}

	switch req.Options.Angle {
	case 90, 180, 270:
	default:
		return nil, fmt.Errorf("%w: rotation angle must be 90, 180, or 270, got %d",
			ErrInvalidParameter, req.Options.Angle)
	}

	doc, err := codec.Open(input.Data)
	if err != nil {
		return nil, err
	}

	selected, err := parsePageSelector(req.Options.Pages, doc.PageCount())
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := api.Rotate(doc.Reader(), &buf, req.Options.Angle, selected, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("rotate document: %w", err)
	}

	return &Result{
		Data:        buf.Bytes(),
		Filename:    "rotated.pdf",
		ContentType: contentTypePDF,
	}, nil
}

func (s *system) encrypt(req Request) (*Result, error) {
	input, err := s.single(req)
	if err != nil {
		return nil, err
	}

	if req.Options.Password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidParameter)
	}

	doc, err := codec.Open(input.Data)
	if err != nil {
		return nil, err
	}

	conf := model.NewDefaultConfiguration()
	conf.UserPW = req.Options.Password
	conf.OwnerPW = req.Options.Password

	var buf bytes.Buffer
	if err := api.Encrypt(doc.Reader(), &buf, conf); err != nil {
		return nil, fmt.Errorf("encrypt document: %w", err)
	}

	return &Result{
		Data:        buf.Bytes(),
		Filename:    "protected.pdf",
		ContentType: contentTypePDF,
	}, nil
}

func (s *system) decrypt(req Request) (*Result, error) {
	input, err := s.single(req)
	if err != nil {
		return nil, err
	}

	if req.Options.Password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidParameter)
	}

	// Unprotected documents pass through unchanged.
	if doc, err := codec.Open(input.Data); err == nil {
		return &Result{
			Data:        doc.Bytes(),
			Filename:    "decrypted.pdf",
			ContentType: contentTypePDF,
		}, nil
	}

	conf := model.NewDefaultConfiguration()
	conf.UserPW = req.Options.Password
	conf.OwnerPW = req.Options.Password

	var buf bytes.Buffer
	if err := api.Decrypt(bytes.NewReader(input.Data), &buf, conf); err != nil {
		if isPasswordError(err) {
			return nil, fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
		}
		return nil, fmt.Errorf("%w: %w", codec.ErrMalformed, err)
	}

	return &Result{
		Data:        buf.Bytes(),
		Filename:    "decrypted.pdf",
		ContentType: contentTypePDF,
	}, nil
}

// isPasswordError distinguishes credential failures from structural
// parse failures. pdfcpu does not export a sentinel for this case.
func isPasswordError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "password") || strings.Contains(msg, "authentication")
}

// parsePageSelector converts a page selector into pdfcpu page selection
// syntax. Empty and "all" select every page.
func parsePageSelector(selector string, pageCount int) ([]string, error) {
	switch selector {
	case "", "all":
		return nil, nil
	case "odd", "even":
		return []string{selector}, nil
	}

	parts := strings.Split(selector, ",")
	selected := make([]string, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		page, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid page selector %q", ErrInvalidParameter, selector)
		}
		if page < 1 || page > pageCount {
			return nil, fmt.Errorf("%w: page %d of %d", codec.ErrPageOutOfRange, page, pageCount)
		}
		selected = append(selected, part)
	}

	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: empty page selector", ErrInvalidParameter)
	}

	return selected, nil
}
