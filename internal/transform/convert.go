package transform

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"github.com/docrelay/docrelay/internal/codec"
)

// Conversion tags accepted by the convert operation.
const (
	ConvertPDFToText = "pdf_to_txt"
	ConvertPDFToCSV  = "pdf_to_csv"
	ConvertPDFToDocx = "pdf_to_docx"
	ConvertTextToPDF = "txt_to_pdf"
	ConvertCSVToPDF  = "csv_to_pdf"
	ConvertDocxToPDF = "docx_to_pdf"
)

const contentTypeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

func (s *system) convert(req Request) (*Result, error) {
	input, err := s.single(req)
	if err != nil {
		return nil, err
	}

	switch req.Options.Conversion {
	case ConvertPDFToText:
		return s.pdfToText(input)
	case ConvertPDFToCSV:
		return s.pdfToCSV(input)
	case ConvertPDFToDocx:
		return s.pdfToDocx(input)
	case ConvertTextToPDF:
		return s.textToPDF(input)
	case ConvertCSVToPDF:
		return s.csvToPDF(input)
	case ConvertDocxToPDF:
		return s.docxToPDF(input)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedConversion, req.Options.Conversion)
	}
}

func (s *system) pdfToText(input Input) (*Result, error) {
	doc, err := codec.Open(input.Data)
	if err != nil {
		return nil, err
	}

	text, err := doc.Text()
	if err != nil {
		if errors.Is(err, codec.ErrNoText) {
			return nil, fmt.Errorf("%w: %w", ErrEmptyDocument, err)
		}
		return nil, err
	}

	return &Result{
		Data:        []byte(text),
		Filename:    "converted.txt",
		ContentType: "text/plain; charset=utf-8",
	}, nil
}

func (s *system) pdfToCSV(input Input) (*Result, error) {
	doc, err := codec.Open(input.Data)
	if err != nil {
		return nil, err
	}

	table, err := doc.FirstTable()
	if err != nil {
		if errors.Is(err, codec.ErrNoTable) {
			return nil, fmt.Errorf("%w: %w", ErrEmptyDocument, err)
		}
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(table); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}

	return &Result{
		Data:        buf.Bytes(),
		Filename:    "converted.csv",
		ContentType: "text/csv",
	}, nil
}

func (s *system) pdfToDocx(input Input) (*Result, error) {
	doc, err := codec.Open(input.Data)
	if err != nil {
		return nil, err
	}

	text, err := doc.Text()
	if err != nil {
		if errors.Is(err, codec.ErrNoText) {
			return nil, fmt.Errorf("%w: %w", ErrEmptyDocument, err)
		}
		return nil, err
	}

	data, err := codec.ComposeDocx(text)
	if err != nil {
		return nil, err
	}

	return &Result{
		Data:        data,
		Filename:    "converted.docx",
		ContentType: contentTypeDocx,
	}, nil
}

func (s *system) docxToPDF(input Input) (*Result, error) {
	text, err := codec.DocxText(input.Data)
	if err != nil {
		if errors.Is(err, codec.ErrNoText) {
			return nil, fmt.Errorf("%w: %w", ErrEmptyDocument, err)
		}
		return nil, err
	}

	data, err := codec.ComposeText(text)
	if err != nil {
		return nil, err
	}

	return &Result{
		Data:        data,
		Filename:    "converted.pdf",
		ContentType: contentTypePDF,
	}, nil
}

func (s *system) textToPDF(input Input) (*Result, error) {
	text := string(input.Data)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty text input", ErrEmptyDocument)
	}

	data, err := codec.ComposeText(text)
	if err != nil {
		return nil, err
	}

	return &Result{
		Data:        data,
		Filename:    "converted.pdf",
		ContentType: contentTypePDF,
	}, nil
}

func (s *system) csvToPDF(input Input) (*Result, error) {
	r := csv.NewReader(bytes.NewReader(input.Data))
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse csv: %w", ErrInvalidParameter, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty csv input", ErrEmptyDocument)
	}

	data, err := codec.ComposeTable(rows)
	if err != nil {
		return nil, err
	}

	return &Result{
		Data:        data,
		Filename:    "converted.pdf",
		ContentType: contentTypePDF,
	}, nil
}
