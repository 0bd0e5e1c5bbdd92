package transform_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"

	"github.com/docrelay/docrelay/internal/codec"
	"github.com/docrelay/docrelay/internal/transform"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixture(t *testing.T, text string) []byte {
	t.Helper()

	data, err := codec.ComposeText(text)
	if err != nil {
		t.Fatalf("compose fixture: %v", err)
	}
	return data
}

func pageCount(t *testing.T, data []byte) int {
	t.Helper()

	doc, err := codec.Open(data)
	if err != nil {
		t.Fatalf("open result: %v", err)
	}
	return doc.PageCount()
}

func extractText(t *testing.T, data []byte) string {
	t.Helper()

	doc, err := codec.Open(data)
	if err != nil {
		t.Fatalf("open result: %v", err)
	}

	text, err := doc.Text()
	if err != nil {
		t.Fatalf("extract text: %v", err)
	}
	return text
}

func pageRotation(t *testing.T, data []byte) int64 {
	t.Helper()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("read result: %v", err)
	}
	return reader.Page(1).V.Key("Rotate").Int64()
}

func TestParseOperation(t *testing.T) {
	for _, name := range []string{"merge", "split", "compress", "rotate", "encrypt", "decrypt", "convert"} {
		if _, err := transform.ParseOperation(name); err != nil {
			t.Errorf("ParseOperation(%q) = %v", name, err)
		}
	}

	if _, err := transform.ParseOperation("shred"); !errors.Is(err, transform.ErrUnknownOperation) {
		t.Errorf("ParseOperation(shred) = %v, want ErrUnknownOperation", err)
	}
}

func TestMerge(t *testing.T) {
	system := transform.New(discardLogger())

	t.Run("page counts add up", func(t *testing.T) {
		result, err := system.Apply(context.Background(), transform.Request{
			Operation: transform.OpMerge,
			Inputs: []transform.Input{
				{Name: "a.pdf", Data: fixture(t, "one\ftwo")},
				{Name: "b.pdf", Data: fixture(t, "three")},
			},
		})
		if err != nil {
			t.Fatalf("Apply: %v", err)
		}

		if result.Filename != "merged.pdf" {
			t.Errorf("Filename = %q, want merged.pdf", result.Filename)
		}
		if got := pageCount(t, result.Data); got != 3 {
			t.Errorf("merged page count = %d, want 3", got)
		}
	})

	t.Run("single input rejected", func(t *testing.T) {
		_, err := system.Apply(context.Background(), transform.Request{
			Operation: transform.OpMerge,
			Inputs:    []transform.Input{{Name: "a.pdf", Data: fixture(t, "only")}},
		})
		if !errors.Is(err, transform.ErrInsufficientInputs) {
			t.Errorf("Apply = %v, want ErrInsufficientInputs", err)
		}
	})

	t.Run("malformed input rejected", func(t *testing.T) {
		_, err := system.Apply(context.Background(), transform.Request{
			Operation: transform.OpMerge,
			Inputs: []transform.Input{
				{Name: "a.pdf", Data: fixture(t, "fine")},
				{Name: "b.pdf", Data: []byte("junk")},
			},
		})
		if !errors.Is(err, codec.ErrMalformed) {
			t.Errorf("Apply = %v, want ErrMalformed", err)
		}
	})
}

func TestSplit(t *testing.T) {
	system := transform.New(discardLogger())

	result, err := system.Apply(context.Background(), transform.Request{
		Operation: transform.OpSplit,
		Inputs:    []transform.Input{{Name: "doc.pdf", Data: fixture(t, "a\fb\fc")}},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if result.Filename != "split_pages.zip" {
		t.Errorf("Filename = %q, want split_pages.zip", result.Filename)
	}

	archive, err := zip.NewReader(bytes.NewReader(result.Data), int64(len(result.Data)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}

	want := []string{"page_001.pdf", "page_002.pdf", "page_003.pdf"}
	if len(archive.File) != len(want) {
		t.Fatalf("archive holds %d entries, want %d", len(archive.File), len(want))
	}

	for i, f := range archive.File {
		if f.Name != want[i] {
			t.Errorf("entry %d = %q, want %q", i, f.Name, want[i])
		}

		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open entry %q: %v", f.Name, err)
		}
		page, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read entry %q: %v", f.Name, err)
		}

		if got := pageCount(t, page); got != 1 {
			t.Errorf("entry %q page count = %d, want 1", f.Name, got)
		}
	}
}

func TestSplitMergeRoundTrip(t *testing.T) {
	system := transform.New(discardLogger())
	original := fixture(t, "x\fy")

	split, err := system.Apply(context.Background(), transform.Request{
		Operation: transform.OpSplit,
		Inputs:    []transform.Input{{Name: "doc.pdf", Data: original}},
	})
	if err != nil {
		t.Fatalf("split: %v", err)
	}

	archive, err := zip.NewReader(bytes.NewReader(split.Data), int64(len(split.Data)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}

	inputs := make([]transform.Input, 0, len(archive.File))
	for _, f := range archive.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open entry: %v", err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read entry: %v", err)
		}
		inputs = append(inputs, transform.Input{Name: f.Name, Data: data})
	}

	merged, err := system.Apply(context.Background(), transform.Request{
		Operation: transform.OpMerge,
		Inputs:    inputs,
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}

	if got, want := pageCount(t, merged.Data), pageCount(t, original); got != want {
		t.Errorf("round trip page count = %d, want %d", got, want)
	}
}

func TestCompress(t *testing.T) {
	system := transform.New(discardLogger())
	original := fixture(t, "compress me")

	result, err := system.Apply(context.Background(), transform.Request{
		Operation: transform.OpCompress,
		Inputs:    []transform.Input{{Name: "doc.pdf", Data: original}},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if len(result.Data) > len(original) {
		t.Errorf("compressed output grew: %d > %d", len(result.Data), len(original))
	}
	if got := pageCount(t, result.Data); got != 1 {
		t.Errorf("compressed page count = %d, want 1", got)
	}
}

func TestRotate(t *testing.T) {
	system := transform.New(discardLogger())

	t.Run("valid angles", func(t *testing.T) {
		for _, angle := range []int{90, 180, 270} {
			result, err := system.Apply(context.Background(), transform.Request{
				Operation: transform.OpRotate,
				Inputs:    []transform.Input{{Name: "doc.pdf", Data: fixture(t, "a\fb")}},
				Options:   transform.Options{Angle: angle},
			})
			if err != nil {
				t.Fatalf("rotate %d: %v", angle, err)
			}
			if got := pageCount(t, result.Data); got != 2 {
				t.Errorf("rotate %d page count = %d, want 2", angle, got)
			}
		}
	})

	t.Run("invalid angles", func(t *testing.T) {
		for _, angle := range []int{0, 45, 360, -90} {
			_, err := system.Apply(context.Background(), transform.Request{
				Operation: transform.OpRotate,
				Inputs:    []transform.Input{{Name: "doc.pdf", Data: fixture(t, "a")}},
				Options:   transform.Options{Angle: angle},
			})
			if !errors.Is(err, transform.ErrInvalidParameter) {
				t.Errorf("rotate %d = %v, want ErrInvalidParameter", angle, err)
			}
		}
	})

	t.Run("page selectors", func(t *testing.T) {
		for _, selector := range []string{"all", "odd", "even", "1,3", ""} {
			_, err := system.Apply(context.Background(), transform.Request{
				Operation: transform.OpRotate,
				Inputs:    []transform.Input{{Name: "doc.pdf", Data: fixture(t, "a\fb\fc")}},
				Options:   transform.Options{Angle: 90, Pages: selector},
			})
			if err != nil {
				t.Errorf("rotate with selector %q: %v", selector, err)
			}
		}
	})

	t.Run("bad selector", func(t *testing.T) {
		_, err := system.Apply(context.Background(), transform.Request{
			Operation: transform.OpRotate,
			Inputs:    []transform.Input{{Name: "doc.pdf", Data: fixture(t, "a")}},
			Options:   transform.Options{Angle: 90, Pages: "first"},
		})
		if !errors.Is(err, transform.ErrInvalidParameter) {
			t.Errorf("rotate with bad selector = %v, want ErrInvalidParameter", err)
		}
	})

	t.Run("selector out of range", func(t *testing.T) {
		_, err := system.Apply(context.Background(), transform.Request{
			Operation: transform.OpRotate,
			Inputs:    []transform.Input{{Name: "doc.pdf", Data: fixture(t, "a")}},
			Options:   transform.Options{Angle: 90, Pages: "7"},
		})
		if !errors.Is(err, codec.ErrPageOutOfRange) {
			t.Errorf("rotate page 7 of 1 = %v, want ErrPageOutOfRange", err)
		}
	})

	t.Run("opposite rotations restore orientation", func(t *testing.T) {
		quarter, err := system.Apply(context.Background(), transform.Request{
			Operation: transform.OpRotate,
			Inputs:    []transform.Input{{Name: "doc.pdf", Data: fixture(t, "orientation check")}},
			Options:   transform.Options{Angle: 90},
		})
		if err != nil {
			t.Fatalf("rotate 90: %v", err)
		}
		if rot := pageRotation(t, quarter.Data); rot%360 != 90 {
			t.Fatalf("rotation after 90 = %d, want 90", rot)
		}

		restored, err := system.Apply(context.Background(), transform.Request{
			Operation: transform.OpRotate,
			Inputs:    []transform.Input{{Name: "doc.pdf", Data: quarter.Data}},
			Options:   transform.Options{Angle: 270},
		})
		if err != nil {
			t.Fatalf("rotate 270: %v", err)
		}
		if rot := pageRotation(t, restored.Data); rot%360 != 0 {
			t.Errorf("rotation after 90+270 = %d, want multiple of 360", rot)
		}
	})
}

func TestEncryptDecrypt(t *testing.T) {
	system := transform.New(discardLogger())
	original := fixture(t, "secret contents")

	encrypted, err := system.Apply(context.Background(), transform.Request{
		Operation: transform.OpEncrypt,
		Inputs:    []transform.Input{{Name: "doc.pdf", Data: original}},
		Options:   transform.Options{Password: "hunter2"},
	})
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if encrypted.Filename != "protected.pdf" {
		t.Errorf("Filename = %q, want protected.pdf", encrypted.Filename)
	}

	t.Run("correct password", func(t *testing.T) {
		decrypted, err := system.Apply(context.Background(), transform.Request{
			Operation: transform.OpDecrypt,
			Inputs:    []transform.Input{{Name: "doc.pdf", Data: encrypted.Data}},
			Options:   transform.Options{Password: "hunter2"},
		})
		if err != nil {
			t.Fatalf("decrypt: %v", err)
		}
		if got := pageCount(t, decrypted.Data); got != 1 {
			t.Errorf("decrypted page count = %d, want 1", got)
		}
		if got, want := extractText(t, decrypted.Data), extractText(t, original); got != want {
			t.Errorf("decrypted text = %q, want %q", got, want)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := system.Apply(context.Background(), transform.Request{
			Operation: transform.OpDecrypt,
			Inputs:    []transform.Input{{Name: "doc.pdf", Data: encrypted.Data}},
			Options:   transform.Options{Password: "wrong"},
		})
		if !errors.Is(err, transform.ErrAuthenticationFailed) {
			t.Errorf("decrypt wrong password = %v, want ErrAuthenticationFailed", err)
		}
	})

	t.Run("missing password", func(t *testing.T) {
		_, err := system.Apply(context.Background(), transform.Request{
			Operation: transform.OpEncrypt,
			Inputs:    []transform.Input{{Name: "doc.pdf", Data: original}},
		})
		if !errors.Is(err, transform.ErrInvalidParameter) {
			t.Errorf("encrypt without password = %v, want ErrInvalidParameter", err)
		}
	})

	t.Run("unprotected passthrough", func(t *testing.T) {
		result, err := system.Apply(context.Background(), transform.Request{
			Operation: transform.OpDecrypt,
			Inputs:    []transform.Input{{Name: "doc.pdf", Data: original}},
			Options:   transform.Options{Password: "anything"},
		})
		if err != nil {
			t.Fatalf("decrypt unprotected: %v", err)
		}
		if !bytes.Equal(result.Data, original) {
			t.Error("unprotected document should pass through unchanged")
		}
	})
}

func TestConvert(t *testing.T) {
	system := transform.New(discardLogger())

	t.Run("pdf to text", func(t *testing.T) {
		result, err := system.Apply(context.Background(), transform.Request{
			Operation: transform.OpConvert,
			Inputs:    []transform.Input{{Name: "doc.pdf", Data: fixture(t, "extract this line")}},
			Options:   transform.Options{Conversion: "pdf_to_txt"},
		})
		if err != nil {
			t.Fatalf("convert: %v", err)
		}
		if result.Filename != "converted.txt" {
			t.Errorf("Filename = %q, want converted.txt", result.Filename)
		}
		if !strings.Contains(string(result.Data), "extract") {
			t.Errorf("output %q missing source text", result.Data)
		}
	})

	t.Run("pdf to csv", func(t *testing.T) {
		rows := [][]string{
			{"name", "size"},
			{"report.pdf", "1.2 MB"},
		}
		grid, err := codec.ComposeTable(rows)
		if err != nil {
			t.Fatalf("compose fixture: %v", err)
		}

		result, err := system.Apply(context.Background(), transform.Request{
			Operation: transform.OpConvert,
			Inputs:    []transform.Input{{Name: "doc.pdf", Data: grid}},
			Options:   transform.Options{Conversion: "pdf_to_csv"},
		})
		if err != nil {
			t.Fatalf("convert: %v", err)
		}
		if result.Filename != "converted.csv" {
			t.Errorf("Filename = %q, want converted.csv", result.Filename)
		}

		records, err := csv.NewReader(bytes.NewReader(result.Data)).ReadAll()
		if err != nil {
			t.Fatalf("parse csv output: %v", err)
		}
		if !reflect.DeepEqual(records, rows) {
			t.Errorf("csv records = %v, want %v", records, rows)
		}
	})

	t.Run("pdf to docx", func(t *testing.T) {
		result, err := system.Apply(context.Background(), transform.Request{
			Operation: transform.OpConvert,
			Inputs:    []transform.Input{{Name: "doc.pdf", Data: fixture(t, "word bound")}},
			Options:   transform.Options{Conversion: "pdf_to_docx"},
		})
		if err != nil {
			t.Fatalf("convert: %v", err)
		}
		if result.Filename != "converted.docx" {
			t.Errorf("Filename = %q, want converted.docx", result.Filename)
		}

		text, err := codec.DocxText(result.Data)
		if err != nil {
			t.Fatalf("read docx output: %v", err)
		}
		if !strings.Contains(text, "word bound") {
			t.Errorf("docx text %q missing source text", text)
		}
	})

	t.Run("docx to pdf", func(t *testing.T) {
		word, err := codec.ComposeDocx("from word processing")
		if err != nil {
			t.Fatalf("compose fixture: %v", err)
		}

		result, err := system.Apply(context.Background(), transform.Request{
			Operation: transform.OpConvert,
			Inputs:    []transform.Input{{Name: "doc.docx", Data: word}},
			Options:   transform.Options{Conversion: "docx_to_pdf"},
		})
		if err != nil {
			t.Fatalf("convert: %v", err)
		}
		if !strings.Contains(extractText(t, result.Data), "from word processing") {
			t.Error("converted pdf missing source text")
		}
	})

	t.Run("text to pdf", func(t *testing.T) {
		result, err := system.Apply(context.Background(), transform.Request{
			Operation: transform.OpConvert,
			Inputs:    []transform.Input{{Name: "notes.txt", Data: []byte("plain text body")}},
			Options:   transform.Options{Conversion: "txt_to_pdf"},
		})
		if err != nil {
			t.Fatalf("convert: %v", err)
		}
		if got := pageCount(t, result.Data); got != 1 {
			t.Errorf("page count = %d, want 1", got)
		}
	})

	t.Run("csv to pdf", func(t *testing.T) {
		csv := "name,size\nreport.pdf,2048\n"
		result, err := system.Apply(context.Background(), transform.Request{
			Operation: transform.OpConvert,
			Inputs:    []transform.Input{{Name: "data.csv", Data: []byte(csv)}},
			Options:   transform.Options{Conversion: "csv_to_pdf"},
		})
		if err != nil {
			t.Fatalf("convert: %v", err)
		}
		if result.Filename != "converted.pdf" {
			t.Errorf("Filename = %q, want converted.pdf", result.Filename)
		}
	})

	t.Run("empty text rejected", func(t *testing.T) {
		_, err := system.Apply(context.Background(), transform.Request{
			Operation: transform.OpConvert,
			Inputs:    []transform.Input{{Name: "notes.txt", Data: []byte("   ")}},
			Options:   transform.Options{Conversion: "txt_to_pdf"},
		})
		if !errors.Is(err, transform.ErrEmptyDocument) {
			t.Errorf("convert empty text = %v, want ErrEmptyDocument", err)
		}
	})

	t.Run("unknown tag rejected", func(t *testing.T) {
		_, err := system.Apply(context.Background(), transform.Request{
			Operation: transform.OpConvert,
			Inputs:    []transform.Input{{Name: "doc.pdf", Data: fixture(t, "x")}},
			Options:   transform.Options{Conversion: "pdf_to_html"},
		})
		if !errors.Is(err, transform.ErrUnsupportedConversion) {
			t.Errorf("convert unknown tag = %v, want ErrUnsupportedConversion", err)
		}
	})
}

func TestApplyNoInputs(t *testing.T) {
	system := transform.New(discardLogger())

	_, err := system.Apply(context.Background(), transform.Request{Operation: transform.OpCompress})
	if !errors.Is(err, transform.ErrInsufficientInputs) {
		t.Errorf("Apply with no inputs = %v, want ErrInsufficientInputs", err)
	}
}
