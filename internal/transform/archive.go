package transform

import (
	"archive/zip"
	"bytes"
	"fmt"
)

type archiveEntry struct {
	Name string
	Data []byte
}

// buildArchive packs entries into a zip archive in order.
func buildArchive(entries []archiveEntry) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	for _, entry := range entries {
		f, err := w.Create(entry.Name)
		if err != nil {
			return nil, fmt.Errorf("create archive entry %q: %w", entry.Name, err)
		}
		if _, err := f.Write(entry.Data); err != nil {
			return nil, fmt.Errorf("write archive entry %q: %w", entry.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}

	return buf.Bytes(), nil
}
