package convert

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"github.com/bodgit/sevenzip"
)

type archiveEntry struct {
	name string
	size int64
	dir  bool
}

// extractArchive lists archive members without unpacking any content.
func (c *Converter) extractArchive(data []byte, filename string) string {
	lower := strings.ToLower(filename)

	var entries []archiveEntry
	var err error
	switch {
	case strings.HasSuffix(lower, ".zip"):
		entries, err = zipEntries(data)
	case strings.HasSuffix(lower, ".7z"):
		entries, err = sevenZipEntries(data)
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		entries, err = tarEntries(data, true)
	case strings.HasSuffix(lower, ".tar"):
		entries, err = tarEntries(data, false)
	default:
		err = fmt.Errorf("unbekanntes Archivformat")
	}
	if err != nil {
		return extractionError(filename, err)
	}
	if len(entries) == 0 {
		return noContent(filename)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Archiv: %s\n\n## Enthaltene Dateien:\n\n", filename)
	for _, e := range entries {
		if e.dir {
			fmt.Fprintf(&sb, "- 📁 %s\n", e.name)
			continue
		}
		fmt.Fprintf(&sb, "- %s (%d Bytes)\n", e.name, e.size)
	}
	fmt.Fprintf(&sb, "\n**Gesamt:** %d Einträge", len(entries))
	return sb.String()
}

func zipEntries(data []byte) ([]archiveEntry, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	entries := make([]archiveEntry, 0, len(zr.File))
	for _, f := range zr.File {
		entries = append(entries, archiveEntry{
			name: f.Name,
			size: int64(f.UncompressedSize64),
			dir:  f.FileInfo().IsDir(),
		})
	}
	return entries, nil
}

func sevenZipEntries(data []byte) ([]archiveEntry, error) {
	zr, err := sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	entries := make([]archiveEntry, 0, len(zr.File))
	for _, f := range zr.File {
		entries = append(entries, archiveEntry{
			name: f.Name,
			size: f.FileInfo().Size(),
			dir:  f.FileInfo().IsDir(),
		})
	}
	return entries, nil
}

func tarEntries(data []byte, gzipped bool) ([]archiveEntry, error) {
	var r io.Reader = bytes.NewReader(data)
	if gzipped {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	}

	tr := tar.NewReader(r)
	var entries []archiveEntry
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			if len(entries) > 0 {
				// A truncated tail still leaves a usable listing.
				break
			}
			return nil, err
		}
		entries = append(entries, archiveEntry{
			name: hdr.Name,
			size: hdr.Size,
			dir:  hdr.Typeflag == tar.TypeDir,
		})
	}
	return entries, nil
}
