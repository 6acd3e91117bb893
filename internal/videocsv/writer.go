// Package videocsv reads and writes the youtube-videos.csv interchange file
// shared by the ingestion job and the site.
package videocsv

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sermonfeed/internal/video"
)

// Header is the exact first line of every file.
const Header = "id,title,thumbnailUrl,publishedAt,type,source"

// Columns is the number of fields in a row.
const Columns = 6

// Encode renders records in the given order. The title is always quoted;
// no other field is. Records without an ID or title are skipped.
func Encode(records []video.Record) []byte {
	var buf bytes.Buffer
	buf.WriteString(Header)
	buf.WriteByte('\n')
	for _, r := range records {
		if !r.Valid() {
			continue
		}
		buf.Write(AppendRow(nil, r))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// AppendRow appends the CSV form of r, without a line terminator, to dst.
func AppendRow(dst []byte, r video.Record) []byte {
	dst = append(dst, r.ID...)
	dst = append(dst, ',')
	dst = appendQuoted(dst, r.Title)
	dst = append(dst, ',')
	dst = append(dst, r.ThumbnailURL...)
	dst = append(dst, ',')
	dst = append(dst, r.PublishedAt...)
	dst = append(dst, ',')
	dst = append(dst, r.Type...)
	dst = append(dst, ',')
	dst = append(dst, r.Source...)
	return dst
}

func appendQuoted(dst []byte, s string) []byte {
	dst = append(dst, '"')
	dst = append(dst, strings.ReplaceAll(s, `"`, `""`)...)
	return append(dst, '"')
}

// WriteFile replaces path with the encoded records. The data is written to a
// temporary file in the same directory and renamed over path, so readers see
// either the previous file or the new one.
func WriteFile(path string, records []video.Record) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(Encode(records)); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
