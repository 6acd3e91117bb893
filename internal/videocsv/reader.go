package videocsv

import (
	"errors"
	"fmt"

	"sermonfeed/internal/video"
)

// ErrInvalidFormat is returned when the header does not have the expected shape.
var ErrInvalidFormat = errors.New("invalid CSV format")

// Decode parses an interchange file and returns the records of type typ,
// newest first. An empty typ keeps every type. Rows that are blank, short,
// or missing an ID or title are dropped.
func Decode(text string, typ video.Type) ([]video.Record, error) {
	sc := NewScanner(text)

	header, ok := sc.Next()
	if !ok {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidFormat)
	}
	if len(header) < Columns {
		return nil, fmt.Errorf("%w: header has %d columns, want at least %d", ErrInvalidFormat, len(header), Columns)
	}

	var records []video.Record
	for {
		fields, ok := sc.Next()
		if !ok {
			break
		}
		if len(fields) < Columns {
			continue
		}
		r := video.Record{
			ID:           fields[0],
			Title:        fields[1],
			ThumbnailURL: fields[2],
			PublishedAt:  fields[3],
			Type:         video.Type(fields[4]),
			Source:       video.Source(fields[5]),
		}
		if !r.Valid() {
			continue
		}
		if typ != "" && r.Type != typ {
			continue
		}
		records = append(records, r)
	}

	video.SortNewestFirst(records)
	return records, nil
}
