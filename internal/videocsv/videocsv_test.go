package videocsv

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"sermonfeed/internal/video"
)

func sermon(id, title, published string) video.Record {
	return video.Record{
		ID:           id,
		Title:        title,
		ThumbnailURL: video.ThumbnailURL(id),
		PublishedAt:  published,
		Type:         video.TypeSermon,
		Source:       video.SourcePlaylist,
	}
}

func TestEncodeQuotesTitle(t *testing.T) {
	r := sermon("abc123", `He said "Go" today, now`, "2024-01-07T09:00:00Z")

	got := string(AppendRow(nil, r))
	want := `abc123,"He said ""Go"" today, now",https://i.ytimg.com/vi/abc123/hqdefault.jpg,2024-01-07T09:00:00Z,sermon,playlist`
	if got != want {
		t.Errorf("AppendRow() =\n%s\nwant\n%s", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	titles := []string{
		`He said "Go" today, now`,
		"Plain title",
		"Comma, separated, words",
		`""`,
		`"leading quote`,
		"trailing quote\"",
		"First line\nSecond line",
		"Windows\r\nbreak",
		"የእሁድ አገልግሎት, \"ቀጥታ\"",
	}

	for _, title := range titles {
		t.Run(title, func(t *testing.T) {
			in := sermon("id1", title, "2024-02-01T00:00:00Z")
			out, err := Decode(string(Encode([]video.Record{in})), video.TypeSermon)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if len(out) != 1 {
				t.Fatalf("expected 1 record, got %d", len(out))
			}
			if !reflect.DeepEqual(out[0], in) {
				t.Errorf("round trip mismatch:\n got %#v\nwant %#v", out[0], in)
			}
		})
	}
}

func TestEncodeSkipsInvalid(t *testing.T) {
	data := Encode([]video.Record{
		sermon("", "No ID", "2024-01-01"),
		sermon("noTitle", "", "2024-01-01"),
		sermon("ok", "Kept", "2024-01-01"),
	})
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus 1 row, got %d lines: %q", len(lines), lines)
	}
	if lines[0] != Header {
		t.Errorf("unexpected header %q", lines[0])
	}
}

func TestDecodeFiltersAndSorts(t *testing.T) {
	text := Header + "\n" +
		`jan,"January",t,2024-01-01T00:00:00Z,sermon,playlist` + "\n" +
		"\n" +
		`live1,"Sunday Live",t,2024-04-01T00:00:00Z,live,channel` + "\r\n" +
		`mar,"March",t,2024-03-01T00:00:00Z,sermon,playlist` + "\n" +
		`,"Missing id",t,2024-05-01T00:00:00Z,sermon,playlist` + "\n" +
		`noTitle,"",t,2024-05-01T00:00:00Z,sermon,playlist` + "\n" +
		`short,"Too few fields",t` + "\n" +
		`feb,"February",t,2024-02-01T00:00:00Z,sermon,playlist`

	sermons, err := Decode(text, video.TypeSermon)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	var ids []string
	for _, r := range sermons {
		ids = append(ids, r.ID)
	}
	if want := []string{"mar", "feb", "jan"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("sermon IDs = %v, want %v", ids, want)
	}

	live, err := Decode(text, video.TypeLive)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(live) != 1 || live[0].ID != "live1" || live[0].Source != video.SourceChannel {
		t.Errorf("unexpected live records: %+v", live)
	}

	all, err := Decode(text, "")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(all) != 4 {
		t.Errorf("expected 4 records of any type, got %d", len(all))
	}
}

func TestDecodeInvalidHeader(t *testing.T) {
	cases := map[string]string{
		"empty":        "",
		"short header": "id,title,type\nabc,\"x\",sermon\n",
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(text, video.TypeSermon)
			if !errors.Is(err, ErrInvalidFormat) {
				t.Errorf("expected ErrInvalidFormat, got %v", err)
			}
		})
	}
}

func TestScannerStates(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want [][]string
	}{
		{"unquoted", "a,b,c", [][]string{{"a", "b", "c"}}},
		{"empty fields", ",,", [][]string{{"", "", ""}}},
		{"escaped quote", `"a""b",c`, [][]string{{`a"b`, "c"}}},
		{"quoted comma", `"a,b",c`, [][]string{{"a,b", "c"}}},
		{"quoted newline", "\"a\nb\",c\nd,e\n", [][]string{{"a\nb", "c"}, {"d", "e"}}},
		{"crlf", "a,b\r\nc,d\r\n", [][]string{{"a", "b"}, {"c", "d"}}},
		{"quote mid field is literal", `ab"c,d`, [][]string{{`ab"c`, "d"}}},
		{"stray quote in quoted field", `"ab"c",d`, [][]string{{`ab"c`, "d"}}},
		{"unterminated quote", `"abc`, [][]string{{"abc"}}},
		{"blank line", "a\n\nb", [][]string{{"a"}, {""}, {"b"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got [][]string
			for rec := range Records(tt.in) {
				got = append(got, rec)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Records(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestScannerLine(t *testing.T) {
	sc := NewScanner("h\n\"multi\nline\",x\nlast\n")
	var lines []int
	for {
		if _, ok := sc.Next(); !ok {
			break
		}
		lines = append(lines, sc.Line())
	}
	if want := []int{1, 2, 4}; !reflect.DeepEqual(lines, want) {
		t.Errorf("record lines = %v, want %v", lines, want)
	}
}

func TestWriteFileReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data", "youtube-videos.csv")

	if err := WriteFile(path, []video.Record{sermon("one", "First", "2024-01-01T00:00:00Z")}); err != nil {
		t.Fatalf("first WriteFile() error = %v", err)
	}
	if err := WriteFile(path, []video.Record{sermon("two", "Second", "2024-01-02T00:00:00Z")}); err != nil {
		t.Fatalf("second WriteFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if strings.Contains(string(data), "First") || !strings.Contains(string(data), "Second") {
		t.Errorf("file was not replaced: %q", data)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the output file to remain, found %d entries", len(entries))
	}
}
