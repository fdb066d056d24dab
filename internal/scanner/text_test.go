package scanner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/five82/logdog/internal/match"
)

func writeLog(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.txt")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestScanText_Example(t *testing.T) {
	path := writeLog(t,
		"2025-03-03 02:26:10.123456 service fail: timeout",
		"2025-03-03 02:26:10.654321 service ok",
	)

	res, err := ScanText(context.Background(), path, match.MustNew("fail"), TextOptions{})
	if err != nil {
		t.Fatalf("ScanText error = %v", err)
	}
	if len(res.Matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(res.Matches))
	}
	got := res.Matches[0]
	want := time.Date(2025, 3, 3, 2, 26, 10, 123456000, time.UTC)
	if !got.At.Equal(want) {
		t.Fatalf("At = %v, want %v", got.At, want)
	}
	if got.At.Truncate(time.Second).Format("2006-01-02T15:04:05") != "2025-03-03T02:26:10" {
		t.Fatalf("truncated = %s", got.At.Truncate(time.Second))
	}
	if got.Line != 1 || got.Source != path || got.Kind != KindText {
		t.Fatalf("match = %+v", got)
	}
	if res.Processed != 2 {
		t.Fatalf("Processed = %d, want 2", res.Processed)
	}
}

func TestScanText_CountsEveryMatchingLine(t *testing.T) {
	var lines []string
	want := 0
	for i := 0; i < 50; i++ {
		msg := "ok"
		if i%3 == 0 {
			msg = "request fail"
			want++
		}
		lines = append(lines, fmt.Sprintf("2025-03-03 02:%02d:00.000001 %s", i, msg))
	}
	path := writeLog(t, lines...)

	res, err := ScanText(context.Background(), path, match.MustNew("fail"), TextOptions{})
	if err != nil {
		t.Fatalf("ScanText error = %v", err)
	}
	if len(res.Matches) != want {
		t.Fatalf("got %d matches, want %d", len(res.Matches), want)
	}
	for _, m := range res.Matches {
		if !strings.Contains(m.Text, "fail") {
			t.Fatalf("match %q does not contain phrase", m.Text)
		}
	}
}

func TestScanText_NonMatchingLinesAreNotParsed(t *testing.T) {
	path := writeLog(t,
		"garbage header without timestamp",
		"2025-03-03 02:26:10 fail without fraction",
	)
	res, err := ScanText(context.Background(), path, match.MustNew("fail"), TextOptions{})
	if err != nil {
		t.Fatalf("ScanText error = %v", err)
	}
	if len(res.Matches) != 1 || res.Matches[0].Line != 2 {
		t.Fatalf("matches = %+v", res.Matches)
	}
}

func TestScanText_BadTimestampAbortsWithPartialResult(t *testing.T) {
	path := writeLog(t,
		"2025-03-03 02:26:10.123456 fail one",
		"not-a-date 02:26:11 fail two",
		"2025-03-03 02:26:12.000000 fail three",
	)

	res, err := ScanText(context.Background(), path, match.MustNew("fail"), TextOptions{})
	var tsErr *TimestampError
	if !errors.As(err, &tsErr) {
		t.Fatalf("error = %v, want *TimestampError", err)
	}
	if tsErr.Line != 2 || tsErr.Value != "not-a-date 02:26:11" {
		t.Fatalf("TimestampError = %+v", tsErr)
	}
	if len(res.Matches) != 1 {
		t.Fatalf("got %d partial matches, want 1", len(res.Matches))
	}
}

func TestScanText_ShortLine(t *testing.T) {
	path := writeLog(t, "fail")
	_, err := ScanText(context.Background(), path, match.MustNew("fail"), TextOptions{})
	var tsErr *TimestampError
	if !errors.As(err, &tsErr) {
		t.Fatalf("error = %v, want *TimestampError", err)
	}
}

func TestScanText_MissingFile(t *testing.T) {
	_, err := ScanText(context.Background(), filepath.Join(t.TempDir(), "nope.txt"), match.MustNew("fail"), TextOptions{})
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("error = %v, want ErrFileNotFound", err)
	}
}

func TestScanText_Cancelled(t *testing.T) {
	path := writeLog(t, "2025-03-03 02:26:10.123456 fail")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ScanText(ctx, path, match.MustNew("fail"), TextOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestParseEvtxTime(t *testing.T) {
	want := time.Date(2024, 5, 1, 12, 30, 45, 123456700, time.UTC)
	for _, in := range []string{
		"2024-05-01T12:30:45.1234567Z",
		"2024-05-01T12:30:45.1234567",
		"2024-05-01 12:30:45.1234567",
	} {
		got, err := ParseEvtxTime(in)
		if err != nil {
			t.Fatalf("ParseEvtxTime(%q) error = %v", in, err)
		}
		if !got.Equal(want) {
			t.Fatalf("ParseEvtxTime(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseEvtxTime(" "); err == nil {
		t.Fatalf("expected error for empty time")
	}
	if _, err := ParseEvtxTime("yesterday"); err == nil {
		t.Fatalf("expected error for garbage time")
	}
}
