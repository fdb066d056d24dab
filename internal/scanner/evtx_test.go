package scanner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/0xrawsec/golang-evtx/evtx"

	"github.com/five82/logdog/internal/match"
)

type fakeReader struct {
	records []Record
	pos     int
	reads   int
	closed  bool
	failAt  int
}

func (f *fakeReader) Next() (Record, error) {
	f.reads++
	if f.failAt > 0 && f.reads == f.failAt {
		return Record{}, errors.New("corrupt chunk")
	}
	if f.pos >= len(f.records) {
		return Record{}, io.EOF
	}
	rec := f.records[f.pos]
	f.pos++
	return rec, nil
}

func (f *fakeReader) Close() error {
	f.closed = true
	return nil
}

func openWith(r *fakeReader) OpenFunc {
	return func(string) (RecordReader, error) { return r, nil }
}

func records(n int, level int, text string) []Record {
	out := make([]Record, n)
	for i := range out {
		out[i] = Record{
			Number:     i + 1,
			Level:      level,
			SystemTime: fmt.Sprintf("2024-05-01T12:%02d:%02d.0000000Z", (i/60)%60, i%60),
			Text:       text,
		}
	}
	return out
}

func TestScanEvtx_StopsAtRecordCap(t *testing.T) {
	r := &fakeReader{records: records(12000, LevelError, `{"msg":"service fail"}`)}

	res, err := ScanEvtx(context.Background(), "System.evtx", match.MustNew("fail"), EvtxOptions{Open: openWith(r)})
	if err != nil {
		t.Fatalf("ScanEvtx error = %v", err)
	}
	if res.Processed != DefaultMaxRecords {
		t.Fatalf("Processed = %d, want %d", res.Processed, DefaultMaxRecords)
	}
	if !res.Truncated {
		t.Fatalf("Truncated = false, want true")
	}
	if len(res.Matches) != DefaultMaxRecords {
		t.Fatalf("got %d matches, want %d", len(res.Matches), DefaultMaxRecords)
	}
	if !r.closed {
		t.Fatalf("reader was not closed")
	}
}

func TestScanEvtx_ExactlyAtCapIsNotTruncated(t *testing.T) {
	r := &fakeReader{records: records(5, LevelError, "fail")}
	res, err := ScanEvtx(context.Background(), "x.evtx", match.MustNew("fail"), EvtxOptions{MaxRecords: 5, Open: openWith(r)})
	if err != nil {
		t.Fatalf("ScanEvtx error = %v", err)
	}
	if res.Processed != 5 || res.Truncated {
		t.Fatalf("Processed = %d Truncated = %v, want 5 false", res.Processed, res.Truncated)
	}
}

func TestScanEvtx_FiltersSeverityAndPhrase(t *testing.T) {
	r := &fakeReader{records: []Record{
		{Number: 1, Level: LevelError, SystemTime: "2024-05-01T12:00:00Z", Text: "disk fail"},
		{Number: 2, Level: 4, SystemTime: "2024-05-01T12:00:01Z", Text: "disk fail"},
		{Number: 3, Level: LevelError, SystemTime: "2024-05-01T12:00:02Z", Text: "all good"},
		{Number: 4, Level: -1, SystemTime: "2024-05-01T12:00:03Z", Text: "fail"},
	}}

	res, err := ScanEvtx(context.Background(), "x.evtx", match.MustNew("fail"), EvtxOptions{Open: openWith(r)})
	if err != nil {
		t.Fatalf("ScanEvtx error = %v", err)
	}
	if len(res.Matches) != 1 || res.Matches[0].Line != 1 {
		t.Fatalf("matches = %+v", res.Matches)
	}
	if res.Matches[0].Kind != KindEvtx {
		t.Fatalf("Kind = %q, want evtx", res.Matches[0].Kind)
	}
	if res.Processed != 4 {
		t.Fatalf("Processed = %d, want 4", res.Processed)
	}
}

func TestScanEvtx_CustomLevels(t *testing.T) {
	r := &fakeReader{records: []Record{
		{Number: 1, Level: 1, SystemTime: "2024-05-01T12:00:00Z", Text: "fail"},
		{Number: 2, Level: 3, SystemTime: "2024-05-01T12:00:01Z", Text: "fail"},
	}}
	res, err := ScanEvtx(context.Background(), "x.evtx", match.MustNew("fail"), EvtxOptions{Levels: []int{1, 2}, Open: openWith(r)})
	if err != nil {
		t.Fatalf("ScanEvtx error = %v", err)
	}
	if len(res.Matches) != 1 || res.Matches[0].Line != 1 {
		t.Fatalf("matches = %+v", res.Matches)
	}
}

func TestScanEvtx_BadTime(t *testing.T) {
	r := &fakeReader{records: []Record{
		{Number: 7, Level: LevelError, SystemTime: "soon", Text: "fail"},
	}}
	_, err := ScanEvtx(context.Background(), "x.evtx", match.MustNew("fail"), EvtxOptions{Open: openWith(r)})
	var tsErr *TimestampError
	if !errors.As(err, &tsErr) || tsErr.Line != 7 {
		t.Fatalf("error = %v, want *TimestampError for record 7", err)
	}
}

func TestScanEvtx_ReadErrorKeepsPartial(t *testing.T) {
	r := &fakeReader{records: records(10, LevelError, "fail"), failAt: 4}
	res, err := ScanEvtx(context.Background(), "x.evtx", match.MustNew("fail"), EvtxOptions{Open: openWith(r)})
	if err == nil {
		t.Fatalf("expected read error")
	}
	if len(res.Matches) != 3 {
		t.Fatalf("got %d partial matches, want 3", len(res.Matches))
	}
}

func TestScanEvtx_OpenErrors(t *testing.T) {
	open := func(string) (RecordReader, error) { return nil, fmt.Errorf("stat: %w", fs.ErrNotExist) }
	_, err := ScanEvtx(context.Background(), "gone.evtx", match.MustNew("fail"), EvtxOptions{Open: open})
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("error = %v, want ErrFileNotFound", err)
	}
}

func TestLookupAndLeafString(t *testing.T) {
	fields := map[string]interface{}{
		"Event": map[string]interface{}{
			"System": map[string]interface{}{
				"Level":       int64(2),
				"TimeCreated": map[string]interface{}{"SystemTime": " 2024-05-01T12:00:00Z "},
			},
		},
	}
	v, ok := lookup(fields, "Event", "System", "Level")
	if !ok || leafString(v) != "2" {
		t.Fatalf("Level lookup = %v %v", v, ok)
	}
	v, ok = lookup(fields, "Event", "System", "TimeCreated", "SystemTime")
	if !ok || leafString(v) != "2024-05-01T12:00:00Z" {
		t.Fatalf("SystemTime lookup = %q %v", leafString(v), ok)
	}
	if _, ok := lookup(fields, "Event", "EventData", "Data"); ok {
		t.Fatalf("lookup of missing path succeeded")
	}
}

type sliceSource struct {
	events []*evtx.GoEvtxMap
	err    error
}

func (s *sliceSource) nextEvent() (*evtx.GoEvtxMap, error) {
	if len(s.events) == 0 {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}
	e := s.events[0]
	s.events = s.events[1:]
	return e, nil
}

func systemEvent(id string, level string, at time.Time) *evtx.GoEvtxMap {
	e := evtx.GoEvtxMap{
		"Event": evtx.GoEvtxMap{
			"System": evtx.GoEvtxMap{
				"EventRecordID": id,
				"Level":         level,
				"TimeCreated":   evtx.GoEvtxMap{"SystemTime": at},
			},
			"EventData": evtx.GoEvtxMap{"Data": "disk fail on C:"},
		},
	}
	return &e
}

func TestEvtxFileNext(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 30, 0, 5000, time.UTC)
	f := &evtxFile{source: &sliceSource{events: []*evtx.GoEvtxMap{
		systemEvent("4711", "2", at),
		nil,
		systemEvent("not a number", "", at),
	}}}

	rec, err := f.Next()
	if err != nil {
		t.Fatalf("Next error = %v", err)
	}
	if rec.Number != 4711 || rec.Level != LevelError {
		t.Fatalf("record = %+v, want number 4711 level 2", rec)
	}
	ts, err := ParseEvtxTime(rec.SystemTime)
	if err != nil || !ts.Equal(at) {
		t.Fatalf("SystemTime = %q (%v), want %v", rec.SystemTime, err, at)
	}
	if !strings.Contains(rec.Text, "disk fail on C:") || !strings.HasPrefix(rec.Text, "{") {
		t.Fatalf("Text = %q, want JSON containing the event data", rec.Text)
	}

	rec, err = f.Next()
	if err != nil {
		t.Fatalf("Next error = %v", err)
	}
	if rec.Number != 2 || rec.Level != -1 || rec.Text != "" {
		t.Fatalf("undecodable record = %+v, want position 2 level -1", rec)
	}

	rec, err = f.Next()
	if err != nil {
		t.Fatalf("Next error = %v", err)
	}
	if rec.Number != 3 || rec.Level != -1 {
		t.Fatalf("record without id or level = %+v, want position 3 level -1", rec)
	}

	if _, err := f.Next(); !errors.Is(err, io.EOF) {
		t.Fatalf("Next after last event error = %v, want io.EOF", err)
	}
}

func TestEvtxFileNextPropagatesDecodeError(t *testing.T) {
	f := &evtxFile{source: &sliceSource{err: errors.New("decode chunk 3: bad magic")}}
	if _, err := f.Next(); err == nil || errors.Is(err, io.EOF) {
		t.Fatalf("Next error = %v, want decode error", err)
	}
}

func TestChunkSourceEmptyFile(t *testing.T) {
	s := &chunkSource{file: &evtx.File{}}
	if _, err := s.nextEvent(); !errors.Is(err, io.EOF) {
		t.Fatalf("nextEvent error = %v, want io.EOF", err)
	}
}

func TestEvtxFileCloseWithoutFile(t *testing.T) {
	f := &evtxFile{source: &sliceSource{}}
	if err := f.Close(); err != nil {
		t.Fatalf("Close error = %v", err)
	}
}

func TestScanEvtx_ThroughEvtxFile(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var events []*evtx.GoEvtxMap
	for i := 0; i < 5; i++ {
		events = append(events, systemEvent(fmt.Sprint(100+i), "2", at.Add(time.Duration(i)*time.Second)))
	}
	open := func(string) (RecordReader, error) {
		return &evtxFile{source: &sliceSource{events: events}}, nil
	}

	res, err := ScanEvtx(context.Background(), "System.evtx", match.MustNew("disk fail"), EvtxOptions{MaxRecords: 3, Open: open})
	if err != nil {
		t.Fatalf("ScanEvtx error = %v", err)
	}
	if !res.Truncated || res.Processed != 3 || len(res.Matches) != 3 {
		t.Fatalf("Processed = %d Truncated = %v matches = %d, want 3 true 3", res.Processed, res.Truncated, len(res.Matches))
	}
	if res.Matches[2].Line != 102 || !res.Matches[2].At.Equal(at.Add(2*time.Second)) {
		t.Fatalf("third match = %+v", res.Matches[2])
	}
}
