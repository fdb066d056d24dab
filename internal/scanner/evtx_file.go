package scanner

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/0xrawsec/golang-evtx/evtx"
)

// eventSource yields decoded events in file order. A nil event is a record
// the decoder could not render. io.EOF ends the file.
type eventSource interface {
	nextEvent() (*evtx.GoEvtxMap, error)
}

// evtxFile adapts a golang-evtx file to RecordReader.
type evtxFile struct {
	source eventSource
	close  func() error
	n      int
}

// OpenEvtxFile opens an EVTX file, tolerating files still flagged dirty by
// the event log service. Chunks are decoded on demand by Next; nothing reads
// the file after Close.
func OpenEvtxFile(path string) (_ RecordReader, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse evtx header: %v", r)
		}
	}()
	ef, err := evtx.OpenDirty(path)
	if err != nil {
		return nil, err
	}
	f := &ef
	return &evtxFile{source: &chunkSource{file: f}, close: f.Close}, nil
}

func (f *evtxFile) Next() (Record, error) {
	e, err := f.source.nextEvent()
	if err != nil {
		return Record{}, err
	}
	f.n++
	if e == nil {
		return Record{Number: f.n, Level: -1}, nil
	}

	fields := map[string]interface{}(*e)
	rec := Record{Number: f.n, Level: -1}
	if v, ok := lookup(fields, "Event", "System", "EventRecordID"); ok {
		if n, err := strconv.Atoi(leafString(v)); err == nil {
			rec.Number = n
		}
	}
	if v, ok := lookup(fields, "Event", "System", "Level"); ok {
		if n, err := strconv.Atoi(leafString(v)); err == nil {
			rec.Level = n
		}
	}
	if v, ok := lookup(fields, "Event", "System", "TimeCreated", "SystemTime"); ok {
		rec.SystemTime = leafString(v)
	}

	text, err := json.Marshal(fields)
	if err != nil {
		return rec, fmt.Errorf("render record %d: %w", rec.Number, err)
	}
	rec.Text = string(text)
	return rec, nil
}

// chunkSource walks the chunks of a file one at a time.
type chunkSource struct {
	file    *evtx.File
	index   int
	chunk   evtx.Chunk
	pending []int32
}

func (s *chunkSource) nextEvent() (gem *evtx.GoEvtxMap, err error) {
	// The decoder panics on malformed input.
	defer func() {
		if r := recover(); r != nil {
			gem, err = nil, fmt.Errorf("decode chunk %d: %v", s.index-1, r)
		}
	}()

	for len(s.pending) == 0 {
		if s.index >= int(s.file.Header.ChunkCount) {
			return nil, io.EOF
		}
		offset := int64(s.file.Header.ChunkDataOffset) + int64(evtx.ChunkSize)*int64(s.index)
		s.index++
		chunk, ferr := s.file.FetchChunk(offset)
		if errors.Is(ferr, io.EOF) {
			return nil, io.EOF
		}
		if ferr != nil {
			return nil, fmt.Errorf("fetch chunk %d: %w", s.index-1, ferr)
		}
		s.chunk = chunk
		s.pending = chunk.EventOffsets
	}

	offset := s.pending[0]
	s.pending = s.pending[1:]
	event, perr := s.chunk.ParseEvent(int64(offset)).GoEvtxMap(&s.chunk)
	if perr != nil {
		// Counted as a record that cannot match.
		return nil, nil
	}
	return event, nil
}

func (f *evtxFile) Close() error {
	if f.close == nil {
		return nil
	}
	return f.close()
}

// lookup walks nested event maps along path.
func lookup(fields map[string]interface{}, path ...string) (interface{}, bool) {
	var cur interface{} = fields
	for _, key := range path {
		var m map[string]interface{}
		switch node := cur.(type) {
		case map[string]interface{}:
			m = node
		case evtx.GoEvtxMap:
			m = map[string]interface{}(node)
		case *evtx.GoEvtxMap:
			if node == nil {
				return nil, false
			}
			m = map[string]interface{}(*node)
		default:
			return nil, false
		}
		next, ok := m[key]
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

func leafString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano)
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.UTC().Format(time.RFC3339Nano)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}
