package scanner

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// TextLayout is the layout of the two leading tokens of a text log line.
// Fractional seconds after the seconds field are accepted when parsing.
const TextLayout = "2006-01-02 15:04:05"

var errMissingTokens = errors.New("line has fewer than two tokens")

// ParseLineTimestamp joins the first two whitespace-separated tokens of line
// and parses them with TextLayout. It returns the token text it tried.
func ParseLineTimestamp(line string) (time.Time, string, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return time.Time{}, strings.TrimSpace(line), errMissingTokens
	}
	value := fields[0] + " " + fields[1]
	ts, err := time.Parse(TextLayout, value)
	if err != nil {
		return time.Time{}, value, err
	}
	return ts, value, nil
}

var evtxLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ParseEvtxTime parses the SystemTime attribute of an EVTX record.
func ParseEvtxTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty system time")
	}
	for _, layout := range evtxLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised system time %q", value)
}
