// Package series turns scan matches into plottable series and tracks which of
// them are visible.
package series

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/five82/logdog/internal/aggregate"
	"github.com/five82/logdog/internal/scanner"
)

// Mode selects how matches become points.
type Mode string

const (
	// ModePoints plots one point per match at y = 1.
	ModePoints Mode = "points"
	// ModeCounts plots one point per second at y = matches in that second.
	ModeCounts Mode = "counts"
)

// ParseMode accepts "points" or "counts" (case-insensitive). Empty means ModePoints.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ModePoints):
		return ModePoints, nil
	case string(ModeCounts):
		return ModeCounts, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want points or counts)", s)
	}
}

// Point is one plotted marker and the match data behind it.
type Point struct {
	At    time.Time
	Value float64

	// Payload is the matched line or record text.
	Payload string
	Source  string
	Line    int
	Kind    scanner.Kind

	// Count is the number of matches the point stands for.
	Count int
}

// Series is the plot of one folder.
type Series struct {
	Label   string
	Color   string
	Visible bool
	Points  []Point
}

// FromMatches builds a visible series from the matches of one folder.
// Points are ordered by time.
func FromMatches(label, color string, matches []scanner.Match, mode Mode) *Series {
	s := &Series{Label: label, Color: color, Visible: true}
	if mode == ModeCounts {
		s.Points = countPoints(matches)
		return s
	}
	s.Points = make([]Point, 0, len(matches))
	for _, m := range matches {
		s.Points = append(s.Points, Point{
			At:      m.At,
			Value:   1,
			Payload: m.Text,
			Source:  m.Source,
			Line:    m.Line,
			Kind:    m.Kind,
			Count:   1,
		})
	}
	sort.SliceStable(s.Points, func(i, j int) bool { return s.Points[i].At.Before(s.Points[j].At) })
	return s
}

func countPoints(matches []scanner.Match) []Point {
	first := make(map[time.Time]scanner.Match)
	stamps := make([]time.Time, 0, len(matches))
	for _, m := range matches {
		stamps = append(stamps, m.At)
		key := m.At.Truncate(time.Second)
		if prev, ok := first[key]; !ok || m.At.Before(prev.At) {
			first[key] = m
		}
	}

	buckets := aggregate.Sorted(aggregate.PerSecond(stamps))
	points := make([]Point, 0, len(buckets))
	for _, b := range buckets {
		m := first[b.At]
		payload := m.Text
		if b.Count > 1 {
			payload = fmt.Sprintf("%s\n(+%d more in this second)", m.Text, b.Count-1)
		}
		points = append(points, Point{
			At:      b.At,
			Value:   float64(b.Count),
			Payload: payload,
			Source:  m.Source,
			Line:    m.Line,
			Kind:    m.Kind,
			Count:   b.Count,
		})
	}
	return points
}

// Matches returns the number of matches the series represents.
func (s *Series) Matches() int {
	total := 0
	for _, p := range s.Points {
		total += p.Count
	}
	return total
}
