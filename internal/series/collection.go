package series

import (
	"sort"
	"time"
)

// Ref addresses a point by series index and point index.
type Ref struct {
	Series int
	Index  int
}

// Bounds is the extent of the visible points.
type Bounds struct {
	Start, End time.Time
	Min, Max   float64
	Empty      bool
}

// Collection is the ordered set of series shown on one chart.
type Collection struct {
	Mode   Mode
	series []*Series
}

// NewCollection returns a collection over list, in order.
func NewCollection(mode Mode, list ...*Series) *Collection {
	return &Collection{Mode: mode, series: list}
}

// Len returns the number of series.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.series)
}

// Series returns series i, or nil when out of range.
func (c *Collection) Series(i int) *Series {
	if c == nil || i < 0 || i >= len(c.series) {
		return nil
	}
	return c.series[i]
}

// All returns every series, visible or not.
func (c *Collection) All() []*Series {
	if c == nil {
		return nil
	}
	return c.series
}

// Toggle flips the visibility of series i and reports the new state.
// Out-of-range indexes are ignored.
func (c *Collection) Toggle(i int) bool {
	s := c.Series(i)
	if s == nil {
		return false
	}
	s.Visible = !s.Visible
	return s.Visible
}

// Visible returns the visible series in order.
func (c *Collection) Visible() []*Series {
	var out []*Series
	for _, s := range c.All() {
		if s.Visible {
			out = append(out, s)
		}
	}
	return out
}

// Timeline returns refs to all visible points ordered by time. Ties keep
// series order, then point order.
func (c *Collection) Timeline() []Ref {
	var refs []Ref
	for si, s := range c.All() {
		if !s.Visible {
			continue
		}
		for pi := range s.Points {
			refs = append(refs, Ref{Series: si, Index: pi})
		}
	}
	sort.SliceStable(refs, func(i, j int) bool {
		return c.series[refs[i].Series].Points[refs[i].Index].At.Before(c.series[refs[j].Series].Points[refs[j].Index].At)
	})
	return refs
}

// TimelineBetween is Timeline restricted to points within [from, to]. A zero
// bound is open.
func (c *Collection) TimelineBetween(from, to time.Time) []Ref {
	refs := c.Timeline()
	if from.IsZero() && to.IsZero() {
		return refs
	}
	kept := refs[:0]
	for _, ref := range refs {
		p, _ := c.Point(ref)
		if (!from.IsZero() && p.At.Before(from)) || (!to.IsZero() && p.At.After(to)) {
			continue
		}
		kept = append(kept, ref)
	}
	return kept
}

// Point resolves ref.
func (c *Collection) Point(ref Ref) (Point, bool) {
	s := c.Series(ref.Series)
	if s == nil || ref.Index < 0 || ref.Index >= len(s.Points) {
		return Point{}, false
	}
	return s.Points[ref.Index], true
}

// Bounds returns the time and value ranges of visible points.
func (c *Collection) Bounds() Bounds {
	b := Bounds{Empty: true}
	for _, s := range c.Visible() {
		for _, p := range s.Points {
			if b.Empty {
				b = Bounds{Start: p.At, End: p.At, Min: p.Value, Max: p.Value}
				continue
			}
			if p.At.Before(b.Start) {
				b.Start = p.At
			}
			if p.At.After(b.End) {
				b.End = p.At
			}
			b.Min = min(b.Min, p.Value)
			b.Max = max(b.Max, p.Value)
		}
	}
	return b
}

// Matches returns the total match count across all series.
func (c *Collection) Matches() int {
	total := 0
	for _, s := range c.All() {
		total += s.Matches()
	}
	return total
}
