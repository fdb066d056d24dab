// Package aggregate buckets match timestamps into per-second counts.
package aggregate

import (
	"sort"
	"time"
)

// Bucket is the number of matches that fell within one second.
type Bucket struct {
	At    time.Time `json:"at"`
	Count int       `json:"count"`
}

// PerSecond truncates each timestamp to the whole second and counts them.
func PerSecond(timestamps []time.Time) map[time.Time]int {
	counts := make(map[time.Time]int, len(timestamps))
	for _, ts := range timestamps {
		counts[ts.Truncate(time.Second)]++
	}
	return counts
}

// Sorted returns the buckets of counts ordered by time.
func Sorted(counts map[time.Time]int) []Bucket {
	buckets := make([]Bucket, 0, len(counts))
	for at, n := range counts {
		buckets = append(buckets, Bucket{At: at, Count: n})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].At.Before(buckets[j].At)
	})
	return buckets
}

// Peak returns the largest bucket count, or zero for no buckets.
func Peak(buckets []Bucket) int {
	peak := 0
	for _, b := range buckets {
		if b.Count > peak {
			peak = b.Count
		}
	}
	return peak
}
