package perf

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the ring capacity used when none is configured.
const DefaultRingSize = 4096

// Kind tells request timings apart from query timings.
type Kind uint8

const (
	KindRequest Kind = iota
	KindQuery
)

// Sample is one timing observation.
type Sample struct {
	Kind       Kind
	Path       string // "GET /activities/{name}/signup" or the SQLDB method
	Status     int    // 0 for queries
	DurationMs float64
	At         time.Time
}

// Collector keeps the most recent samples in a fixed ring.
// Record never allocates; aggregation happens in Snapshot.
type Collector struct {
	mu    sync.Mutex
	ring  []Sample
	next  int
	total atomic.Int64
}

// NewCollector returns a collector holding up to size samples.
// PRE: size > 0, otherwise DefaultRingSize is used
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{ring: make([]Sample, size)}
}

// Record stores s, overwriting the oldest sample when the ring is full.
func (c *Collector) Record(s Sample) {
	c.mu.Lock()
	c.ring[c.next] = s
	c.next = (c.next + 1) % len(c.ring)
	c.mu.Unlock()
	c.total.Add(1)
}

// Total returns how many samples were ever recorded.
func (c *Collector) Total() int64 {
	return c.total.Load()
}

// PathStat aggregates samples sharing a path.
type PathStat struct {
	Path  string  `json:"path"`
	Count int     `json:"count"`
	AvgMs float64 `json:"avg_ms"`
	MaxMs float64 `json:"max_ms"`
	sumMs float64
}

// Snapshot is the dashboard view of recent timings.
type Snapshot struct {
	Recorded       int64      `json:"recorded"`
	Requests       int        `json:"requests"`
	P50Ms          float64    `json:"p50_ms"`
	P95Ms          float64    `json:"p95_ms"`
	P99Ms          float64    `json:"p99_ms"`
	SlowestPaths   []PathStat `json:"slowest_paths"`
	SlowestQueries []PathStat `json:"slowest_queries"`
}

// Snapshot aggregates samples taken at or after since, keeping the topN
// slowest paths by average duration.
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Sample, len(c.ring))
	copy(buf, c.ring)
	c.mu.Unlock()

	var durations []float64
	byKind := map[Kind]map[string]*PathStat{KindRequest: {}, KindQuery: {}}
	for _, s := range buf {
		if s.At.IsZero() || s.At.Before(since) {
			continue
		}
		if s.Kind == KindRequest {
			durations = append(durations, s.DurationMs)
		}
		stats := byKind[s.Kind]
		if stats == nil {
			continue
		}
		ps, ok := stats[s.Path]
		if !ok {
			ps = &PathStat{Path: s.Path}
			stats[s.Path] = ps
		}
		ps.Count++
		ps.sumMs += s.DurationMs
		ps.MaxMs = math.Max(ps.MaxMs, s.DurationMs)
	}

	sort.Float64s(durations)
	return Snapshot{
		Recorded:       c.Total(),
		Requests:       len(durations),
		P50Ms:          percentile(durations, 50),
		P95Ms:          percentile(durations, 95),
		P99Ms:          percentile(durations, 99),
		SlowestPaths:   slowest(byKind[KindRequest], topN),
		SlowestQueries: slowest(byKind[KindQuery], topN),
	}
}

// percentile interpolates the p-th percentile of an ascending slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo, hi := int(math.Floor(rank)), int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func slowest(stats map[string]*PathStat, n int) []PathStat {
	out := make([]PathStat, 0, len(stats))
	for _, ps := range stats {
		ps.AvgMs = ps.sumMs / float64(ps.Count)
		out = append(out, *ps)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AvgMs == out[j].AvgMs {
			return out[i].Path < out[j].Path
		}
		return out[i].AvgMs > out[j].AvgMs
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
