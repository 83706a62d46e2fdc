package observability

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// Prometheus text exposition for the handful of series this service exports.
// Label values that are missing or empty render as "unknown".

const unknownLabel = "unknown"

type family struct {
	name   string
	help   string
	kind   string
	labels []string
}

func (f family) header(pw *promWriter) {
	pw.printf("# HELP %s %s\n", f.name, f.help)
	pw.printf("# TYPE %s %s\n", f.name, f.kind)
}

// seriesKey normalizes values against the family's label names and returns the
// map key for them.
func (f family) seriesKey(values []string) (string, []string) {
	out := make([]string, len(f.labels))
	for i := range out {
		out[i] = unknownLabel
		if i < len(values) && values[i] != "" {
			out[i] = values[i]
		}
	}
	return strings.Join(out, "\x1f"), out
}

// promWriter keeps the first write error so callers can check once.
type promWriter struct {
	w   io.Writer
	err error
}

func (p *promWriter) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

type CounterVec struct {
	family
	mu     sync.Mutex
	series map[string]*counterSeries
}

type counterSeries struct {
	values []string
	total  float64
}

func NewCounterVec(name, help string, labels []string) *CounterVec {
	return &CounterVec{
		family: family{name: name, help: help, kind: "counter", labels: labels},
		series: map[string]*counterSeries{},
	}
}

func (c *CounterVec) Inc(values ...string) { c.Add(1, values...) }

func (c *CounterVec) Add(v float64, values ...string) {
	if c == nil {
		return
	}
	key, norm := c.seriesKey(values)
	c.mu.Lock()
	s, ok := c.series[key]
	if !ok {
		s = &counterSeries{values: norm}
		c.series[key] = s
	}
	s.total += v
	c.mu.Unlock()
}

// Value returns the current total for one label set.
func (c *CounterVec) Value(values ...string) float64 {
	if c == nil {
		return 0
	}
	key, _ := c.seriesKey(values)
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.series[key]; ok {
		return s.total
	}
	return 0
}

func (c *CounterVec) WritePrometheus(w io.Writer) error {
	if c == nil {
		return nil
	}
	pw := &promWriter{w: w}
	c.header(pw)
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range sortSeries(c.series, func(s *counterSeries) []string { return s.values }) {
		pw.printf("%s%s %g\n", c.name, renderLabels(c.labels, s.values), s.total)
	}
	return pw.err
}

// Gauge holds a single float64 updated atomically.
type Gauge struct {
	family
	bits atomic.Uint64
}

func NewGauge(name, help string) *Gauge {
	return &Gauge{family: family{name: name, help: help, kind: "gauge"}}
}

func (g *Gauge) Set(v float64) {
	if g == nil {
		return
	}
	g.bits.Store(math.Float64bits(v))
}

func (g *Gauge) Inc() { g.add(1) }
func (g *Gauge) Dec() { g.add(-1) }

func (g *Gauge) add(delta float64) {
	if g == nil {
		return
	}
	for {
		old := g.bits.Load()
		next := math.Float64bits(math.Float64frombits(old) + delta)
		if g.bits.CompareAndSwap(old, next) {
			return
		}
	}
}

func (g *Gauge) Value() float64 {
	if g == nil {
		return 0
	}
	return math.Float64frombits(g.bits.Load())
}

func (g *Gauge) WritePrometheus(w io.Writer) error {
	if g == nil {
		return nil
	}
	pw := &promWriter{w: w}
	g.header(pw)
	pw.printf("%s %g\n", g.name, g.Value())
	return pw.err
}

var defaultBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}

type HistogramVec struct {
	family
	bounds []float64
	mu     sync.Mutex
	series map[string]*histSeries
}

// histSeries counts per bucket without accumulation; the last slot is +Inf.
type histSeries struct {
	values []string
	counts []uint64
	sum    float64
	n      uint64
}

func NewHistogramVec(name, help string, labels []string, buckets []float64) *HistogramVec {
	if len(buckets) == 0 {
		buckets = defaultBuckets
	}
	bounds := append([]float64(nil), buckets...)
	sort.Float64s(bounds)
	return &HistogramVec{
		family: family{name: name, help: help, kind: "histogram", labels: labels},
		bounds: bounds,
		series: map[string]*histSeries{},
	}
}

func (h *HistogramVec) Observe(v float64, values ...string) {
	if h == nil {
		return
	}
	key, norm := h.seriesKey(values)
	idx := sort.SearchFloat64s(h.bounds, v)
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.series[key]
	if !ok {
		s = &histSeries{values: norm, counts: make([]uint64, len(h.bounds)+1)}
		h.series[key] = s
	}
	s.counts[idx]++
	s.sum += v
	s.n++
}

func (h *HistogramVec) WritePrometheus(w io.Writer) error {
	if h == nil {
		return nil
	}
	pw := &promWriter{w: w}
	h.header(pw)
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range sortSeries(h.series, func(s *histSeries) []string { return s.values }) {
		var cum uint64
		for i, b := range h.bounds {
			cum += s.counts[i]
			pw.printf("%s_bucket%s %d\n", h.name, renderLabels(h.labels, s.values, "le", fmt.Sprintf("%g", b)), cum)
		}
		pw.printf("%s_bucket%s %d\n", h.name, renderLabels(h.labels, s.values, "le", "+Inf"), s.n)
		lbl := renderLabels(h.labels, s.values)
		pw.printf("%s_sum%s %g\n", h.name, lbl, s.sum)
		pw.printf("%s_count%s %d\n", h.name, lbl, s.n)
	}
	return pw.err
}

func sortSeries[S any](m map[string]S, values func(S) []string) []S {
	out := make([]S, 0, len(m))
	for _, s := range m {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := values(out[i]), values(out[j])
		for k := range a {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return false
	})
	return out
}

// renderLabels formats {name="value",...}; extra is appended as name/value
// pairs.
func renderLabels(names, values []string, extra ...string) string {
	if len(names) == 0 && len(extra) == 0 {
		return ""
	}
	parts := make([]string, 0, len(names)+len(extra)/2)
	for i, name := range names {
		val := unknownLabel
		if i < len(values) && values[i] != "" {
			val = values[i]
		}
		parts = append(parts, name+`="`+escapeLabel(val)+`"`)
	}
	for i := 0; i+1 < len(extra); i += 2 {
		parts = append(parts, extra[i]+`="`+escapeLabel(extra[i+1])+`"`)
	}
	return "{" + strings.Join(parts, ",") + "}"
}

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func escapeLabel(v string) string { return labelEscaper.Replace(v) }
