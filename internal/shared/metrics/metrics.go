package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	analysesTotal       = newLabeledCounter("content_type", "status")
	upstreamErrorsTotal = newLabeledCounter("kind")
	evidenceFailovers   atomic.Uint64
	evidenceExhausted   atomic.Uint64
	persistFailures     atomic.Uint64
	feedbackRecorded    atomic.Uint64

	analysisDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncVerdict counts a verdict returned to a caller.
func IncVerdict(contentType, status string) {
	analysesTotal.Inc(contentType, status)
}

// IncUpstreamError counts a classified model or evidence failure.
func IncUpstreamError(kind string) {
	upstreamErrorsTotal.Inc(kind)
}

// AddEvidenceFailovers counts credentials skipped before one succeeded.
func AddEvidenceFailovers(n int) {
	if n > 0 {
		evidenceFailovers.Add(uint64(n))
	}
}

func IncEvidenceExhausted() {
	evidenceExhausted.Add(1)
}

func IncPersistFailure() {
	persistFailures.Add(1)
}

func IncFeedbackRecorded() {
	feedbackRecorded.Add(1)
}

// ObserveAnalysisDurationMs records an analysis duration in milliseconds.
func ObserveAnalysisDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	analysisDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeLabeled(&buf, "analyses_total", "Verdicts returned by content type and status", analysesTotal)
	writeLabeled(&buf, "upstream_errors_total", "Upstream failures by kind", upstreamErrorsTotal)
	writeCounter(&buf, "evidence_failovers_total", "Search credentials skipped before a success", evidenceFailovers.Load())
	writeCounter(&buf, "evidence_exhausted_total", "Searches where every credential failed", evidenceExhausted.Load())
	writeCounter(&buf, "persist_failures_total", "Analysis records that could not be stored", persistFailures.Load())
	writeCounter(&buf, "feedback_recorded_total", "Feedback corrections stored", feedbackRecorded.Load())
	writeHistogram(&buf, "analysis_duration_ms", "Analysis duration in milliseconds", analysisDuration.Snapshot())
	return buf.String()
}

type labeledCounter struct {
	mu     sync.Mutex
	labels []string
	values map[string]uint64
	sets   map[string][]string
}

func newLabeledCounter(labels ...string) *labeledCounter {
	return &labeledCounter{
		labels: labels,
		values: make(map[string]uint64),
		sets:   make(map[string][]string),
	}
}

func (l *labeledCounter) Inc(values ...string) {
	key := fmt.Sprint(values)
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.sets[key]; !ok {
		l.sets[key] = append([]string(nil), values...)
	}
	l.values[key]++
}

func (l *labeledCounter) Get(values ...string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.values[fmt.Sprint(values)]
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe records into the first bucket that fits; Render accumulates.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			return
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeLabeled(buf *bytes.Buffer, name, help string, l *labeledCounter) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	l.mu.Lock()
	defer l.mu.Unlock()
	keys := make([]string, 0, len(l.values))
	for k := range l.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		var labels bytes.Buffer
		for i, v := range l.sets[k] {
			if i > 0 {
				labels.WriteByte(',')
			}
			fmt.Fprintf(&labels, "%s=%q", l.labels[i], v)
		}
		fmt.Fprintf(buf, "%s{%s} %d\n", name, labels.String(), l.values[k])
	}
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
