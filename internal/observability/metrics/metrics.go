package metrics

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type collector interface {
	write(sb *strings.Builder)
}

type counterVec struct {
	name   string
	help   string
	labels []string

	mu     sync.RWMutex
	values map[string]float64
}

type gaugeVec struct {
	name   string
	help   string
	labels []string

	mu     sync.RWMutex
	values map[string]float64
}

type histogramVec struct {
	name    string
	help    string
	labels  []string
	buckets []float64

	mu     sync.RWMutex
	values map[string]*histogramValue
}

type histogramValue struct {
	counts []uint64
	sum    float64
	total  uint64
}

// Analysis time grows with the search bounds, so the buckets reach further
// than request latency usually needs.
var durationBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

var (
	collectors []collector

	requests         = newCounterVec("classic_requests_total", "Total number of cipher requests handled.", []string{"transport", "cipher", "operation"})
	requestErrors    = newCounterVec("classic_request_errors_total", "Total number of cipher requests that failed.", []string{"transport", "cipher", "operation", "code"})
	requestLatency   = newHistogramVec("classic_request_duration_seconds", "Latency of cipher requests broken down by transport and operation.", []string{"transport", "operation", "code"}, durationBuckets)
	analysisLatency  = newHistogramVec("classic_analysis_duration_seconds", "Time spent in ciphertext-only analysis per cipher.", []string{"cipher"}, durationBuckets)
	analysesInFlight = newGaugeVec("classic_analyses_in_flight", "Number of analyses currently running.", nil)
	detections       = newCounterVec("classic_detections_total", "Cipher kinds ranked first by the detector.", []string{"cipher"})

	totalRequests uint64
	inFlight      int64
)

func init() {
	collectors = []collector{requests, requestErrors, requestLatency, analysisLatency, analysesInFlight, detections}
}

func newCounterVec(name, help string, labels []string) *counterVec {
	return &counterVec{name: name, help: help, labels: labels, values: make(map[string]float64)}
}

func newGaugeVec(name, help string, labels []string) *gaugeVec {
	return &gaugeVec{name: name, help: help, labels: labels, values: make(map[string]float64)}
}

func newHistogramVec(name, help string, labels []string, buckets []float64) *histogramVec {
	return &histogramVec{
		name:    name,
		help:    help,
		labels:  labels,
		buckets: buckets,
		values:  make(map[string]*histogramValue),
	}
}

func labelKey(labels, values []string) string {
	if len(values) != len(labels) {
		panic(fmt.Sprintf("expected %d labels, got %d", len(labels), len(values)))
	}
	return strings.Join(values, "\x00")
}

func (cv *counterVec) add(delta float64, values ...string) {
	key := labelKey(cv.labels, values)
	cv.mu.Lock()
	cv.values[key] += delta
	cv.mu.Unlock()
}

func (cv *counterVec) IncWith(values ...string) {
	cv.add(1, values...)
}

func (cv *counterVec) write(sb *strings.Builder) {
	writeHeader(sb, cv.name, cv.help, "counter")
	cv.mu.RLock()
	defer cv.mu.RUnlock()
	for _, key := range sortedKeys(cv.values) {
		sb.WriteString(cv.name)
		writeLabels(sb, cv.labels, key, "")
		sb.WriteString(fmt.Sprintf(" %g\n", cv.values[key]))
	}
}

func (gv *gaugeVec) Set(values []string, v float64) {
	key := labelKey(gv.labels, values)
	gv.mu.Lock()
	gv.values[key] = v
	gv.mu.Unlock()
}

func (gv *gaugeVec) write(sb *strings.Builder) {
	writeHeader(sb, gv.name, gv.help, "gauge")
	gv.mu.RLock()
	defer gv.mu.RUnlock()
	for _, key := range sortedKeys(gv.values) {
		sb.WriteString(gv.name)
		writeLabels(sb, gv.labels, key, "")
		sb.WriteString(fmt.Sprintf(" %g\n", gv.values[key]))
	}
}

func (hv *histogramVec) Observe(values []string, sample float64) {
	key := labelKey(hv.labels, values)
	hv.mu.Lock()
	defer hv.mu.Unlock()
	entry, ok := hv.values[key]
	if !ok {
		entry = &histogramValue{counts: make([]uint64, len(hv.buckets)+1)}
		hv.values[key] = entry
	}
	entry.sum += sample
	entry.total++
	idx := sort.SearchFloat64s(hv.buckets, sample)
	entry.counts[idx]++
}

func (hv *histogramVec) write(sb *strings.Builder) {
	writeHeader(sb, hv.name, hv.help, "histogram")
	hv.mu.RLock()
	defer hv.mu.RUnlock()
	for _, key := range sortedKeys(hv.values) {
		entry := hv.values[key]
		cumulative := uint64(0)
		for i, upper := range hv.buckets {
			cumulative += entry.counts[i]
			sb.WriteString(hv.name + "_bucket")
			writeLabels(sb, hv.labels, key, fmt.Sprintf("%g", upper))
			sb.WriteString(fmt.Sprintf(" %d\n", cumulative))
		}
		cumulative += entry.counts[len(hv.buckets)]
		sb.WriteString(hv.name + "_bucket")
		writeLabels(sb, hv.labels, key, "+Inf")
		sb.WriteString(fmt.Sprintf(" %d\n", cumulative))

		sb.WriteString(hv.name + "_sum")
		writeLabels(sb, hv.labels, key, "")
		sb.WriteString(fmt.Sprintf(" %g\n", entry.sum))
		sb.WriteString(hv.name + "_count")
		writeLabels(sb, hv.labels, key, "")
		sb.WriteString(fmt.Sprintf(" %d\n", entry.total))
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// writeLabels renders {label="value",...}; le is appended for histogram
// buckets when non-empty.
func writeLabels(sb *strings.Builder, labels []string, key, le string) {
	if len(labels) == 0 && le == "" {
		return
	}
	var parts []string
	if len(labels) > 0 {
		parts = strings.Split(key, "\x00")
	}
	sb.WriteString("{")
	for i, label := range labels {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(label)
		sb.WriteString("=\"")
		sb.WriteString(escapeLabel(parts[i]))
		sb.WriteString("\"")
	}
	if le != "" {
		if len(labels) > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("le=\"")
		sb.WriteString(le)
		sb.WriteString("\"")
	}
	sb.WriteString("}")
}

func writeHeader(sb *strings.Builder, name, help, metricType string) {
	sb.WriteString("# HELP ")
	sb.WriteString(name)
	sb.WriteString(" ")
	sb.WriteString(help)
	sb.WriteString("\n# TYPE ")
	sb.WriteString(name)
	sb.WriteString(" ")
	sb.WriteString(metricType)
	sb.WriteString("\n")
}

func escapeLabel(value string) string {
	value = strings.ReplaceAll(value, "\\", "\\\\")
	value = strings.ReplaceAll(value, "\n", "\\n")
	value = strings.ReplaceAll(value, "\"", "\\\"")
	return value
}

// Handler exposes the metrics registry as an http.Handler compatible with Prometheus.
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		var sb strings.Builder
		for _, collector := range collectors {
			collector.write(&sb)
		}
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		_, _ = w.Write([]byte(sb.String()))
	})
}

func normalise(value, fallback string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return fallback
	}
	return value
}

// RecordRequest increments the request counter for a transport, cipher and operation.
func RecordRequest(transport, cipher, operation string) {
	requests.IncWith(normalise(transport, "unknown"), normalise(cipher, "none"), normalise(operation, "unknown"))
	atomic.AddUint64(&totalRequests, 1)
}

// RecordError increments the error counter, tagged with a status code.
func RecordError(transport, cipher, operation, code string) {
	requestErrors.IncWith(normalise(transport, "unknown"), normalise(cipher, "none"), normalise(operation, "unknown"), normalise(code, "unknown"))
}

// ObserveRequestLatency records the time spent serving a request.
func ObserveRequestLatency(transport, operation, code string, dur time.Duration) {
	requestLatency.Observe([]string{normalise(transport, "unknown"), normalise(operation, "unknown"), normalise(code, "unknown")}, dur.Seconds())
}

// TrackAnalysis marks an analysis of the given cipher as running. The
// returned func records its duration and must be called once it finishes.
func TrackAnalysis(cipher string) func() {
	start := time.Now()
	analysesInFlight.Set(nil, float64(atomic.AddInt64(&inFlight, 1)))
	return func() {
		analysesInFlight.Set(nil, float64(atomic.AddInt64(&inFlight, -1)))
		analysisLatency.Observe([]string{normalise(cipher, "any")}, time.Since(start).Seconds())
	}
}

// RecordDetection counts the cipher kind ranked first by the detector.
func RecordDetection(cipher string) {
	detections.IncWith(normalise(cipher, "none"))
}

// TotalRequests returns the total number of requests served since process start.
func TotalRequests() uint64 {
	return atomic.LoadUint64(&totalRequests)
}
