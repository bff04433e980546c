package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHandlerExportsMetrics(t *testing.T) {
	before := TotalRequests()
	RecordRequest("http", "vigenere", "analyse")
	RecordError("grpc", "caesar", "decode", "InvalidArgument")
	ObserveRequestLatency("http", "analyse", "200", 3*time.Millisecond)
	done := TrackAnalysis("vigenere")
	done()
	RecordDetection("scytale")

	if got := TotalRequests(); got != before+1 {
		t.Fatalf("expected total requests %d, got %d", before+1, got)
	}

	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()

	Handler().ServeHTTP(rr, req)

	body := rr.Body.String()
	required := []string{
		"# HELP classic_requests_total",
		"# TYPE classic_analysis_duration_seconds histogram",
		`classic_requests_total{transport="http",cipher="vigenere",operation="analyse"} 1`,
		`classic_request_errors_total{transport="grpc",cipher="caesar",operation="decode",code="invalidargument"} 1`,
		`classic_request_duration_seconds_bucket{transport="http",operation="analyse",code="200",le="0.005"} 1`,
		`classic_request_duration_seconds_bucket{transport="http",operation="analyse",code="200",le="0.001"} 0`,
		`classic_analysis_duration_seconds_count{cipher="vigenere"} 1`,
		"classic_analyses_in_flight 0",
		`classic_detections_total{cipher="scytale"} 1`,
	}
	for _, metric := range required {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected metric %q to be exported, got %q", metric, body)
		}
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("unexpected content type %q", ct)
	}
}

func TestHistogramBucketsAreCumulative(t *testing.T) {
	hv := newHistogramVec("test_seconds", "test", nil, []float64{1, 2})
	hv.Observe(nil, 0.5)
	hv.Observe(nil, 1.5)
	hv.Observe(nil, 9)

	var sb strings.Builder
	hv.write(&sb)
	out := sb.String()
	for _, line := range []string{
		`test_seconds_bucket{le="1"} 1`,
		`test_seconds_bucket{le="2"} 2`,
		`test_seconds_bucket{le="+Inf"} 3`,
		"test_seconds_sum 11",
		"test_seconds_count 3",
	} {
		if !strings.Contains(out, line+"\n") {
			t.Fatalf("expected %q in %q", line, out)
		}
	}
}
