package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

const sampledHeader = "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01"

func TestParseTraceParent(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		ok      bool
		sampled bool
	}{
		{"sampled", sampledHeader, true, true},
		{"not sampled", "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-00", true, false},
		{"other flag bits", "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-03", true, true},
		{"upper case", "00-0AF7651916CD43DD8448EB211C80319C-B7AD6B7169203331-01", true, true},
		{"empty", "", false, false},
		{"garbage", "invalid-header", false, false},
		{"version ff", "ff-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01", false, false},
		{"zero trace id", "00-00000000000000000000000000000000-b7ad6b7169203331-01", false, false},
		{"zero span id", "00-0af7651916cd43dd8448eb211c80319c-0000000000000000-01", false, false},
		{"short span", "00-0af7651916cd43dd8448eb211c80319c-b7ad6b71-01", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tp, ok := parseTraceParent(tt.header)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if tp.traceID != "0af7651916cd43dd8448eb211c80319c" || tp.spanID != "b7ad6b7169203331" {
				t.Fatalf("unexpected ids %+v", tp)
			}
			if tp.sampled != tt.sampled {
				t.Fatalf("sampled = %v, want %v", tp.sampled, tt.sampled)
			}
		})
	}
}

func scopeEntry(t *testing.T, header, projectID, requestID string) (scope, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	sc := requestScope(slog.New(slog.NewJSONHandler(&buf, nil)), header, projectID, requestID)
	sc.logger.Info("probe")
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to unmarshal %q: %v", buf.String(), err)
	}
	return sc, entry
}

func TestRequestScope_CloudTrace(t *testing.T) {
	sc, entry := scopeEntry(t, sampledHeader, "cards-prod", "req-123")

	want := "projects/cards-prod/traces/0af7651916cd43dd8448eb211c80319c"
	if sc.correlationID != want {
		t.Fatalf("expected correlation %q, got %q", want, sc.correlationID)
	}
	if entry["logging.googleapis.com/trace"] != want {
		t.Fatalf("unexpected trace %v", entry["logging.googleapis.com/trace"])
	}
	if entry["logging.googleapis.com/spanId"] != "b7ad6b7169203331" {
		t.Fatalf("unexpected spanId %v", entry["logging.googleapis.com/spanId"])
	}
	if entry["logging.googleapis.com/trace_sampled"] != true {
		t.Fatalf("unexpected trace_sampled %v", entry["logging.googleapis.com/trace_sampled"])
	}
	if entry["requestId"] != "req-123" {
		t.Fatalf("unexpected requestId %v", entry["requestId"])
	}
}

func TestRequestScope_FallsBackToRequestID(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		projectID string
	}{
		{"no project", sampledHeader, ""},
		{"no header", "", "cards-prod"},
		{"bad header", "invalid", "cards-prod"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, entry := scopeEntry(t, tt.header, tt.projectID, "req-456")
			if sc.correlationID != "req-456" {
				t.Fatalf("expected request ID as correlation, got %q", sc.correlationID)
			}
			if _, ok := entry["logging.googleapis.com/trace"]; ok {
				t.Fatal("expected no trace attribute")
			}
		})
	}
}

func TestRequestScope_Bare(t *testing.T) {
	base := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	sc := requestScope(base, "", "", "")
	if sc.logger != base {
		t.Fatal("expected the base logger unchanged")
	}
	if sc.correlationID != "" {
		t.Fatalf("expected empty correlation, got %q", sc.correlationID)
	}
	if requestScope(nil, "", "", "").logger == nil {
		t.Fatal("expected a logger for nil base")
	}
}
