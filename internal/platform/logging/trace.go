package logging

import (
	"cmp"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

const traceparentHeader = "traceparent"

// version-traceid-parentid-flags, see W3C Trace Context.
var traceparentRe = regexp.MustCompile(`^([0-9a-f]{2})-([0-9a-f]{32})-([0-9a-f]{16})-([0-9a-f]{2})$`)

// traceParent is a parsed traceparent header.
type traceParent struct {
	traceID string
	spanID  string
	sampled bool
}

// parseTraceParent rejects the reserved version ff and all-zero IDs.
func parseTraceParent(header string) (traceParent, bool) {
	m := traceparentRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(header)))
	if m == nil || m[1] == "ff" {
		return traceParent{}, false
	}
	if strings.Trim(m[2], "0") == "" || strings.Trim(m[3], "0") == "" {
		return traceParent{}, false
	}
	flags, err := strconv.ParseUint(m[4], 16, 8)
	if err != nil {
		return traceParent{}, false
	}
	return traceParent{traceID: m[2], spanID: m[3], sampled: flags&0x01 == 1}, true
}

func (t traceParent) resource(projectID string) string {
	return fmt.Sprintf("projects/%s/traces/%s", projectID, t.traceID)
}

// requestScope derives the request logger and correlation ID. Cloud Trace
// attributes need both a project ID and a valid traceparent; without them
// the request ID is the correlation ID.
func requestScope(base *slog.Logger, header, projectID, requestID string) scope {
	if base == nil {
		base = Logger()
	}
	var args []any
	correlationID := requestID
	if tp, ok := parseTraceParent(header); ok && projectID != "" {
		correlationID = tp.resource(projectID)
		args = append(args,
			slog.String("logging.googleapis.com/trace", correlationID),
			slog.String("logging.googleapis.com/spanId", tp.spanID),
			slog.Bool("logging.googleapis.com/trace_sampled", tp.sampled),
		)
	}
	if requestID != "" {
		args = append(args, slog.String("requestId", requestID))
	}
	if len(args) > 0 {
		base = base.With(args...)
	}
	return scope{logger: base, correlationID: correlationID}
}

var projectID = sync.OnceValue(func() string {
	return cmp.Or(
		os.Getenv("FIREBASE_PROJECT_ID"),
		os.Getenv("GOOGLE_CLOUD_PROJECT"),
		os.Getenv("GCP_PROJECT"),
		os.Getenv("GCLOUD_PROJECT"),
	)
})
