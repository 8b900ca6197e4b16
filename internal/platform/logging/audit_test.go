package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func captureLogger(t *testing.T) (context.Context, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	return withScope(context.Background(), scope{logger: logger, correlationID: "req-1"}), &buf
}

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to unmarshal %q: %v", buf.String(), err)
	}
	return entry
}

func TestAudit_Success(t *testing.T) {
	ctx, buf := captureLogger(t)

	Audit(ctx, AuditEvent{
		Action:       "card.create",
		Actor:        "editor-123",
		ResourceType: "card",
		ResourceID:   "john-doe",
		Result:       "success",
	})

	entry := decodeEntry(t, buf)
	want := map[string]string{
		"msg":                  "Audit event",
		"level":                "INFO",
		"audit.action":         "card.create",
		"audit.user_id":        "editor-123",
		"audit.resource_type":  "card",
		"audit.resource_id":    "john-doe",
		"audit.result":         "success",
		"audit.correlation_id": "req-1",
	}
	for k, v := range want {
		if entry[k] != v {
			t.Fatalf("%s: expected %q, got %v", k, v, entry[k])
		}
	}
	if _, ok := entry["audit.details"]; ok {
		t.Fatal("expected no audit.details without details")
	}
}

func TestAudit_OutsideRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx := withScope(context.Background(), scope{logger: logger})

	Audit(ctx, AuditEvent{Action: "card.create", ResourceType: "card", ResourceID: "a", Result: "success"})

	if _, ok := decodeEntry(t, &buf)["audit.correlation_id"]; ok {
		t.Fatal("expected no audit.correlation_id without a request")
	}
}

func TestAudit_FailureIsWarning(t *testing.T) {
	ctx, buf := captureLogger(t)

	Audit(ctx, AuditEvent{
		Action:       "card.delete",
		ResourceType: "card",
		ResourceID:   "ghost",
		Result:       "not_found",
		Details:      map[string]any{"renamed_from": "old"},
	})

	entry := decodeEntry(t, buf)
	if entry["level"] != "WARN" {
		t.Fatalf("expected WARN, got %v", entry["level"])
	}
	details, ok := entry["audit.details"].(map[string]any)
	if !ok {
		t.Fatal("expected audit.details to be a map")
	}
	if details["renamed_from"] != "old" {
		t.Fatalf("unexpected details %v", details)
	}
}
