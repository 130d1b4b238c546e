package observability

import (
	"context"
	"fmt"
	"testing"
)

func TestStartSpanRoot(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "GET /api/summary")

	if span.TraceID == "" || span.SpanID == "" {
		t.Error("root span should have trace and span ids")
	}
	if span.ParentID != "" {
		t.Errorf("root span should have no parent, got %q", span.ParentID)
	}
	if GetSpan(ctx) != span {
		t.Error("StartSpan should store the span in the context")
	}
}

func TestStartSpanChild(t *testing.T) {
	ctx, parent := StartSpan(context.Background(), "parent")
	_, child := StartSpan(ctx, "child")

	if child.TraceID != parent.TraceID {
		t.Errorf("child should inherit trace id: %q != %q", child.TraceID, parent.TraceID)
	}
	if child.ParentID != parent.SpanID {
		t.Errorf("child parent id = %q, want %q", child.ParentID, parent.SpanID)
	}
	if child.SpanID == parent.SpanID {
		t.Error("child should get its own span id")
	}
}

func TestSpanFinishAndError(t *testing.T) {
	_, span := StartSpan(context.Background(), "op")
	span.SetTag("http.status_code", "502")
	span.SetError(fmt.Errorf("upstream failed"))
	span.Finish()

	if span.EndTime == nil || span.Duration == nil {
		t.Error("Finish should set end time and duration")
	}
	if span.Status != SpanStatusError {
		t.Errorf("status = %s, want %s", span.Status, SpanStatusError)
	}
	if span.Tags["http.status_code"] != "502" {
		t.Error("SetTag should record the tag")
	}
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc123")
	if got := GetRequestID(ctx); got != "abc123" {
		t.Errorf("GetRequestID = %q, want abc123", got)
	}
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("empty context should yield empty request id, got %q", got)
	}
}
