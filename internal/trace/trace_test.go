package trace

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewHasFreshIDs(t *testing.T) {
	a := New()
	b := New()

	if a.TraceID == "" || a.SpanID == "" {
		t.Fatal("New() produced empty IDs")
	}
	if a.TraceID == b.TraceID {
		t.Error("two traces share a trace ID")
	}
}

func TestNewChildKeepsTraceID(t *testing.T) {
	parent := New()
	child := NewChild(parent)

	if child.TraceID != parent.TraceID {
		t.Errorf("child TraceID = %q, want %q", child.TraceID, parent.TraceID)
	}
	if child.ParentSpanID != parent.SpanID {
		t.Errorf("child ParentSpanID = %q, want %q", child.ParentSpanID, parent.SpanID)
	}
	if child.SpanID == parent.SpanID {
		t.Error("child reused parent span ID")
	}
}

func TestContextRoundTrip(t *testing.T) {
	tc := New()
	ctx := WithContext(context.Background(), tc)

	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("FromContext did not find injected context")
	}
	if got != tc {
		t.Errorf("FromContext = %+v, want %+v", got, tc)
	}
}

func TestEnsureContextCreatesWhenMissing(t *testing.T) {
	ctx, tc := EnsureContext(context.Background())
	if tc.TraceID == "" {
		t.Fatal("EnsureContext returned empty trace ID")
	}

	ctx2, tc2 := EnsureContext(ctx)
	if tc2 != tc {
		t.Error("EnsureContext replaced existing context")
	}
	if ctx2 != ctx {
		t.Error("EnsureContext rewrapped existing context")
	}
}

func TestStartSpanChainsParent(t *testing.T) {
	ctx, root := StartSpan(context.Background(), "pass")
	_, child := StartSpan(ctx, "detect_map")

	if child.Ctx.TraceID != root.Ctx.TraceID {
		t.Error("child span has different trace ID")
	}
	if child.Ctx.ParentSpanID != root.Ctx.SpanID {
		t.Error("child span parent is not root span")
	}

	root.End()
	if root.Duration() < 0 {
		t.Error("negative span duration")
	}
}

func TestMiddlewareInjectsContext(t *testing.T) {
	var seen Context
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(TraceIDHeader, "abc123")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if seen.TraceID != "abc123" {
		t.Errorf("TraceID = %q, want abc123", seen.TraceID)
	}

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	if seen.TraceID == "" {
		t.Error("middleware did not create trace ID when header absent")
	}
}
