package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func newTestLogger(buf *bytes.Buffer) *Logger {
	l := New("agentlang-test", "debug", "json")
	l.SetOutput(buf)
	return l
}

func TestWithContextAttachesTraceAndUserIDs(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf)

	ctx := WithTraceID(context.Background(), "trace-123")
	ctx = WithUserID(ctx, "user-42")
	ctx = WithModule(ctx, "Sales")

	l.WithContext(ctx).Info("hello")

	var fields map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &fields); err != nil {
		t.Fatalf("failed to parse log line: %v", err)
	}
	if fields["trace_id"] != "trace-123" {
		t.Fatalf("expected trace_id=trace-123, got %v", fields["trace_id"])
	}
	if fields["user_id"] != "user-42" {
		t.Fatalf("expected user_id=user-42, got %v", fields["user_id"])
	}
	if fields["module"] != "Sales" {
		t.Fatalf("expected module=Sales, got %v", fields["module"])
	}
	if fields["service"] != "agentlang-test" {
		t.Fatalf("expected service=agentlang-test, got %v", fields["service"])
	}
}

func TestWithContextOmitsMissingIDs(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf)

	l.WithContext(context.Background()).Info("bare")

	var fields map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &fields); err != nil {
		t.Fatalf("failed to parse log line: %v", err)
	}
	if _, ok := fields["trace_id"]; ok {
		t.Fatalf("expected no trace_id field, got %v", fields["trace_id"])
	}
	if _, ok := fields["user_id"]; ok {
		t.Fatalf("expected no user_id field, got %v", fields["user_id"])
	}
}

func TestGetTraceIDAndUserIDRoundTrip(t *testing.T) {
	ctx := WithTraceID(context.Background(), "t1")
	ctx = WithUserID(ctx, "u1")

	if GetTraceID(ctx) != "t1" {
		t.Fatalf("expected t1, got %v", GetTraceID(ctx))
	}
	if GetUserID(ctx) != "u1" {
		t.Fatalf("expected u1, got %v", GetUserID(ctx))
	}
	if GetTraceID(context.Background()) != "" {
		t.Fatal("expected empty trace id on bare context")
	}
}

func TestNewTraceIDProducesDistinctValues(t *testing.T) {
	a := NewTraceID()
	b := NewTraceID()
	if a == "" || b == "" || a == b {
		t.Fatalf("expected two distinct non-empty trace ids, got %q and %q", a, b)
	}
}

func TestLogRBACDenialIncludesEntityOpUser(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf)

	l.LogRBACDenial(context.Background(), "Sales/Order", "create", "u1")

	line := buf.String()
	if !strings.Contains(line, `"entity":"Sales/Order"`) {
		t.Fatalf("expected entity field in log line, got: %s", line)
	}
	if !strings.Contains(line, `"rbac denied operation"`) {
		t.Fatalf("expected message in log line, got: %s", line)
	}
}

func TestLogWorkflowInvocationReportsErrorSeverity(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf)

	l.LogWorkflowInvocation(context.Background(), "Welcome", 0, errTest{"boom"})

	var fields map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &fields); err != nil {
		t.Fatalf("failed to parse log line: %v", err)
	}
	if fields["level"] != "error" {
		t.Fatalf("expected error level on failed workflow invocation, got %v", fields["level"])
	}
	if fields["workflow"] != "Welcome" {
		t.Fatalf("expected workflow=Welcome, got %v", fields["workflow"])
	}
}

func TestDefaultLoggerIsLazilyInitialized(t *testing.T) {
	defaultLogger = nil
	l := Default()
	if l == nil {
		t.Fatal("expected a non-nil default logger")
	}
	if Default() != l {
		t.Fatal("expected Default() to return the same instance on repeat calls")
	}
}

type errTest struct{ msg string }

func (e errTest) Error() string { return e.msg }
