package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestSlogBridge_FieldsAndContext(t *testing.T) {
	var buf bytes.Buffer
	zl := Build(Config{Level: "debug", Component: "client"}, &buf)
	log := NewSlog(&zl)

	ctx := WithRequestID(context.Background(), "req-1")
	log.DebugContext(ctx, "request done", "status", 200, "path", "layer/a.json")

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if got["msg"] != "request done" || got["level"] != "debug" {
		t.Fatalf("unexpected line: %v", got)
	}
	if got["request_id"] != "req-1" || got["component"] != "client" {
		t.Fatalf("missing context fields: %v", got)
	}
	if got["status"] != float64(200) || got["path"] != "layer/a.json" {
		t.Fatalf("missing attrs: %v", got)
	}
}

func TestSlogBridge_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	zl := Build(Config{Level: "warn"}, &buf)
	log := NewSlog(&zl)

	log.Info("hidden")
	log.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Fatalf("warn line missing: %q", out)
	}
}

func TestWithRequestID_GeneratesWhenEmpty(t *testing.T) {
	ctx := WithRequestID(context.Background(), "")
	if RequestID(ctx) == "" {
		t.Fatalf("expected generated request id")
	}
}
