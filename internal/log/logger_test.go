package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNewJSONHandlerWritesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: FormatJSON, Component: ComponentLedger, Output: &buf})
	logger.Info("hello", FieldBuildingID, "bld-1")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	if entry[FieldComponent] != ComponentLedger {
		t.Fatalf("component = %v", entry[FieldComponent])
	}
	if entry[FieldBuildingID] != "bld-1" {
		t.Fatalf("building_id = %v", entry[FieldBuildingID])
	}
}

func TestNewHandlerFormats(t *testing.T) {
	for _, format := range []string{FormatText, FormatJSON, FormatTint, "unknown"} {
		var buf bytes.Buffer
		slog.New(NewHandler(&buf, format, slog.LevelInfo)).Info("msg")
		if !strings.Contains(buf.String(), "msg") {
			t.Fatalf("%s handler wrote %q", format, buf.String())
		}
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestToSliceIsSorted(t *testing.T) {
	s := NewFields().WithOperation(OpExport).WithBuilding("bld-1").WithError(errors.New("x")).ToSlice()
	want := []any{FieldBuildingID, "bld-1", FieldError, "x", FieldOperation, OpExport}
	if len(s) != len(want) {
		t.Fatalf("got %v", s)
	}
	for i := range want {
		if s[i] != want[i] {
			t.Fatalf("got %v, want %v", s, want)
		}
	}
}

func TestWithLoggerRoundTrip(t *testing.T) {
	logger := New(Config{Format: FormatText, Component: ComponentHTTP, Output: &bytes.Buffer{}})
	if got := FromContext(WithLogger(context.Background(), logger)); got != logger {
		t.Fatalf("logger not found in context")
	}
	if FromContext(context.Background()).Component() != "unknown" {
		t.Fatalf("expected fallback logger")
	}
}

func TestStructuredLoggerPayment(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Format: FormatJSON, Output: &buf}))
	sl.LogPaymentRecorded(context.Background(), "bld-1", "r08", 2, 1700, "especes", "2026-03")

	for _, want := range []string{`"resident_id":"r08"`, `"months_covered":2`, `"paid_through":"2026-03"`} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("missing %s in %s", want, buf.String())
		}
	}
}
