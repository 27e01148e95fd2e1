package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewTextRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewText(&buf, "warn", ComponentApp)

	logger.Info("hidden")
	logger.Warn("shown", FieldUserID, "u1")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line should be filtered at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "component=app") || !strings.Contains(out, "user_id=u1") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestLogFields(t *testing.T) {
	f := NewFields().
		WithUser("u1").
		WithEntity("wallet", "cash").
		WithOperation(OpAdjust).
		WithError(nil)

	if f[FieldUserID] != "u1" || f[FieldEntity] != "wallet" || f[FieldEntityID] != "cash" || f[FieldOperation] != OpAdjust {
		t.Errorf("unexpected fields %v", f)
	}
	if _, ok := f[FieldError]; ok {
		t.Error("nil error should not add an error field")
	}
	f.WithError(errors.New("boom"))
	if f[FieldError] != "boom" {
		t.Errorf("error field = %v", f[FieldError])
	}
	if got := len(f.ToSlice()); got != 2*len(f) {
		t.Errorf("ToSlice() length = %d, want %d", got, 2*len(f))
	}

	noID := NewFields().WithEntity("budget", "")
	if _, ok := noID[FieldEntityID]; ok {
		t.Error("empty id should be omitted")
	}
}

func TestWithLoggerAndFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewText(&buf, "info", ComponentHTTP).WithComponent(ComponentLedger)

	got := FromContext(WithLogger(context.Background(), logger))
	if got != logger {
		t.Fatalf("FromContext() = %v, want the stored logger", got)
	}
	got.Info("hello")
	if !strings.Contains(buf.String(), "component="+ComponentLedger) {
		t.Errorf("output %q missing component", buf.String())
	}

	if FromContext(context.Background()).Component() != "unknown" {
		t.Error("FromContext without a logger should fall back to the default")
	}
}

func TestStructuredLogger_LogMutation(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(NewText(&buf, "info", ComponentLedger))

	sl.LogMutation(context.Background(), "u1", "goal", OpSave, "g1")

	out := buf.String()
	for _, want := range []string{"Ledger record changed", "user_id=u1", "entity=goal", "entity_id=g1", "operation=save"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestStructuredLogger_LogMovement(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(NewText(&buf, "info", ComponentLedger))

	sl.LogMovement(context.Background(), "u1", "transaction", OpAdjust, "t1", "-25000")

	out := buf.String()
	for _, want := range []string{"operation=adjust", "amount=-25000", "entity_id=t1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}
