package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newBufferLogger(opts Options) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	opts.Output = zapcore.AddSync(buf)
	return New(opts), buf
}

func TestLevelsCarryEmojiTags(t *testing.T) {
	log, buf := newBufferLogger(Options{NoColor: true})

	log.Debug("d")
	log.Info("i")
	log.Warning("w")
	log.Error("e", nil, nil)

	out := buf.String()
	for _, want := range []string{"🐛 DEBUG", "💡 INFO", "⚠️ WARN", "⛔ ERROR"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no colour codes with NoColor")
	}
}

func TestColourEnabledByDefault(t *testing.T) {
	log, buf := newBufferLogger(Options{})
	log.Info("hello")
	if !strings.Contains(buf.String(), "\x1b[38;5;12m") {
		t.Fatalf("expected ANSI colour in %q", buf.String())
	}
}

func TestErrorIncludesCauseAndBoundedTrace(t *testing.T) {
	log, buf := newBufferLogger(Options{NoColor: true})
	log.Error("request failed", errors.New("connection refused"), nil)

	out := buf.String()
	if !strings.Contains(out, "cause: connection refused") {
		t.Fatalf("missing cause in %s", out)
	}
	frames := strings.Count(out, "  #")
	if frames == 0 || frames > DefaultErrorTraceDepth {
		t.Fatalf("expected 1..%d frames, got %d:\n%s", DefaultErrorTraceDepth, frames, out)
	}
	if !strings.Contains(out, "TestErrorIncludesCauseAndBoundedTrace") {
		t.Fatalf("expected the calling test in the trace:\n%s", out)
	}
}

func TestInfoCarriesNoTrace(t *testing.T) {
	log, buf := newBufferLogger(Options{NoColor: true})
	log.Info("plain")
	if strings.Contains(buf.String(), "  #") {
		t.Fatalf("info should not render frames: %s", buf.String())
	}
}

func TestRenderedLinesFitWidth(t *testing.T) {
	for _, color := range []bool{false, true} {
		log, buf := newBufferLogger(Options{NoColor: !color})
		log.Info(strings.Repeat("word ", 80))
		log.Warning(strings.Repeat("x", 300))
		log.Error("request failed "+strings.Repeat("detail ", 30), errors.New(strings.Repeat("cause ", 40)), nil)

		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		if len(lines) < 10 {
			t.Fatalf("expected wrapped output, got %d lines:\n%s", len(lines), buf.String())
		}
		for _, l := range lines {
			if w := visibleWidth(l); w > DefaultWidth {
				t.Fatalf("line is %d columns wide (color=%v): %q", w, color, l)
			}
			if !color && utf8.RuneCountInString(l) > DefaultWidth {
				t.Fatalf("line has %d runes: %q", utf8.RuneCountInString(l), l)
			}
		}
		if !strings.HasPrefix(lines[0], "20") {
			t.Fatalf("first line should keep the timestamp prefix: %q", lines[0])
		}
	}
}

func TestFitWidthCountsTabsAndEscapes(t *testing.T) {
	if got := visibleWidth("\x1b[38;5;12mab\x1b[0m\tc"); got != 9 {
		t.Fatalf("visibleWidth = %d, want 9", got)
	}
	if got := fitWidth("\tab", 4); got != "\nab" {
		t.Fatalf("unexpected wrap %q", got)
	}
	if got := fitWidth("aaa bbb ccc", 7); got != "aaa bbb\nccc" {
		t.Fatalf("unexpected wrap %q", got)
	}
}

func TestFitWidthWithoutSpaces(t *testing.T) {
	got := fitWidth(strings.Repeat("x", 25), 10)
	if got != "xxxxxxxxxx\nxxxxxxxxxx\nxxxxx" {
		t.Fatalf("unexpected wrap %q", got)
	}
}

func TestLevelFilter(t *testing.T) {
	log, buf := newBufferLogger(Options{Level: "warn", NoColor: true})
	log.Info("hidden")
	log.Warning("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected filtering: %s", buf.String())
	}
}

func TestNilAndNopLoggersNeverPanic(t *testing.T) {
	var l *Logger
	l.Info("x")
	l.Error("x", errors.New("y"), nil)
	l.InfoObj("x", "k", 1)
	Nop().Error("x", nil, nil)
	if err := l.Sync(); err != nil {
		t.Fatalf("Sync on nil logger: %v", err)
	}
}

func TestDefaultIsCreatedOnce(t *testing.T) {
	a := Default()
	b := Default()
	if a == nil || a != b {
		t.Fatalf("expected a single process-wide logger")
	}
}

func TestObjHelpersEmitStructuredField(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := &Logger{z: zap.New(core), errorTraceDepth: DefaultErrorTraceDepth}

	log.InfoObj("history initialized", "history_config", map[string]any{"type": "bbolt"})
	log.WarnObj("history record failed", "history_error", "disk full")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Message != "history initialized" || entries[0].Level != zapcore.InfoLevel {
		t.Fatalf("unexpected entry %+v", entries[0])
	}
	if _, ok := entries[0].ContextMap()["history_config"]; !ok {
		t.Fatalf("missing structured field: %#v", entries[0].ContextMap())
	}
	if got := entries[1].ContextMap()["history_error"]; got != "disk full" {
		t.Fatalf("history_error = %#v", got)
	}
}
