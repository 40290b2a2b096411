package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	for _, lvl := range []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.ErrorLevel} {
		l, err := New(lvl)
		if err != nil {
			t.Fatalf("New(%v): %v", lvl, err)
		}
		if !l.Core().Enabled(lvl) {
			t.Fatalf("New(%v): own level disabled", lvl)
		}
		if got := l.Core().Enabled(lvl - 1); got {
			t.Fatalf("New(%v): level %v enabled", lvl, lvl-1)
		}
	}
}

func TestNewConsoleLevel(t *testing.T) {
	l, err := NewConsole(zapcore.WarnLevel)
	if err != nil {
		t.Fatal(err)
	}
	if l.Core().Enabled(zapcore.InfoLevel) {
		t.Fatal("info enabled on a warn logger")
	}
	if !l.Core().Enabled(zapcore.ErrorLevel) {
		t.Fatal("error disabled on a warn logger")
	}
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("debug")
	if err != nil || lvl != zapcore.DebugLevel {
		t.Fatalf("ParseLevel(debug) = %v, %v", lvl, err)
	}
	if _, err := ParseLevel("chatty"); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ftmw.log")
	l := NewFile(path, zapcore.InfoLevel)
	l.Debug("hidden")
	l.Info("fit converged")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.Contains(text, `"msg":"fit converged"`) || strings.Contains(text, "hidden") {
		t.Fatalf("unexpected log file contents: %q", text)
	}
}
