package utils

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerDebugGate(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerTo(&buf, false).Debug("hidden %d", 1)
	if buf.Len() != 0 {
		t.Errorf("debug output written while disabled: %q", buf.String())
	}

	NewLoggerTo(&buf, true).Debug("shown %d", 2)
	if !strings.Contains(buf.String(), "DEBUG") || !strings.Contains(buf.String(), "shown 2") {
		t.Errorf("debug output = %q; want a DEBUG line", buf.String())
	}
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf, false)
	l.Info("[ranker] selected %d", 5)
	l.Warn("[render] fallback")
	l.Error("[rank] write failed")

	out := buf.String()
	for _, want := range []string{"INFO", "[ranker] selected 5", "WARN", "ERROR", "[rank] write failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
