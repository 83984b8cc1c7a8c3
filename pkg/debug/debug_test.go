package debug

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func withBuffer(t *testing.T, on bool) *bytes.Buffer {
	t.Helper()
	prevEnabled, prevLogger := enabled, logger
	t.Cleanup(func() { enabled, logger = prevEnabled, prevLogger })

	var buf bytes.Buffer
	SetOutput(&buf)
	enabled = on
	return &buf
}

func TestLogDisabled(t *testing.T) {
	buf := withBuffer(t, false)
	Log("hidden %d", 1)
	LogTiming("x", time.Second)
	LogIf(true, "hidden")
	Assert(false, "ignored while disabled")
	if buf.Len() != 0 {
		t.Errorf("unexpected output: %q", buf.String())
	}
}

func TestLogEnabled(t *testing.T) {
	buf := withBuffer(t, true)
	Log("loaded %d nodes", 3)
	LogTiming("flatten", 2*time.Millisecond)
	LogIf(false, "skipped")

	out := buf.String()
	for _, want := range []string{"[TG_DEBUG]", "loaded 3 nodes", "flatten took 2ms"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}
	if strings.Contains(out, "skipped") {
		t.Error("LogIf wrote with a false condition")
	}
}

func TestAssertPanicsWhenEnabled(t *testing.T) {
	buf := withBuffer(t, true)
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
		if !strings.Contains(buf.String(), "ASSERTION FAILED: broken") {
			t.Errorf("assertion not logged: %q", buf.String())
		}
	}()
	Assert(false, "broken")
}
