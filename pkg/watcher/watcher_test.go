package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_CoalescesRapidTriggers(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var callCount atomic.Int32

	// Trigger rapidly 10 times
	for i := 0; i < 10; i++ {
		d.Trigger(func() {
			callCount.Add(1)
		})
		time.Sleep(10 * time.Millisecond)
	}

	// Wait for debounce to complete
	time.Sleep(150 * time.Millisecond)

	if count := callCount.Load(); count != 1 {
		t.Errorf("expected 1 callback invocation, got %d", count)
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var called atomic.Bool
	d.Trigger(func() {
		called.Store(true)
	})
	d.Cancel()

	time.Sleep(100 * time.Millisecond)

	if called.Load() {
		t.Error("callback should not have been invoked after cancel")
	}
}

func TestDebouncer_DefaultDuration(t *testing.T) {
	d := NewDebouncer(0)
	if d.Duration() != DefaultDebounceDuration {
		t.Errorf("expected default duration %v, got %v", DefaultDebounceDuration, d.Duration())
	}
}

func writeData(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestNew_NoPaths(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrNoPaths) {
		t.Errorf("expected ErrNoPaths, got %v", err)
	}
}

func TestWatcher_DetectsFileChange(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "tree.yaml")
	writeData(t, tmpFile, "- id: a\n")

	var (
		changeMu sync.Mutex
		changed  string
	)

	w, err := New([]string{tmpFile},
		WithDebounceDuration(50*time.Millisecond),
		WithOnChange(func(path string) {
			changeMu.Lock()
			changed = path
			changeMu.Unlock()
		}),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	// Give watcher time to initialize
	time.Sleep(100 * time.Millisecond)

	writeData(t, tmpFile, "- id: a\n- id: b\n")

	// fsnotify or the 2s poll fallback, whichever is active
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		changeMu.Lock()
		got := changed
		changeMu.Unlock()
		if got != "" {
			if got != w.Paths()[0] {
				t.Errorf("changed path = %s, want %s", got, w.Paths()[0])
			}
			return
		}
		time.Sleep(25 * time.Millisecond)
	}
	t.Error("expected change to be detected")
}

func TestWatcher_PollingMultipleFiles(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "one.yaml")
	second := filepath.Join(dir, "two.json")
	writeData(t, first, "- id: a\n")
	writeData(t, second, `[{"id": "b"}]`)

	w, err := New([]string{first, second},
		WithDebounceDuration(20*time.Millisecond),
		WithPollInterval(50*time.Millisecond),
		WithForcePoll(true),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if !w.IsPolling() {
		t.Error("expected watcher to be in polling mode")
	}

	go func() {
		time.Sleep(50 * time.Millisecond)
		os.WriteFile(second, []byte(`[{"id": "b"}, {"id": "c"}]`), 0644)
	}()

	select {
	case got := <-w.Changed():
		if filepath.Base(got) != "two.json" {
			t.Errorf("changed = %s, want two.json", got)
		}
	case <-time.After(time.Second):
		t.Error("timeout waiting for change notification")
	}
}

func TestWatcher_EnvForcePoll(t *testing.T) {
	t.Setenv("TG_FORCE_POLL", "1")

	tmpFile := filepath.Join(t.TempDir(), "tree.yaml")
	writeData(t, tmpFile, "- id: a\n")

	w, err := New([]string{tmpFile}, WithPollInterval(25*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if !w.IsPolling() {
		t.Fatal("expected polling mode when TG_FORCE_POLL is set")
	}
}

func TestWatcher_FileRemoved(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "tree.yaml")
	writeData(t, tmpFile, "- id: a\n")

	var (
		errMu    sync.Mutex
		gotError error
	)

	w, err := New([]string{tmpFile},
		WithPollInterval(50*time.Millisecond),
		WithForcePoll(true),
		WithOnError(func(_ string, err error) {
			errMu.Lock()
			gotError = err
			errMu.Unlock()
		}),
	)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	time.Sleep(50 * time.Millisecond)
	if err := os.Remove(tmpFile); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	errMu.Lock()
	receivedError := gotError
	errMu.Unlock()

	if !errors.Is(receivedError, ErrFileRemoved) {
		t.Errorf("expected ErrFileRemoved, got %v", receivedError)
	}
}

func TestWatcher_StartStop(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "tree.yaml")
	writeData(t, tmpFile, "- id: a\n")

	w, err := New([]string{tmpFile})
	if err != nil {
		t.Fatal(err)
	}
	if w.IsStarted() {
		t.Error("watcher should not be started initially")
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	if !w.IsStarted() {
		t.Error("watcher should be started")
	}
	if err := w.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("expected ErrAlreadyStarted, got %v", err)
	}

	w.Stop()
	if w.IsStarted() {
		t.Error("watcher should be stopped")
	}
	// Stop twice is a no-op
	w.Stop()
}

func TestWatcher_PollInterval(t *testing.T) {
	w, err := New([]string{"tree.yaml"}, WithPollInterval(5*time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if w.PollInterval() != 5*time.Second {
		t.Errorf("PollInterval = %v", w.PollInterval())
	}
	if !filepath.IsAbs(w.Paths()[0]) {
		t.Errorf("path not absolute: %s", w.Paths()[0])
	}
}

func TestEnvBool(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{" YES ", true},
		{"on", true},
		{"0", false},
		{"nope", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Setenv("TG_TEST_BOOL", tt.value)
		if got := envBool("TG_TEST_BOOL"); got != tt.want {
			t.Errorf("envBool(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
