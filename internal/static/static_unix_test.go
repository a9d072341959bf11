//go:build unix

package static

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"syscall"
	"testing"
	"time"
)

func TestServeNamedPipeIsNotFound(t *testing.T) {
	r, dir := testResolver(t)
	if err := syscall.Mkfifo(filepath.Join(dir, "pipe"), 0o644); err != nil {
		t.Skipf("mkfifo: %v", err)
	}

	done := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		done <- get(t, r, "/pipe")
	}()
	select {
	case w := <-done:
		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("request blocked on a named pipe")
	}
}
