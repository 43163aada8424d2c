package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_Fetch(t *testing.T) {
	agents := make(chan string, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agents <- r.Header.Get("User-Agent")
		switch r.URL.Path {
		case "/icon.png":
			w.Header().Set("Content-Length", "5")
			fmt.Fprint(w, "hello")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(Options{UserAgent: "test-agent"})

	var lastLoaded, lastTotal int64
	body, err := c.Fetch(context.Background(), srv.URL+"/icon.png", func(loaded, total int64) {
		lastLoaded, lastTotal = loaded, total
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(body) != "hello" {
		t.Errorf("body = %q, want %q", body, "hello")
	}
	if lastLoaded != 5 || lastTotal != 5 {
		t.Errorf("progress = %d/%d, want 5/5", lastLoaded, lastTotal)
	}
	if gotAgent := <-agents; gotAgent != "test-agent" {
		t.Errorf("User-Agent = %q, want %q", gotAgent, "test-agent")
	}

	_, err = c.Fetch(context.Background(), srv.URL+"/missing.png", nil)
	if !errors.Is(err, ErrStatus) {
		t.Errorf("Fetch(missing) error = %v, want ErrStatus", err)
	}
}

func TestClient_FetchHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := NewClient(Options{}).Fetch(ctx, srv.URL, nil); err == nil {
		t.Error("expected an error for a cancelled request")
	}
}

func TestProgressWriter(t *testing.T) {
	var buf bytes.Buffer
	var calls int
	pw := &ProgressWriter{Writer: &buf, Total: 6, OnUpdate: func(written, total int64) { calls++ }}

	_, _ = pw.Write([]byte("abc"))
	_, _ = pw.Write([]byte("def"))

	if pw.Written != 6 || calls != 2 || buf.String() != "abcdef" {
		t.Errorf("written=%d calls=%d buf=%q", pw.Written, calls, buf.String())
	}
}
