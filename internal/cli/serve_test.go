package cli

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"
)

func TestListenAddr(t *testing.T) {
	t.Setenv("PORT", "")
	if got := listenAddr(""); got != ":8080" {
		t.Errorf("default = %q, want :8080", got)
	}
	t.Setenv("PORT", "9000")
	if got := listenAddr(""); got != ":9000" {
		t.Errorf("with PORT = %q, want :9000", got)
	}
	if got := listenAddr("127.0.0.1:7000"); got != "127.0.0.1:7000" {
		t.Errorf("flag = %q, want it unchanged", got)
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- serve(ctx, ln, h) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("serve returned %v, want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
}
