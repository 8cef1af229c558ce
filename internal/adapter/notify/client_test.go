package notify

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"sync"
	"testing"
	"time"
)

// consumer is a minimal event sink for round-trip tests.
type consumer struct {
	mu     sync.Mutex
	events []PushRequest
}

func (c *consumer) PushEvent(req *PushRequest, resp *PushResponse) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, *req)
	resp.OK = true
	return nil
}

func startConsumer(t *testing.T) (*consumer, string) {
	t.Helper()

	sink := &consumer{}
	server := rpc.NewServer()
	if err := server.RegisterName("Consumer", sink); err != nil {
		t.Fatalf("failed to register consumer: %v", err)
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	t.Cleanup(func() {
		_ = listener.Close()
	})

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go server.ServeCodec(jsonrpc.NewServerCodec(conn))
		}
	}()

	return sink, listener.Addr().String()
}

func TestPushEventRoundTrip(t *testing.T) {
	sink, addr := startConsumer(t)

	client := NewClient("http://" + addr)
	err := client.PushEvent("ses_1", map[string]interface{}{
		"type":  "new_message",
		"round": 1,
	})
	if err != nil {
		t.Fatalf("PushEvent failed: %v", err)
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.events) != 1 {
		t.Fatalf("expected 1 delivered event, got %d", len(sink.events))
	}
	if sink.events[0].SessionID != "ses_1" || sink.events[0].Event["type"] != "new_message" {
		t.Fatalf("unexpected event: %+v", sink.events[0])
	}
}

func TestPushEventDisabledClient(t *testing.T) {
	client := NewClient("")
	if err := client.PushEvent("ses_1", map[string]interface{}{"type": "session_started"}); err != nil {
		t.Fatalf("disabled client must be a no-op, got %v", err)
	}
}

func TestPushEventUnreachableConsumer(t *testing.T) {
	client := NewClient("http://127.0.0.1:1")
	client.dialTimeout = 100 * time.Millisecond
	if err := client.PushEvent("ses_1", map[string]interface{}{"type": "session_started"}); err == nil {
		t.Fatalf("expected delivery error for unreachable consumer")
	}
}

func TestResolveRPCAddr(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"  ", ""},
		{"localhost:9000", "localhost:9000"},
		{"http://localhost:9000", "localhost:9000"},
		{"tcp://10.0.0.5:7000", "10.0.0.5:7000"},
	}
	for _, tc := range cases {
		if got := resolveRPCAddr(tc.in); got != tc.want {
			t.Fatalf("resolveRPCAddr(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
