package gateway

import (
	"context"
	"reflect"
	"testing"

	"github.com/roundtable-hq/orchestrator/internal/domain"
)

func TestMockClientDeterministic(t *testing.T) {
	client := NewMockClient()
	req := &InvokeRequest{
		Personality: domain.Personality{Title: "analyst"},
		Context: []ChatMessage{
			{Role: "system", Content: "Topic: t"},
			{Role: "user", Content: "Discussion topic: t"},
		},
	}

	first, err := client.Invoke(context.Background(), req)
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	second, err := client.Invoke(context.Background(), req)
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}

	first.Latency = 0
	second.Latency = 0
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("mock output must be deterministic: %+v vs %+v", first, second)
	}
	if first.Content == "" {
		t.Fatalf("mock must produce content")
	}
}

func TestMockClientHonorsCancelledContext(t *testing.T) {
	client := NewMockClient()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Invoke(ctx, &InvokeRequest{Personality: domain.Personality{Title: "analyst"}})
	if err == nil {
		t.Fatalf("expected cancelled context error")
	}
}
