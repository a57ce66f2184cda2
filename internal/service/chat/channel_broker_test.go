package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"educhat_server/internal/service/presence"
)

func TestChannelBrokerDeliversInPublishOrder(t *testing.T) {
	hub := NewHub(presence.NewTracker(0, nil))
	var mu sync.Mutex
	var got []string
	hub.SetProcessor(func(env *TransmitEnvelope) {
		mu.Lock()
		got = append(got, env.ClientNonce)
		mu.Unlock()
	})

	broker := NewChannelBroker(hub)
	broker.Start()
	defer broker.Close()

	nonces := []string{"a", "b", "c", "d", "e"}
	for _, nonce := range nonces {
		env := roomEnvelope("U1", nonce, "x")
		if err := broker.Publish(context.Background(), env); err != nil {
			t.Fatalf("Publish %s: %v", nonce, err)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		done := len(got) == len(nonces)
		mu.Unlock()
		if done {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("processed %d of %d", len(got), len(nonces))
		}
		time.Sleep(5 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	for i, nonce := range nonces {
		if got[i] != nonce {
			t.Fatalf("order broken at %d: %v", i, got)
		}
	}
}
