package broadcast_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formsubmit/pkg/broadcast"
)

func TestHubFanOutOrder(t *testing.T) {
	hub := broadcast.NewHub()

	var order []string
	hub.SubscribeAll(func(event broadcast.Event, _ broadcast.Payload) {
		order = append(order, "all:"+string(event))
	})
	hub.Subscribe(broadcast.EventBefore, func(event broadcast.Event, _ broadcast.Payload) {
		order = append(order, "before:first")
	})
	hub.Subscribe(broadcast.EventBefore, func(event broadcast.Event, _ broadcast.Payload) {
		order = append(order, "before:second")
	})
	hub.Subscribe(broadcast.EventAfter, func(event broadcast.Event, _ broadcast.Payload) {
		order = append(order, "after")
	})

	hub.Notify(broadcast.EventBefore, nil)
	hub.Notify(broadcast.EventAfter, nil)

	want := []string{"all:before", "before:first", "before:second", "all:after", "after"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Fatalf("fan-out order mismatch (-want +got):\n%s", diff)
	}
}

func TestHubReadyImmediate(t *testing.T) {
	hub := broadcast.NewHub()
	if err := hub.Ready(context.Background()); err != nil {
		t.Fatalf("ready: %v", err)
	}
}

func TestGatedHubBlocksUntilMarked(t *testing.T) {
	hub := broadcast.NewGatedHub()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := hub.Ready(ctx); err == nil {
		t.Fatalf("expected ready to observe cancellation before MarkReady")
	}

	hub.MarkReady()
	if err := hub.Ready(context.Background()); err != nil {
		t.Fatalf("ready after mark: %v", err)
	}
}

func TestHubPayloadDelivery(t *testing.T) {
	hub := broadcast.NewHub()

	var got broadcast.Payload
	hub.Subscribe(broadcast.EventResponse, func(_ broadcast.Event, payload broadcast.Payload) {
		got = payload
	})

	hub.Notify(broadcast.EventResponse, broadcast.Payload{"page": 2})
	if got["page"] != 2 {
		t.Fatalf("payload mismatch: %#v", got)
	}
}
