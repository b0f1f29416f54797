package realtime

import (
	"strings"
	"testing"
	"time"
)

func TestHubBroadcastReachesSubscribers(t *testing.T) {
	h := NewHub(nil)
	go h.Run()
	defer h.Close()

	a := h.Subscribe("u1")
	b := h.Subscribe("u2")

	h.Broadcast("reports.changed", map[string]any{"ids": []int64{7}})

	for _, c := range []*Client{a, b} {
		select {
		case ev := <-c.Send:
			if ev.Name != "reports.changed" {
				t.Fatalf("event = %q", ev.Name)
			}
		case <-time.After(time.Second):
			t.Fatalf("client %s did not receive event", c.UserID)
		}
	}
}

func TestHubSendToTargetsOneUser(t *testing.T) {
	h := NewHub(nil)
	go h.Run()
	defer h.Close()

	target := h.Subscribe("u1")
	other := h.Subscribe("u2")

	h.SendTo("u1", "notification", map[string]string{"subject": "shift change"})

	select {
	case ev := <-target.Send:
		if ev.Name != "notification" {
			t.Fatalf("event = %q", ev.Name)
		}
	case <-time.After(time.Second):
		t.Fatalf("target did not receive event")
	}
	select {
	case ev := <-other.Send:
		t.Fatalf("unexpected event %q for other user", ev.Name)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	h := NewHub(nil)
	go h.Run()
	defer h.Close()

	c := h.Subscribe("u1")
	h.Unsubscribe(c)

	select {
	case _, open := <-c.Send:
		if open {
			t.Fatalf("expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatalf("send channel not closed after unsubscribe")
	}
}

func TestHubSlowClientDoesNotBlock(t *testing.T) {
	h := NewHub(nil)
	go h.Run()
	defer h.Close()

	slow := h.Subscribe("slow")
	// overflow the 16-slot client buffer
	for i := 0; i < 64; i++ {
		h.Broadcast("tick", i)
	}
	// the hub must still respond to new subscriptions
	done := make(chan struct{})
	go func() {
		fresh := h.Subscribe("fresh")
		h.Unsubscribe(fresh)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("hub blocked by slow client")
	}
	_ = slow
}

func TestEventEncode(t *testing.T) {
	ev := Event{Name: "reports.changed", Payload: map[string]any{"ids": []int64{1}}, At: time.Unix(0, 0)}
	s := string(ev.Encode())
	if !strings.HasPrefix(s, "event: reports.changed\ndata: ") {
		t.Fatalf("encoded = %q", s)
	}
	if !strings.HasSuffix(s, "\n\n") {
		t.Fatalf("missing terminator: %q", s)
	}
}
