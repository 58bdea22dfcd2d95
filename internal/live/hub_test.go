package live

import (
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap"
)

func recvOne(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestHubDeliversInPublishOrder(t *testing.T) {
	h := NewHub(zap.NewNop())
	ch, cancel := h.Subscribe("records:1", 8)
	defer cancel()

	for i := 0; i < 3; i++ {
		row, _ := json.Marshal(map[string]int{"seq": i})
		h.Publish("records:1", Event{Table: "point_records", Op: "INSERT", Row: row})
	}
	for i := 0; i < 3; i++ {
		e := recvOne(t, ch)
		var row struct{ Seq int }
		if err := json.Unmarshal(e.Row, &row); err != nil {
			t.Fatal(err)
		}
		if row.Seq != i {
			t.Fatalf("event %d arrived with seq %d", i, row.Seq)
		}
	}
}

func TestHubTopicIsolation(t *testing.T) {
	h := NewHub(zap.NewNop())
	a, cancelA := h.Subscribe("records:1", 4)
	defer cancelA()
	b, cancelB := h.Subscribe("records:2", 4)
	defer cancelB()

	h.Publish("records:1", Event{Table: "point_records", Op: "INSERT"})

	recvOne(t, a)
	select {
	case <-b:
		t.Fatal("event leaked across topics")
	default:
	}
}

func TestHubSlowSubscriberDoesNotBlock(t *testing.T) {
	h := NewHub(zap.NewNop())
	_, cancel := h.Subscribe("records:1", 1)
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			h.Publish("records:1", Event{Table: "point_records", Op: "INSERT"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
}

func TestHubCancelReleasesSubscription(t *testing.T) {
	h := NewHub(zap.NewNop())
	ch, cancel := h.Subscribe("records:1", 4)

	if n := h.SubscriberCount("records:1"); n != 1 {
		t.Fatalf("SubscriberCount = %d, want 1", n)
	}
	cancel()
	cancel() // second call must be a no-op
	if n := h.SubscriberCount("records:1"); n != 0 {
		t.Fatalf("SubscriberCount after cancel = %d, want 0", n)
	}
	if _, ok := <-ch; ok {
		t.Fatal("channel still open after cancel")
	}

	// publishing into a canceled topic must not panic
	h.Publish("records:1", Event{Table: "point_records", Op: "INSERT"})
}
