package devtools

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/reflow-ui/reflow/pkg/reactive"
)

func TestEnginesSnapshot(t *testing.T) {
	dt := New()
	eng := reactive.New()
	dt.Register("main", eng)

	o := eng.Wrap(map[string]any{"n": 0}).(*reactive.Object)
	eng.CreateEffect(func() { _ = o.Get("n") })
	o.Set("n", 1)

	srv := httptest.NewServer(dt.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/engines")
	if err != nil {
		t.Fatalf("GET /engines: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var snapshot map[string]reactive.Stats
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	stats, ok := snapshot["main"]
	if !ok {
		t.Fatalf("expected engine \"main\" in snapshot, got %v", snapshot)
	}
	if stats.EffectRuns < 2 {
		t.Errorf("expected at least 2 effect runs, got %d", stats.EffectRuns)
	}
	if stats.Triggers == 0 {
		t.Error("expected a nonzero trigger count")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	dt := New(WithGatherer(reg))

	eng := reactive.New(
		reactive.WithMetrics(reactive.NewMetrics(reactive.WithRegistry(reg))),
	)
	o := eng.Wrap(map[string]any{"n": 0}).(*reactive.Object)
	eng.CreateEffect(func() { _ = o.Get("n") })
	o.Set("n", 1)

	srv := httptest.NewServer(dt.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestSinkFansOutToSubscribers(t *testing.T) {
	dt := New()
	sink := dt.Sink("bench")

	ch := dt.hub.subscribe()
	defer dt.hub.unsubscribe(ch)

	sink(reactive.Event{Kind: reactive.EventFlush, Jobs: 3})

	select {
	case msg := <-ch:
		if msg.Engine != "bench" {
			t.Errorf("expected engine \"bench\", got %q", msg.Engine)
		}
		if msg.Event.Kind != reactive.EventFlush {
			t.Errorf("expected flush event, got %q", msg.Event.Kind)
		}
		if msg.Event.Jobs != 3 {
			t.Errorf("expected 3 jobs, got %d", msg.Event.Jobs)
		}
	default:
		t.Fatal("expected a buffered event for the subscriber")
	}
}

func TestSlowSubscriberDropsEvents(t *testing.T) {
	dt := New()
	sink := dt.Sink("bench")

	ch := dt.hub.subscribe()
	defer dt.hub.unsubscribe(ch)

	// Overfill the buffer; publishes past capacity must not block.
	for i := 0; i < clientBuffer+10; i++ {
		sink(reactive.Event{Kind: reactive.EventFlush})
	}

	drained := 0
	for {
		select {
		case <-ch:
			drained++
			continue
		default:
		}
		break
	}
	if drained != clientBuffer {
		t.Errorf("expected exactly %d buffered events, got %d", clientBuffer, drained)
	}
}
