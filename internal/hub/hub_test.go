package hub

import (
	"testing"

	"go.uber.org/zap"
)

func TestBroadcastReachesAllObservers(t *testing.T) {
	h := New(zap.NewNop())

	a := make(chan []byte, 4)
	b := make(chan []byte, 4)
	h.Register("a", a)
	h.Register("b", b)

	h.Broadcast([]byte("hello"))

	for name, ch := range map[string]chan []byte{"a": a, "b": b} {
		select {
		case got := <-ch:
			if string(got) != "hello" {
				t.Fatalf("%s: got %q", name, got)
			}
		default:
			t.Fatalf("%s: no frame delivered", name)
		}
	}
}

func TestSlowObserverIsDropped(t *testing.T) {
	h := New(zap.NewNop())

	slow := make(chan []byte, 1)
	h.Register("slow", slow)
	slow <- []byte("stuck") // fill the buffer

	h.Broadcast([]byte("x"))

	if h.Count() != 0 {
		t.Fatalf("expected slow observer dropped, count=%d", h.Count())
	}
	// Drain the stuck frame; the channel must then read as closed.
	<-slow
	if _, ok := <-slow; ok {
		t.Fatalf("expected outbox closed after drop")
	}
}

func TestBindOnce(t *testing.T) {
	h := New(zap.NewNop())
	h.Register("c1", make(chan []byte, 1))

	if !h.Bind("c1", "alice") {
		t.Fatalf("first bind should succeed")
	}
	if h.Bind("c1", "bob") {
		t.Fatalf("rebind must be rejected")
	}
	o, _ := h.Get("c1")
	if o.VoterID() != "alice" {
		t.Fatalf("binding overwritten: %q", o.VoterID())
	}
	if h.Bind("ghost", "x") {
		t.Fatalf("bind on unknown observer should fail")
	}
}

func TestUnregisterClosesOutbox(t *testing.T) {
	h := New(zap.NewNop())
	out := make(chan []byte, 1)
	h.Register("c1", out)

	h.Unregister("c1")
	if _, ok := <-out; ok {
		t.Fatalf("expected closed outbox")
	}
	h.Unregister("c1") // second unregister is a no-op, must not panic
	h.Send("c1", []byte("x"))
}

func TestShutdownClosesEveryObserver(t *testing.T) {
	h := New(zap.NewNop())
	a := make(chan []byte, 1)
	b := make(chan []byte, 1)
	h.Register("a", a)
	h.Register("b", b)

	h.Shutdown()
	if h.Count() != 0 {
		t.Fatalf("count=%d after shutdown", h.Count())
	}
	if _, ok := <-a; ok {
		t.Fatalf("a not closed")
	}
	if _, ok := <-b; ok {
		t.Fatalf("b not closed")
	}
}
