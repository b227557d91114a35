package manager

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
)

func TestQueueRunsInOrder(t *testing.T) {
	q := NewQueue(zerolog.Nop())
	defer q.Close()
	var mu sync.Mutex
	var got []int
	for i := 0; i < 5; i++ {
		i := i
		q.Post(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}
	q.Flush()
	mu.Lock()
	defer mu.Unlock()
	if diff := cmp.Diff([]int{0, 1, 2, 3, 4}, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestQueueSurvivesPanic(t *testing.T) {
	q := NewQueue(zerolog.Nop())
	defer q.Close()
	ran := make(chan struct{}, 1)
	q.Post(func() { panic("boom") })
	q.Post(func() { ran <- struct{}{} })
	q.Flush()
	select {
	case <-ran:
	default:
		t.Fatalf("task after a panic did not run")
	}
}

func TestQueueCloseDrainsAndDropsLatePosts(t *testing.T) {
	q := NewQueue(zerolog.Nop())
	n := 0
	for i := 0; i < 3; i++ {
		q.Post(func() { n++ })
	}
	q.Close()
	if n != 3 {
		t.Fatalf("close should drain pending tasks, ran %d", n)
	}
	q.Post(func() { n++ })
	q.Flush()
	q.Close()
	if n != 3 {
		t.Fatalf("tasks posted after close must be dropped, ran %d", n)
	}
}

func TestSameListener(t *testing.T) {
	a := &fakeStatus{name: "a"}
	b := &fakeStatus{name: "a"}
	if !sameListener(a, a) || sameListener(a, b) {
		t.Fatalf("pointer listeners compare by identity")
	}
	f := DestroyedFunc(func() {})
	if sameListener(f, f) {
		t.Fatalf("func listeners are never equal")
	}
	if sameListener(nil, a) {
		t.Fatalf("nil never matches")
	}
}

func TestDeliverStampsEventsAndUsesDefaultQueue(t *testing.T) {
	pub := NewMemoryPublisher()
	m := NewWithConfig(ManagerConfig{Publisher: MultiPublisher{pub, nil}})
	defer m.Close()
	ran := make(chan struct{}, 1)
	n := &notifications{}
	n.post(nil, func() { ran <- struct{}{} })
	n.publish(Event{Name: EventStarted})
	m.deliver(n)
	m.Flush()
	select {
	case <-ran:
	default:
		t.Fatalf("task on the default queue did not run")
	}
	evts := pub.Events()
	if len(evts) != 1 || evts[0].Time.IsZero() {
		t.Fatalf("expected one stamped event, got %+v", evts)
	}
}
