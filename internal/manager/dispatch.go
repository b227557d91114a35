package manager

import (
	"reflect"
	"sync"

	"github.com/rs/zerolog"
)

// Executor is a listener's delivery context. Post must not run fn inline while
// the caller waits on it; it only queues fn for later execution.
type Executor interface {
	Post(fn func())
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(fn func())

func (f ExecutorFunc) Post(fn func()) { f(fn) }

// Queue is a serial executor backed by one goroutine. Posting never blocks and
// a panicking task is logged and does not stop the queue.
type Queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	tasks  []func()
	closed bool
	done   chan struct{}
	log    zerolog.Logger
}

// NewQueue starts a queue. Close releases its goroutine.
func NewQueue(log zerolog.Logger) *Queue {
	q := &Queue{done: make(chan struct{}), log: log}
	q.cond = sync.NewCond(&q.mu)
	go q.run()
	return q
}

// Post appends fn. Tasks posted after Close are dropped.
func (q *Queue) Post(fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.tasks = append(q.tasks, fn)
	q.cond.Signal()
}

// Flush blocks until every task posted before the call has run.
func (q *Queue) Flush() {
	done := make(chan struct{})
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return
	}
	q.tasks = append(q.tasks, func() { close(done) })
	q.cond.Signal()
	q.mu.Unlock()
	<-done
}

// Close runs the remaining tasks and stops the queue.
func (q *Queue) Close() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		q.cond.Broadcast()
	}
	q.mu.Unlock()
	<-q.done
}

func (q *Queue) run() {
	defer close(q.done)
	for {
		q.mu.Lock()
		for len(q.tasks) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.tasks) == 0 {
			q.mu.Unlock()
			return
		}
		fn := q.tasks[0]
		q.tasks[0] = nil
		q.tasks = q.tasks[1:]
		q.mu.Unlock()
		q.runTask(fn)
	}
}

func (q *Queue) runTask(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			q.log.Error().Interface("panic", r).Msg("listener panicked")
		}
	}()
	fn()
}

// notifications collects listener invocations and events while the manager lock
// is held; deliver hands them out after the lock is released.
type notifications struct {
	tasks  []postedTask
	events []Event
}

type postedTask struct {
	ex Executor
	fn func()
}

func (n *notifications) post(ex Executor, fn func()) {
	n.tasks = append(n.tasks, postedTask{ex: ex, fn: fn})
}

func (n *notifications) publish(e Event) {
	n.events = append(n.events, e)
}

func (m *Manager) deliver(n *notifications) {
	for _, t := range n.tasks {
		ex := t.ex
		if ex == nil {
			ex = m.queue
		}
		ex.Post(t.fn)
	}
	for _, e := range n.events {
		if e.Time.IsZero() {
			e.Time = m.now()
		}
		m.publisher.Publish(e)
	}
}

// sameListener reports whether a and b are the identical listener. Values of
// non-comparable dynamic types are never equal.
func sameListener(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}
