package reminder

import (
	"container/heap"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrInvalidFireTime  = errors.New("reminder: invalid fire time")
	ErrEngineStopped    = errors.New("reminder: engine stopped")
	ErrAlreadyScheduled = errors.New("reminder: task already scheduled")
)

type queueItem struct {
	event Event
	seq   uint64
}

type priorityQueue []queueItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	return pq[i].event.FireAt.Before(pq[j].event.FireAt)
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
}

func (pq *priorityQueue) Push(x any) {
	*pq = append(*pq, x.(queueItem))
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[0 : n-1]
	return item
}

// Engine delivers scheduled events on C() when their fire instant arrives.
// At most one live event exists per task id; the slot frees when the event
// fires or its handle is canceled, so repeated rescans cannot stack
// duplicate notifications.
type Engine struct {
	mu        sync.Mutex
	queue     priorityQueue
	scheduled map[string]uint64
	canceled  map[uint64]struct{}
	nextSeq   uint64
	out       chan Event
	wakeup    chan struct{}
	stopCh    chan struct{}
	doneCh    chan struct{}
	started   bool
	stopped   bool
	dropped   uint64
}

func NewEngine(bufferSize int) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Engine{
		queue:     make(priorityQueue, 0),
		scheduled: make(map[string]uint64),
		canceled:  make(map[uint64]struct{}),
		out:       make(chan Event, bufferSize),
		wakeup:    make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

func (e *Engine) C() <-chan Event {
	return e.out
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	heap.Init(&e.queue)
	go e.loop()
}

func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	e.mu.Unlock()
	<-e.doneCh
}

// Handle identifies one scheduled event so it can be canceled when its
// task completes or is deleted before the fire instant.
type Handle struct {
	engine *Engine
	taskID string
	seq    uint64
}

func (h *Handle) TaskID() string { return h.taskID }

// Cancel withdraws the event. It is idempotent; a canceled event never
// reaches C().
func (h *Handle) Cancel() {
	if h == nil {
		return
	}
	h.engine.cancel(h.taskID, h.seq)
}

// Schedule enqueues ev. ErrAlreadyScheduled means a live event for the
// same task already waits in the queue.
func (e *Engine) Schedule(ev Event) (*Handle, error) {
	if ev.FireAt.IsZero() {
		return nil, ErrInvalidFireTime
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return nil, ErrEngineStopped
	}
	if _, live := e.scheduled[ev.TaskID]; live {
		return nil, ErrAlreadyScheduled
	}

	e.nextSeq++
	seq := e.nextSeq
	e.scheduled[ev.TaskID] = seq
	heap.Push(&e.queue, queueItem{event: ev, seq: seq})
	e.signalWakeup()
	return &Handle{engine: e, taskID: ev.TaskID, seq: seq}, nil
}

// ScanAndSchedule runs one scan pass and enqueues every event whose task
// has no live slot yet, returning the handles it created.
func (e *Engine) ScanAndSchedule(events []Event) []*Handle {
	handles := make([]*Handle, 0, len(events))
	for _, ev := range events {
		h, err := e.Schedule(ev)
		if err != nil {
			continue
		}
		handles = append(handles, h)
	}
	return handles
}

// Dropped counts events lost because the output channel was full.
func (e *Engine) Dropped() uint64 {
	return atomic.LoadUint64(&e.dropped)
}

func (e *Engine) cancel(taskID string, seq uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if live, ok := e.scheduled[taskID]; !ok || live != seq {
		return
	}
	delete(e.scheduled, taskID)
	e.canceled[seq] = struct{}{}
}

func (e *Engine) loop() {
	defer close(e.doneCh)
	defer close(e.out)

	var timer *time.Timer
	for {
		next, hasNext := e.peek()
		if !hasNext {
			select {
			case <-e.wakeup:
				continue
			case <-e.stopCh:
				return
			}
		}

		wait := time.Until(next.FireAt)
		if wait < 0 {
			wait = 0
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			due := e.popDue(time.Now())
			for _, ev := range due {
				select {
				case e.out <- ev:
				default:
					atomic.AddUint64(&e.dropped, 1)
				}
			}
		case <-e.wakeup:
			continue
		case <-e.stopCh:
			if timer != nil {
				stopTimer(timer)
			}
			return
		}
	}
}

func (e *Engine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

func (e *Engine) peek() (Event, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return Event{}, false
	}
	return e.queue[0].event, true
}

func (e *Engine) popDue(now time.Time) []Event {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Event, 0)
	for len(e.queue) > 0 {
		next := e.queue[0]
		if next.event.FireAt.After(now) {
			break
		}
		item := heap.Pop(&e.queue).(queueItem)
		if _, skip := e.canceled[item.seq]; skip {
			delete(e.canceled, item.seq)
			continue
		}
		if live, ok := e.scheduled[item.event.TaskID]; ok && live == item.seq {
			delete(e.scheduled, item.event.TaskID)
		}
		out = append(out, item.event)
	}
	return out
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
