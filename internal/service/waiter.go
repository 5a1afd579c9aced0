// FILE: internal/service/waiter.go
package service

import (
	"sync"
	"time"
)

const (
	// WaitTimeout is the maximum time a client can wait for notifications
	WaitTimeout = 25 * time.Second

	// WaitChannelBuffer size for notification channels
	WaitChannelBuffer = 1
)

// WaitRegistry manages long-polling clients waiting for match changes
type WaitRegistry struct {
	mu      sync.Mutex
	waiters map[string][]*WaitRequest // matchID → waiting clients
	closed  bool
}

// WaitRequest represents a single client waiting for match updates
type WaitRequest struct {
	MoveCount int
	Notify    chan struct{}
	Timer     *time.Timer
	MatchID   string
}

func NewWaitRegistry() *WaitRegistry {
	return &WaitRegistry{
		waiters: make(map[string][]*WaitRequest),
	}
}

// RegisterWait registers a client to wait for match changes. The returned
// channel receives once on a change, on timeout, or at shutdown; cancel must
// be called when the client stops waiting.
func (w *WaitRegistry) RegisterWait(matchID string, moveCount int) (notify <-chan struct{}, cancel func()) {
	req := &WaitRequest{
		MoveCount: moveCount,
		Notify:    make(chan struct{}, WaitChannelBuffer),
		MatchID:   matchID,
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		signal(req)
		return req.Notify, func() {}
	}

	req.Timer = time.AfterFunc(WaitTimeout, func() {
		signal(req)
	})
	w.waiters[matchID] = append(w.waiters[matchID], req)

	return req.Notify, func() { w.removeWaiter(matchID, req) }
}

// NotifyMatch wakes clients whose known move count differs from currentMoveCount
func (w *WaitRegistry) NotifyMatch(matchID string, currentMoveCount int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, req := range w.waiters[matchID] {
		if req.MoveCount != currentMoveCount {
			signal(req)
		}
	}
}

// RemoveMatch wakes and forgets every waiter of a match
func (w *WaitRegistry) RemoveMatch(matchID string) {
	w.mu.Lock()
	waitList := w.waiters[matchID]
	delete(w.waiters, matchID)
	w.mu.Unlock()

	for _, req := range waitList {
		req.Timer.Stop()
		signal(req)
	}
}

// Shutdown wakes every waiter; later registrations return immediately
func (w *WaitRegistry) Shutdown() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.closed = true
	for id, waitList := range w.waiters {
		for _, req := range waitList {
			req.Timer.Stop()
			signal(req)
		}
		delete(w.waiters, id)
	}
}

// Len counts registered waiters
func (w *WaitRegistry) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, l := range w.waiters {
		n += len(l)
	}
	return n
}

// signal performs a non-blocking send; a full buffer already holds a wakeup
func signal(req *WaitRequest) {
	select {
	case req.Notify <- struct{}{}:
	default:
	}
}

func (w *WaitRegistry) removeWaiter(matchID string, req *WaitRequest) {
	w.mu.Lock()
	defer w.mu.Unlock()

	req.Timer.Stop()
	waitList := w.waiters[matchID]
	for i, waiter := range waitList {
		if waiter == req {
			w.waiters[matchID] = append(waitList[:i], waitList[i+1:]...)
			break
		}
	}

	if len(w.waiters[matchID]) == 0 {
		delete(w.waiters, matchID)
	}
}
