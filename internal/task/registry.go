package task

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/phrazzld/trackbot/internal/domain"
)

// session is the bookkeeping kept for one user.
type session struct {
	// mu serializes the worker flag with queue emptiness checks
	mu            sync.Mutex
	queue         *UserQueue
	workerRunning bool
	// reaped is set when the reaper dropped the session while its worker
	// was still running; the worker keeps draining what was queued.
	reaped bool

	// lastActive holds UnixNano and is read by the reaper without taking mu
	lastActive atomic.Int64
}

// touch moves lastActive forward to t. Older timestamps are ignored.
func (s *session) touch(t time.Time) {
	next := t.UnixNano()
	for {
		cur := s.lastActive.Load()
		if next <= cur {
			return
		}
		if s.lastActive.CompareAndSwap(cur, next) {
			return
		}
	}
}

// SessionInfo is a point-in-time view of one session.
type SessionInfo struct {
	UserID        domain.UserID `json:"user_id"`
	Queued        int           `json:"queued"`
	NextPayload   string        `json:"next_payload,omitempty"`
	WorkerRunning bool          `json:"worker_running"`
	LastActive    time.Time     `json:"last_active"`
}

// Registry maps users to their queue and bookkeeping. Sessions are created
// lazily on first access and destroyed only through Remove.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.UserID]*session
	now      func() time.Time
}

// NewRegistry creates an empty registry using now as its clock.
// A nil clock defaults to time.Now.
func NewRegistry(now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{
		sessions: make(map[domain.UserID]*session),
		now:      now,
	}
}

func (r *Registry) lookup(user domain.UserID) *session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[user]
}

func (r *Registry) getOrCreate(user domain.UserID) *session {
	if s := r.lookup(user); s != nil {
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[user]; ok {
		return s
	}
	s := &session{queue: NewUserQueue()}
	s.touch(r.now())
	r.sessions[user] = s
	return s
}

// GetOrCreateQueue returns the user's queue, creating the session if needed.
func (r *Registry) GetOrCreateQueue(user domain.UserID) *UserQueue {
	return r.getOrCreate(user).queue
}

// HasActiveWorker reports whether a worker is running for the user.
func (r *Registry) HasActiveWorker(user domain.UserID) bool {
	s := r.lookup(user)
	if s == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workerRunning
}

// SetActiveWorker sets the user's worker flag unconditionally.
func (r *Registry) SetActiveWorker(user domain.UserID, active bool) {
	s := r.getOrCreate(user)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.workerRunning = active
}

// Touch records inbound activity for the user at the registry clock's time.
func (r *Registry) Touch(user domain.UserID) {
	s := r.getOrCreate(user)
	s.touch(r.now())

	s.mu.Lock()
	s.reaped = false
	s.mu.Unlock()
}

// LastActive returns the user's last activity time in UTC, or the zero time
// for unknown users.
func (r *Registry) LastActive(user domain.UserID) time.Time {
	s := r.lookup(user)
	if s == nil {
		return time.Time{}
	}
	return time.Unix(0, s.lastActive.Load()).UTC()
}

// Enqueue pushes items onto the user's queue and claims the worker slot if it
// is free, as a single atomic step. It returns true when the caller must start
// a worker, and false when a running worker will pick the items up.
func (r *Registry) Enqueue(user domain.UserID, items ...domain.WorkItem) bool {
	s := r.getOrCreate(user)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.queue.Push(items...)
	if s.workerRunning {
		return false
	}
	s.workerRunning = true
	return true
}

// Next pops the next item for the user's worker. When the queue is empty it
// clears the worker flag under the same lock Enqueue uses, so an item pushed
// concurrently either is returned here or causes Enqueue to start a new worker.
func (r *Registry) Next(user domain.UserID) (domain.WorkItem, bool) {
	s := r.lookup(user)
	if s == nil {
		return domain.WorkItem{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.queue.Pop()
	if !ok {
		s.workerRunning = false
	}
	return item, ok
}

// Release clears the user's worker flag without popping, for a worker that
// stops early, and returns how many items are still queued. Unknown users are
// left unknown.
func (r *Registry) Release(user domain.UserID) int {
	s := r.lookup(user)
	if s == nil {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.workerRunning = false
	return s.queue.Len()
}

// RemoveResult describes what Remove did.
type RemoveResult struct {
	Found        bool
	DroppedItems int
	// WorkerActive is true when a worker was still running. Its entry and
	// queued items are kept until the worker exits and a later sweep removes it.
	WorkerActive bool
}

// Remove drops the user's bookkeeping unconditionally. Queued items are
// dropped only when no worker is running to drain them.
func (r *Registry) Remove(user domain.UserID) RemoveResult {
	return r.remove(user, func(*session) bool { return true })
}

// RemoveIfExpired is Remove guarded by a staleness re-check under the registry
// lock, so a user whose activity was recorded after the reaper listed it is
// left alone. The reaper uses this variant.
func (r *Registry) RemoveIfExpired(user domain.UserID, now time.Time, timeout time.Duration) RemoveResult {
	return r.remove(user, func(s *session) bool {
		return now.Sub(time.Unix(0, s.lastActive.Load())) > timeout
	})
}

func (r *Registry) remove(user domain.UserID, eligible func(*session) bool) RemoveResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[user]
	if !ok || !eligible(s) {
		return RemoveResult{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.workerRunning {
		s.reaped = true
		return RemoveResult{Found: true, WorkerActive: true}
	}

	delete(r.sessions, user)
	return RemoveResult{Found: true, DroppedItems: s.queue.Clear()}
}

// Expired returns the users whose last activity is more than timeout before now,
// in ascending order. Sessions already reaped whose worker is still running
// are skipped until the worker exits.
func (r *Registry) Expired(now time.Time, timeout time.Duration) []domain.UserID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var expired []domain.UserID
	for user, s := range r.sessions {
		last := time.Unix(0, s.lastActive.Load())
		if now.Sub(last) <= timeout {
			continue
		}

		s.mu.Lock()
		pending := s.reaped && s.workerRunning
		s.mu.Unlock()
		if pending {
			continue
		}
		expired = append(expired, user)
	}

	sort.Slice(expired, func(i, j int) bool { return expired[i] < expired[j] })
	return expired
}

// Snapshot returns a view of every session ordered by user.
func (r *Registry) Snapshot() []SessionInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(r.sessions))
	for user, s := range r.sessions {
		s.mu.Lock()
		info := SessionInfo{
			UserID:        user,
			Queued:        s.queue.Len(),
			WorkerRunning: s.workerRunning,
			LastActive:    time.Unix(0, s.lastActive.Load()).UTC(),
		}
		if next, ok := s.queue.PeekNext(); ok {
			info.NextPayload = next.Payload()
		}
		s.mu.Unlock()
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].UserID < infos[j].UserID })
	return infos
}

// Len returns the number of sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
