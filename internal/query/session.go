package query

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AioliaKnight/Aidea-Med-Web-sub001/internal/models"
)

// DefaultDebounce is the quiet period after the last keystroke before a
// search is fetched.
const DefaultDebounce = 500 * time.Millisecond

// ErrStale is returned by LoadMore when a newer query superseded the
// one it was paging.
var ErrStale = errors.New("query: superseded by a newer query")

// State is the phase of a search session.
type State int

const (
	StateIdle State = iota
	StateSearching
	StateLoaded
)

func (s State) String() string {
	switch s {
	case StateSearching:
		return "searching"
	case StateLoaded:
		return "loaded"
	default:
		return "idle"
	}
}

// Fetcher loads one page of results.
type Fetcher func(ctx context.Context, spec Spec) (Page, error)

// Snapshot is a copy of the session state.
type Snapshot struct {
	State   State
	QueryID string
	Spec    Spec
	Posts   []models.Post
	HasMore bool
	Err     error
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithDebounce sets the quiet period for SetQuery.
func WithDebounce(d time.Duration) SessionOption {
	return func(s *Session) { s.debounce = d }
}

// WithOnChange registers a callback invoked after every state change.
// It runs outside the session lock.
func WithOnChange(fn func(Snapshot)) SessionOption {
	return func(s *Session) { s.onChange = fn }
}

// WithSessionLogger sets the logger.
func WithSessionLogger(l *slog.Logger) SessionOption {
	return func(s *Session) { s.logger = l }
}

// Session accumulates paged search results for one viewer. Every query
// change issues a new query id, clears accumulated results at once and
// invalidates responses still in flight for older ids.
type Session struct {
	ctx      context.Context
	fetch    Fetcher
	debounce time.Duration
	onChange func(Snapshot)
	logger   *slog.Logger

	mu      sync.Mutex
	state   State
	queryID string
	spec    Spec
	posts   []models.Post
	hasMore bool
	err     error
	timer   *time.Timer
	cancel  context.CancelFunc
	stale   int
	paging  string // query id with a LoadMore in flight
}

// NewSession creates an idle session. Fetches run under ctx.
func NewSession(ctx context.Context, fetch Fetcher, base Spec, opts ...SessionOption) *Session {
	s := &Session{
		ctx:      ctx,
		fetch:    fetch,
		debounce: DefaultDebounce,
		logger:   slog.Default(),
		spec:     base.Normalized(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetQuery changes the search term. Results are cleared immediately;
// the fetch starts once no further SetQuery arrives for the debounce
// period.
func (s *Session) SetQuery(q string) {
	s.mu.Lock()
	spec := s.spec
	spec.Search = q
	id := s.resetLocked(spec)
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() { s.run(id) })
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// SetCategory changes the category filter and fetches without delay.
func (s *Session) SetCategory(category string) {
	s.mu.Lock()
	spec := s.spec
	spec.Category = category
	id := s.resetLocked(spec)
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
	go s.run(id)
}

// resetLocked starts a new query: page 1, no accumulated results, and
// any in-flight fetch cancelled.
func (s *Session) resetLocked(spec Spec) string {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	spec.Page = 1
	s.spec = spec.Normalized()
	s.queryID = uuid.NewString()
	s.state = StateSearching
	s.posts = nil
	s.hasMore = false
	s.err = nil
	return s.queryID
}

func (s *Session) run(id string) {
	s.mu.Lock()
	if id != s.queryID {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.cancel = cancel
	spec := s.spec
	s.mu.Unlock()
	defer cancel()

	page, err := s.fetch(ctx, spec)

	s.mu.Lock()
	if id != s.queryID {
		s.stale++
		s.mu.Unlock()
		s.logger.Debug("discarded stale search response", slog.String("query_id", id))
		return
	}
	s.cancel = nil
	s.state = StateLoaded
	if err != nil {
		s.err = err
		s.hasMore = false
	} else {
		s.posts = append([]models.Post(nil), page.Items...)
		s.hasMore = page.HasMore
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// LoadMore fetches the next page of the current query and appends it.
// It is a no-op unless results are loaded and more are available, and
// while another LoadMore for the same query is in flight.
func (s *Session) LoadMore(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateLoaded || !s.hasMore || s.paging == s.queryID {
		s.mu.Unlock()
		return nil
	}
	id := s.queryID
	s.paging = id
	spec := s.spec
	spec.Page++
	s.mu.Unlock()

	page, err := s.fetch(ctx, spec)

	s.mu.Lock()
	if s.paging == id {
		s.paging = ""
	}
	if id != s.queryID {
		s.stale++
		s.mu.Unlock()
		return ErrStale
	}
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.spec.Page = spec.Page
	s.posts = append(s.posts, page.Items...)
	s.hasMore = page.HasMore
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
	return nil
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Discarded counts responses dropped because a newer query superseded them.
func (s *Session) Discarded() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stale
}

// Close stops any pending debounce and cancels the in-flight fetch.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.queryID = ""
	s.state = StateIdle
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		State:   s.state,
		QueryID: s.queryID,
		Spec:    s.spec,
		Posts:   append([]models.Post(nil), s.posts...),
		HasMore: s.hasMore,
		Err:     s.err,
	}
}

func (s *Session) notify(snap Snapshot) {
	if s.onChange != nil {
		s.onChange(snap)
	}
}
