package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/doomzday403/admin-console/internal/core/domain"
	"github.com/doomzday403/admin-console/internal/pkg/metrics"
)

// Workspace is the set of stores owned by one login session. Stores reach
// each other only through the Identity and Directory ports.
type Workspace struct {
	ID            string
	Session       *SessionStore
	Directory     *DirectoryStore
	Conversations *ConversationStore

	lastSeen atomic.Int64
}

func NewWorkspace(id string, b Backends, opts Options, log zerolog.Logger) *Workspace {
	log = log.With().Str("sid", id).Logger()

	session := NewSessionStore(b, opts, log)
	directory := NewDirectoryStore(b, session, opts, log)
	ws := &Workspace{
		ID:            id,
		Session:       session,
		Directory:     directory,
		Conversations: NewConversationStore(b, session, directory, opts, log),
	}
	ws.Touch()
	return ws
}

// Load fills the directory and conversation stores for the signed-in identity.
func (w *Workspace) Load(ctx context.Context) error {
	if err := w.Directory.Load(ctx); err != nil {
		return err
	}
	return w.Conversations.Load(ctx)
}

// Touch records activity on the workspace.
func (w *Workspace) Touch() {
	w.lastSeen.Store(time.Now().UnixNano())
}

// IdleSince returns the last time the workspace was used.
func (w *Workspace) IdleSince() time.Time {
	return time.Unix(0, w.lastSeen.Load())
}

// Close signs the session out and detaches every store. Operations still in
// flight finish without touching state and report domain.ErrSessionClosed.
func (w *Workspace) Close() {
	w.Session.Logout()
	w.Session.Close()
	w.Directory.Close()
	w.Conversations.Close()
}

// Registry owns the open workspaces, keyed by session id.
type Registry struct {
	backends Backends
	opts     Options
	idle     time.Duration
	log      zerolog.Logger

	mu     sync.RWMutex
	spaces map[string]*Workspace
}

func NewRegistry(b Backends, opts Options, idle time.Duration, log zerolog.Logger) *Registry {
	return &Registry{
		backends: b,
		opts:     opts,
		idle:     idle,
		log:      log,
		spaces:   make(map[string]*Workspace),
	}
}

// Login opens a workspace for creds. The workspace is registered only when
// the login succeeds and its stores have loaded.
func (r *Registry) Login(ctx context.Context, creds domain.Credentials) (*Workspace, error) {
	ws := NewWorkspace(newID(), r.backends, r.opts, r.log)
	if err := ws.Session.Login(ctx, creds); err != nil {
		ws.Close()
		return nil, err
	}
	if err := ws.Load(ctx); err != nil {
		ws.Close()
		return nil, err
	}

	r.mu.Lock()
	r.spaces[ws.ID] = ws
	r.mu.Unlock()
	metrics.ActiveSessions.Inc()
	return ws, nil
}

// Get returns the workspace for id and marks it as used.
func (r *Registry) Get(id string) (*Workspace, bool) {
	r.mu.RLock()
	ws, ok := r.spaces[id]
	r.mu.RUnlock()
	if ok {
		ws.Touch()
	}
	return ws, ok
}

// Close removes and closes the workspace for id.
func (r *Registry) Close(id string) bool {
	r.mu.Lock()
	ws, ok := r.spaces[id]
	delete(r.spaces, id)
	r.mu.Unlock()
	if !ok {
		return false
	}
	ws.Close()
	metrics.ActiveSessions.Dec()
	return true
}

// Len reports the number of open workspaces.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.spaces)
}

// Anonymous returns a session store that belongs to no workspace, for the
// password reset flows.
func (r *Registry) Anonymous() *SessionStore {
	return NewSessionStore(r.backends, r.opts, r.log)
}

// Sweep closes workspaces idle since before now minus the idle timeout.
func (r *Registry) Sweep(now time.Time) int {
	if r.idle <= 0 {
		return 0
	}
	cutoff := now.Add(-r.idle)

	var stale []string
	r.mu.RLock()
	for id, ws := range r.spaces {
		if ws.IdleSince().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	r.mu.RUnlock()

	n := 0
	for _, id := range stale {
		if r.Close(id) {
			n++
		}
	}
	if n > 0 {
		r.log.Info().Int("closed", n).Msg("idle sessions swept")
	}
	return n
}

// Run sweeps idle workspaces every interval until ctx is cancelled, then
// closes whatever is left.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return
		case now := <-ticker.C:
			r.Sweep(now)
		}
	}
}

func (r *Registry) closeAll() {
	r.mu.Lock()
	spaces := r.spaces
	r.spaces = make(map[string]*Workspace)
	r.mu.Unlock()

	for _, ws := range spaces {
		ws.Close()
		metrics.ActiveSessions.Dec()
	}
}
