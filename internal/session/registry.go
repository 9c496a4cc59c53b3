package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ayush/research-intelligence/internal/research"
)

// Registry owns one research.Controller per live session.
type Registry struct {
	store   Store
	newCtrl func() *research.Controller
	log     *logrus.Entry

	mu          sync.Mutex
	controllers map[string]*research.Controller
}

func NewRegistry(store Store, newCtrl func() *research.Controller, log *logrus.Entry) *Registry {
	return &Registry{
		store:       store,
		newCtrl:     newCtrl,
		log:         log,
		controllers: make(map[string]*research.Controller),
	}
}

// Resolve returns the controller for id, refreshing the session. Unknown or
// expired IDs get a fresh session; created reports whether that happened and
// the caller must hand the new ID back to the browser.
func (r *Registry) Resolve(ctx context.Context, id string) (sid string, ctrl *research.Controller, created bool, err error) {
	if id != "" {
		live, err := r.store.Touch(ctx, id)
		if err != nil {
			return "", nil, false, fmt.Errorf("touch session: %w", err)
		}
		if live {
			return id, r.controller(id), false, nil
		}
		r.forget(id)
	}

	sid, err = r.store.Create(ctx)
	if err != nil {
		return "", nil, false, fmt.Errorf("create session: %w", err)
	}
	return sid, r.controller(sid), true, nil
}

func (r *Registry) controller(id string) *research.Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	ctrl, ok := r.controllers[id]
	if !ok {
		ctrl = r.newCtrl()
		r.controllers[id] = ctrl
	}
	return ctrl
}

func (r *Registry) forget(id string) {
	r.mu.Lock()
	delete(r.controllers, id)
	r.mu.Unlock()
}

// Len returns the number of controllers held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.controllers)
}

// Prune drops controllers whose sessions have expired and returns how many
// were removed.
func (r *Registry) Prune(ctx context.Context) (int, error) {
	r.mu.Lock()
	ids := make([]string, 0, len(r.controllers))
	for id := range r.controllers {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	removed := 0
	for _, id := range ids {
		live, err := r.store.Exists(ctx, id)
		if err != nil {
			return removed, fmt.Errorf("check session: %w", err)
		}
		if !live {
			r.forget(id)
			removed++
		}
	}
	return removed, nil
}

// Run prunes every interval until ctx is cancelled.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := r.Prune(ctx)
			if err != nil {
				r.log.WithError(err).Warn("session prune failed")
				continue
			}
			if n > 0 {
				r.log.WithField("removed", n).Debug("pruned expired sessions")
			}
		}
	}
}
