package assets

import (
	"slices"
	"sync"

	"go.trai.ch/zerr"
)

// Kind resolves assets to tasks.
type Kind struct {
	// Name identifies the kind in logs.
	Name string

	// Match reports whether the kind handles asset.
	Match func(asset any) bool

	// New builds the task for an asset accepted by Match. An error aborts
	// the setup of the session.
	New func(h Host, asset any) (Task, error)
}

type registeredKind struct {
	kind     Kind
	priority int
}

// registry keeps kinds ordered by descending priority. Kinds of equal
// priority keep their registration order.
type registry struct {
	mu    sync.RWMutex
	kinds []registeredKind
}

func (r *registry) register(k Kind, priority int) error {
	if k.Match == nil || k.New == nil {
		return zerr.With(ErrInvalidKind, "kind", k.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.kinds = append(r.kinds, registeredKind{kind: k, priority: priority})
	slices.SortStableFunc(r.kinds, func(a, b registeredKind) int {
		return b.priority - a.priority
	})
	return nil
}

// match returns the highest-priority kind accepting asset.
func (r *registry) match(asset any) (Kind, bool) {
	if isNil(asset) {
		return Kind{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rk := range r.kinds {
		if rk.kind.Match(asset) {
			return rk.kind, true
		}
	}
	return Kind{}, false
}

func (r *registry) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.kinds))
	for i, rk := range r.kinds {
		out[i] = rk.kind.Name
	}
	return out
}

func (r *registry) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = nil
}
