package assets

import (
	"context"
	"sync"
)

// ListKind handles *List descriptors.
func ListKind() Kind {
	return Kind{
		Name: "list",
		Match: func(asset any) bool {
			_, ok := asset.(*List)
			return ok
		},
		New: newListTask,
	}
}

// ListTask loads a nested collection in its own session. Its result is the
// nested session's result container.
type ListTask struct {
	BaseTask

	assets     any
	sequential bool
	cacheAll   bool
	host       Host

	mu       sync.Mutex
	session  *Session
	finished bool
}

func newListTask(h Host, asset any) (Task, error) {
	l := asset.(*List)
	return &ListTask{
		BaseTask:   newBaseTask(asset, &l.Info, ""),
		assets:     l.Assets,
		sequential: l.Sequential,
		cacheAll:   l.CacheAll,
		host:       h,
	}, nil
}

// Start implements Task.
func (t *ListTask) Start(ctx context.Context, done func(result any)) {
	opts := []Option{
		WithParallel(!t.sequential),
		WithComplete(func(result any, err error) {
			t.mu.Lock()
			t.finished = true
			t.session = nil
			t.mu.Unlock()

			if err != nil {
				t.host.Logger().Error("nested load finished with errors", "id", t.ID, "error", err)
			}
			done(result)
		}),
	}
	if t.cacheAll {
		opts = append(opts, WithCacheAll())
	}

	session, err := t.host.Load(ctx, t.assets, opts...)
	if err != nil {
		t.host.Logger().Error("nested load failed", "id", t.ID, "error", err)
		done(nil)
		return
	}

	t.mu.Lock()
	if !t.finished {
		t.session = session
	}
	t.mu.Unlock()
}

// Destroy implements Task. A nested session still running is reset.
func (t *ListTask) Destroy() {
	t.mu.Lock()
	session := t.session
	t.session = nil
	t.finished = true
	t.mu.Unlock()

	if session != nil {
		session.Reset()
	}
	t.BaseTask.Destroy()
	t.assets = nil
}
