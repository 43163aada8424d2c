package assets

import (
	"context"
	"log/slog"

	"github.com/SpringRoll/SpringRoll-sub000/internal/sizes"
	"github.com/SpringRoll/SpringRoll-sub000/internal/transfer"
)

// Status is the lifecycle state of a task.
type Status int

const (
	StatusWaiting Status = iota
	StatusRunning
	StatusFinished
)

func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusRunning:
		return "running"
	case StatusFinished:
		return "finished"
	}
	return "unknown"
}

// Task is one unit of asynchronous work in a session.
type Task interface {
	// Start begins the work. done must be called exactly once, either
	// before Start returns or later from any goroutine. A nil result means
	// the task produced nothing.
	Start(ctx context.Context, done func(result any))

	// Base returns the fields shared by every task.
	Base() *BaseTask

	// Destroy releases what the task holds. It does not abort work already
	// started.
	Destroy()
}

// BaseTask holds the state common to all tasks. Task kinds embed it.
type BaseTask struct {
	// ID names the result. It may be empty outside map-mode sessions.
	ID string

	// Cache writes the result to the cache under ID.
	Cache bool

	// Status is owned by the session running the task.
	Status Status

	// Complete is the descriptor's completion hook.
	Complete CompleteFunc

	// Original is the asset the task was created from.
	Original any

	// Source is the id used when caching is requested without an explicit
	// ID. Kinds that load a single URL set it to that URL.
	Source string
}

// Base implements Task.
func (b *BaseTask) Base() *BaseTask {
	return b
}

// Destroy implements Task.
func (b *BaseTask) Destroy() {
	b.Complete = nil
	b.Original = nil
}

func newBaseTask(asset any, info *Info, source string) BaseTask {
	b := BaseTask{Original: asset, Source: source}
	if info != nil {
		b.ID = info.ID
		b.Cache = info.Cache
		b.Complete = info.Complete
	}
	return b
}

// Host is what task kinds need from the manager that runs them.
type Host interface {
	Loader() *transfer.Loader
	Sizes() *sizes.Sizes
	Logger() *slog.Logger
	Load(ctx context.Context, request any, opts ...Option) (*Session, error)
}
