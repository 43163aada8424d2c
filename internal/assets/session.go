package assets

import (
	"cmp"
	"context"
	"errors"
	"reflect"
	"slices"
	"sync"

	"go.trai.ch/zerr"
)

// Mode is the shape of a session's result.
type Mode int

const (
	// ModeSingle returns the result of the only task.
	ModeSingle Mode = iota
	// ModeList returns results in completion order.
	ModeList
	// ModeMap returns results keyed by task id.
	ModeMap
)

func (m Mode) String() string {
	switch m {
	case ModeSingle:
		return "single"
	case ModeList:
		return "list"
	case ModeMap:
		return "map"
	}
	return "unknown"
}

type options struct {
	parallel  bool
	cacheAll  bool
	autoStart bool
	complete  func(result any, err error)
	progress  func(progress float64)
	taskDone  func(task Task, result any)
}

func defaultOptions() options {
	return options{parallel: true, autoStart: true}
}

// Option configures a session.
type Option func(*options)

// WithParallel starts every task at once (the default) or, when false, one
// task at a time in input order.
func WithParallel(parallel bool) Option {
	return func(o *options) { o.parallel = parallel }
}

// WithCacheAll caches the result of every task.
func WithCacheAll() Option {
	return func(o *options) { o.cacheAll = true }
}

// WithAutoStart controls whether setup starts the session. Default true.
func WithAutoStart(autoStart bool) Option {
	return func(o *options) { o.autoStart = autoStart }
}

// WithComplete sets the function called once with the result container.
// err joins the errors reported while tasks were added dynamically; it is
// nil in the common case.
func WithComplete(fn func(result any, err error)) Option {
	return func(o *options) { o.complete = fn }
}

// WithProgress sets the function called with loaded/total after every task.
func WithProgress(fn func(progress float64)) Option {
	return func(o *options) { o.progress = fn }
}

// WithTaskDone sets the function called with every finished task.
func WithTaskDone(fn func(task Task, result any)) Option {
	return func(o *options) { o.taskDone = fn }
}

type entry struct {
	key   string
	asset any
}

// Session turns one request into tasks and collects their results.
type Session struct {
	m *Manager

	mu        sync.Mutex
	ctx       context.Context
	opts      options
	mode      Mode
	running   bool
	pending   []Task
	single    any
	list      []any
	dict      map[string]any
	loaded    int
	total     int
	finishing int
	errs      []error
}

func newSession(m *Manager) *Session {
	return &Session{m: m}
}

// setup classifies request, builds its tasks and starts the session unless
// auto start is disabled. Errors abort the setup and leave the session reset.
func (s *Session) setup(ctx context.Context, request any, opts ...Option) error {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	entries, mode, err := s.classify(request)
	if err != nil {
		return err
	}

	tasks, errs := s.materialize(entries, mode, o.cacheAll)
	if len(errs) > 0 {
		for _, t := range tasks {
			t.Destroy()
		}
		return errors.Join(errs...)
	}

	s.mu.Lock()
	s.ctx = ctx
	s.opts = o
	s.mode = mode
	s.pending = tasks
	s.total = len(tasks)
	s.loaded = 0
	s.single = nil
	s.list = nil
	s.dict = nil
	switch mode {
	case ModeList:
		s.list = []any{}
	case ModeMap:
		s.dict = make(map[string]any, len(tasks))
	}
	s.mu.Unlock()

	s.m.logger.Debug("session setup", "mode", mode, "tasks", len(tasks), "parallel", o.parallel)

	if o.autoStart {
		return s.Start()
	}
	return nil
}

// classify infers the mode of request and splits it into entries.
func (s *Session) classify(request any) ([]entry, Mode, error) {
	if _, ok := s.m.registry.match(request); ok {
		return []entry{{asset: request}}, ModeSingle, nil
	}

	rv := reflect.ValueOf(request)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, 0, zerr.With(ErrUnsupportedRequest, "type", rv.Type().String())
		}
		entries := make([]entry, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			entries = append(entries, entry{key: iter.Key().String(), asset: iter.Value().Interface()})
		}
		slices.SortFunc(entries, func(a, b entry) int { return cmp.Compare(a.key, b.key) })
		return entries, ModeMap, nil

	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return nil, 0, zerr.With(ErrUnsupportedRequest, "type", rv.Type().String())
		}
		entries := make([]entry, rv.Len())
		allIDs := rv.Len() > 0
		for i := range entries {
			entries[i].asset = rv.Index(i).Interface()
			if explicitID(entries[i].asset) == "" {
				allIDs = false
			}
		}
		if allIDs {
			return entries, ModeMap, nil
		}
		return entries, ModeList, nil
	}

	if request == nil {
		return nil, 0, ErrUnsupportedRequest
	}
	return nil, 0, zerr.With(ErrUnsupportedRequest, "type", rv.Type().String())
}

// materialize builds one task per entry. Entries no kind matches are logged
// and skipped. The returned errors name the entries that could not be added.
func (s *Session) materialize(entries []entry, mode Mode, cacheAll bool) ([]Task, []error) {
	var (
		tasks []Task
		errs  []error
	)
	for _, e := range entries {
		kind, ok := s.m.registry.match(e.asset)
		if !ok {
			s.m.logger.Error("asset skipped", "asset", label(e.asset), "error", ErrNoTaskKind)
			continue
		}

		task, err := kind.New(s.m, e.asset)
		if err != nil {
			errs = append(errs, zerr.With(zerr.With(err, "kind", kind.Name), "asset", label(e.asset)))
			continue
		}

		b := task.Base()
		if b.ID == "" {
			b.ID = e.key
		}
		if cacheAll {
			b.Cache = true
		}
		if b.Cache && b.ID == "" {
			if b.Source != "" {
				b.ID = b.Source
			} else {
				s.m.logger.Warn("caching disabled for asset without id", "asset", label(e.asset))
				b.Cache = false
			}
		}
		if mode == ModeMap && b.ID == "" {
			task.Destroy()
			errs = append(errs, zerr.With(ErrMissingID, "asset", label(e.asset)))
			continue
		}

		b.Status = StatusWaiting
		tasks = append(tasks, task)
	}
	return tasks, errs
}

// Start runs the session. A session with no tasks completes immediately.
func (s *Session) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return ErrSessionRunning
	}
	s.running = true
	s.mu.Unlock()

	s.nextTask()
	s.checkDone()
	return nil
}

// nextTask starts every waiting task in parallel mode, or the first waiting
// task when none is running in sequential mode.
func (s *Session) nextTask() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}

	var start []Task
	for _, t := range s.pending {
		b := t.Base()
		if !s.opts.parallel && b.Status == StatusRunning {
			break
		}
		if b.Status != StatusWaiting {
			continue
		}
		b.Status = StatusRunning
		start = append(start, t)
		if !s.opts.parallel {
			break
		}
	}
	ctx := s.ctx
	s.mu.Unlock()

	for _, t := range start {
		t.Start(ctx, func(result any) { s.taskDone(t, result) })
	}
}

func (s *Session) taskDone(t Task, result any) {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	idx := slices.Index(s.pending, t)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.pending = slices.Delete(s.pending, idx, idx+1)

	b := t.Base()
	b.Status = StatusFinished
	switch s.mode {
	case ModeSingle:
		s.single = result
	case ModeList:
		s.list = append(s.list, result)
	case ModeMap:
		s.dict[b.ID] = result
	}
	s.finishing++

	id, cache, hook := b.ID, b.Cache, b.Complete
	mode, cacheAll := s.mode, s.opts.cacheAll
	taskDone := s.opts.taskDone
	s.mu.Unlock()

	if cache && result != nil {
		s.m.cache.Write(id, result)
	}
	if taskDone != nil {
		taskDone(t, result)
	}

	var (
		added []Task
		errs  []error
	)
	if hook != nil {
		if more := hook(result); len(more) > 0 {
			entries := make([]entry, len(more))
			for i, a := range more {
				entries[i].asset = a
			}
			added, errs = s.materialize(entries, mode, cacheAll)
			for _, err := range errs {
				s.m.logger.Error("asset dropped", "error", err)
			}
		}
	}
	t.Destroy()

	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		for _, a := range added {
			a.Destroy()
		}
		return
	}
	s.pending = append(s.pending, added...)
	s.total += len(added)
	s.errs = append(s.errs, errs...)
	s.loaded++
	s.finishing--
	progress, onProgress := float64(s.loaded)/float64(s.total), s.opts.progress
	s.mu.Unlock()

	if onProgress != nil {
		onProgress(progress)
	}

	s.nextTask()
	s.checkDone()
}

// checkDone completes the session once no task is pending or finishing.
// Completion happens at most once per run.
func (s *Session) checkDone() {
	s.mu.Lock()
	if !s.running || len(s.pending) > 0 || s.finishing > 0 {
		s.mu.Unlock()
		return
	}
	s.running = false
	result := s.containerLocked()
	err := errors.Join(s.errs...)
	complete := s.opts.complete
	mode, loaded := s.mode, s.loaded
	s.mu.Unlock()

	s.m.logger.Debug("session complete", "mode", mode, "loaded", loaded)
	if complete != nil {
		complete(result, err)
	}
}

func (s *Session) containerLocked() any {
	switch s.mode {
	case ModeList:
		return s.list
	case ModeMap:
		return s.dict
	}
	return s.single
}

// Reset stops the session without calling any callback. Pending tasks are
// marked finished and destroyed; work they already started is not aborted
// and its results are ignored.
func (s *Session) Reset() {
	s.mu.Lock()
	tasks := s.pending
	for _, t := range tasks {
		t.Base().Status = StatusFinished
	}
	s.pending = nil
	s.running = false
	s.ctx = nil
	s.opts = options{}
	s.mode = ModeSingle
	s.single = nil
	s.list = nil
	s.dict = nil
	s.loaded = 0
	s.total = 0
	s.finishing = 0
	s.errs = nil
	s.mu.Unlock()

	for _, t := range tasks {
		t.Destroy()
	}
}

// Mode returns the inferred result shape.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Running reports whether the session has started and not yet completed.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Progress returns the number of finished tasks and the total.
func (s *Session) Progress() (loaded, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded, s.total
}
