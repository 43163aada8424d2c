package assets

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_MapRequest(t *testing.T) {
	f := newFixture(t, map[string]string{"icon.png": "ICON", "bg.png": "BG"})

	result, err := f.fetch(t, map[string]any{
		"icon": &File{Src: "icon.png"},
		"bg":   &File{Src: "bg.png"},
	})
	require.NoError(t, err)

	got, ok := result.(map[string]any)
	require.True(t, ok, "result is %T", result)
	assert.Len(t, got, 2)
	assert.Equal(t, "ICON", text(got["icon"]))
	assert.Equal(t, "BG", text(got["bg"]))
}

func TestSession_MapHasExactlyTheRequestedKeys(t *testing.T) {
	for n := 0; n <= 6; n++ {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			files := make(map[string]string)
			request := make(map[string]any)
			for i := 0; i < n; i++ {
				url := fmt.Sprintf("asset%d.json", i)
				files[url] = url
				request[fmt.Sprintf("k%d", i)] = url
			}
			f := newFixture(t, files)

			result, err := f.fetch(t, request)
			require.NoError(t, err)

			got := result.(map[string]any)
			require.Len(t, got, n)
			for key, url := range request {
				assert.Equal(t, url, text(got[key]))
			}
		})
	}
}

func TestSession_SequentialKeepsInputOrder(t *testing.T) {
	f := newFixture(t, map[string]string{"a.png": "A", "b.png": "B", "c.png": "C"})
	f.srv.delays["a.png"] = 40 * time.Millisecond
	f.srv.delays["b.png"] = 20 * time.Millisecond

	result, err := f.fetch(t, []any{&File{Src: "a.png"}, &File{Src: "b.png"}, "c.png"}, WithParallel(false))
	require.NoError(t, err)

	got := result.([]any)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{text(got[0]), text(got[1]), text(got[2])})
}

// List results follow completion order, so a slow first asset lands last
// when tasks run in parallel.
func TestSession_ParallelUsesCompletionOrder(t *testing.T) {
	f := newFixture(t, map[string]string{"a.png": "A", "b.png": "B"})
	f.srv.delays["a.png"] = 150 * time.Millisecond

	result, err := f.fetch(t, []any{"a.png", "b.png"})
	require.NoError(t, err)

	got := result.([]any)
	require.Len(t, got, 2)
	assert.Equal(t, "B", text(got[0]))
	assert.Equal(t, "A", text(got[1]))
}

func TestSession_ParallelMembership(t *testing.T) {
	files := map[string]string{}
	var request []any
	for i := 0; i < 10; i++ {
		url := fmt.Sprintf("%d.txt", i)
		files[url] = url
		request = append(request, url)
	}
	f := newFixture(t, files)

	result, err := f.fetch(t, request)
	require.NoError(t, err)

	var got []string
	for _, v := range result.([]any) {
		got = append(got, text(v))
	}
	want := make([]string, 0, len(request))
	for _, r := range request {
		want = append(want, r.(string))
	}
	assert.ElementsMatch(t, want, got)
}

func TestSession_SliceWithIDsIsMap(t *testing.T) {
	f := newFixture(t, map[string]string{"a.png": "A", "b.png": "B"})

	result, err := f.fetch(t, []any{
		&File{Info: Info{ID: "first"}, Src: "a.png"},
		&File{Info: Info{ID: "second"}, Src: "b.png"},
	})
	require.NoError(t, err)

	got := result.(map[string]any)
	assert.Equal(t, "A", text(got["first"]))
	assert.Equal(t, "B", text(got["second"]))
}

func TestSession_TypedCollections(t *testing.T) {
	f := newFixture(t, map[string]string{"a.png": "A", "b.png": "B"})

	result, err := f.fetch(t, []string{"a.png", "b.png"}, WithParallel(false))
	require.NoError(t, err)
	assert.Len(t, result.([]any), 2)

	result, err = f.fetch(t, map[string]*File{"x": {Src: "a.png"}})
	require.NoError(t, err)
	assert.Equal(t, "A", text(result.(map[string]any)["x"]))
}

func TestSession_Single(t *testing.T) {
	f := newFixture(t, map[string]string{"config.json": `{"a":1}`})

	result, err := f.fetch(t, "config.json")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, text(result))
}

func TestSession_MapDescriptorsAreNotMutated(t *testing.T) {
	f := newFixture(t, map[string]string{"a.png": "A"})
	file := &File{Src: "a.png"}

	_, err := f.fetch(t, map[string]any{"key": file})
	require.NoError(t, err)
	assert.Empty(t, file.ID)
}

func TestSession_FailedFetchGivesNil(t *testing.T) {
	f := newFixture(t, map[string]string{"ok.png": "OK"})

	result, err := f.fetch(t, map[string]any{"ok": "ok.png", "missing": "missing.png"})
	require.NoError(t, err)

	got := result.(map[string]any)
	assert.Equal(t, "OK", text(got["ok"]))
	v, present := got["missing"]
	assert.True(t, present)
	assert.Nil(t, v)
}

func TestSession_UnmatchedAssetIsSkipped(t *testing.T) {
	f := newFixture(t, map[string]string{"a.png": "A"})

	result, err := f.fetch(t, []any{"a.png", 42, nil})
	require.NoError(t, err)

	got := result.([]any)
	require.Len(t, got, 1)
	assert.Equal(t, "A", text(got[0]))
}

func TestSession_UnsupportedRequest(t *testing.T) {
	f := newFixture(t, nil)

	for _, req := range []any{42, nil, map[int]any{1: "a.png"}, []byte("a.png")} {
		_, err := f.m.Load(context.Background(), req)
		assert.ErrorIs(t, err, ErrUnsupportedRequest, "request %#v", req)
	}
}

func TestSession_EmptyCollectionsCompleteImmediately(t *testing.T) {
	f := newFixture(t, nil)

	result, err := f.fetch(t, []any{})
	require.NoError(t, err)
	assert.Equal(t, []any{}, result)

	result, err = f.fetch(t, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, result)
}

func TestSession_DynamicExpansion(t *testing.T) {
	f := newFixture(t, map[string]string{"a.json": "A", "b.json": "B"})

	result, err := f.fetch(t, []any{
		&File{Src: "a.json", Info: Info{Complete: func(any) []any { return []any{"b.json"} }}},
	}, WithParallel(false))
	require.NoError(t, err)

	got := result.([]any)
	require.Len(t, got, 2)
	assert.Equal(t, "A", text(got[0]))
	assert.Equal(t, "B", text(got[1]))
}

func TestSession_MapExpansionRequiresIDs(t *testing.T) {
	f := newFixture(t, map[string]string{"a.json": "A", "b.json": "B", "c.json": "C"})

	result, err := f.fetch(t, map[string]any{
		"a": &File{Src: "a.json", Info: Info{Complete: func(any) []any {
			return []any{
				"b.json",
				&File{Info: Info{ID: "c"}, Src: "c.json"},
			}
		}}},
	})
	require.ErrorIs(t, err, ErrMissingID)

	got := result.(map[string]any)
	assert.Equal(t, "A", text(got["a"]))
	assert.Equal(t, "C", text(got["c"]))
	assert.NotContains(t, got, "b.json")
}

func TestSession_Progress(t *testing.T) {
	f := newFixture(t, map[string]string{"a": "A", "b": "B", "c": "C", "d": "D"})

	var mu sync.Mutex
	var seen []float64
	_, err := f.fetch(t, []any{"a", "b", "c", "d"}, WithParallel(false), WithProgress(func(p float64) {
		mu.Lock()
		seen = append(seen, p)
		mu.Unlock()
	}))
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []float64{0.25, 0.5, 0.75, 1}, seen)
}

func TestSession_TaskDone(t *testing.T) {
	f := newFixture(t, map[string]string{"a": "A"})

	var ids []string
	_, err := f.fetch(t, map[string]any{"first": "a"}, WithTaskDone(func(task Task, result any) {
		ids = append(ids, task.Base().ID)
		assert.Equal(t, StatusFinished, task.Base().Status)
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"first"}, ids)
}

func TestSession_StartTwice(t *testing.T) {
	f := newFixture(t, nil)

	var release func(any)
	block := AsyncFunc(func(_ context.Context, done func(any)) { release = done })

	completed := make(chan any, 1)
	s, err := f.m.Load(context.Background(), block, WithAutoStart(false), WithComplete(func(r any, _ error) { completed <- r }))
	require.NoError(t, err)
	assert.Equal(t, ModeSingle, s.Mode())
	assert.False(t, s.Running())

	require.NoError(t, s.Start())
	assert.ErrorIs(t, s.Start(), ErrSessionRunning)

	release("done")
	assert.Equal(t, "done", <-completed)
}

func TestSession_ResetSuppressesCallbacks(t *testing.T) {
	f := newFixture(t, map[string]string{"slow.png": "S"})
	f.srv.delays["slow.png"] = 30 * time.Millisecond

	var mu sync.Mutex
	called := false
	s, err := f.m.Load(context.Background(), []any{"slow.png"}, WithComplete(func(any, error) {
		mu.Lock()
		called = true
		mu.Unlock()
	}))
	require.NoError(t, err)

	s.Reset()
	f.m.Loader().Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.False(t, called)
	assert.False(t, s.Running())
	loaded, total := s.Progress()
	assert.Zero(t, loaded)
	assert.Zero(t, total)
}

func TestSession_CompletesOnceUnderConcurrency(t *testing.T) {
	files := map[string]string{}
	var request []any
	for i := 0; i < 50; i++ {
		url := fmt.Sprintf("f%d", i)
		files[url] = url
		request = append(request, url)
	}
	f := newFixture(t, files)

	var mu sync.Mutex
	completions := 0
	done := make(chan struct{})
	_, err := f.m.Load(context.Background(), request, WithComplete(func(result any, _ error) {
		mu.Lock()
		completions++
		mu.Unlock()
		assert.Len(t, result.([]any), 50)
		close(done)
	}))
	require.NoError(t, err)

	<-done
	f.m.Loader().Wait()
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, completions)
}
