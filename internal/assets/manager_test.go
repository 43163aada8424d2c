package assets

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/SpringRoll/SpringRoll-sub000/internal/sizes"
	"github.com/SpringRoll/SpringRoll-sub000/internal/transfer"
	"github.com/SpringRoll/SpringRoll-sub000/internal/transfer/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestManager_BuiltInKinds(t *testing.T) {
	f := newFixture(t, nil)
	assert.Equal(t, []string{"audio", "color-alpha", "list", "function", "load"}, f.m.Kinds())
}

func TestManager_RegisterPriority(t *testing.T) {
	f := newFixture(t, map[string]string{"special://a": "raw"})

	custom := func(name string) Kind {
		return Kind{
			Name:  name,
			Match: func(asset any) bool { s, ok := asset.(string); return ok && strings.HasPrefix(s, "special://") },
			New: func(_ Host, asset any) (Task, error) {
				return &FunctionTask{run: func(_ context.Context, done func(any)) { done(name) }}, nil
			},
		}
	}
	require.NoError(t, f.m.Register(custom("first"), 50))
	require.NoError(t, f.m.Register(custom("second"), 50))

	result, err := f.fetch(t, "special://a")
	require.NoError(t, err)
	assert.Equal(t, "first", result)

	assert.ErrorIs(t, f.m.Register(Kind{Name: "broken"}, 1), ErrInvalidKind)
}

func TestManager_CacheAndUnload(t *testing.T) {
	f := newFixture(t, map[string]string{"hero.png": "HERO", "bg.png": "BG"})

	_, err := f.fetch(t, []any{
		&File{Info: Info{ID: "hero", Cache: true}, Src: "hero.png"},
		&File{Info: Info{Cache: true}, Src: "bg.png"},
	})
	require.NoError(t, err)

	assert.Equal(t, "HERO", text(f.m.Cache("hero")))
	assert.Equal(t, "BG", text(f.m.Cache("bg.png")), "id derived from src")

	f.m.Unload("hero", "unknown")
	assert.Nil(t, f.m.Cache("hero"))
	assert.True(t, f.m.Results().Has("bg.png"))

	f.m.UnloadAll()
	assert.Zero(t, f.m.Results().Len())
}

func TestManager_CacheAll(t *testing.T) {
	f := newFixture(t, map[string]string{"a.png": "A", "b.png": "B"})

	_, err := f.fetch(t, map[string]any{"a": "a.png", "b": "b.png"}, WithCacheAll())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, f.m.Results().IDs())
}

func TestManager_CachingWithoutIDIsDisabled(t *testing.T) {
	f := newFixture(t, nil)

	fn := &Func{Info: Info{Cache: true}, Run: func(_ context.Context, done func(any)) { done("x") }}
	result, err := f.fetch(t, []any{fn})
	require.NoError(t, err)
	assert.Equal(t, []any{"x"}, result)
	assert.Zero(t, f.m.Results().Len())
}

func TestManager_FailedResultsAreNotCached(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.fetch(t, &File{Info: Info{ID: "gone", Cache: true}, Src: "gone.png"})
	require.NoError(t, err)
	assert.False(t, f.m.Results().Has("gone"))
}

func TestManager_RetryBoundThroughSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := mocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().
		Fetch(gomock.Any(), "broken.png", gomock.Any()).
		Return(nil, errNotFound).
		Times(transfer.MaxRetries + 1)

	loader := transfer.NewLoader(fetcher, nil, transfer.Options{
		RetryCooldown: time.Microsecond,
		RetryExponent: 1,
	}, quiet)
	m := NewManager(loader, nil, WithLogger(quiet))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := m.Fetch(ctx, map[string]any{"broken": "broken.png"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"broken": nil}, result)
}

func TestManager_SessionsArePooled(t *testing.T) {
	f := newFixture(t, map[string]string{"a.png": "A"})

	_, err := f.fetch(t, "a.png")
	require.NoError(t, err)
	assert.Equal(t, 1, f.m.pooled())

	_, err = f.fetch(t, []any{"a.png"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.m.pooled())
}

func TestManager_SetupErrorReturnsSessionToPool(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.m.Load(context.Background(), 42)
	require.ErrorIs(t, err, ErrUnsupportedRequest)
	assert.Equal(t, 1, f.m.pooled())
}

func TestManager_SizeVariants(t *testing.T) {
	f := newFixture(t, map[string]string{
		"img/half/hero.png": "HALF",
		"img/full/hero.png": "FULL",
	})
	require.NoError(t, f.m.DefineSize("half", 400, 0.5, []string{"full"}))
	require.NoError(t, f.m.DefineSize("full", 10000, 1, []string{"half"}))
	f.m.Resize(300, 300)
	assert.Equal(t, "half", f.m.Sizes().Preferred().ID)

	result, err := f.fetch(t, &File{Src: "img/" + sizes.Token + "/hero.png", Sizes: true})
	require.NoError(t, err)
	assert.Equal(t, "HALF", text(result))

	result, err = f.fetch(t, &File{Src: "img/" + sizes.Token + "/hero.png", Sizes: true, Supported: map[string]bool{"half": false}})
	require.NoError(t, err)
	assert.Equal(t, "FULL", text(result))

	_, err = f.m.Load(context.Background(), &File{
		Src:       "img/" + sizes.Token + "/hero.png",
		Sizes:     true,
		Supported: map[string]bool{"half": false, "full": false},
	})
	assert.ErrorIs(t, err, sizes.ErrNoSupportedSize)
}

func TestManager_LoadVersions(t *testing.T) {
	f := newFixture(t, map[string]string{
		"versions.txt": "a.png 3\n\nb.png 9\n",
		"a.png?v=3":    "A3",
	})

	require.NoError(t, f.m.LoadVersions(context.Background(), "versions.txt"))

	result, err := f.fetch(t, "a.png")
	require.NoError(t, err)
	assert.Equal(t, "A3", text(result))

	v, ok := f.resolver.Version("b.png")
	assert.True(t, ok)
	assert.Equal(t, "9", v)

	assert.ErrorIs(t, f.m.LoadVersions(context.Background(), "missing.txt"), ErrVersionsUnavailable)
}

func TestManager_FetchHonoursContext(t *testing.T) {
	f := newFixture(t, map[string]string{"slow.png": "S"})
	f.srv.delays["slow.png"] = time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := f.m.Fetch(ctx, "slow.png")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	f.m.Loader().Wait()
}

func TestManager_Destroy(t *testing.T) {
	f := newFixture(t, map[string]string{"a.png": "A"})
	_, err := f.fetch(t, &File{Info: Info{ID: "a", Cache: true}, Src: "a.png"})
	require.NoError(t, err)

	f.m.Destroy()

	assert.Zero(t, f.m.Results().Len())
	assert.Empty(t, f.m.Kinds())
	assert.Zero(t, f.m.pooled())
	assert.Empty(t, f.m.Sizes().Variants())
}
