package apps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ffaheem88/BrowserOS-sub000/internal/apperrors"
	"github.com/ffaheem88/BrowserOS-sub000/internal/wm"
)

func newTestRegistry(t *testing.T) (*Registry, *wm.Registry) {
	t.Helper()
	windows := wm.NewRegistry(wm.Config{})
	r := NewRegistry(windows)
	require.NoError(t, RegisterBuiltin(r))
	return r, windows
}

func TestRegisterValidation(t *testing.T) {
	r := NewRegistry(nil)

	err := r.Register(Descriptor{Name: "X", Entry: "apps/x"})
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "id", verr.Field)

	assert.Error(t, r.Register(Descriptor{ID: "x", Entry: "apps/x"}))
	assert.Error(t, r.Register(Descriptor{ID: "x", Name: "X"}))
	assert.NoError(t, r.Register(Descriptor{ID: "x", Name: "X", Entry: "apps/x"}))
}

func TestRegisterOverwritesDuplicate(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register(Descriptor{ID: "x", Name: "First", Entry: "apps/x"}))
	require.NoError(t, r.Register(Descriptor{ID: "x", Name: "Second", Entry: "apps/x"}))

	d, err := r.Get("x")
	require.NoError(t, err)
	assert.Equal(t, "Second", d.Name)
}

func TestUnregister(t *testing.T) {
	r, _ := newTestRegistry(t)
	require.NoError(t, r.Unregister("clock"))
	assert.True(t, apperrors.IsNotFound(r.Unregister("clock")))
}

func TestLaunchUnknownApp(t *testing.T) {
	r, _ := newTestRegistry(t)
	_, err := r.Launch("missing", wm.Options{})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestLaunchAppliesDescriptorDefaults(t *testing.T) {
	r, windows := newTestRegistry(t)

	win, err := r.Launch("calculator", wm.Options{})
	require.NoError(t, err)

	assert.Equal(t, "calculator", win.AppID)
	assert.Equal(t, "Calculator", win.Title)
	assert.Equal(t, wm.Size{Width: 320, Height: 480}, win.Size)
	assert.True(t, win.Resizable)
	assert.False(t, win.Maximizable, "calculator is not maximizable by default")
	assert.Equal(t, 1, windows.Len())
	assert.True(t, windows.Get(win.ID).Focused)
}

func TestLaunchOverridesAndClampsSize(t *testing.T) {
	r, _ := newTestRegistry(t)

	title := "My Calc"
	maximizable := true
	small := wm.Size{Width: 10, Height: 10}
	win, err := r.Launch("calculator", wm.Options{
		Title:       &title,
		Size:        &small,
		Maximizable: &maximizable,
	})
	require.NoError(t, err)

	assert.Equal(t, "My Calc", win.Title)
	assert.Equal(t, wm.Size{Width: 280, Height: 400}, win.Size, "size clamped to descriptor minimum")
	assert.True(t, win.Maximizable, "per-launch override wins over descriptor default")

	big := wm.Size{Width: 9999, Height: 9999}
	win2, err := r.Launch("calculator", wm.Options{Size: &big})
	require.NoError(t, err)
	assert.Equal(t, wm.Size{Width: 480, Height: 720}, win2.Size, "size clamped to descriptor maximum")
}

func TestMultipleWindowsPerApp(t *testing.T) {
	r, windows := newTestRegistry(t)

	w1, err := r.Launch("notes", wm.Options{})
	require.NoError(t, err)
	w2, err := r.Launch("notes", wm.Options{})
	require.NoError(t, err)

	assert.NotEqual(t, w1.ID, w2.ID)
	assert.Len(t, windows.ByApp("notes"), 2)
}

func TestSearch(t *testing.T) {
	r, _ := newTestRegistry(t)

	hits := r.Search("CALC")
	require.Len(t, hits, 1)
	assert.Equal(t, "calculator", hits[0].ID)

	assert.Len(t, r.Search("utilities"), 2, "category text is searchable")
	assert.Empty(t, r.Search("no-such-app"))
}

func TestByCategory(t *testing.T) {
	r, _ := newTestRegistry(t)

	utilities := r.ByCategory("utilities")
	require.Len(t, utilities, 2)

	all := r.ByCategory("")
	assert.Len(t, all, len(Builtin()))
}
