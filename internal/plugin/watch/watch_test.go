package watch_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dshills/inkwell/internal/plugin"
	"github.com/dshills/inkwell/internal/plugin/manifest"
	"github.com/dshills/inkwell/internal/plugin/watch"
)

func writeManifest(t *testing.T, path, name, title string) {
	t.Helper()
	src := "name: " + name + "\nactions:\n  - title: " + title + "\n    insert: true\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
}

func actionTitle(reg *plugin.Registry, name string) string {
	a, ok := reg.Action(name)
	if !ok {
		return ""
	}
	return a.Title
}

func newWatcher(t *testing.T, dir string, reg *plugin.Registry, opts ...watch.Option) *watch.Watcher {
	t.Helper()
	w, err := watch.New(dir, reg, append([]watch.Option{watch.WithLogger(zap.NewNop())}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestWatcher_LoadAll(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, filepath.Join(dir, "a.yaml"), "acme/a", "A")
	writeManifest(t, filepath.Join(dir, "b.yml"), "acme/b", "B")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("name: nope\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.md"), []byte("# plugins"), 0o644))

	reg := plugin.NewRegistry(nil)
	w := newWatcher(t, dir, reg)

	err := w.LoadAll()
	require.Error(t, err)
	assert.ErrorIs(t, err, plugin.ErrInvalidName)

	assert.Equal(t, []string{"acme/a", "acme/b"}, w.Loaded())
	assert.Equal(t, "A", actionTitle(reg, "acme/a/0"))
	assert.Equal(t, "B", actionTitle(reg, "acme/b/0"))
}

func TestWatcher_LoadAllMissingDir(t *testing.T) {
	w := newWatcher(t, filepath.Join(t.TempDir(), "absent"), plugin.NewRegistry(nil))
	assert.ErrorIs(t, w.LoadAll(), os.ErrNotExist)
}

func TestWatcher_Reload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.yaml")
	writeManifest(t, path, "acme/a", "First")

	reg := plugin.NewRegistry(nil)
	w := newWatcher(t, dir, reg)
	require.NoError(t, w.LoadAll())

	t.Run("override keeps position", func(t *testing.T) {
		reg.Register(plugin.Definition{Name: "acme/z"})
		writeManifest(t, path, "acme/a", "Second")
		require.NoError(t, w.Reload(path))

		assert.Equal(t, "Second", actionTitle(reg, "acme/a/0"))
		plugins := reg.Plugins()
		require.Len(t, plugins, 2)
		assert.Equal(t, "acme/a", plugins[0].Name)
	})

	t.Run("invalid manifest keeps previous", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("name: [\n"), 0o644))
		var pe *manifest.ParseError
		require.ErrorAs(t, w.Reload(path), &pe)
		assert.Equal(t, "Second", actionTitle(reg, "acme/a/0"))
	})

	t.Run("rename unregisters old name", func(t *testing.T) {
		writeManifest(t, path, "acme/renamed", "Third")
		require.NoError(t, w.Reload(path))

		_, err := reg.Plugin("acme/a")
		assert.ErrorIs(t, err, plugin.ErrPluginNotFound)
		assert.Equal(t, "Third", actionTitle(reg, "acme/renamed/0"))
	})

	t.Run("removed file unregisters", func(t *testing.T) {
		require.NoError(t, os.Remove(path))
		require.NoError(t, w.Reload(path))

		_, err := reg.Plugin("acme/renamed")
		assert.ErrorIs(t, err, plugin.ErrPluginNotFound)
		assert.Empty(t, w.Loaded())
	})
}

func TestWatcher_Start(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.yaml")
	writeManifest(t, path, "acme/a", "First")

	reloads := make(chan string, 16)
	reg := plugin.NewRegistry(nil)
	w := newWatcher(t, dir, reg,
		watch.WithDebounce(20*time.Millisecond),
		watch.WithOnReload(func(p string, _ error) {
			select {
			case reloads <- p:
			default:
			}
		}),
	)
	require.NoError(t, w.LoadAll())
	assert.Equal(t, path, <-reloads)
	require.NoError(t, w.Start())
	assert.ErrorIs(t, w.Start(), watch.ErrStarted)

	writeManifest(t, path, "acme/a", "Changed")
	require.Eventually(t, func() bool {
		return actionTitle(reg, "acme/a/0") == "Changed"
	}, 2*time.Second, 10*time.Millisecond)

	added := filepath.Join(dir, "b.yaml")
	writeManifest(t, added, "acme/b", "B")
	require.Eventually(t, func() bool {
		return actionTitle(reg, "acme/b/0") == "B"
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Remove(added))
	require.Eventually(t, func() bool {
		_, err := reg.Plugin("acme/b")
		return err != nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_Close(t *testing.T) {
	w := newWatcher(t, t.TempDir(), plugin.NewRegistry(nil))
	require.NoError(t, w.Start())
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.Start(), watch.ErrClosed)
}
