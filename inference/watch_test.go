package inference

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jinjaspan/jinjaspan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherInvalidatesOnFileWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "t.html")
	require.NoError(t, os.WriteFile(path, []byte(`{% set x = 1 %}`), 0644))

	store := NewStore(8)
	env := jinjaspan.NewEnvironment()
	tpl, _ := jinjaspan.Parse(path, `{% set x = 1 %}`, env)
	store.Get(path, 1, tpl, nil)
	_, ok := store.Peek(path)
	require.True(t, ok)

	w, err := NewWatcher(store, nil, nil)
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Add(dir))
	go w.Run()

	require.NoError(t, os.WriteFile(path, []byte(`{% set x = 2 %}`), 0644))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := store.Peek(path); !ok {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	_, ok = store.Peek(path)
	assert.False(t, ok, "writing the watched file should invalidate its cached Index")
}
