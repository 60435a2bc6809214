package session

import (
	"context"
	"testing"
	"time"

	"github.com/mhpenta/imageedit"
	"github.com/mhpenta/imageedit/internal/preview"
	"github.com/mhpenta/imageedit/internal/shell"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopEditor struct{}

func (nopEditor) Edit(context.Context, imageedit.InputImage, string, *imageedit.EditConfig) (*imageedit.EditResult, error) {
	return &imageedit.EditResult{Image: &imageedit.EditedImage{Data: []byte("X"), MIMEType: "image/png"}}, nil
}
func (nopEditor) Models() []imageedit.ModelInfo { return nil }
func (nopEditor) Close() error                  { return nil }

func newStore(ttl time.Duration) (*Store, *preview.Registry) {
	reg := preview.NewRegistry()
	return NewStore(ttl, func() *shell.Shell {
		return shell.New(nopEditor{}, reg)
	}, zerolog.Nop()), reg
}

func TestStore_CreateGetDelete(t *testing.T) {
	store, reg := newStore(time.Minute)

	id, sh := store.Create()
	require.NotEmpty(t, id)
	assert.Equal(t, 1, store.Count())

	got, ok := store.Get(id)
	require.True(t, ok)
	assert.Same(t, sh, got)

	_, err := sh.Upload("a.png", "image/png", []byte("A"))
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len())

	assert.True(t, store.Delete(id))
	assert.False(t, store.Delete(id))
	assert.Equal(t, 0, store.Count())
	assert.Equal(t, 0, reg.Len(), "deleting a session releases its preview")

	_, ok = store.Get(id)
	assert.False(t, ok)

	_, err = sh.Submit(context.Background())
	assert.ErrorIs(t, err, shell.ErrClosed)
}

func TestStore_UnknownSession(t *testing.T) {
	store, _ := newStore(time.Minute)
	_, ok := store.Get("missing")
	assert.False(t, ok)
}

func TestStore_ExpiryClosesShell(t *testing.T) {
	store, reg := newStore(20 * time.Millisecond)

	id, sh := store.Create()
	_, err := sh.Upload("a.png", "image/png", []byte("A"))
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	store.Prune()

	_, ok := store.Get(id)
	assert.False(t, ok)
	assert.Equal(t, 0, reg.Len())
	_, err = sh.Upload("b.png", "image/png", []byte("B"))
	assert.ErrorIs(t, err, shell.ErrClosed)
}

func TestStore_Close(t *testing.T) {
	store, reg := newStore(time.Minute)

	for i := 0; i < 3; i++ {
		_, sh := store.Create()
		_, err := sh.Upload("a.png", "image/png", []byte("A"))
		require.NoError(t, err)
	}
	assert.Equal(t, 3, reg.Len())

	store.Close()
	assert.Equal(t, 0, store.Count())
	assert.Equal(t, 0, reg.Len())
}

func TestStore_CloseReleasesExpiredSessions(t *testing.T) {
	store, reg := newStore(20 * time.Millisecond)

	_, sh := store.Create()
	_, err := sh.Upload("a.png", "image/png", []byte("A"))
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	store.Close()

	assert.Equal(t, 0, reg.Len())
	_, err = sh.Upload("b.png", "image/png", []byte("B"))
	assert.ErrorIs(t, err, shell.ErrClosed)
}
