package aranet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSessionStoreLoadMissing(t *testing.T) {
	store := NewSessionStore(zap.NewNop())
	sess := store.Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	assert.Nil(t, sess)
}

func TestSessionStoreLoadEmptyPath(t *testing.T) {
	store := NewSessionStore(zap.NewNop())
	assert.Nil(t, store.Load(""))
}

func TestSessionStoreLoadCorrupted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store := NewSessionStore(zap.NewNop())
	assert.Nil(t, store.Load(path))
}

func TestSessionStoreLoadNoToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"spaces":{"1":"Main"}}`), 0o600))

	store := NewSessionStore(zap.NewNop())
	assert.Nil(t, store.Load(path))
}

func TestSessionStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	store := NewSessionStore(zap.NewNop())

	raw := []byte(`{"auth":"token-1","spaces":{"100":"Main"},"extra":true}`)
	var login LoginResponse
	require.NoError(t, login.UnmarshalJSON(raw))

	require.NoError(t, store.Save(path, &Session{Token: "token-1", Login: &login}))

	sess := store.Load(path)
	require.NotNil(t, sess)
	assert.Equal(t, "token-1", sess.Token)
	assert.Equal(t, map[string]string{"100": "Main"}, sess.Login.Spaces)
	assert.False(t, sess.ObtainedAt.IsZero())

	// the cache artifact is the raw login payload, byte for byte
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(got))
}

func TestSessionStoreSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	store := NewSessionStore(zap.NewNop())

	require.NoError(t, os.WriteFile(path, []byte(`{"auth":"stale-token-with-a-much-longer-body","spaces":{"1":"Old"}}`), 0o600))
	require.NoError(t, store.Save(path, &Session{Token: "fresh"}))

	sess := store.Load(path)
	require.NotNil(t, sess)
	assert.Equal(t, "fresh", sess.Token)
}

func TestSessionStoreSaveEmptyPathNoop(t *testing.T) {
	store := NewSessionStore(zap.NewNop())
	assert.NoError(t, store.Save("", &Session{Token: "t"}))
}
