package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/carelink-ai/carelink/internal/config"
	apperrors "github.com/carelink-ai/carelink/internal/errors"
)

func setupKV(t *testing.T) *KV {
	kv, err := OpenInMemory(zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return kv
}

func TestSetGet(t *testing.T) {
	kv := setupKV(t)

	require.NoError(t, kv.Set("health-records", []byte(`[{"id":"rec_1"}]`)))

	val, err := kv.Get("health-records")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"rec_1"}]`, string(val))
}

func TestGetMissingKey(t *testing.T) {
	kv := setupKV(t)

	_, err := kv.Get("nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestDeleteIsIdempotent(t *testing.T) {
	kv := setupKV(t)

	require.NoError(t, kv.Set("k", []byte("v")))
	require.NoError(t, kv.Delete("k"))
	require.NoError(t, kv.Delete("k"))

	_, err := kv.Get("k")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestOverwrite(t *testing.T) {
	kv := setupKV(t)

	require.NoError(t, kv.Set("k", []byte("first")))
	require.NoError(t, kv.Set("k", []byte("second")))

	val, err := kv.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "second", string(val))
}

func TestOpenPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	cfg := config.StorageConfig{BadgerPath: filepath.Join(dir, "badger"), GCSchedule: "@every 1h"}

	kv, err := Open(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, kv.Set("k", []byte("survives")))
	require.NoError(t, kv.Close())

	kv, err = Open(cfg, zap.NewNop())
	require.NoError(t, err)
	defer kv.Close()

	val, err := kv.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "survives", string(val))
}

func TestOpenRejectsBadGCSchedule(t *testing.T) {
	cfg := config.StorageConfig{BadgerPath: filepath.Join(t.TempDir(), "badger"), GCSchedule: "not a schedule"}

	_, err := Open(cfg, zap.NewNop())
	require.Error(t, err)
}
