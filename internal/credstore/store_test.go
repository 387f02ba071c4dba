// SPDX-License-Identifier: MIT

package credstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/sessiond/internal/domain/session/model"
)

func modelID(raw string) model.SessionID { return model.SessionID(raw) }

func toStrings(ids []model.SessionID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "sessions"))
	require.NoError(t, err)
	return s
}

func TestSaveLoadDeleteRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	blob, err := s.Load(ctx, "1555")
	require.NoError(t, err)
	assert.Nil(t, blob, "absent blob must load as nil, nil")

	require.NoError(t, s.Save(ctx, "1555", []byte(`{"noise":"key"}`)))

	blob, err = s.Load(ctx, "1555")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"noise":"key"}`), blob)

	require.NoError(t, s.Delete(ctx, "1555"))
	blob, err = s.Load(ctx, "1555")
	require.NoError(t, err)
	assert.Nil(t, blob)
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.Delete(ctx, "never-saved"))
	require.NoError(t, s.Delete(ctx, "never-saved"))
}

func TestSaveReplacesAtomically(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.Save(ctx, "1555", []byte("v1")))
	require.NoError(t, s.Save(ctx, "1555", []byte("v2")))

	blob, err := s.Load(ctx, "1555")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), blob)

	// No temp files may remain after a committed save.
	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "1555"+blobSuffix, entries[0].Name())
}

func TestUnsafeIDsRejected(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	for _, id := range []string{"../escape", "a/b", ""} {
		assert.Error(t, s.Save(ctx, modelID(id), []byte("x")), id)
		_, err := s.Load(ctx, modelID(id))
		assert.Error(t, err, id)
		assert.Error(t, s.Delete(ctx, modelID(id)), id)
	}
}

func TestListReturnsSavedIDs(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.Save(ctx, "1555", []byte("a")))
	require.NoError(t, s.Save(ctx, "1666", []byte("b")))
	// Foreign files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "README.txt"), []byte("x"), 0o600))

	ids, err := s.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1555", "1666"}, toStrings(ids))
}
