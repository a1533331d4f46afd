package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"health-portal/internal/models"
)

func TestBeginEnd(t *testing.T) {
	var s Session
	assert.False(t, s.Active())
	assert.Nil(t, s.User())

	u := &models.User{BaseModel: models.BaseModel{ID: "p1"}, Role: models.RolePatient}
	s.Begin(u, "tok")
	assert.True(t, s.Active())
	assert.Same(t, u, s.User())
	assert.Equal(t, "tok", s.Token())

	s.End()
	assert.False(t, s.Active())
	assert.Nil(t, s.User())
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	store := FileStore{Path: path}

	var empty Session
	require.NoError(t, store.Load(&empty))
	assert.False(t, empty.Active())

	var s Session
	s.Begin(&models.User{BaseModel: models.BaseModel{ID: "dr1"}, Name: "Dr. Emily Johnson", Role: models.RoleProvider}, "abc")
	require.NoError(t, store.Save(&s))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	var loaded Session
	require.NoError(t, store.Load(&loaded))
	assert.Equal(t, "abc", loaded.Token())
	require.NotNil(t, loaded.User())
	assert.Equal(t, "dr1", loaded.User().ID)
	assert.Equal(t, models.RoleProvider, loaded.User().Role)

	s.End()
	require.NoError(t, store.Save(&s))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	require.NoError(t, store.Save(&s))
}
