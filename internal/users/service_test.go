package users

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "signet/pkg/domain-errors"
)

func newTestService(t *testing.T) (*Service, *InMemoryStore) {
	t.Helper()
	store := NewInMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(store, logger), store
}

func seedUser(t *testing.T, store *InMemoryStore, username, password string, superuser bool) *User {
	t.Helper()
	user, err := New(username, username, username+"@example.com", password)
	require.NoError(t, err)
	user.IsSuperuser = superuser
	require.NoError(t, store.Create(context.Background(), user))
	return user
}

func TestAuthenticateSuccess(t *testing.T) {
	svc, store := newTestService(t)
	seeded := seedUser(t, store, "akadmin", "correct horse battery staple", true)

	user, err := svc.Authenticate(context.Background(), "akadmin", "correct horse battery staple")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, user.ID)
	assert.True(t, user.IsSuperuser)
}

func TestAuthenticateFailuresAreIndistinguishable(t *testing.T) {
	svc, store := newTestService(t)
	seedUser(t, store, "akadmin", "correct horse battery staple", true)
	require.NoError(t, store.Create(context.Background(), NewAnonymous()))

	cases := map[string]struct {
		username string
		password string
	}{
		"unknown user":   {"nobody", "whatever"},
		"wrong password": {"akadmin", "wrong"},
		"anonymous user": {AnonymousUsername, ""},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Authenticate(context.Background(), tc.username, tc.password)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
			assert.EqualError(t, err, "unauthorized: invalid credentials")
		})
	}
}

func TestIsSuperuser(t *testing.T) {
	svc, store := newTestService(t)
	admin := seedUser(t, store, "akadmin", "pw-akadmin-1", true)
	regular := seedUser(t, store, "alice", "pw-alice-12", false)

	isSuper, err := svc.IsSuperuser(context.Background(), admin.ID)
	require.NoError(t, err)
	assert.True(t, isSuper)

	isSuper, err = svc.IsSuperuser(context.Background(), regular.ID)
	require.NoError(t, err)
	assert.False(t, isSuper)
}

func TestCountExcludesAnonymous(t *testing.T) {
	svc, store := newTestService(t)
	seedUser(t, store, "akadmin", "pw-akadmin-1", true)
	seedUser(t, store, "alice", "pw-alice-12", false)
	require.NoError(t, store.Create(context.Background(), NewAnonymous()))

	count, err := svc.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
