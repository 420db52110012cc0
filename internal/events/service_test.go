package events

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "signet/pkg/domain"
	"signet/pkg/requestcontext"
)

const firefoxUA = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0"

func newTestService() (*Service, *InMemoryStore) {
	store := NewInMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(store, logger), store
}

func TestRecordEnrichesFromRequestContext(t *testing.T) {
	svc, store := newTestService()
	userID := id.NewUserID()
	recordedAt := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	ctx := requestcontext.WithClientMetadata(context.Background(), "203.0.113.9", firefoxUA)
	ctx = requestcontext.WithTime(ctx, recordedAt)

	svc.Record(ctx, ActionLogin, &userID, nil)

	recent, err := store.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)

	event := recent[0]
	assert.Equal(t, ActionLogin, event.Action)
	require.NotNil(t, event.UserID)
	assert.Equal(t, userID, *event.UserID)
	assert.Equal(t, "203.0.113.9", event.ClientIP)
	assert.Equal(t, recordedAt, event.CreatedAt)
	assert.Equal(t, "Firefox", event.Context["browser"])
	assert.Equal(t, "Linux x86_64", event.Context["os"])
}

func TestRecordAuthorizationSetsApplicationField(t *testing.T) {
	svc, store := newTestService()
	userID := id.NewUserID()

	svc.RecordAuthorization(context.Background(), userID, "Grafana")

	recent, err := store.ListRecent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, ActionAuthorizeApplication, recent[0].Action)
	assert.Equal(t, "Grafana", recent[0].Context[ContextAuthorizedApplication])
}

func TestTopApplicationsAggregation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	alice, bob, carol := id.NewUserID(), id.NewUserID(), id.NewUserID()

	// Grafana: 3 logins, 2 distinct users. Wiki: 2 logins, 2 users.
	svc.RecordAuthorization(ctx, alice, "Grafana")
	svc.RecordAuthorization(ctx, alice, "Grafana")
	svc.RecordAuthorization(ctx, bob, "Grafana")
	svc.RecordAuthorization(ctx, bob, "Wiki")
	svc.RecordAuthorization(ctx, carol, "Wiki")
	// Noise that must not count.
	svc.Record(ctx, ActionLogin, &alice, nil)
	svc.Record(ctx, ActionAuthorizeApplication, &alice, nil) // no application recorded

	usage, err := svc.TopApplications(ctx, 15)
	require.NoError(t, err)
	require.Len(t, usage, 2)

	assert.Equal(t, ApplicationUsage{Application: "Grafana", TotalLogins: 3, UniqueUsers: 2}, usage[0])
	assert.Equal(t, ApplicationUsage{Application: "Wiki", TotalLogins: 2, UniqueUsers: 2}, usage[1])
}

func TestTopApplicationsHonoursLimit(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	user := id.NewUserID()
	for _, app := range []string{"a", "b", "c", "d"} {
		svc.RecordAuthorization(ctx, user, app)
	}

	usage, err := svc.TopApplications(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, usage, 2)
}

func TestListByActionsFilters(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()
	user := id.NewUserID()

	svc.Record(ctx, ActionLogin, &user, nil)
	svc.Record(ctx, ActionLogout, &user, nil)
	svc.Record(ctx, ActionLogin, &user, nil)

	logins, err := store.ListByActions(ctx, []Action{ActionLogin}, 10)
	require.NoError(t, err)
	assert.Len(t, logins, 2)
}
