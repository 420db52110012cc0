package admin

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signet/internal/admin/metrics"
	"signet/internal/events"
	"signet/internal/flows"
	"signet/internal/platform/cache"
	"signet/internal/policies"
	"signet/internal/providers"
	"signet/internal/sessions"
	"signet/internal/users"
	"signet/internal/version"
)

const testCookie = "signet_session"

// adminMetrics is shared across tests; promauto instruments register once per
// process.
var adminMetrics = metrics.New()

type fixture struct {
	handler   *Handler
	router    chi.Router
	cache     *cache.Memory
	users     *users.InMemoryStore
	providers *providers.InMemoryStore
	policies  *policies.InMemoryStore
	events    *events.InMemoryStore
	sessions  *sessions.Service
	admin     *users.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	userStore := users.NewInMemoryStore()
	providerStore := providers.NewInMemoryStore()
	policyStore := policies.NewInMemoryStore()
	eventStore := events.NewInMemoryStore()
	mem := cache.NewMemory()

	userSvc := users.NewService(userStore, logger)
	eventSvc := events.NewService(eventStore, logger)
	sessionSvc := sessions.NewService("test-signing-key", time.Hour)
	// debug mode: the checker never enqueues, so tests need no queue.
	checker := version.NewChecker(mem, nil, true, logger)

	admin, err := users.New("akadmin", "Admin", "admin@example.com", "correct horse battery staple")
	require.NoError(t, err)
	admin.IsSuperuser = true
	require.NoError(t, userStore.Create(context.Background(), admin))
	require.NoError(t, userStore.Create(context.Background(), users.NewAnonymous()))

	handler := New(userSvc, providerStore, policyStore, eventSvc, mem, checker, sessionSvc, testCookie, logger, adminMetrics)
	router := chi.NewRouter()
	router.Route("/administration", func(r chi.Router) {
		handler.Register(r, handler.Guard())
	})

	return &fixture{
		handler:   handler,
		router:    router,
		cache:     mem,
		users:     userStore,
		providers: providerStore,
		policies:  policyStore,
		events:    eventStore,
		sessions:  sessionSvc,
		admin:     admin,
	}
}

func (f *fixture) authedRequest(t *testing.T, method, path string, form url.Values) *http.Request {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if method != http.MethodGet {
		req.Header.Set("Origin", "http://"+req.Host)
	}

	token, err := f.sessions.Issue(f.admin.ID)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: token})
	return req
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func TestOverviewShowsSeededCounts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// Two human users besides the admin; anonymous must not count.
	for _, name := range []string{"alice", "bob"} {
		user, err := users.New(name, name, name+"@example.com", "pw-"+name+"-12")
		require.NoError(t, err)
		require.NoError(t, f.users.Create(ctx, user))
	}

	provider, err := providers.NewProvider("corp-oauth", providers.KindOAuth2)
	require.NoError(t, err)
	require.NoError(t, f.providers.CreateProvider(ctx, provider))

	policy, err := policies.New("default", policies.KindPassword, "")
	require.NoError(t, err)
	require.NoError(t, f.policies.Create(ctx, policy))

	rr := f.do(f.authedRequest(t, http.MethodGet, "/administration/", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	page := rr.Body.String()
	assert.Contains(t, page, "System overview")
	assert.Contains(t, page, ">3<", "user count: two seeded plus admin, minus anonymous")
	assert.Contains(t, page, "corp-oauth", "orphaned provider listed")
	assert.Contains(t, page, version.Version)
}

func TestOverviewShowsUsageAndCacheCounts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	eventSvc := events.NewService(f.events, logger)
	eventSvc.RecordAuthorization(ctx, f.admin.ID, "Grafana")
	eventSvc.RecordAuthorization(ctx, f.admin.ID, "Grafana")

	require.NoError(t, f.cache.Set(ctx, policies.CachePrefix+"abc", "{}", time.Hour))
	require.NoError(t, f.cache.Set(ctx, flows.CachePrefix+"def", "{}", time.Hour))
	require.NoError(t, f.cache.Set(ctx, flows.CachePrefix+"ghi", "{}", time.Hour))

	rr := f.do(f.authedRequest(t, http.MethodGet, "/administration/", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	page := rr.Body.String()
	assert.Contains(t, page, "Grafana")
	assert.Contains(t, page, ">2<", "two Grafana logins and two cached flows")
	assert.Contains(t, page, ">1<", "one cached policy entry")
}

func TestOverviewRequiresSession(t *testing.T) {
	f := newFixture(t)

	rr := f.do(httptest.NewRequest(http.MethodGet, "/administration/", nil))
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, LoginPath, rr.Header().Get("Location"))
}

func TestOverviewRejectsNonSuperuser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	regular, err := users.New("alice", "Alice", "alice@example.com", "pw-alice-12")
	require.NoError(t, err)
	require.NoError(t, f.users.Create(ctx, regular))

	token, err := f.sessions.Issue(regular.ID)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/administration/", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: token})

	rr := f.do(req)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, LoginPath, rr.Header().Get("Location"))
}

func TestCacheClearRemovesOnlyMatchingPrefix(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.cache.Set(ctx, policies.CachePrefix+"one", "{}", time.Hour))
	require.NoError(t, f.cache.Set(ctx, policies.CachePrefix+"two", "{}", time.Hour))
	require.NoError(t, f.cache.Set(ctx, flows.CachePrefix+"keep", "{}", time.Hour))
	require.NoError(t, f.cache.Set(ctx, "signet_latest_version", "0.15.0", time.Hour))

	rr := f.do(f.authedRequest(t, http.MethodPost, "/administration/overview/cache/policy", url.Values{}))
	require.Equal(t, http.StatusSeeOther, rr.Code)

	location := rr.Header().Get("Location")
	assert.True(t, strings.HasPrefix(location, OverviewPath), location)
	assert.Contains(t, location, url.QueryEscape("Successfully cleared Policy cache"))

	remaining, err := f.cache.Keys(ctx, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{flows.CachePrefix + "keep", "signet_latest_version"}, remaining)

	// The action lands in the event log.
	recorded, err := f.events.ListByActions(ctx, []events.Action{events.ActionCacheCleared}, 10)
	require.NoError(t, err)
	require.Len(t, recorded, 1)
	assert.Equal(t, "policy", recorded[0].Context[events.ContextCacheKind])
}

func TestFlowCacheClear(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.cache.Set(ctx, flows.CachePrefix+"gone", "{}", time.Hour))
	require.NoError(t, f.cache.Set(ctx, policies.CachePrefix+"keep", "{}", time.Hour))

	rr := f.do(f.authedRequest(t, http.MethodPost, "/administration/overview/cache/flow", url.Values{}))
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Contains(t, rr.Header().Get("Location"), url.QueryEscape("Successfully cleared Flow cache"))

	remaining, err := f.cache.Keys(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{policies.CachePrefix + "keep"}, remaining)
}

func TestCacheClearRejectsCrossOrigin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.cache.Set(ctx, policies.CachePrefix+"stays", "{}", time.Hour))

	req := f.authedRequest(t, http.MethodPost, "/administration/overview/cache/policy", url.Values{})
	req.Header.Set("Origin", "http://evil.example.net")

	rr := f.do(req)
	require.Equal(t, http.StatusForbidden, rr.Code)

	count, err := f.cache.CountPrefix(ctx, policies.CachePrefix)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "nothing may be deleted on a rejected request")
}

func TestCacheConfirmPage(t *testing.T) {
	f := newFixture(t)

	rr := f.do(f.authedRequest(t, http.MethodGet, "/administration/overview/cache/policy", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Clear Policy cache")
	assert.Contains(t, rr.Body.String(), "/administration/overview/cache/policy")
}

// The confirm form must post back to the exact route the clear handler is
// mounted on; each page's action attribute is checked against a POST to the
// same path.
func TestCacheConfirmFormTargetsClearRoute(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{
		BasePath + policyCachePath,
		BasePath + flowCachePath,
	} {
		rr := f.do(f.authedRequest(t, http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rr.Code, path)
		assert.Contains(t, rr.Body.String(), `action="`+path+`"`, path)

		rr = f.do(f.authedRequest(t, http.MethodPost, path, url.Values{}))
		require.Equal(t, http.StatusSeeOther, rr.Code, path)
	}
}

func TestLoginFlow(t *testing.T) {
	f := newFixture(t)

	form := url.Values{"username": {"akadmin"}, "password": {"correct horse battery staple"}}
	req := httptest.NewRequest(http.MethodPost, "/administration/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Origin", "http://"+req.Host)

	rr := f.do(req)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, OverviewPath, rr.Header().Get("Location"))

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, testCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	// The issued cookie opens the overview.
	userID, err := f.sessions.Validate(cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, f.admin.ID, userID)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	f := newFixture(t)

	form := url.Values{"username": {"akadmin"}, "password": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/administration/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Origin", "http://"+req.Host)

	rr := f.do(req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid username or password")
	assert.Empty(t, rr.Result().Cookies())
}

// The engine and planner are the writers of the namespaces the dashboard
// manages; clearing through the page must remove their real entries.
func TestCacheClearRemovesEngineAndPlannerEntries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	policy, err := policies.New("staff-only", policies.KindExpression, `username == "akadmin"`)
	require.NoError(t, err)
	engine := policies.NewEngine(f.cache, logger)
	_, err = engine.Evaluate(ctx, policy, policies.Subject{
		UserID:   f.admin.ID,
		Username: f.admin.Username,
		ClientIP: "203.0.113.7",
	})
	require.NoError(t, err)

	flowStore := flows.NewInMemoryStore()
	flow, err := flows.New("default-authentication", "Welcome", flows.DesignationAuthentication,
		[]string{"identification", "password"})
	require.NoError(t, err)
	require.NoError(t, flowStore.Create(ctx, flow))
	planner := flows.NewPlanner(flowStore, f.cache, logger)
	_, err = planner.PlanFor(ctx, "default-authentication", f.admin.ID)
	require.NoError(t, err)

	policyCount, err := f.cache.CountPrefix(ctx, policies.CachePrefix)
	require.NoError(t, err)
	require.Equal(t, 1, policyCount)
	flowCount, err := f.cache.CountPrefix(ctx, flows.CachePrefix)
	require.NoError(t, err)
	require.Equal(t, 1, flowCount)

	rr := f.do(f.authedRequest(t, http.MethodPost, "/administration/overview/cache/policy", url.Values{}))
	require.Equal(t, http.StatusSeeOther, rr.Code)
	rr = f.do(f.authedRequest(t, http.MethodPost, "/administration/overview/cache/flow", url.Values{}))
	require.Equal(t, http.StatusSeeOther, rr.Code)

	remaining, err := f.cache.Keys(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, remaining)
}
