// Package admin is the administration surface: login, the operational
// overview and the cache maintenance actions. All pages are server-rendered
// HTML; the only JSON in this package is what lands in the event log.
package admin

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"signet/internal/admin/metrics"
	"signet/internal/events"
	"signet/internal/flows"
	"signet/internal/platform/cache"
	"signet/internal/platform/middleware"
	"signet/internal/policies"
	"signet/internal/providers"
	"signet/internal/sessions"
	"signet/internal/users"
	"signet/internal/version"
	"signet/pkg/requestcontext"
)

const (
	// BasePath is where the router mounts this handler.
	BasePath = "/administration"

	// OverviewPath is where every admin action redirects back to.
	OverviewPath = BasePath + "/"
	// LoginPath is where the guard sends unauthenticated browsers.
	LoginPath = BasePath + "/login"

	policyCachePath = "/overview/cache/policy"
	flowCachePath   = "/overview/cache/flow"

	// topApplicationsLimit caps the most-used-applications table.
	topApplicationsLimit = 15

	// gatherTimeout bounds the parallel overview queries as one unit.
	gatherTimeout = 5 * time.Second
)

// Handler serves the administration pages.
type Handler struct {
	users      *users.Service
	providers  providers.Store
	policies   policies.Store
	events     *events.Service
	cache      cache.Cache
	checker    *version.Checker
	sessions   *sessions.Service
	cookieName string
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

func New(
	userSvc *users.Service,
	providerStore providers.Store,
	policyStore policies.Store,
	eventSvc *events.Service,
	c cache.Cache,
	checker *version.Checker,
	sessionSvc *sessions.Service,
	cookieName string,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Handler {
	return &Handler{
		users:      userSvc,
		providers:  providerStore,
		policies:   policyStore,
		events:     eventSvc,
		cache:      c,
		checker:    checker,
		sessions:   sessionSvc,
		cookieName: cookieName,
		logger:     logger,
		metrics:    m,
	}
}

// Register mounts the admin routes. guard is the RequireAdmin middleware;
// login and logout stay outside it.
func (h *Handler) Register(r chi.Router, guard func(http.Handler) http.Handler) {
	r.Get("/login", h.handleLoginPage)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(guard)
		r.Get("/", h.handleOverview)
		r.Get(policyCachePath, h.handleCacheConfirm("Policy", BasePath+policyCachePath))
		r.Post(policyCachePath, h.handleCacheClear("Policy", policies.CachePrefix))
		r.Get(flowCachePath, h.handleCacheConfirm("Flow", BasePath+flowCachePath))
		r.Post(flowCachePath, h.handleCacheClear("Flow", flows.CachePrefix))
	})
}

// overviewNumbers is the gather target; each field is filled by one errgroup
// goroutine.
type overviewNumbers struct {
	policyCount     int
	userCount       int
	providerCount   int
	unboundPolicies int
	cachedPolicies  int
	cachedFlows     int
	usage           []events.ApplicationUsage
	orphaned        []providers.Provider
}

func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	defer func() { h.metrics.OverviewDuration.Observe(time.Since(started).Seconds()) }()

	ctx, cancel := context.WithTimeout(r.Context(), gatherTimeout)
	defer cancel()

	ctx, span := otel.Tracer("signet/admin").Start(ctx, "overview.gather",
		trace.WithAttributes(attribute.String("request_id", requestcontext.RequestID(ctx))))
	defer span.End()

	var numbers overviewNumbers
	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() (err error) {
		numbers.policyCount, err = h.policies.Count(gctx)
		return err
	})
	group.Go(func() (err error) {
		numbers.unboundPolicies, err = h.policies.CountUnbound(gctx)
		return err
	})
	group.Go(func() (err error) {
		numbers.userCount, err = h.users.Count(gctx)
		return err
	})
	group.Go(func() (err error) {
		numbers.providerCount, err = h.providers.CountProviders(gctx)
		return err
	})
	group.Go(func() (err error) {
		numbers.orphaned, err = h.providers.ListWithoutApplication(gctx)
		return err
	})
	group.Go(func() (err error) {
		numbers.usage, err = h.events.TopApplications(gctx, topApplicationsLimit)
		return err
	})
	group.Go(func() (err error) {
		numbers.cachedPolicies, err = h.cache.CountPrefix(gctx, policies.CachePrefix)
		return err
	})
	group.Go(func() (err error) {
		numbers.cachedFlows, err = h.cache.CountPrefix(gctx, flows.CachePrefix)
		return err
	})
	if err := group.Wait(); err != nil {
		h.logger.ErrorContext(ctx, "overview gather failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// The checker only reads the cache; a miss schedules a background
	// refresh and falls back to the running version.
	latest := h.checker.Latest(ctx)

	view := overviewView{
		Message:                     r.URL.Query().Get("message"),
		Version:                     version.Current().String(),
		VersionLatest:               latest.String(),
		UpdateAvailable:             latest.GreaterThan(version.Current()),
		PolicyCount:                 strconv.Itoa(numbers.policyCount),
		UserCount:                   strconv.Itoa(numbers.userCount),
		ProviderCount:               strconv.Itoa(numbers.providerCount),
		PoliciesWithoutBinding:      strconv.Itoa(numbers.unboundPolicies),
		CachedPolicies:              strconv.Itoa(numbers.cachedPolicies),
		CachedFlows:                 strconv.Itoa(numbers.cachedFlows),
		MostUsedApplications:        buildUsageRows(numbers.usage),
		ProvidersWithoutApplication: buildProviderRows(numbers.orphaned),
	}
	h.render(w, r, "overview.html", view)
}

// handleCacheConfirm renders the confirmation form for a cache clear.
func (h *Handler) handleCacheConfirm(kind, actionPath string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.render(w, r, "confirm.html", confirmView{
			Title:      "Clear " + kind + " cache",
			Prompt:     "Are you sure you want to clear the " + strings.ToLower(kind) + " cache? Cached entries will be recomputed on demand.",
			ActionPath: actionPath,
			CancelPath: OverviewPath,
		})
	}
}

// handleCacheClear removes every cache entry under prefix and redirects back
// to the overview with a success notice. Exactly the keys matching the prefix
// are removed and no others.
func (h *Handler) handleCacheClear(kind, prefix string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if !h.requireSameOrigin(w, r) {
			return
		}

		keys, err := h.cache.Keys(ctx, prefix)
		if err != nil {
			h.logger.ErrorContext(ctx, "cache enumeration failed",
				"request_id", requestcontext.RequestID(ctx),
				"prefix", prefix,
				"error", err,
			)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		removed, err := h.cache.DeleteMany(ctx, keys)
		if err != nil {
			h.logger.ErrorContext(ctx, "cache clear failed",
				"request_id", requestcontext.RequestID(ctx),
				"prefix", prefix,
				"error", err,
			)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		h.logger.DebugContext(ctx, "cache cleared",
			"request_id", requestcontext.RequestID(ctx),
			"prefix", prefix,
			"keys_removed", removed,
		)
		h.metrics.CacheCleared.WithLabelValues(strings.ToLower(kind)).Inc()
		h.events.RecordCacheCleared(ctx, requestcontext.UserID(ctx), strings.ToLower(kind), removed)

		h.redirectWithMessage(w, r, "Successfully cleared "+kind+" cache")
	}
}

func (h *Handler) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "login.html", loginView{})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if !h.requireSameOrigin(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.render(w, r, "login.html", loginView{Error: "Invalid form submission."})
		return
	}

	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")

	user, err := h.users.Authenticate(ctx, username, password)
	if err != nil || !user.IsSuperuser {
		// Non-superusers get the same answer as bad credentials.
		w.WriteHeader(http.StatusUnauthorized)
		h.render(w, r, "login.html", loginView{Error: "Invalid username or password."})
		return
	}

	token, err := h.sessions.Issue(user.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "session not issued",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessions.TTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	h.events.Record(ctx, events.ActionLogin, &user.ID, nil)
	http.Redirect(w, r, OverviewPath, http.StatusSeeOther)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if !h.requireSameOrigin(w, r) {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, LoginPath, http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, view any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, name, view); err != nil {
		h.logger.ErrorContext(r.Context(), "template render failed",
			"request_id", requestcontext.RequestID(r.Context()),
			"template", name,
			"error", err,
		)
	}
}

func (h *Handler) redirectWithMessage(w http.ResponseWriter, r *http.Request, message string) {
	target := OverviewPath + "?message=" + url.QueryEscape(message)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// requireSameOrigin rejects form POSTs whose Origin (or Referer, for older
// browsers) does not match the request host. Session cookies are SameSite=Lax
// as well; this check is the backstop for the state-changing routes.
func (h *Handler) requireSameOrigin(w http.ResponseWriter, r *http.Request) bool {
	check := func(raw string) bool {
		parsed, err := url.Parse(raw)
		if err != nil {
			return false
		}
		return parsed.Host == r.Host
	}

	if origin := strings.TrimSpace(r.Header.Get("Origin")); origin != "" && origin != "null" {
		if check(origin) {
			return true
		}
	} else if referer := strings.TrimSpace(r.Referer()); referer != "" {
		if check(referer) {
			return true
		}
	}
	http.Error(w, "Forbidden", http.StatusForbidden)
	return false
}

// Guard builds the RequireAdmin middleware wired to this handler's
// collaborators, so the router does not need to know about sessions or users.
func (h *Handler) Guard() func(http.Handler) http.Handler {
	return middleware.RequireAdmin(h.cookieName, LoginPath, h.sessions, h.users, h.logger)
}
