package version

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	goversion "github.com/hashicorp/go-version"

	"signet/internal/platform/cache"
	"signet/internal/platform/kafka"
)

// fetchTimeout bounds the release lookup; the task runner must not hang on a
// slow upstream.
const fetchTimeout = 10 * time.Second

// UpdateRecorder is notified when a newer release is discovered. Satisfied by
// events.Service.
type UpdateRecorder interface {
	RecordUpdateAvailable(ctx context.Context, newVersion string)
}

// Updater is the version_check task handler: it fetches the newest release
// tag, stores it in the cache and records an event when it is ahead of the
// running version.
type Updater struct {
	releasesURL string
	cache       cache.Cache
	cacheTTL    time.Duration
	events      UpdateRecorder
	client      *http.Client
	logger      *slog.Logger
}

func NewUpdater(releasesURL string, c cache.Cache, cacheTTL time.Duration, events UpdateRecorder, logger *slog.Logger) *Updater {
	return &Updater{
		releasesURL: releasesURL,
		cache:       c,
		cacheTTL:    cacheTTL,
		events:      events,
		client:      &http.Client{Timeout: fetchTimeout},
		logger:      logger,
	}
}

// Handle runs one version check. Registered under TaskVersionCheck.
func (u *Updater) Handle(ctx context.Context, _ kafka.Task) error {
	latest, err := u.fetchLatest(ctx)
	if err != nil {
		return fmt.Errorf("version check: %w", err)
	}

	if err := u.cache.Set(ctx, CacheKey, latest.String(), u.cacheTTL); err != nil {
		return fmt.Errorf("store latest version: %w", err)
	}

	if latest.GreaterThan(Current()) {
		u.logger.InfoContext(ctx, "newer release available",
			"running", Current().String(),
			"latest", latest.String(),
		)
		u.events.RecordUpdateAvailable(ctx, latest.String())
	}
	return nil
}

// releaseResponse is the subset of the GitHub release API the check needs.
type releaseResponse struct {
	TagName string `json:"tag_name"`
}

func (u *Updater) fetchLatest(ctx context.Context) (*goversion.Version, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.releasesURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build release request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch latest release: unexpected status %d", resp.StatusCode)
	}

	var release releaseResponse
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("decode release response: %w", err)
	}

	tag := strings.TrimPrefix(strings.TrimSpace(release.TagName), "v")
	parsed, err := goversion.NewVersion(tag)
	if err != nil {
		return nil, fmt.Errorf("release tag %q not a version: %w", release.TagName, err)
	}
	return parsed, nil
}
