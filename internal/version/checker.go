package version

import (
	"context"
	"errors"
	"log/slog"
	"time"

	goversion "github.com/hashicorp/go-version"

	"signet/internal/platform/cache"
	"signet/internal/platform/kafka"
	"signet/pkg/platform/sentinel"
	"signet/pkg/requestcontext"
)

//go:generate mockgen -source=checker.go -destination=mocks/mocks.go -package=mocks Enqueuer

// enqueueTimeout bounds the background refresh enqueue once it is detached
// from the request.
const enqueueTimeout = 10 * time.Second

// Enqueuer publishes background tasks. Satisfied by kafka.Producer.
type Enqueuer interface {
	Enqueue(ctx context.Context, task kafka.Task) error
}

// Checker reports the latest known released version from the cache, falling
// back to the running version and scheduling a refresh when the cache is
// cold.
type Checker struct {
	cache cache.Cache
	queue Enqueuer
	// debug disables the refresh task, so development setups never hit the
	// network or need Kafka.
	debug  bool
	logger *slog.Logger
}

func NewChecker(c cache.Cache, queue Enqueuer, debug bool, logger *slog.Logger) *Checker {
	return &Checker{cache: c, queue: queue, debug: debug, logger: logger}
}

// Latest returns the newest version known. On a cache miss it returns the
// running version and, outside debug mode, fire-and-forgets a version_check
// task; the current request never waits on the refresh.
func (c *Checker) Latest(ctx context.Context) *goversion.Version {
	raw, err := c.cache.Get(ctx, CacheKey)
	if err == nil {
		parsed, parseErr := goversion.NewVersion(raw)
		if parseErr == nil {
			return parsed
		}
		c.logger.WarnContext(ctx, "cached version not parseable, refreshing",
			"value", raw,
			"error", parseErr,
		)
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		c.logger.WarnContext(ctx, "version cache read failed", "error", err)
	}

	if !c.debug && c.queue != nil {
		c.scheduleRefresh(ctx)
	}
	return Current()
}

// scheduleRefresh enqueues a version_check task in the background. The
// enqueue is synchronous against the broker, so it must not run on the
// request path; the detached context keeps it alive after the request ends.
func (c *Checker) scheduleRefresh(ctx context.Context) {
	requestID := requestcontext.RequestID(ctx)
	refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), enqueueTimeout)
	go func() {
		defer cancel()
		if err := c.queue.Enqueue(refreshCtx, kafka.Task{Name: TaskVersionCheck}); err != nil {
			c.logger.Warn("version check not enqueued",
				"request_id", requestID,
				"error", err,
			)
		}
	}()
}
