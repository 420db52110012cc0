package policies

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"signet/internal/platform/cache"
	id "signet/pkg/domain"
	"signet/pkg/platform/sentinel"
)

// CachePrefix namespaces engine results in the shared cache. The admin
// surface counts and clears this namespace without knowing the key layout.
const CachePrefix = "policy_"

// resultTTL bounds how long a cached verdict may be served.
const resultTTL = 5 * time.Minute

// Subject is the thing a policy is evaluated against.
type Subject struct {
	UserID   id.UserID
	Username string
	ClientIP string
}

// Result is a policy verdict.
type Result struct {
	Passing bool   `json:"passing"`
	Reason  string `json:"reason,omitempty"`
}

// Engine evaluates policies and memoizes verdicts in the shared cache.
type Engine struct {
	cache  cache.Cache
	logger *slog.Logger
}

func NewEngine(c cache.Cache, logger *slog.Logger) *Engine {
	return &Engine{cache: c, logger: logger}
}

// resultKey is policy_<policyID>_<subjectHash>, keeping one entry per
// policy/subject pair under the shared prefix.
func resultKey(policy *Policy, subject Subject) string {
	sum := sha256.Sum256([]byte(subject.UserID.String() + "\x00" + subject.ClientIP))
	return fmt.Sprintf("%s%s_%s", CachePrefix, policy.ID, hex.EncodeToString(sum[:8]))
}

// Evaluate returns the verdict for policy against subject, serving a cached
// verdict when one is fresh. Disabled policies pass without evaluation and
// are never cached.
func (e *Engine) Evaluate(ctx context.Context, policy *Policy, subject Subject) (Result, error) {
	if !policy.Enabled {
		return Result{Passing: true, Reason: "policy disabled"}, nil
	}

	key := resultKey(policy, subject)
	if raw, err := e.cache.Get(ctx, key); err == nil {
		var cached Result
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return cached, nil
		}
		// A corrupt entry is dropped and re-evaluated.
		_ = e.cache.Delete(ctx, key)
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		e.logger.WarnContext(ctx, "policy cache read failed", "policy_id", policy.ID.String(), "error", err)
	}

	result, err := e.evaluate(policy, subject)
	if err != nil {
		return Result{}, err
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return Result{}, fmt.Errorf("encode policy result: %w", err)
	}
	if err := e.cache.Set(ctx, key, string(encoded), resultTTL); err != nil {
		// A write failure only costs a re-evaluation next time.
		e.logger.WarnContext(ctx, "policy cache write failed", "policy_id", policy.ID.String(), "error", err)
	}
	return result, nil
}

func (e *Engine) evaluate(policy *Policy, subject Subject) (Result, error) {
	switch policy.Kind {
	case KindExpression:
		return evaluateExpression(policy.Expression, subject)
	case KindReputation:
		// Reputation scoring consults an external feed in the full product;
		// the admin backend only needs a deterministic stand-in.
		if subject.ClientIP == "" {
			return Result{Passing: false, Reason: "no client ip"}, nil
		}
		return Result{Passing: true}, nil
	case KindPassword:
		return Result{Passing: true}, nil
	default:
		return Result{}, fmt.Errorf("policy %s: unknown kind %q", policy.ID, policy.Kind)
	}
}

// evaluateExpression supports the single form the seed data uses:
// "username == <value>" and its negation. Anything else fails closed.
func evaluateExpression(expression string, subject Subject) (Result, error) {
	expr := strings.TrimSpace(expression)
	if rest, ok := strings.CutPrefix(expr, "username == "); ok {
		val := strings.Trim(rest, `"'`)
		return Result{Passing: subject.Username == val}, nil
	}
	if rest, ok := strings.CutPrefix(expr, "username != "); ok {
		val := strings.Trim(rest, `"'`)
		return Result{Passing: subject.Username != val}, nil
	}
	return Result{Passing: false, Reason: "unsupported expression"}, nil
}
