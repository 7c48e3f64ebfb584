package integration

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/woodcraft/backend/internal/domain/integration"
)

// RetryPolicy bounds how often a rate limited call is retried
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt
	MaxRetries int
	// InitialInterval is the first cool-down
	InitialInterval time.Duration
	// MaxInterval caps a single cool-down
	MaxInterval time.Duration
}

// DefaultRetryPolicy returns the production retry policy
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 2, InitialInterval: 2 * time.Second, MaxInterval: 30 * time.Second}
}

// retryAfterBackOff honors the Retry-After of the last 429 when it is longer
// than the exponential interval
type retryAfterBackOff struct {
	next backoff.BackOff
	hint time.Duration
	max  time.Duration
}

func (b *retryAfterBackOff) NextBackOff() time.Duration {
	d := b.next.NextBackOff()
	if d == backoff.Stop {
		return d
	}
	if b.hint > d {
		d = b.hint
	}
	if b.max > 0 && d > b.max {
		d = b.max
	}
	b.hint = 0
	return d
}

func (b *retryAfterBackOff) Reset() {
	b.hint = 0
	b.next.Reset()
}

// withRetry runs op and retries it only on ErrRateLimited, at most
// MaxRetries times. Every other error is returned at once.
func withRetry[T any](ctx context.Context, policy RetryPolicy, logger *zap.Logger, op func() (T, error)) (T, error) {
	var result T
	if policy.MaxRetries <= 0 {
		return op()
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = policy.InitialInterval
	exp.MaxInterval = policy.MaxInterval
	exp.MaxElapsedTime = 0
	exp.Reset()
	hinted := &retryAfterBackOff{next: exp, max: policy.MaxInterval}
	b := backoff.WithContext(backoff.WithMaxRetries(hinted, uint64(policy.MaxRetries)), ctx)

	err := backoff.RetryNotify(func() error {
		v, err := op()
		if err == nil {
			result = v
			return nil
		}
		if !errors.Is(err, integration.ErrRateLimited) {
			return backoff.Permanent(err)
		}
		if re, ok := integration.AsRemoteError(err); ok {
			hinted.hint = re.RetryAfter
		}
		return err
	}, b, func(err error, wait time.Duration) {
		logger.Warn("Remote platform rate limited, cooling down",
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	})
	return result, err
}

// ---------------------------------------------------------------------------
// retryingCatalog
// ---------------------------------------------------------------------------

// retryingCatalog decorates a RemoteCatalog with the 429 retry policy. The
// limiter itself never retries; this is the single place that does.
type retryingCatalog struct {
	inner  integration.RemoteCatalog
	policy RetryPolicy
	logger *zap.Logger
}

var _ integration.RemoteCatalog = (*retryingCatalog)(nil)

func newRetryingCatalog(inner integration.RemoteCatalog, policy RetryPolicy, logger *zap.Logger) *retryingCatalog {
	return &retryingCatalog{inner: inner, policy: policy, logger: logger}
}

type none struct{}

func (c *retryingCatalog) do(ctx context.Context, op func() error) error {
	_, err := withRetry(ctx, c.policy, c.logger, func() (none, error) { return none{}, op() })
	return err
}

func (c *retryingCatalog) ShopName() string    { return c.inner.ShopName() }
func (c *retryingCatalog) UsedTokenAuth() bool { return c.inner.UsedTokenAuth() }

func (c *retryingCatalog) Probe(ctx context.Context) error {
	return c.do(ctx, func() error { return c.inner.Probe(ctx) })
}

func (c *retryingCatalog) FindLanguage(ctx context.Context, code string) (*integration.RemoteLanguage, error) {
	return withRetry(ctx, c.policy, c.logger, func() (*integration.RemoteLanguage, error) {
		return c.inner.FindLanguage(ctx, code)
	})
}

func (c *retryingCatalog) GetEntity(ctx context.Context, t integration.EntityType, remoteID string) (*integration.RemoteEntity, error) {
	return withRetry(ctx, c.policy, c.logger, func() (*integration.RemoteEntity, error) {
		return c.inner.GetEntity(ctx, t, remoteID)
	})
}

func (c *retryingCatalog) UpdateEntity(ctx context.Context, t integration.EntityType, remoteID string, fields integration.EntityFields) (integration.WriteResult, error) {
	return withRetry(ctx, c.policy, c.logger, func() (integration.WriteResult, error) {
		return c.inner.UpdateEntity(ctx, t, remoteID, fields)
	})
}

func (c *retryingCatalog) FindDescription(ctx context.Context, t integration.EntityType, remoteID, languageID string) (*integration.RemoteDescription, error) {
	return withRetry(ctx, c.policy, c.logger, func() (*integration.RemoteDescription, error) {
		return c.inner.FindDescription(ctx, t, remoteID, languageID)
	})
}

func (c *retryingCatalog) CreateDescription(ctx context.Context, t integration.EntityType, remoteID, languageID string, d integration.Description) (integration.WriteResult, error) {
	return withRetry(ctx, c.policy, c.logger, func() (integration.WriteResult, error) {
		return c.inner.CreateDescription(ctx, t, remoteID, languageID, d)
	})
}

func (c *retryingCatalog) UpdateDescription(ctx context.Context, t integration.EntityType, descriptionID string, d integration.Description) (integration.WriteResult, error) {
	return withRetry(ctx, c.policy, c.logger, func() (integration.WriteResult, error) {
		return c.inner.UpdateDescription(ctx, t, descriptionID, d)
	})
}

func (c *retryingCatalog) FindTag(ctx context.Context, productID, languageID string) (*integration.RemoteTag, error) {
	return withRetry(ctx, c.policy, c.logger, func() (*integration.RemoteTag, error) {
		return c.inner.FindTag(ctx, productID, languageID)
	})
}

func (c *retryingCatalog) CreateTag(ctx context.Context, productID, languageID, text string) (integration.WriteResult, error) {
	return withRetry(ctx, c.policy, c.logger, func() (integration.WriteResult, error) {
		return c.inner.CreateTag(ctx, productID, languageID, text)
	})
}

func (c *retryingCatalog) UpdateTag(ctx context.Context, tagID, text string) (integration.WriteResult, error) {
	return withRetry(ctx, c.policy, c.logger, func() (integration.WriteResult, error) {
		return c.inner.UpdateTag(ctx, tagID, text)
	})
}

func (c *retryingCatalog) DeleteTag(ctx context.Context, tagID string) error {
	return c.do(ctx, func() error { return c.inner.DeleteTag(ctx, tagID) })
}

func (c *retryingCatalog) GetAlias(ctx context.Context, aliasID string) (*integration.URLAlias, error) {
	return withRetry(ctx, c.policy, c.logger, func() (*integration.URLAlias, error) {
		return c.inner.GetAlias(ctx, aliasID)
	})
}

func (c *retryingCatalog) FindAliasBySlug(ctx context.Context, t integration.EntityType, slug string) (*integration.URLAlias, error) {
	return withRetry(ctx, c.policy, c.logger, func() (*integration.URLAlias, error) {
		return c.inner.FindAliasBySlug(ctx, t, slug)
	})
}

func (c *retryingCatalog) CreateAlias(ctx context.Context, t integration.EntityType, ownerID, slug string) (*integration.URLAlias, error) {
	return withRetry(ctx, c.policy, c.logger, func() (*integration.URLAlias, error) {
		return c.inner.CreateAlias(ctx, t, ownerID, slug)
	})
}

func (c *retryingCatalog) UpdateAliasSlug(ctx context.Context, aliasID, slug string) (integration.WriteResult, error) {
	return withRetry(ctx, c.policy, c.logger, func() (integration.WriteResult, error) {
		return c.inner.UpdateAliasSlug(ctx, aliasID, slug)
	})
}

func (c *retryingCatalog) DeleteAlias(ctx context.Context, aliasID string) error {
	return c.do(ctx, func() error { return c.inner.DeleteAlias(ctx, aliasID) })
}
