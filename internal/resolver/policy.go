package resolver

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"

	"github.com/nucleus/agentlang/internal/agerrors"
	"github.com/nucleus/agentlang/internal/model"
)

// BackoffKind selects the retry backoff shape (spec.md §5: "constant /
// linear / exponential backoff with maxDelayMs cap").
type BackoffKind string

const (
	BackoffConstant    BackoffKind = "constant"
	BackoffLinear      BackoffKind = "linear"
	BackoffExponential BackoffKind = "exponential"
)

// PolicyConfig configures the timeout→retry→circuit-breaker envelope every
// resolver call is wrapped in (spec.md §5).
type PolicyConfig struct {
	RequestTimeout time.Duration

	MaxAttempts int
	Backoff     BackoffKind
	BaseDelay   time.Duration
	MaxDelay    time.Duration

	FailureThreshold uint32
	ResetTimeout     time.Duration
	HalfOpenMax      uint32
}

// DefaultPolicyConfig mirrors the teacher's resilience defaults.
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		RequestTimeout:   5 * time.Second,
		MaxAttempts:      3,
		Backoff:          BackoffExponential,
		BaseDelay:        100 * time.Millisecond,
		MaxDelay:         2 * time.Second,
		FailureThreshold: 5,
		ResetTimeout:     30 * time.Second,
		HalfOpenMax:      3,
	}
}

// Policy wraps a Resolver with the timeout → retry → circuit-breaker
// envelope (spec.md §5's "cancellation and timeouts"). Circuit states:
// CLOSED → OPEN (failure threshold crossed) → HALF-OPEN (after
// ResetTimeout) → CLOSED (one successful call), delegated to
// sony/gobreaker.
type Policy struct {
	inner Resolver
	cfg   PolicyConfig
	cb    *gobreaker.CircuitBreaker[any]
}

// NewPolicy wraps inner with cfg's timeout/retry/circuit-breaker envelope.
func NewPolicy(inner Resolver, cfg PolicyConfig) *Policy {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	halfOpenMax := cfg.HalfOpenMax
	if halfOpenMax == 0 {
		halfOpenMax = 3
	}
	settings := gobreaker.Settings{
		Name:        "resolver:" + inner.Name(),
		MaxRequests: halfOpenMax,
		Timeout:     cfg.ResetTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
	}
	return &Policy{inner: inner, cfg: cfg, cb: gobreaker.NewCircuitBreaker[any](settings)}
}

func (p *Policy) Name() string { return p.inner.Name() }

// run executes fn under the timeout→retry→circuit-breaker envelope.
func run[T any](ctx context.Context, p *Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	result, err := p.cb.Execute(func() (any, error) {
		var attemptErr error
		var out T
		bo := p.backoff(ctx)
		attemptErr = backoff.Retry(func() error {
			attemptCtx, cancel := context.WithTimeout(ctx, p.cfg.RequestTimeout)
			defer cancel()
			var innerErr error
			out, innerErr = fn(attemptCtx)
			if innerErr != nil && !retryable(innerErr) {
				return backoff.Permanent(innerErr)
			}
			return innerErr
		}, bo)
		return out, attemptErr
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, agerrors.NewResolverUnavailable(p.inner.Name(), err)
		}
		var permErr *backoff.PermanentError
		if errors.As(err, &permErr) {
			return zero, permErr.Err
		}
		return zero, agerrors.NewResolverUnavailable(p.inner.Name(), err)
	}
	typed, _ := result.(T)
	return typed, nil
}

func (p *Policy) backoff(ctx context.Context) backoff.BackOff {
	maxAttempts := p.cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	var bo backoff.BackOff
	switch p.cfg.Backoff {
	case BackoffConstant:
		bo = backoff.NewConstantBackOff(p.cfg.BaseDelay)
	case BackoffLinear:
		bo = &linearBackOff{base: p.cfg.BaseDelay, max: p.cfg.MaxDelay}
	default:
		eb := backoff.NewExponentialBackOff()
		eb.InitialInterval = p.cfg.BaseDelay
		eb.MaxInterval = p.cfg.MaxDelay
		eb.MaxElapsedTime = 0
		bo = eb
	}
	return backoff.WithContext(backoff.WithMaxRetries(bo, uint64(maxAttempts-1)), ctx)
}

// linearBackOff grows delay by a fixed step each attempt, capped at max.
type linearBackOff struct {
	base, max time.Duration
	attempt   int
}

func (l *linearBackOff) NextBackOff() time.Duration {
	l.attempt++
	d := time.Duration(l.attempt) * l.base
	if l.max > 0 && d > l.max {
		d = l.max
	}
	return d
}

func (l *linearBackOff) Reset() { l.attempt = 0 }

// retryable reports whether err is worth retrying: only resolver I/O
// failures are, per spec.md §7 ("ResolverUnavailable ... Retry per
// policy"); schema/authorization/not-found failures are not.
func retryable(err error) bool {
	kind := agerrors.KindOf(err)
	return kind == "" || kind == agerrors.ResolverUnavailable
}

func (p *Policy) StartTransaction(ctx context.Context) (TxnID, error) {
	return run(ctx, p, func(ctx context.Context) (TxnID, error) { return p.inner.StartTransaction(ctx) })
}

func (p *Policy) CommitTransaction(ctx context.Context, txn TxnID) error {
	_, err := run(ctx, p, func(ctx context.Context) (struct{}, error) { return struct{}{}, p.inner.CommitTransaction(ctx, txn) })
	return err
}

func (p *Policy) RollbackTransaction(ctx context.Context, txn TxnID) error {
	_, err := run(ctx, p, func(ctx context.Context) (struct{}, error) { return struct{}{}, p.inner.RollbackTransaction(ctx, txn) })
	return err
}

func (p *Policy) CreateInstance(ctx context.Context, txn TxnID, auth AuthInfo, inst *model.Instance) (*model.Instance, error) {
	return run(ctx, p, func(ctx context.Context) (*model.Instance, error) { return p.inner.CreateInstance(ctx, txn, auth, inst) })
}

func (p *Policy) UpsertInstance(ctx context.Context, txn TxnID, auth AuthInfo, inst *model.Instance) (*model.Instance, error) {
	return run(ctx, p, func(ctx context.Context) (*model.Instance, error) { return p.inner.UpsertInstance(ctx, txn, auth, inst) })
}

func (p *Policy) UpdateInstance(ctx context.Context, txn TxnID, auth AuthInfo, inst *model.Instance, newAttrs *model.Attrs) (*model.Instance, error) {
	return run(ctx, p, func(ctx context.Context) (*model.Instance, error) { return p.inner.UpdateInstance(ctx, txn, auth, inst, newAttrs) })
}

func (p *Policy) QueryInstances(ctx context.Context, txn TxnID, auth AuthInfo, inst *model.Instance, queryAll bool) ([]*model.Instance, error) {
	return run(ctx, p, func(ctx context.Context) ([]*model.Instance, error) { return p.inner.QueryInstances(ctx, txn, auth, inst, queryAll) })
}

func (p *Policy) QueryChildInstances(ctx context.Context, txn TxnID, auth AuthInfo, parentPath model.Path, inst *model.Instance) ([]*model.Instance, error) {
	return run(ctx, p, func(ctx context.Context) ([]*model.Instance, error) {
		return p.inner.QueryChildInstances(ctx, txn, auth, parentPath, inst)
	})
}

func (p *Policy) QueryConnectedInstances(ctx context.Context, txn TxnID, auth AuthInfo, rel *model.Relationship, connected *model.Instance, inst *model.Instance) ([]*model.Instance, error) {
	return run(ctx, p, func(ctx context.Context) ([]*model.Instance, error) {
		return p.inner.QueryConnectedInstances(ctx, txn, auth, rel, connected, inst)
	})
}

func (p *Policy) QueryByJoin(ctx context.Context, txn TxnID, auth AuthInfo, inst *model.Instance, joins []JoinClause, into IntoSpec, distinct bool, where []WhereClause) ([]map[string]any, error) {
	return run(ctx, p, func(ctx context.Context) ([]map[string]any, error) {
		return p.inner.QueryByJoin(ctx, txn, auth, inst, joins, into, distinct, where)
	})
}

func (p *Policy) DeleteInstance(ctx context.Context, txn TxnID, auth AuthInfo, inst *model.Instance, purge bool) ([]*model.Instance, error) {
	return run(ctx, p, func(ctx context.Context) ([]*model.Instance, error) { return p.inner.DeleteInstance(ctx, txn, auth, inst, purge) })
}

func (p *Policy) ConnectInstances(ctx context.Context, txn TxnID, auth AuthInfo, a, b *model.Instance, rel *model.Relationship, orUpdate bool) (*model.Instance, error) {
	return run(ctx, p, func(ctx context.Context) (*model.Instance, error) {
		return p.inner.ConnectInstances(ctx, txn, auth, a, b, rel, orUpdate)
	})
}

func (p *Policy) FullTextSearch(ctx context.Context, txn TxnID, auth AuthInfo, module, entry, searchText string, opts map[string]any) ([]*model.Instance, error) {
	return run(ctx, p, func(ctx context.Context) ([]*model.Instance, error) {
		return p.inner.FullTextSearch(ctx, txn, auth, module, entry, searchText, opts)
	})
}

var _ Resolver = (*Policy)(nil)
