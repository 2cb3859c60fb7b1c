package core

import (
	"context"
	"time"
)

// CallFunc is the shape shared by every operation: one context and one
// request in, one result or an error out.
type CallFunc[Req, Res any] func(ctx context.Context, req Req) (Res, error)

// AttemptInfo describes one finished attempt of a wrapped call.
type AttemptInfo struct {
	Operation   Operation
	Attempt     int
	MaxAttempts int
	Err         error
	Retrying    bool
	Delay       time.Duration
	Duration    time.Duration
}

// MethodPolicy configures Wrap. A zero DefaultTimeout leaves attempts
// unbounded; a nil Retry runs exactly one attempt.
type MethodPolicy struct {
	Operation      Operation
	DefaultTimeout time.Duration
	Retry          RetryPolicy
	ClientInfo     ClientInfo
	Sleep          func(ctx context.Context, delay time.Duration) error
	OnAttempt      func(ctx context.Context, info AttemptInfo)
}

type callTimeoutKey struct{}

type callRetryKey struct{}

// WithCallTimeout overrides the per-attempt timeout for calls made with ctx.
// Zero disables the client-side bound.
func WithCallTimeout(ctx context.Context, timeout time.Duration) context.Context {
	if timeout < 0 {
		timeout = 0
	}
	return context.WithValue(ctx, callTimeoutKey{}, timeout)
}

// WithCallRetry overrides the retry policy for calls made with ctx.
func WithCallRetry(ctx context.Context, policy RetryPolicy) context.Context {
	return context.WithValue(ctx, callRetryKey{}, retryOverride{policy: policy})
}

// WithoutRetry disables retries for calls made with ctx.
func WithoutRetry(ctx context.Context) context.Context {
	return context.WithValue(ctx, callRetryKey{}, retryOverride{})
}

type retryOverride struct {
	policy RetryPolicy
}

func callTimeoutFromContext(ctx context.Context) (time.Duration, bool) {
	timeout, ok := ctx.Value(callTimeoutKey{}).(time.Duration)
	return timeout, ok
}

func callRetryFromContext(ctx context.Context) (RetryPolicy, bool) {
	override, ok := ctx.Value(callRetryKey{}).(retryOverride)
	return override.policy, ok
}

// Wrap decorates call with client identification, per-attempt timeouts and
// retries. Building the wrapper does no I/O and starts no goroutines.
//
// Failures the retry policy rejects are returned unchanged on first
// occurrence. Retryable failures that outlast the attempt budget, or the
// policy's overall deadline, surface as RetryExhaustedError carrying the last
// failure. Cancelling ctx stops further attempts.
func Wrap[Req, Res any](call CallFunc[Req, Res], policy MethodPolicy) CallFunc[Req, Res] {
	if call == nil {
		return func(context.Context, Req) (Res, error) {
			var zero Res
			return zero, newNotImplementedError(policy.Operation)
		}
	}

	return func(ctx context.Context, req Req) (Res, error) {
		var zero Res
		if ctx == nil {
			ctx = context.Background()
		}
		if _, ok := ClientInfoFromContext(ctx); !ok {
			ctx = ContextWithClientInfo(ctx, policy.ClientInfo)
		}

		timeout := policy.DefaultTimeout
		if override, ok := callTimeoutFromContext(ctx); ok {
			timeout = override
		}
		retry := policy.Retry
		if override, ok := callRetryFromContext(ctx); ok {
			retry = override
		}
		maxAttempts := 1
		if retry != nil && retry.MaxAttempts() > 1 {
			maxAttempts = retry.MaxAttempts()
		}

		callerCtx := ctx
		if bounded, ok := retry.(RetryDeadline); ok && bounded.Deadline() > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, bounded.Deadline())
			defer cancel()
		}

		var lastErr error
		attempt := 0
		for attempt < maxAttempts {
			attempt++
			startedAt := time.Now()
			res, err := runAttempt(ctx, call, req, timeout)
			if err == nil {
				return res, nil
			}
			lastErr = err
			info := AttemptInfo{
				Operation:   policy.Operation,
				Attempt:     attempt,
				MaxAttempts: maxAttempts,
				Err:         err,
				Duration:    time.Since(startedAt),
			}

			if retry == nil || !retry.ShouldRetry(err) {
				notifyAttempt(ctx, policy, info)
				return zero, err
			}
			if callerCtx.Err() != nil {
				notifyAttempt(ctx, policy, info)
				return zero, err
			}
			if attempt >= maxAttempts || ctx.Err() != nil {
				notifyAttempt(ctx, policy, info)
				break
			}

			info.Retrying = true
			info.Delay = retry.NextDelay(attempt)
			notifyAttempt(ctx, policy, info)
			if sleepErr := sleepRetry(ctx, policy.Sleep, info.Delay); sleepErr != nil {
				if callerCtx.Err() != nil {
					return zero, callerCtx.Err()
				}
				break
			}
		}
		return zero, newRetryExhaustedError(policy.Operation, attempt, lastErr)
	}
}

func runAttempt[Req, Res any](ctx context.Context, call CallFunc[Req, Res], req Req, timeout time.Duration) (Res, error) {
	if timeout <= 0 {
		return call(ctx, req)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return call(attemptCtx, req)
}

func notifyAttempt(ctx context.Context, policy MethodPolicy, info AttemptInfo) {
	if policy.OnAttempt != nil {
		policy.OnAttempt(ctx, info)
	}
}
