package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	defaultRetryInitialBackoff = 100 * time.Millisecond
	defaultRetryMaxBackoff     = 60 * time.Second
	defaultRetryMultiplier     = 1.3
)

var DefaultRetryableStatusCodes = []int{
	http.StatusTooManyRequests,
	http.StatusInternalServerError,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

var DefaultRetryableGRPCCodes = []codes.Code{
	codes.Unavailable,
	codes.ResourceExhausted,
}

// RetryClassifier reports whether err is worth another attempt.
type RetryClassifier func(err error) bool

type httpStatusCoder interface {
	HTTPStatusCode() int
}

// BackoffPolicy retries classified failures with capped exponential backoff.
type BackoffPolicy struct {
	Attempts        int
	Initial         time.Duration
	Max             time.Duration
	Multiplier      float64
	OverallDeadline time.Duration
	Retryable       RetryClassifier
}

// NewBackoffPolicy builds a policy from configuration. Status and gRPC code
// lists fall back to the defaults when empty.
func NewBackoffPolicy(cfg RetryConfig) (BackoffPolicy, error) {
	if err := cfg.Validate(); err != nil {
		return BackoffPolicy{}, err
	}
	statuses := cfg.RetryableStatusCodes
	if len(statuses) == 0 {
		statuses = DefaultRetryableStatusCodes
	}
	grpcCodes, err := parseGRPCCodes(cfg.RetryableGRPCCodes)
	if err != nil {
		return BackoffPolicy{}, err
	}
	if len(grpcCodes) == 0 {
		grpcCodes = DefaultRetryableGRPCCodes
	}
	return BackoffPolicy{
		Attempts:        cfg.MaxAttempts,
		Initial:         cfg.InitialBackoff,
		Max:             cfg.MaxBackoff,
		Multiplier:      cfg.Multiplier,
		OverallDeadline: cfg.Deadline,
		Retryable: RetryOnAny(
			RetryOnHTTPStatus(statuses...),
			RetryOnGRPCCodes(grpcCodes...),
		),
	}, nil
}

func (p BackoffPolicy) MaxAttempts() int {
	if p.Attempts <= 0 {
		return 1
	}
	return p.Attempts
}

func (p BackoffPolicy) ShouldRetry(err error) bool {
	if err == nil || p.Retryable == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return p.Retryable(err)
}

// NextDelay returns the wait after the given 1-based attempt.
func (p BackoffPolicy) NextDelay(attempt int) time.Duration {
	p = p.normalized()
	if attempt < 1 {
		attempt = 1
	}
	delay := float64(p.Initial) * math.Pow(p.Multiplier, float64(attempt-1))
	if delay >= float64(p.Max) || math.IsInf(delay, 0) {
		return p.Max
	}
	return time.Duration(delay)
}

func (p BackoffPolicy) Deadline() time.Duration {
	if p.OverallDeadline < 0 {
		return 0
	}
	return p.OverallDeadline
}

func (p BackoffPolicy) normalized() BackoffPolicy {
	if p.Initial <= 0 {
		p.Initial = defaultRetryInitialBackoff
	}
	if p.Max <= 0 {
		p.Max = defaultRetryMaxBackoff
	}
	if p.Max < p.Initial {
		p.Max = p.Initial
	}
	if p.Multiplier < 1 {
		p.Multiplier = defaultRetryMultiplier
	}
	return p
}

// RetryOnHTTPStatus matches errors exposing HTTPStatusCode() with one of statuses.
func RetryOnHTTPStatus(statuses ...int) RetryClassifier {
	allowed := append([]int(nil), statuses...)
	return func(err error) bool {
		var coder httpStatusCoder
		if !errors.As(err, &coder) {
			return false
		}
		return slices.Contains(allowed, coder.HTTPStatusCode())
	}
}

// RetryOnGRPCCodes matches errors carrying a gRPC status with one of allowed.
func RetryOnGRPCCodes(allowed ...codes.Code) RetryClassifier {
	allowed = append([]codes.Code(nil), allowed...)
	return func(err error) bool {
		if err == nil {
			return false
		}
		st, ok := status.FromError(err)
		if !ok || st == nil {
			return false
		}
		return slices.Contains(allowed, st.Code())
	}
}

func RetryOnAny(classifiers ...RetryClassifier) RetryClassifier {
	return func(err error) bool {
		for _, classify := range classifiers {
			if classify != nil && classify(err) {
				return true
			}
		}
		return false
	}
}

func parseGRPCCodes(names []string) ([]codes.Code, error) {
	if len(names) == 0 {
		return nil, nil
	}
	out := make([]codes.Code, 0, len(names))
	for _, name := range names {
		name = strings.ToUpper(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		var code codes.Code
		if err := code.UnmarshalJSON([]byte(strconv.Quote(name))); err != nil {
			return nil, fmt.Errorf("unknown grpc code %q", name)
		}
		out = append(out, code)
	}
	return out, nil
}

func sleepRetry(ctx context.Context, sleepFn func(ctx context.Context, delay time.Duration) error, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	if sleepFn != nil {
		return sleepFn(ctx, delay)
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ RetryPolicy = BackoffPolicy{}
var _ RetryDeadline = BackoffPolicy{}
