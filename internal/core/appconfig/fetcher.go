package appconfig

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultPollInterval is the minimum time between two polls unless overridden
const DefaultPollInterval = 60 * time.Second

type options struct {
	pollInterval time.Duration
	pollTimeout  time.Duration
	now          func() time.Time
}

// Option configures a Fetcher
type Option func(*options)

// WithPollInterval sets the polling floor. The service may ask for a longer
// interval but never a shorter one.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.pollInterval = d
		}
	}
}

// WithPollTimeout bounds one fetch, including a session restart. Zero means
// no limit beyond the client's own timeouts.
func WithPollTimeout(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.pollTimeout = d
		}
	}
}

// WithClock replaces time.Now, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// Fetcher caches configuration of type T polled from a Client.
//
// Fetch is safe for concurrent use: callers that arrive while a poll is in
// flight wait for it and share its result, and all state changes happen under
// the fetcher's mutex. Create one Fetcher per process and share it.
type Fetcher[T any] struct {
	client      Client
	session     SessionInput
	pollTimeout time.Duration
	now         func() time.Time

	group singleflight.Group
	mu    sync.Mutex

	token       string
	value       T
	hasValue    bool
	nextRefresh time.Time
	retryBudget int
}

// NewFetcher creates a Fetcher for one application/environment/profile triple
func NewFetcher[T any](client Client, application, environment, profile string, opts ...Option) *Fetcher[T] {
	o := options{
		pollInterval: DefaultPollInterval,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Fetcher[T]{
		client: client,
		session: SessionInput{
			Application:     application,
			Environment:     environment,
			Profile:         profile,
			MinPollInterval: o.pollInterval,
		},
		pollTimeout: o.pollTimeout,
		now:         o.now,
		retryBudget: 1,
	}
}

// Fetch returns the cached configuration, polling the service only once the
// refresh deadline has passed. forceRefresh discards the session and polls now.
// When the service rejects the session token, a new session is started and the
// fetch retried once; the last good value is kept if that fails too.
//
// The poll is shared by every caller waiting on it, so it does not stop when
// ctx is cancelled; only the poll timeout bounds it.
func (f *Fetcher[T]) Fetch(ctx context.Context, forceRefresh bool) (T, error) {
	key := "fetch"
	if forceRefresh {
		key = "force"
	}

	v, err, _ := f.group.Do(key, func() (any, error) {
		f.mu.Lock()
		defer f.mu.Unlock()

		pollCtx := context.WithoutCancel(ctx)
		if f.pollTimeout > 0 {
			var cancel context.CancelFunc
			pollCtx, cancel = context.WithTimeout(pollCtx, f.pollTimeout)
			defer cancel()
		}
		return f.fetchLocked(pollCtx, forceRefresh)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	value, _ := v.(T)
	return value, nil
}

func (f *Fetcher[T]) fetchLocked(ctx context.Context, forceRefresh bool) (T, error) {
	var zero T

	if forceRefresh {
		f.nextRefresh = time.Time{}
		f.token = ""
	}

	if f.hasValue && !f.refreshDue() {
		return f.value, nil
	}

	if f.token == "" {
		token, err := f.client.StartSession(ctx, f.session)
		if err != nil {
			return zero, fmt.Errorf("failed to start configuration session: %w", err)
		}
		f.token = token
	}

	latest, err := f.client.GetLatestConfiguration(ctx, f.token)
	if err != nil {
		if errors.Is(err, ErrSessionInvalid) {
			f.token = ""
			if f.retryBudget > 0 {
				f.retryBudget--
				return f.fetchLocked(ctx, true)
			}
		}
		return zero, err
	}

	if len(latest.Content) > 0 {
		value, err := DecodeContent[T](latest.Content, latest.ContentType)
		if err != nil {
			return zero, err
		}
		f.value = value
		f.hasValue = true
	}

	interval := latest.NextPollInterval
	if interval < f.session.MinPollInterval {
		interval = f.session.MinPollInterval
	}
	f.nextRefresh = time.Unix(f.now().Unix()+int64(interval/time.Second), 0)
	f.token = latest.NextToken
	f.retryBudget = 1

	return f.value, nil
}

func (f *Fetcher[T]) refreshDue() bool {
	return f.nextRefresh.IsZero() || f.now().Unix() >= f.nextRefresh.Unix()
}
