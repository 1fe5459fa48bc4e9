package schedule

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/masjidsuite/minaret/internal/events"
	"github.com/masjidsuite/minaret/internal/model"
)

// Strategy selects which tier Resolve tries first.
type Strategy int

const (
	// StrategyPreferRemote fetches fresh data first and falls back to the
	// cache, then the bundled payload.
	StrategyPreferRemote Strategy = iota
	// StrategyPreferCache serves a valid cached payload immediately and
	// refreshes it in the background.
	StrategyPreferCache
)

const defaultTimeout = 10 * time.Second

type Options struct {
	Endpoint string
	Timeout  time.Duration
	Strategy Strategy
}

type ResolveOptions struct {
	// ForceRefresh makes a PreferCache resolver go to the network first,
	// e.g. for a pull-to-refresh gesture.
	ForceRefresh bool
	// SkipRemote skips the remote tier entirely, e.g. data-saver mode.
	SkipRemote bool
}

// Resolver composes the fetcher, cache store and bundled payload into one
// Resolve operation. It is safe for arbitrary concurrent callers: callers
// needing the remote tier collapse into a single in-flight fetch, and cache
// mutation is serialized inside the store. Construct one per process and
// pass it to consumers; it owns no hidden global state.
type Resolver struct {
	fetcher Fetcher
	store   CacheStore
	sink    events.Publisher
	opts    Options

	flight       singleflight.Group
	revalidating atomic.Bool
}

func NewResolver(fetcher Fetcher, store CacheStore, sink events.Publisher, opts Options) *Resolver {
	if sink == nil {
		sink = events.Nop{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Endpoint == "" {
		opts.Endpoint = "schedule"
	}
	return &Resolver{fetcher: fetcher, store: store, sink: sink, opts: opts}
}

// Resolve returns a schedule dataset, always. Tier failures fall through
// remote -> cache -> bundled; the only error a caller can see is
// ErrBundledPayloadCorrupt, or its own context error if it cancels the wait.
func (r *Resolver) Resolve(ctx context.Context, opts ResolveOptions) (*model.ResolutionResult, error) {
	if r.opts.Strategy == StrategyPreferCache && !opts.ForceRefresh {
		if res, ok := r.serveCache(ctx, !opts.SkipRemote); ok {
			return res, nil
		}
	}

	var remoteErr error
	if !opts.SkipRemote {
		ds, err := r.fetchShared(ctx)
		if err == nil {
			r.publish(events.TypeResolved, string(model.SourceRemote), "")
			return &model.ResolutionResult{Dataset: ds, Source: model.SourceRemote}, nil
		}
		if ctx.Err() != nil {
			// The caller gave up; the shared fetch keeps running for the others.
			return nil, ctx.Err()
		}
		remoteErr = err
		r.publish(events.TypeTierFallthrough, string(model.SourceRemote), err.Error())
	}

	// A payload the remote served but the codec rejected means the network is
	// live and the authoritative data is newer than anything we hold, so a
	// revalidation off the cache hit would be pointless.
	freshReject := errors.Is(remoteErr, ErrMalformedPayload) || errors.Is(remoteErr, ErrSchemaViolation)
	if res, ok := r.serveCache(ctx, !opts.SkipRemote && !freshReject); ok {
		return res, nil
	}

	ds, err := Bundled()
	if err != nil {
		return nil, err
	}
	r.publish(events.TypeResolved, string(model.SourceBundled), "")
	return &model.ResolutionResult{
		Dataset: ds,
		Source:  model.SourceBundled,
		Warning: "no network or cache available",
	}, nil
}

// ClearCache drops the cached payload. Idempotent; also used internally when
// a corrupt record is detected.
func (r *Resolver) ClearCache(ctx context.Context) error {
	return r.store.Clear(ctx)
}

// fetchShared performs the remote fetch through the single-flight guard:
// concurrent callers keyed on the same endpoint share one HTTP request and
// its result. The shared call runs on a detached context bounded by the
// configured timeout, so one caller cancelling cannot kill it for the rest.
func (r *Resolver) fetchShared(ctx context.Context) (*model.ScheduleDataset, error) {
	ch := r.flight.DoChan(r.opts.Endpoint, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.Background(), r.opts.Timeout)
		defer cancel()

		raw, err := r.fetcher.Fetch(fctx)
		if err != nil {
			return nil, err
		}
		ds, err := Decode(raw)
		if err != nil {
			return nil, err
		}
		if err := r.store.Write(fctx, raw, ProvenanceRemote); err != nil {
			// Fresh data beats a persistence hiccup; serve it anyway.
			log.Error().Err(err).Msg("failed to persist fetched schedule")
		}
		return ds, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*model.ScheduleDataset), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// serveCache attempts the cache tier. A record that fails to decode is
// cleared on the spot so the next call skips straight past it.
func (r *Resolver) serveCache(ctx context.Context, revalidate bool) (*model.ResolutionResult, bool) {
	raw, meta, err := r.store.Read(ctx)
	if err != nil {
		if errors.Is(err, ErrCacheCorrupt) {
			r.selfHeal(ctx, err)
		}
		return nil, false
	}

	ds, err := Decode(raw)
	if err != nil {
		r.selfHeal(ctx, err)
		return nil, false
	}

	if revalidate {
		r.scheduleRevalidation()
	}

	detail := ""
	if !meta.FetchedAt.IsZero() {
		detail = "fetched " + meta.FetchedAt.Format(time.RFC3339)
	}
	r.publish(events.TypeResolved, string(model.SourceCache), detail)
	return &model.ResolutionResult{
		Dataset: ds,
		Source:  model.SourceCache,
		Warning: "serving cached data",
	}, true
}

func (r *Resolver) selfHeal(ctx context.Context, cause error) {
	if err := r.store.Clear(ctx); err != nil {
		log.Error().Err(err).Msg("failed to clear corrupt schedule cache")
		return
	}
	r.publish(events.TypeCacheSelfHeal, string(model.SourceCache), cause.Error())
}

// scheduleRevalidation kicks off one detached background fetch whose success
// silently replaces the cache and whose failure is only logged. At most one
// runs at a time, and it never blocks the caller that triggered it.
func (r *Resolver) scheduleRevalidation() {
	if !r.revalidating.CompareAndSwap(false, true) {
		return
	}
	r.publish(events.TypeRevalidationStarted, "", "")

	go func() {
		defer r.revalidating.Store(false)

		if _, err := r.fetchShared(context.Background()); err != nil {
			r.publish(events.TypeRevalidationFailed, "", err.Error())
			return
		}
		r.publish(events.TypeRevalidationSucceeded, "", "")
	}()
}

func (r *Resolver) publish(t events.Type, source, detail string) {
	r.sink.Publish(events.Event{Type: t, Source: source, Detail: detail, At: time.Now().UTC()})
}
