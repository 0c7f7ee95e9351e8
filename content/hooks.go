package content

import "context"

// Cache stores rendered read results for the public post endpoints.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
	Purge(ctx context.Context) error
}

// Publisher announces domain events such as post.created.
type Publisher interface {
	Publish(ctx context.Context, subject string, v any) error
}

// Logger receives failures of side effects that must not fail a request.
type Logger interface {
	Warnf(format string, args ...interface{})
}

// Event subjects.
const (
	SubjectPostCreated          = "post.created"
	SubjectPostUpdated          = "post.updated"
	SubjectPostStatus           = "post.status"
	SubjectPostLiked            = "post.liked"
	SubjectPostDeleted          = "post.deleted"
	SubjectNewsletterSubscribed = "newsletter.subscribed"
)

type nopCache struct{}

func (nopCache) Get(context.Context, string, any) (bool, error) { return false, nil }
func (nopCache) Set(context.Context, string, any) error         { return nil }
func (nopCache) Purge(context.Context) error                    { return nil }

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, any) error { return nil }

type nopLogger struct{}

func (nopLogger) Warnf(string, ...interface{}) {}

type hooks struct {
	cache  Cache
	events Publisher
	log    Logger
}

// Option configures optional collaborators of a service.
type Option func(*hooks)

// WithCache enables read caching of public post lookups.
func WithCache(c Cache) Option {
	return func(h *hooks) {
		if c != nil {
			h.cache = c
		}
	}
}

// WithPublisher sets where domain events are sent.
func WithPublisher(p Publisher) Option {
	return func(h *hooks) {
		if p != nil {
			h.events = p
		}
	}
}

func WithLogger(l Logger) Option {
	return func(h *hooks) {
		if l != nil {
			h.log = l
		}
	}
}

func newHooks(opts []Option) hooks {
	h := hooks{cache: nopCache{}, events: nopPublisher{}, log: nopLogger{}}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

func (h hooks) publish(ctx context.Context, subject string, v any) {
	if err := h.events.Publish(ctx, subject, v); err != nil {
		h.log.Warnf("publish %s: %v", subject, err)
	}
}

func (h hooks) purge(ctx context.Context) {
	if err := h.cache.Purge(ctx); err != nil {
		h.log.Warnf("purge cache: %v", err)
	}
}

// cached returns the value stored under key, or calls load and stores its
// result. A cache failure falls through to load.
func cached[T any](ctx context.Context, h hooks, key string, load func() (T, error)) (T, error) {
	var v T
	ok, err := h.cache.Get(ctx, key, &v)
	if err != nil {
		h.log.Warnf("cache get %s: %v", key, err)
	}
	if ok {
		return v, nil
	}
	v, err = load()
	if err != nil {
		return v, err
	}
	if err := h.cache.Set(ctx, key, v); err != nil {
		h.log.Warnf("cache set %s: %v", key, err)
	}
	return v, nil
}
