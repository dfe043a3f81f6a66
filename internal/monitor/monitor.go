// Package monitor runs every domain watcher and republishes their changes on
// a single broker.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/container-kit/containerkit/internal/log"
	"github.com/container-kit/containerkit/internal/pubsub"
	"github.com/container-kit/containerkit/internal/tracing"
	"github.com/container-kit/containerkit/internal/watcher"
)

// Resource names a watched kind of runtime state.
type Resource string

const (
	ResourceContainers Resource = "containers"
	ResourceImages     Resource = "images"
	ResourceNetworks   Resource = "networks"
	ResourceDNS        Resource = "dns"
	ResourceResolver   Resource = "resolver"
)

// AllResources lists every resource in start order.
var AllResources = []Resource{
	ResourceContainers, ResourceImages, ResourceNetworks, ResourceDNS, ResourceResolver,
}

// Change is published each time a domain watcher fires. Event is only set
// for the resolver, whose watcher passes the filesystem event through.
type Change struct {
	Resource Resource
	Event    *watcher.Event
}

// Delays holds per-resource debounce windows; zero selects the watcher default.
type Delays struct {
	Containers time.Duration
	Images     time.Duration
	Networks   time.Duration
	DNS        time.Duration
	Resolver   time.Duration
}

// Monitor owns the watch subscriptions and the broker they publish to.
type Monitor struct {
	manager *watcher.Manager
	broker  *pubsub.Broker[Change]
	tracer  trace.Tracer
	delays  Delays

	mu      sync.Mutex
	unwatch map[Resource]watcher.Unwatch
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithTracer records a span per published change.
func WithTracer(t trace.Tracer) Option {
	return func(m *Monitor) {
		if t != nil {
			m.tracer = t
		}
	}
}

// WithDelays overrides the debounce windows.
func WithDelays(d Delays) Option {
	return func(m *Monitor) { m.delays = d }
}

// New creates a Monitor over manager. Nothing is watched until Start.
func New(manager *watcher.Manager, opts ...Option) *Monitor {
	m := &Monitor{
		manager: manager,
		broker:  pubsub.NewBroker[Change](),
		tracer:  noop.NewTracerProvider().Tracer("monitor"),
		unwatch: make(map[Resource]watcher.Unwatch),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Subscribe returns a channel of changes that closes when ctx is done or
// the monitor stops.
func (m *Monitor) Subscribe(ctx context.Context) <-chan pubsub.Event[Change] {
	return m.broker.Subscribe(ctx)
}

// Start begins watching the given resources, or all of them when none are
// named. Resources whose watch cannot be set up are skipped; their errors
// are joined into the result while the rest keep running.
func (m *Monitor) Start(resources ...Resource) error {
	if len(resources) == 0 {
		resources = AllResources
	}

	var errs []error
	for _, r := range resources {
		if err := m.start(r); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r, err))
		}
	}
	return errors.Join(errs...)
}

func (m *Monitor) start(r Resource) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.unwatch[r]; ok {
		return nil
	}

	notify := func() error {
		m.publish(r, nil)
		return nil
	}

	var (
		unwatch watcher.Unwatch
		err     error
	)
	switch r {
	case ResourceContainers:
		unwatch, err = m.manager.WatchContainerChanges(notify, m.delays.Containers)
	case ResourceImages:
		unwatch, err = m.manager.WatchImageChanges(notify, m.delays.Images)
	case ResourceNetworks:
		unwatch, err = m.manager.WatchNetworkChanges(notify, m.delays.Networks)
	case ResourceDNS:
		unwatch, err = m.manager.WatchDNSChanges(notify, m.delays.DNS)
	case ResourceResolver:
		unwatch, err = m.manager.WatchDNSResolverChanges(func(ev watcher.Event) error {
			m.publish(r, &ev)
			return nil
		}, m.delays.Resolver)
	default:
		return fmt.Errorf("unknown resource %q", r)
	}
	if err != nil {
		return err
	}
	m.unwatch[r] = unwatch
	return nil
}

func (m *Monitor) publish(r Resource, ev *watcher.Event) {
	attrs := []attribute.KeyValue{attribute.String(tracing.AttrWatchResource, string(r))}
	if ev != nil {
		attrs = append(attrs,
			attribute.String(tracing.AttrWatchKind, ev.Kind.String()),
			attribute.Int(tracing.AttrWatchPaths, len(ev.Paths)),
		)
	}
	_, span := m.tracer.Start(context.Background(), tracing.SpanWatchNotify, trace.WithAttributes(attrs...))
	defer span.End()

	log.Debug(log.CatWatch, "change", "resource", string(r))
	m.broker.Publish(pubsub.ChangedEvent, Change{Resource: r, Event: ev})
}

// Active returns the resources currently watched, in start order.
func (m *Monitor) Active() []Resource {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Resource
	for _, r := range AllResources {
		if _, ok := m.unwatch[r]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Stop ends every subscription and closes the broker. It is safe to call
// more than once.
func (m *Monitor) Stop() error {
	m.mu.Lock()
	subs := m.unwatch
	m.unwatch = make(map[Resource]watcher.Unwatch)
	m.mu.Unlock()

	var errs []error
	for r, unwatch := range subs {
		if err := unwatch(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r, err))
		}
	}
	m.broker.Close()
	return errors.Join(errs...)
}
