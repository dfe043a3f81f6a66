package watcher

import (
	"time"

	"github.com/container-kit/containerkit/internal/log"
)

// Default debounce windows of the domain watchers.
const (
	DefaultContainerDelay = 2 * time.Second
	DefaultImageDelay     = 2 * time.Second
	DefaultNetworkDelay   = time.Second
	DefaultDNSDelay       = time.Second
	DefaultResolverDelay  = time.Second
)

// Paths below the data root watched by the domain watchers.
const (
	ContainersDir  = "containers"
	ImageStateFile = "state.json"
	NetworksDir    = "networks"
	DNSDir         = "dns"
)

func delayOr(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// filtered adapts a no-argument domain callback into a Callback that only
// fires for events accepted by match.
func filtered(onChange func() error, match func(Event) bool) Callback {
	return func(ev Event) error {
		if !match(ev) {
			return nil
		}
		return onChange()
	}
}

// WatchContainerChanges calls onChange when a container is created,
// removed, or has its data rewritten. A non-positive delay uses
// DefaultContainerDelay.
func (m *Manager) WatchContainerChanges(onChange func() error, delay time.Duration) (Unwatch, error) {
	match := func(ev Event) bool {
		return IsCreateEvent(ev) || IsRemoveEvent(ev) || IsDataModifyEvent(ev)
	}
	return m.WatchDataDir(ContainersDir, filtered(onChange, match),
		Options{Debounce: delayOr(delay, DefaultContainerDelay)})
}

// WatchImageChanges calls onChange when the image store's state file is
// rewritten.
func (m *Manager) WatchImageChanges(onChange func() error, delay time.Duration) (Unwatch, error) {
	return m.WatchDataDir(ImageStateFile, filtered(onChange, IsDataModifyEvent),
		Options{Debounce: delayOr(delay, DefaultImageDelay)})
}

// WatchNetworkChanges calls onChange when a network is created or removed.
func (m *Manager) WatchNetworkChanges(onChange func() error, delay time.Duration) (Unwatch, error) {
	match := func(ev Event) bool { return IsCreateEvent(ev) || IsRemoveEvent(ev) }
	return m.WatchDataDir(NetworksDir, filtered(onChange, match),
		Options{Debounce: delayOr(delay, DefaultNetworkDelay)})
}

func isDNSChange(ev Event) bool {
	return IsDataModifyEvent(ev) || IsCreateEvent(ev) || IsRemoveEvent(ev)
}

// WatchDNSChanges calls onChange when the runtime's DNS configuration changes.
func (m *Manager) WatchDNSChanges(onChange func() error, delay time.Duration) (Unwatch, error) {
	return m.WatchDataDir(DNSDir, filtered(onChange, isDNSChange),
		Options{Debounce: delayOr(delay, DefaultDNSDelay)})
}

// WatchDNSResolverChanges passes resolver-file events to cb.
func (m *Manager) WatchDNSResolverChanges(cb Callback, delay time.Duration) (Unwatch, error) {
	return m.WatchResolverDir(func(ev Event) error {
		log.Debug(log.CatWatch, "resolver change", "event", ev.String())
		if !isDNSChange(ev) {
			return nil
		}
		return cb(ev)
	}, Options{Debounce: delayOr(delay, DefaultResolverDelay)})
}
