package locker

import (
	"fmt"
	"starhold_server/pkg/logger"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// ErrBusy :
// Returned by the acquisition when the resource could not
// be locked within the allotted wait duration. Clients are
// expected to surface this as a retryable condition rather
// than to keep waiting.
var ErrBusy = fmt.Errorf("resource is busy")

// PlanetLocker :
// Provides a per-resource lock mechanism with a bounded
// wait. Mutating operations targeting a planet must hold
// its lock for the duration of the mutation so that the
// simulation loop and the command handlers never step on
// each other. Rather than blocking indefinitely when a
// resource is contended, the acquisition polls it at a
// fixed interval and gives up after a timeout: a stuck
// operation can then never wedge every client targeting
// the same planet.
//
// The `locker` protects the internal table of held locks.
//
// The `held` defines the resources currently locked. An
// entry is removed as soon as the lock is released so the
// table only ever grows to the number of concurrently
// locked resources.
//
// The `timeout` defines the maximum duration a call to
// `Acquire` can wait before giving up with `ErrBusy`.
//
// The `retry` defines the interval at which a contended
// resource is rechecked.
//
// The `cout` allows to notify information about the locks
// being acquired and released.
type PlanetLocker struct {
	locker sync.Mutex
	held   map[string]time.Time

	timeout time.Duration
	retry   time.Duration

	cout logger.Logger
}

// configuration :
// Regroups the customizable properties of the locker.
//
// The `Timeout` defines the maximum wait duration before
// an acquisition fails with a busy error.
// The default value is `5s`.
//
// The `Retry` defines the interval at which a contended
// resource is rechecked.
// The default value is `50ms`.
type configuration struct {
	Timeout time.Duration
	Retry   time.Duration
}

// parseConfiguration :
// Used to parse the configuration file and environment
// variables to retrieve the locker properties, falling
// back on defaults when nothing is provided.
//
// Returns the parsed configuration.
func parseConfiguration() configuration {
	config := configuration{
		Timeout: 5 * time.Second,
		Retry:   50 * time.Millisecond,
	}

	if viper.IsSet("Locker.Timeout") {
		config.Timeout = viper.GetDuration("Locker.Timeout")
	}
	if viper.IsSet("Locker.Retry") {
		config.Retry = viper.GetDuration("Locker.Retry")
	}

	if config.Timeout <= 0 || config.Retry <= 0 {
		panic(fmt.Errorf("invalid locker configuration (timeout: %v, retry: %v)", config.Timeout, config.Retry))
	}

	return config
}

// NewPlanetLocker :
// Creates a locker with the configuration retrieved from
// the environment.
//
// The `log` will be used to notify the internal events of
// the locker.
//
// Returns the created locker.
func NewPlanetLocker(log logger.Logger) *PlanetLocker {
	config := parseConfiguration()

	return &PlanetLocker{
		held:    make(map[string]time.Time),
		timeout: config.Timeout,
		retry:   config.Retry,
		cout:    log,
	}
}

// NewPlanetLockerWithTimings :
// Creates a locker with explicit timings instead of the
// configuration. Mostly used by the tests to exercise the
// busy path without waiting for the full timeout.
//
// The `timeout` defines the maximum wait duration.
//
// The `retry` defines the recheck interval.
//
// The `log` will be used for internal notifications.
//
// Returns the created locker.
func NewPlanetLockerWithTimings(timeout time.Duration, retry time.Duration, log logger.Logger) *PlanetLocker {
	if timeout <= 0 || retry <= 0 {
		panic(fmt.Errorf("invalid locker timings (timeout: %v, retry: %v)", timeout, retry))
	}

	return &PlanetLocker{
		held:    make(map[string]time.Time),
		timeout: timeout,
		retry:   retry,
		cout:    log,
	}
}

// tryAcquire :
// Attempts to mark the input resource as locked.
//
// The `resource` defines the key to lock.
//
// Returns `true` in case the resource was free and is now
// held by the caller.
func (pl *PlanetLocker) tryAcquire(resource string) bool {
	pl.locker.Lock()
	defer pl.locker.Unlock()

	if _, ok := pl.held[resource]; ok {
		return false
	}

	pl.held[resource] = time.Now()

	return true
}

// Acquire :
// Locks the input resource, waiting for it to become free
// when it is currently held by somebody else. The wait is
// bounded: after the configured timeout the acquisition
// gives up and returns `ErrBusy`. The caller must release
// the resource on every path once the mutation is done.
//
// The `resource` defines the key to lock. This is usually
// the identifier of a planet.
//
// Returns `nil` when the resource is now held by the
// caller and `ErrBusy` otherwise.
func (pl *PlanetLocker) Acquire(resource string) error {
	deadline := time.Now().Add(pl.timeout)

	for {
		if pl.tryAcquire(resource) {
			return nil
		}

		if time.Now().After(deadline) {
			pl.cout.Trace(logger.Verbose, "locker", fmt.Sprintf("Could not acquire \"%s\" within %v", resource, pl.timeout))
			return ErrBusy
		}

		time.Sleep(pl.retry)
	}
}

// AcquireAll :
// Locks all the input resources in lexicographic order so
// that two callers locking overlapping sets can never end
// up waiting on each other. On failure every lock already
// acquired is released before returning.
//
// The `resources` define the keys to lock. Duplicates are
// locked only once.
//
// Returns `nil` when all the resources are held by the
// caller.
func (pl *PlanetLocker) AcquireAll(resources []string) error {
	ordered := make([]string, 0, len(resources))
	seen := make(map[string]bool)

	for _, res := range resources {
		if !seen[res] {
			seen[res] = true
			ordered = append(ordered, res)
		}
	}

	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			if ordered[j] < ordered[i] {
				ordered[i], ordered[j] = ordered[j], ordered[i]
			}
		}
	}

	for id, res := range ordered {
		if err := pl.Acquire(res); err != nil {
			for done := 0; done < id; done++ {
				pl.Release(ordered[done])
			}

			return err
		}
	}

	return nil
}

// Release :
// Unlocks the input resource. Releasing a resource that is
// not held is a no-op: this keeps the release safe to call
// from deferred statements on every path.
//
// The `resource` defines the key to unlock.
func (pl *PlanetLocker) Release(resource string) {
	pl.locker.Lock()
	defer pl.locker.Unlock()

	delete(pl.held, resource)
}

// ReleaseAll :
// Unlocks all the input resources.
//
// The `resources` define the keys to unlock.
func (pl *PlanetLocker) ReleaseAll(resources []string) {
	for _, res := range resources {
		pl.Release(res)
	}
}
