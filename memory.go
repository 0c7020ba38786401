// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sample

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/shirou/gopsutil/v4/mem"
	"golang.org/x/time/rate"
)

// systemMemory is the default MemoryProbe. It reports the used fraction of
// virtual memory for the whole system, not just this process, matching what
// an operator watching the machine would see.
func systemMemory() (float64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return vm.UsedPercent / 100, nil
}

// memoryState caches the last probe reading so that any number of workers can
// evaluate memory conditions without hammering the probe. The limiter bounds
// the probe cadence globally; between readings every caller sees the cached
// value.
type memoryState struct {
	probe   MemoryProbe
	limiter *rate.Limiter
	log     *slog.Logger

	mu     sync.Mutex
	value  float64
	known  bool
	warned bool
}

func newMemoryState(c *config) *memoryState {
	probe := c.probe
	if probe == nil {
		probe = systemMemory
	}
	return &memoryState{
		probe:   probe,
		limiter: rate.NewLimiter(rate.Every(c.probeInterval), 1),
		log:     c.logger,
	}
}

// current returns the most recent memory fraction, probing first if the
// cadence allows. A probe failure before any reading has succeeded is fatal
// to the sampling call, because a configured memory limit could otherwise
// never fire; after a successful reading, failures fall back to the last
// known value with a single warning.
func (m *memoryState) current() (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.limiter.Allow() {
		v, err := m.probe()
		if err != nil {
			if !m.known {
				return 0, fmt.Errorf("sample: memory probe: %w", err)
			}
			if !m.warned {
				m.log.Warn("memory probe failed, keeping last reading", "err", err)
				m.warned = true
			}
		} else {
			m.value = v
			m.known = true
		}
	}
	if !m.known {
		// The first reading was consumed by another worker and failed there;
		// that worker surfaces the error. Report "unknown" meanwhile.
		return -1, nil
	}
	return m.value, nil
}
