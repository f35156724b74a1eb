// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"sync"
	"time"
)

// rateLimiter enforces a fixed request budget per client address over a
// sliding window. Hits that have aged out of the window are discarded the
// next time the address is seen.
type rateLimiter struct {
	sync.Mutex
	limit  int
	period time.Duration
	hits   map[string][]int64
}

// apply records a request from the given client address and returns whether
// the address is still within its request budget.
func (l *rateLimiter) apply(addr string) bool {
	l.Lock()
	defer l.Unlock()

	timestamps := filterTimestamps(l.hits[addr], l.period)
	if len(timestamps) >= l.limit {
		l.hits[addr] = timestamps
		return false
	}

	l.hits[addr] = append(timestamps, time.Now().Unix())
	return true
}

// filterTimestamps filters out timestamps from the passed in slice that come
// before the specified delta time duration.
func filterTimestamps(in []int64, delta time.Duration) []int64 {
	before := time.Now().Add(-delta)
	out := make([]int64, 0, len(in))

	for _, ts := range in {
		timestamp := time.Unix(ts, 0)
		if timestamp.Before(before) {
			continue
		}
		out = append(out, ts)
	}

	return out
}

// newRateLimiter returns a new rateLimiter context.
func newRateLimiter(limit int, period time.Duration) *rateLimiter {
	return &rateLimiter{
		limit:  limit,
		period: period,
		hits:   make(map[string][]int64),
	}
}
