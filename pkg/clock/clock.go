// Copyright 2023 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package clock

import (
	"time"

	bclock "github.com/benbjohnson/clock"
	"github.com/gavv/monotime"
)

type (
	// Timer is an alias to the underlying clock library's Timer.
	Timer = bclock.Timer
	// MonotonicTime is the monotonic time elapsed since an arbitrary fixed
	// point, with nanosecond resolution.
	MonotonicTime time.Duration
)

var unixEpoch = time.Unix(0, 0)

// Clock provides the wall-clock reads used for round deadlines and the
// monotonic reads used for receive/acknowledge timestamps.
type Clock interface {
	bclock.Clock
	Mono() MonotonicTime
}

type withRealMono struct {
	bclock.Clock
}

func (r withRealMono) Mono() MonotonicTime {
	return MonotonicTime(monotime.Now())
}

// Mock is a mocked clock for test usage.
type Mock struct {
	*bclock.Mock
}

// Mono implements Clock.Mono.
func (r Mock) Mono() MonotonicTime {
	return MonotonicTime(r.Now().Sub(unixEpoch))
}

// New returns a real clock.
func New() Clock {
	return withRealMono{bclock.New()}
}

// NewMock returns a mocked clock whose readings only move when Add is called.
func NewMock() *Mock {
	return &Mock{bclock.NewMock()}
}

// Sub returns the duration m-other.
func (m MonotonicTime) Sub(other MonotonicTime) time.Duration {
	return time.Duration(m - other)
}
