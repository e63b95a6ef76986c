// Copyright 2024 PingCAP, Inc.
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

//go:build linux

package affinity

import (
	"github.com/pingcap/errors"
	"golang.org/x/sys/unix"
)

// Pin restricts the calling process to the given CPU set. It must be called
// once at startup, before any other work.
func Pin(cpus []int) error {
	var set unix.CPUSet
	set.Zero()
	for _, cpu := range cpus {
		set.Set(cpu)
	}
	return errors.Trace(unix.SchedSetaffinity(0, &set))
}
