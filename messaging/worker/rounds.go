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

package worker

// rounds lazily yields round indices: exactly limit of them when limit is
// positive, otherwise an unbounded sequence.
type rounds struct {
	limit int
	next  int
}

func newRounds(limit int) *rounds {
	return &rounds{limit: limit}
}

func (r *rounds) Next() (int, bool) {
	if r.limit > 0 && r.next >= r.limit {
		return 0, false
	}
	i := r.next
	r.next++
	return i, true
}
