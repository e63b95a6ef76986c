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

// Package client defines the messaging backend capability required by the
// receiver worker. Concrete bindings live in the sub packages.
package client

import (
	"context"
	"time"
)

// Message is an opaque broker message. Bindings type assert their own
// message representation back out of it.
type Message any

// PullResult is the tagged outcome of one pull attempt: either a message was
// delivered, or the attempt timed out without one.
type PullResult struct {
	Message   Message
	delivered bool
}

// Delivered wraps a delivered message into a PullResult.
func Delivered(msg Message) PullResult {
	return PullResult{Message: msg, delivered: true}
}

// TimedOut is the PullResult of an attempt that saw no message before its
// timeout elapsed.
func TimedOut() PullResult {
	return PullResult{}
}

// IsDelivered reports whether the attempt produced a message.
func (r PullResult) IsDelivered() bool {
	return r.delivered
}

// Client is the receiver side capability of a messaging backend. It is owned
// by exactly one worker and is not safe for concurrent use.
type Client interface {
	// Pull attempts to receive one message. The timeout is an upper bound
	// on the attempt, not a minimum. A timed out attempt is not an error.
	Pull(ctx context.Context, timeout time.Duration) (PullResult, error)
	// Acknowledge acknowledges a delivered message. Every delivered
	// message must be acknowledged exactly once.
	Acknowledge(ctx context.Context, msg Message) error
	// DecodeSeq extracts the sequence number a message carries.
	DecodeSeq(msg Message) (uint64, error)
	// Close releases the backend resources. The worker closes the client
	// on every exit path.
	Close() error
}
