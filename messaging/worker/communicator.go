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

import (
	"context"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/wlifferth/PerfKitBenchmarker/messaging/protocol"
	cerror "github.com/wlifferth/PerfKitBenchmarker/pkg/errors"
	"go.uber.org/zap"
)

// Communicator is the strictly alternating request/response transport
// between one worker and its coordinator, layered over the two
// unidirectional channels of the pair. It performs no retries and no framing
// beyond one value per channel operation.
type Communicator struct {
	in  <-chan protocol.Message
	out chan<- protocol.Message
}

// NewCommunicator wraps the worker side endpoints of the channel pair.
func NewCommunicator(in <-chan protocol.Message, out chan<- protocol.Message) *Communicator {
	return &Communicator{in: in, out: out}
}

// Greet sends the handshake acknowledgment. It is called once,
// unconditionally, before the reception loop starts; no response is awaited.
func (c *Communicator) Greet(ctx context.Context) error {
	return c.Send(ctx, protocol.Ready{})
}

// Send writes one value to the outbound channel and returns once the write
// is accepted.
func (c *Communicator) Send(ctx context.Context, msg protocol.Message) error {
	select {
	case c.out <- msg:
		return nil
	case <-ctx.Done():
		return errors.Trace(ctx.Err())
	}
}

// Await blocks until a value arrives on the inbound channel. A value of an
// unexpected concrete type is replaced by the supplied fallback instead of
// failing, so the protocol can evolve without breaking older workers. The
// wait itself is unbounded; the error return fires only on the out-of-band
// termination paths (context cancellation, inbound channel closed).
func Await[T protocol.Message](ctx context.Context, c *Communicator, fallback T) (T, error) {
	select {
	case msg, ok := <-c.in:
		if !ok {
			return fallback, cerror.ErrCoordinatorClosed.GenWithStackByArgs()
		}
		expected, ok := msg.(T)
		if !ok {
			log.Warn("unexpected command from the coordinator, substituting fallback",
				zap.Any("received", msg),
				zap.Any("fallback", fallback))
			return fallback, nil
		}
		return expected, nil
	case <-ctx.Done():
		return fallback, errors.Trace(ctx.Err())
	}
}
