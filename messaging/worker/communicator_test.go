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
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wlifferth/PerfKitBenchmarker/messaging/protocol"
	cerror "github.com/wlifferth/PerfKitBenchmarker/pkg/errors"
)

func TestCommunicatorGreet(t *testing.T) {
	t.Parallel()

	in := make(chan protocol.Message)
	out := make(chan protocol.Message, 1)
	comm := NewCommunicator(in, out)

	require.NoError(t, comm.Greet(context.Background()))
	require.Equal(t, protocol.Ready{}, <-out)
}

func TestAwaitExpectedCommand(t *testing.T) {
	t.Parallel()

	in := make(chan protocol.Message, 1)
	comm := NewCommunicator(in, make(chan protocol.Message))

	in <- protocol.Consume{Seq: 42}
	cmd, err := Await(context.Background(), comm, protocol.Consume{})
	require.NoError(t, err)
	require.Equal(t, uint64(42), cmd.Seq)
}

func TestAwaitSubstitutesFallback(t *testing.T) {
	t.Parallel()

	in := make(chan protocol.Message, 1)
	comm := NewCommunicator(in, make(chan protocol.Message))

	in <- protocol.AckConsume{}
	cmd, err := Await(context.Background(), comm, protocol.Consume{Seq: 9})
	require.NoError(t, err)
	require.Equal(t, uint64(9), cmd.Seq)
}

func TestAwaitClosedChannel(t *testing.T) {
	t.Parallel()

	in := make(chan protocol.Message)
	close(in)
	comm := NewCommunicator(in, make(chan protocol.Message))

	_, err := Await(context.Background(), comm, protocol.Consume{})
	require.True(t, cerror.ErrCoordinatorClosed.Equal(err))
}

func TestAwaitCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	comm := NewCommunicator(make(chan protocol.Message), make(chan protocol.Message))

	_, err := Await(ctx, comm, protocol.Consume{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestSendCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// nobody receives on the outbound channel, only the context can
	// unblock the send
	out := make(chan protocol.Message)
	comm := NewCommunicator(make(chan protocol.Message), out)

	err := comm.Send(ctx, protocol.Ready{})
	require.ErrorIs(t, err, context.Canceled)
}
