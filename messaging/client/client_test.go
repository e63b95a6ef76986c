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

package client

import (
	"testing"

	"github.com/stretchr/testify/require"
	cerror "github.com/wlifferth/PerfKitBenchmarker/pkg/errors"
)

func TestPullResultTagging(t *testing.T) {
	t.Parallel()

	delivered := Delivered("a message")
	require.True(t, delivered.IsDelivered())
	require.Equal(t, "a message", delivered.Message)

	timedOut := TimedOut()
	require.False(t, timedOut.IsDelivered())
	require.Nil(t, timedOut.Message)
}

func TestEnvelopeRoundTrip(t *testing.T) {
	t.Parallel()

	in := &Envelope{Seq: 42, PublishTimestamp: 1700000000000000000}
	payload, err := in.Encode()
	require.NoError(t, err)

	out, err := DecodeEnvelope(payload)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestDecodeEnvelopeGarbage(t *testing.T) {
	t.Parallel()

	_, err := DecodeEnvelope([]byte("not json at all"))
	require.True(t, cerror.ErrInvalidMessagePayload.Equal(err))
}
