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

package protocol

import (
	"testing"

	"github.com/pingcap/errors"
	"github.com/stretchr/testify/require"
)

func TestReceptionReportShape(t *testing.T) {
	t.Parallel()

	success := NewReceptionReport(7, 100, 150)
	require.False(t, success.Failed())
	require.Equal(t, uint64(7), success.Seq)
	require.Equal(t, int64(100), success.ReceiveTimestamp)
	require.Equal(t, int64(150), success.AckTimestamp)
	require.Empty(t, success.ReceiveError)

	failure := NewReceptionError(errors.New("backend exploded"))
	require.True(t, failure.Failed())
	require.Equal(t, "backend exploded", failure.ReceiveError)
	require.Zero(t, failure.Seq)
	require.Zero(t, failure.ReceiveTimestamp)
	require.Zero(t, failure.AckTimestamp)
}

func TestReceptionReportString(t *testing.T) {
	t.Parallel()

	require.Contains(t, NewReceptionReport(7, 100, 150).String(), "seq: 7")
	require.Contains(t, NewReceptionError(errors.New("boom")).String(), "boom")
}
