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

package coordinator

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/pingcap/errors"
	"github.com/stretchr/testify/require"
	"github.com/wlifferth/PerfKitBenchmarker/messaging/protocol"
)

type fakePublisher struct {
	published  []uint64
	publishErr error
	closed     bool
}

func (p *fakePublisher) Publish(ctx context.Context, seq uint64) error {
	if p.publishErr != nil {
		return p.publishErr
	}
	p.published = append(p.published, seq)
	return nil
}

func (p *fakePublisher) Close() error {
	p.closed = true
	return nil
}

// runFakeWorker emulates the worker side of the protocol: greet once, then
// answer every command with the report produced by respond.
func runFakeWorker(c *Coordinator, respond func(cmd protocol.Consume) protocol.ReceptionReport) chan struct{} {
	in, out := c.WorkerEndpoints()
	done := make(chan struct{})
	go func() {
		defer close(done)
		out <- protocol.Ready{}
		for msg := range in {
			cmd := msg.(protocol.Consume)
			out <- respond(cmd)
		}
	}()
	return done
}

func TestCoordinatorDrivesRounds(t *testing.T) {
	t.Parallel()

	publisher := &fakePublisher{}
	var records bytes.Buffer
	coord := New(publisher, Options{Rounds: 3, RecordWriter: &records})
	workerDone := runFakeWorker(coord, func(cmd protocol.Consume) protocol.ReceptionReport {
		base := int64(cmd.Seq) * 1000
		return protocol.NewReceptionReport(cmd.Seq, base, base+250)
	})

	stats, err := coord.Run(context.Background())
	require.NoError(t, err)
	<-workerDone

	require.Equal(t, []uint64{1, 2, 3}, publisher.published)
	require.Equal(t, 3, stats.Rounds)
	require.Zero(t, stats.Failures)
	require.Equal(t, 750*time.Nanosecond, stats.TotalAckLatency)

	lines := strings.Split(strings.TrimSpace(records.String()), "\n")
	require.Len(t, lines, 3)
	var record LatencyRecord
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &record))
	require.Equal(t, uint64(1), record.Seq)
	require.Equal(t, int64(250), record.AckLatencyNs)
	require.Empty(t, record.Error)
}

func TestCoordinatorRecordsFailures(t *testing.T) {
	t.Parallel()

	publisher := &fakePublisher{}
	var records bytes.Buffer
	coord := New(publisher, Options{Rounds: 2, RecordWriter: &records})
	workerDone := runFakeWorker(coord, func(cmd protocol.Consume) protocol.ReceptionReport {
		if cmd.Seq == 1 {
			return protocol.NewReceptionError(errors.New("pull timeout"))
		}
		return protocol.NewReceptionReport(cmd.Seq, 10, 20)
	})

	stats, err := coord.Run(context.Background())
	require.NoError(t, err)
	<-workerDone

	require.Equal(t, 2, stats.Rounds)
	require.Equal(t, 1, stats.Failures)

	lines := strings.Split(strings.TrimSpace(records.String()), "\n")
	require.Len(t, lines, 2)
	var record LatencyRecord
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &record))
	require.Contains(t, record.Error, "pull timeout")
}

func TestCoordinatorStopsOnPublishFailure(t *testing.T) {
	t.Parallel()

	publisher := &fakePublisher{publishErr: errors.New("broker gone")}
	coord := New(publisher, Options{Rounds: 2})
	workerDone := runFakeWorker(coord, func(cmd protocol.Consume) protocol.ReceptionReport {
		return protocol.NewReceptionReport(cmd.Seq, 10, 20)
	})

	stats, err := coord.Run(context.Background())
	require.ErrorContains(t, err, "broker gone")
	require.Zero(t, stats.Rounds)
	// the command channel is closed on the way out, the worker can exit
	<-workerDone
}

func TestCoordinatorFirstSeqDefaultsToOne(t *testing.T) {
	t.Parallel()

	coord := New(&fakePublisher{}, Options{Rounds: 1})
	require.Equal(t, uint64(1), coord.opts.FirstSeq)
}
