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

// Package worker implements the receiver worker of the end-to-end latency
// measurement: the handshake with the coordinator, the deadline bounded
// consume-and-filter loop, and the mapping from failures to reports.
package worker

import (
	"context"
	"time"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/wlifferth/PerfKitBenchmarker/messaging/client"
	"github.com/wlifferth/PerfKitBenchmarker/messaging/protocol"
	"github.com/wlifferth/PerfKitBenchmarker/pkg/affinity"
	"github.com/wlifferth/PerfKitBenchmarker/pkg/clock"
	"github.com/wlifferth/PerfKitBenchmarker/pkg/config"
	cerror "github.com/wlifferth/PerfKitBenchmarker/pkg/errors"
	"go.uber.org/zap"
)

// Options is the worker's process entry contract.
type Options struct {
	// SerializedConfig is the toml configuration blob handed over by the
	// coordinator. It is applied before any client use.
	SerializedConfig []byte
	// OpenClient opens the messaging backend binding from the decoded
	// configuration. A failure here is fatal to the worker.
	OpenClient func(cfg *config.Config) (client.Client, error)
	// Iterations bounds the number of rounds when positive. Otherwise the
	// loop runs until the coordinator terminates the worker.
	Iterations int
	// PinnedCPUs restricts the worker to the given CPU set. Applied once
	// at start, before any other action.
	PinnedCPUs []int
	// Clock defaults to the real clock. Tests inject a mock.
	Clock clock.Clock
}

// Worker drives the measurement protocol against one messaging backend. It
// is single threaded; the client capability is exclusively owned by the
// worker for its entire lifetime.
type Worker struct {
	comm  *Communicator
	opts  Options
	clock clock.Clock
}

// New constructs a worker from the worker side endpoints of the channel pair.
func New(in <-chan protocol.Message, out chan<- protocol.Message, opts Options) *Worker {
	wclock := opts.Clock
	if wclock == nil {
		wclock = clock.New()
	}
	return &Worker{
		comm:  NewCommunicator(in, out),
		opts:  opts,
		clock: wclock,
	}
}

// Run executes the measurement protocol: greet, then one report per consume
// command until the configured iteration count is exhausted or the
// coordinator terminates the worker. Per-round failures are reported, not
// returned; only setup and teardown failures end the worker's life.
func (w *Worker) Run(ctx context.Context) (retErr error) {
	if len(w.opts.PinnedCPUs) > 0 {
		if err := affinity.Pin(w.opts.PinnedCPUs); err != nil {
			return errors.Trace(err)
		}
		log.Info("receiver worker pinned", zap.Ints("cpus", w.opts.PinnedCPUs))
	}
	cfg, err := config.Decode(w.opts.SerializedConfig)
	if err != nil {
		return errors.Trace(err)
	}
	cli, err := w.opts.OpenClient(cfg)
	if err != nil {
		return errors.Trace(err)
	}
	defer func() {
		if closeErr := cli.Close(); closeErr != nil {
			log.Warn("close messaging client", zap.Error(closeErr))
			if retErr == nil {
				retErr = errors.Trace(closeErr)
			}
		}
	}()

	if err := w.comm.Greet(ctx); err != nil {
		return errors.Trace(err)
	}
	pullTimeout := cfg.PullTimeout.Duration()
	for it := newRounds(w.opts.Iterations); ; {
		round, ok := it.Next()
		if !ok {
			break
		}
		cmd, err := Await(ctx, w.comm, protocol.Consume{})
		if err != nil {
			return errors.Trace(err)
		}
		log.Debug("reception round started",
			zap.Int("round", round), zap.Uint64("seq", cmd.Seq))
		report := w.receiveRound(ctx, cli, cmd.Seq, pullTimeout)
		observeReport(report)
		if err := w.comm.Send(ctx, report); err != nil {
			return errors.Trace(err)
		}
	}
	log.Info("receiver worker finished", zap.Int("iterations", w.opts.Iterations))
	return nil
}

// receiveRound pulls from the backend until the message carrying expectedSeq
// arrives or the round deadline expires. The deadline is shared across all
// pull attempts of the round, so total round latency stays bounded no matter
// how many mismatched messages arrive. Every delivered message is
// acknowledged, matching or not; stale deliveries are drained, never left
// pending.
func (w *Worker) receiveRound(
	ctx context.Context, cli client.Client, expectedSeq uint64, pullTimeout time.Duration,
) protocol.ReceptionReport {
	deadline := w.clock.Now().Add(pullTimeout)
	for {
		budget := deadline.Sub(w.clock.Now())
		if budget < 0 {
			return protocol.NewReceptionError(
				cerror.ErrReceiverPullTimeout.GenWithStackByArgs(expectedSeq))
		}
		result, err := cli.Pull(ctx, budget)
		if err != nil {
			return protocol.NewReceptionError(err)
		}
		if !result.IsDelivered() {
			// the attempt's own timeout elapsed, re-evaluate the deadline
			continue
		}
		receiveTs := w.clock.Mono()
		if err := cli.Acknowledge(ctx, result.Message); err != nil {
			return protocol.NewReceptionError(err)
		}
		ackTs := w.clock.Mono()
		seq, err := cli.DecodeSeq(result.Message)
		if err != nil {
			return protocol.NewReceptionError(err)
		}
		if seq != expectedSeq {
			discardedMessageCounter.Inc()
			log.Debug("discarded out-of-sequence message",
				zap.Uint64("seq", seq), zap.Uint64("expected", expectedSeq))
			continue
		}
		return protocol.NewReceptionReport(expectedSeq, int64(receiveTs), int64(ackTs))
	}
}
