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

// Package coordinator owns the channel pair and drives send/receive rounds
// against one receiver worker: publish the next sequence number, command the
// worker to consume it, await the report, record the latency.
package coordinator

import (
	"context"
	"io"
	"time"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/wlifferth/PerfKitBenchmarker/messaging/protocol"
	cerror "github.com/wlifferth/PerfKitBenchmarker/pkg/errors"
	"go.uber.org/zap"
)

// Publisher is the coordinator side capability of the messaging backend.
type Publisher interface {
	Publish(ctx context.Context, seq uint64) error
	Close() error
}

// Options configures a Coordinator.
type Options struct {
	// Rounds is the number of measurement rounds to drive.
	Rounds int
	// FirstSeq is the sequence number of the first round. Defaults to 1.
	FirstSeq uint64
	// RecordWriter receives one JSON latency record per line when set.
	RecordWriter io.Writer
}

// Stats aggregates the outcome of a run.
type Stats struct {
	Rounds          int
	Failures        int
	TotalAckLatency time.Duration
}

// Coordinator drives one receiver worker. The protocol is strictly
// alternating by construction: the next command is only sent after the
// previous round's report arrived.
type Coordinator struct {
	toWorker   chan protocol.Message
	fromWorker chan protocol.Message
	publisher  Publisher
	opts       Options
}

// New creates a Coordinator and its channel pair.
func New(publisher Publisher, opts Options) *Coordinator {
	if opts.FirstSeq == 0 {
		opts.FirstSeq = 1
	}
	return &Coordinator{
		toWorker:   make(chan protocol.Message, 1),
		fromWorker: make(chan protocol.Message, 1),
		publisher:  publisher,
		opts:       opts,
	}
}

// WorkerEndpoints returns the channel endpoints from the worker's point of
// view, for handing to worker.New.
func (c *Coordinator) WorkerEndpoints() (in <-chan protocol.Message, out chan<- protocol.Message) {
	return c.toWorker, c.fromWorker
}

// Run awaits the worker handshake and then drives the configured number of
// rounds. On return the command channel is closed, which terminates an
// unbounded worker blocked on its next command.
func (c *Coordinator) Run(ctx context.Context) (stats *Stats, retErr error) {
	defer close(c.toWorker)

	msg, err := c.await(ctx)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if _, ok := msg.(protocol.Ready); !ok {
		return nil, cerror.ErrUnexpectedWorkerMessage.GenWithStackByArgs(msg)
	}
	log.Info("receiver worker is ready", zap.Int("rounds", c.opts.Rounds))

	stats = &Stats{}
	for i := 0; i < c.opts.Rounds; i++ {
		seq := c.opts.FirstSeq + uint64(i)
		if err := c.publisher.Publish(ctx, seq); err != nil {
			return stats, errors.Trace(err)
		}
		if err := c.send(ctx, protocol.Consume{Seq: seq}); err != nil {
			return stats, errors.Trace(err)
		}
		msg, err := c.await(ctx)
		if err != nil {
			return stats, errors.Trace(err)
		}
		report, ok := msg.(protocol.ReceptionReport)
		if !ok {
			return stats, cerror.ErrUnexpectedWorkerMessage.GenWithStackByArgs(msg)
		}
		if err := c.record(seq, report, stats); err != nil {
			return stats, errors.Trace(err)
		}
	}
	return stats, nil
}

func (c *Coordinator) record(seq uint64, report protocol.ReceptionReport, stats *Stats) error {
	stats.Rounds++
	if report.Failed() {
		stats.Failures++
		log.Warn("reception round failed",
			zap.Uint64("seq", seq), zap.String("error", report.ReceiveError))
	} else {
		ackLatency := time.Duration(report.AckTimestamp - report.ReceiveTimestamp)
		stats.TotalAckLatency += ackLatency
		log.Info("reception round finished",
			zap.Uint64("seq", seq), zap.Duration("ackLatency", ackLatency))
	}
	if c.opts.RecordWriter == nil {
		return nil
	}
	return errors.Trace(appendRecord(c.opts.RecordWriter, newLatencyRecord(report)))
}

func (c *Coordinator) send(ctx context.Context, msg protocol.Message) error {
	select {
	case c.toWorker <- msg:
		return nil
	case <-ctx.Done():
		return errors.Trace(ctx.Err())
	}
}

func (c *Coordinator) await(ctx context.Context) (protocol.Message, error) {
	select {
	case msg, ok := <-c.fromWorker:
		if !ok {
			return nil, cerror.ErrWorkerChannelClosed.GenWithStackByArgs()
		}
		return msg, nil
	case <-ctx.Done():
		return nil, errors.Trace(ctx.Err())
	}
}
