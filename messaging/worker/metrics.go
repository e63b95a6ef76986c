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
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/wlifferth/PerfKitBenchmarker/messaging/protocol"
)

var (
	roundsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "msgsvc",
			Subsystem: "receiver",
			Name:      "rounds_total",
			Help:      "Counter of finished reception rounds per result.",
		}, []string{"result"})
	discardedMessageCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "msgsvc",
			Subsystem: "receiver",
			Name:      "discarded_messages_total",
			Help:      "Counter of acknowledged messages discarded for carrying an out-of-sequence number.",
		})
	ackLatencyHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "msgsvc",
			Subsystem: "receiver",
			Name:      "ack_latency_seconds",
			Help:      "Histogram of receive-to-acknowledge latency of matched messages.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 18),
		})
)

// InitMetrics registers all metrics in this package.
func InitMetrics(registry *prometheus.Registry) {
	registry.MustRegister(roundsCounter)
	registry.MustRegister(discardedMessageCounter)
	registry.MustRegister(ackLatencyHistogram)
}

func observeReport(report protocol.ReceptionReport) {
	if report.Failed() {
		roundsCounter.WithLabelValues("failure").Inc()
		return
	}
	roundsCounter.WithLabelValues("success").Inc()
	ackLatencyHistogram.Observe(
		time.Duration(report.AckTimestamp - report.ReceiveTimestamp).Seconds())
}
