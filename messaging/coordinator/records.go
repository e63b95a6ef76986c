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
	"io"

	"github.com/goccy/go-json"
	"github.com/pingcap/errors"
	"github.com/wlifferth/PerfKitBenchmarker/messaging/protocol"
)

// LatencyRecord is the JSONL line written per round, one record per line.
type LatencyRecord struct {
	Seq              uint64 `json:"seq"`
	ReceiveTimestamp int64  `json:"receive_timestamp"`
	AckTimestamp     int64  `json:"ack_timestamp"`
	AckLatencyNs     int64  `json:"ack_latency_ns"`
	Error            string `json:"error,omitempty"`
}

func newLatencyRecord(report protocol.ReceptionReport) LatencyRecord {
	if report.Failed() {
		return LatencyRecord{Error: report.ReceiveError}
	}
	return LatencyRecord{
		Seq:              report.Seq,
		ReceiveTimestamp: report.ReceiveTimestamp,
		AckTimestamp:     report.AckTimestamp,
		AckLatencyNs:     report.AckTimestamp - report.ReceiveTimestamp,
	}
}

func appendRecord(w io.Writer, record LatencyRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return errors.Trace(err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return errors.Trace(err)
	}
	return nil
}
