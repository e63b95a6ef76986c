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
	"github.com/goccy/go-json"
	cerror "github.com/wlifferth/PerfKitBenchmarker/pkg/errors"
)

// Envelope is the JSON payload carried by every measurement message. The
// sequence number is what the reception loop filters on.
type Envelope struct {
	Seq uint64 `json:"seq"`
	// PublishTimestamp is the publisher's wall clock in unix nanoseconds,
	// recorded for offline latency analysis only.
	PublishTimestamp int64 `json:"publish_timestamp"`
}

// Encode serializes the envelope into a message payload.
func (e *Envelope) Encode() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, cerror.WrapError(cerror.ErrInvalidMessagePayload, err, "encode envelope")
	}
	return data, nil
}

// DecodeEnvelope parses a message payload back into an envelope.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	e := new(Envelope)
	if err := json.Unmarshal(data, e); err != nil {
		return nil, cerror.WrapError(cerror.ErrInvalidMessagePayload, err, string(data))
	}
	return e, nil
}
