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

// Package protocol defines the values exchanged between the coordinator and
// the receiver worker over the channel pair. Each channel operation carries
// exactly one of these values.
package protocol

import "fmt"

// Message is implemented by every value exchanged between the coordinator
// and the receiver worker.
type Message interface {
	protocolMessage()
}

// Ready is the handshake acknowledgment the worker sends once at startup,
// before entering its reception loop. It carries no payload.
type Ready struct{}

// Consume commands the worker to pull from the backend until it receives the
// message carrying Seq, or until the round deadline expires.
type Consume struct {
	Seq uint64
}

// AckConsume acknowledges a Consume command without carrying a result. It is
// kept so the protocol can evolve without breaking older workers.
type AckConsume struct{}

// ReceptionReport describes the outcome of one reception round. It is either
// success shaped (timestamps set, ReceiveError empty) or failure shaped
// (ReceiveError set), never both. Use the constructors below to keep that
// invariant.
type ReceptionReport struct {
	Seq uint64
	// ReceiveTimestamp and AckTimestamp are monotonic, nanosecond
	// resolution readings taken on the worker.
	ReceiveTimestamp int64
	AckTimestamp     int64
	ReceiveError     string
}

// NewReceptionReport builds a success shaped report.
func NewReceptionReport(seq uint64, receiveTs, ackTs int64) ReceptionReport {
	return ReceptionReport{
		Seq:              seq,
		ReceiveTimestamp: receiveTs,
		AckTimestamp:     ackTs,
	}
}

// NewReceptionError builds a failure shaped report from the given error.
func NewReceptionError(err error) ReceptionReport {
	return ReceptionReport{ReceiveError: err.Error()}
}

// Failed reports whether the round failed.
func (r ReceptionReport) Failed() bool {
	return r.ReceiveError != ""
}

// String implements fmt.Stringer.
func (r ReceptionReport) String() string {
	if r.Failed() {
		return fmt.Sprintf("ReceptionReport{error: %s}", r.ReceiveError)
	}
	return fmt.Sprintf("ReceptionReport{seq: %d, receive: %d, ack: %d}",
		r.Seq, r.ReceiveTimestamp, r.AckTimestamp)
}

func (Ready) protocolMessage()           {}
func (Consume) protocolMessage()         {}
func (AckConsume) protocolMessage()      {}
func (ReceptionReport) protocolMessage() {}
