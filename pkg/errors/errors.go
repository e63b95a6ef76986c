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

package errors

import (
	"github.com/pingcap/errors"
)

// errors
var (
	// receiver worker related errors
	ErrReceiverPullTimeout = errors.Normalize(
		"pull timeout, no message with sequence %d arrived before the round deadline",
		errors.RFCCodeText("MSGSVC:ErrReceiverPullTimeout"),
	)
	ErrCoordinatorClosed = errors.Normalize(
		"inbound channel closed by the coordinator",
		errors.RFCCodeText("MSGSVC:ErrCoordinatorClosed"),
	)
	ErrWorkerStopped = errors.Normalize(
		"receiver worker stopped",
		errors.RFCCodeText("MSGSVC:ErrWorkerStopped"),
	)

	// messaging client related errors
	ErrInvalidMessagePayload = errors.Normalize(
		"invalid message payload: %s",
		errors.RFCCodeText("MSGSVC:ErrInvalidMessagePayload"),
	)
	ErrUnsupportedBackend = errors.Normalize(
		"unsupported messaging backend %s",
		errors.RFCCodeText("MSGSVC:ErrUnsupportedBackend"),
	)
	ErrUnsupportedKafkaClient = errors.Normalize(
		"unsupported kafka client type %s",
		errors.RFCCodeText("MSGSVC:ErrUnsupportedKafkaClient"),
	)

	// configuration related errors
	ErrInvalidReceiverConfig = errors.Normalize(
		"invalid receiver configuration: %s",
		errors.RFCCodeText("MSGSVC:ErrInvalidReceiverConfig"),
	)

	// process setup related errors
	ErrCPUAffinityUnsupported = errors.Normalize(
		"CPU affinity is not supported on this platform",
		errors.RFCCodeText("MSGSVC:ErrCPUAffinityUnsupported"),
	)

	// coordinator related errors
	ErrUnexpectedWorkerMessage = errors.Normalize(
		"unexpected message from the receiver worker: %v",
		errors.RFCCodeText("MSGSVC:ErrUnexpectedWorkerMessage"),
	)
	ErrWorkerChannelClosed = errors.Normalize(
		"outbound channel closed by the receiver worker",
		errors.RFCCodeText("MSGSVC:ErrWorkerChannelClosed"),
	)
)

// WrapError wraps an internal error with the given normalized error, unless
// the internal error is nil.
func WrapError(rfcError *errors.Error, err error, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return rfcError.Wrap(err).GenWithStackByArgs(args...)
}
