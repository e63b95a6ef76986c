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

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	cerror "github.com/wlifferth/PerfKitBenchmarker/pkg/errors"
)

func TestDecodeFillsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Decode([]byte(`
backend = "kafka"

[kafka]
broker-endpoints = ["broker-1:9092", "broker-2:9092"]
topic = "latency-test"
`))
	require.NoError(t, err)
	require.Equal(t, BackendKafka, cfg.Backend)
	require.Equal(t, 30*time.Second, cfg.PullTimeout.Duration())
	require.Equal(t, "msgsvc-receiver", cfg.Kafka.GroupID)
	require.Equal(t, KafkaClientSarama, cfg.Kafka.Client)
	require.Equal(t, 10*time.Second, cfg.Kafka.DialTimeout.Duration())
}

func TestDecodeDurations(t *testing.T) {
	t.Parallel()

	cfg, err := Decode([]byte(`
backend = "pulsar"
pull-timeout = "1m30s"

[pulsar]
broker-url = "pulsar://localhost:6650"
topic = "latency-test"
connection-timeout = "2s"
`))
	require.NoError(t, err)
	require.Equal(t, 90*time.Second, cfg.PullTimeout.Duration())
	require.Equal(t, 2*time.Second, cfg.Pulsar.ConnectionTimeout.Duration())
	require.Equal(t, 30*time.Second, cfg.Pulsar.OperationTimeout.Duration())
}

func TestDecodeRejectsUnknownBackend(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte(`backend = "carrier-pigeon"`))
	require.True(t, cerror.ErrUnsupportedBackend.Equal(err))
}

func TestDecodeRejectsIncompleteKafka(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte(`
backend = "kafka"

[kafka]
broker-endpoints = ["broker-1:9092"]
`))
	require.True(t, cerror.ErrInvalidReceiverConfig.Equal(err))
	require.Contains(t, err.Error(), "topic")
}

func TestDecodeRejectsUnknownKafkaClient(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte(`
backend = "kafka"

[kafka]
broker-endpoints = ["broker-1:9092"]
topic = "latency-test"
client = "franz"
`))
	require.True(t, cerror.ErrUnsupportedKafkaClient.Equal(err))
}

func TestMarshalRoundTrip(t *testing.T) {
	t.Parallel()

	cfg := GetDefaultConfig()
	cfg.Backend = BackendPulsar
	cfg.PullTimeout = TomlDuration(45 * time.Second)
	cfg.Pulsar.BrokerURL = "pulsar://localhost:6650"
	cfg.Pulsar.Topic = "latency-test"
	require.NoError(t, cfg.ValidateAndAdjust())

	blob, err := cfg.Marshal()
	require.NoError(t, err)

	decoded, err := Decode([]byte(blob))
	require.NoError(t, err)
	require.Equal(t, cfg.Backend, decoded.Backend)
	require.Equal(t, cfg.PullTimeout, decoded.PullTimeout)
	require.Equal(t, cfg.Pulsar, decoded.Pulsar)
}
