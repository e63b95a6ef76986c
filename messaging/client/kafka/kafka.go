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

// Package kafka binds the messaging client capability to Kafka. Two
// implementations are provided, one on sarama and one on kafka-go, selected
// by the `client` config key.
package kafka

import (
	"github.com/IBM/sarama"
	"github.com/wlifferth/PerfKitBenchmarker/messaging/client"
	"github.com/wlifferth/PerfKitBenchmarker/pkg/config"
	cerror "github.com/wlifferth/PerfKitBenchmarker/pkg/errors"
)

// New opens the configured Kafka client implementation.
func New(cfg *config.KafkaConfig) (client.Client, error) {
	switch cfg.Client {
	case config.KafkaClientSarama:
		return newSaramaClient(cfg)
	case config.KafkaClientKafkaGo:
		return newKafkaGoClient(cfg), nil
	default:
		return nil, cerror.ErrUnsupportedKafkaClient.GenWithStackByArgs(cfg.Client)
	}
}

// newSaramaConfig returns the sarama config shared by the consumer and the
// producer side.
func newSaramaConfig(cfg *config.KafkaConfig) (*sarama.Config, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.ClientID = "msgsvc-receiver"

	version, err := sarama.ParseKafkaVersion(cfg.Version)
	if err != nil {
		return nil, cerror.WrapError(cerror.ErrInvalidReceiverConfig, err, "kafka version")
	}
	saramaCfg.Version = version
	saramaCfg.Net.DialTimeout = cfg.DialTimeout.Duration()

	saramaCfg.Consumer.Return.Errors = false
	saramaCfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaCfg.Consumer.Offsets.AutoCommit.Enable = true
	return saramaCfg, nil
}
