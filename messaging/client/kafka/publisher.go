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

package kafka

import (
	"context"
	"time"

	"github.com/IBM/sarama"
	"github.com/pingcap/errors"
	"github.com/wlifferth/PerfKitBenchmarker/messaging/client"
	"github.com/wlifferth/PerfKitBenchmarker/pkg/config"
)

// Publisher publishes sequence numbered envelopes for the coordinator side.
// The receiver core never publishes.
type Publisher struct {
	producer  sarama.SyncProducer
	topic     string
	partition int32
}

// NewPublisher opens a synchronous Kafka producer.
func NewPublisher(cfg *config.KafkaConfig) (*Publisher, error) {
	saramaCfg, err := newSaramaConfig(cfg)
	if err != nil {
		return nil, errors.Trace(err)
	}
	saramaCfg.Producer.Return.Successes = true
	saramaCfg.Producer.RequiredAcks = sarama.WaitForAll
	saramaCfg.Producer.Partitioner = sarama.NewManualPartitioner

	producer, err := sarama.NewSyncProducer(cfg.BrokerEndpoints, saramaCfg)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &Publisher{
		producer:  producer,
		topic:     cfg.Topic,
		partition: cfg.Partition,
	}, nil
}

// Publish sends one envelope carrying seq and returns once the broker has
// accepted it.
func (p *Publisher) Publish(ctx context.Context, seq uint64) error {
	envelope := &client.Envelope{
		Seq:              seq,
		PublishTimestamp: time.Now().UnixNano(),
	}
	payload, err := envelope.Encode()
	if err != nil {
		return errors.Trace(err)
	}
	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic:     p.topic,
		Partition: p.partition,
		Value:     sarama.ByteEncoder(payload),
	})
	return errors.Trace(err)
}

// Close releases the producer.
func (p *Publisher) Close() error {
	return errors.Trace(p.producer.Close())
}
