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

package pulsar

import (
	"context"
	"time"

	"github.com/apache/pulsar-client-go/pulsar"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/wlifferth/PerfKitBenchmarker/messaging/client"
	"github.com/wlifferth/PerfKitBenchmarker/pkg/config"
)

// Publisher publishes sequence numbered envelopes for the coordinator side.
type Publisher struct {
	client   pulsar.Client
	producer pulsar.Producer
}

// NewPublisher opens a Pulsar producer on the configured topic.
func NewPublisher(cfg *config.PulsarConfig) (*Publisher, error) {
	c, err := pulsar.NewClient(pulsar.ClientOptions{
		URL:               cfg.BrokerURL,
		ConnectionTimeout: cfg.ConnectionTimeout.Duration(),
		OperationTimeout:  cfg.OperationTimeout.Duration(),
		Logger:            NewPulsarLogger(log.L()),
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	producer, err := c.CreateProducer(pulsar.ProducerOptions{
		Topic: cfg.Topic,
	})
	if err != nil {
		c.Close()
		return nil, errors.Trace(err)
	}
	return &Publisher{client: c, producer: producer}, nil
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
	_, err = p.producer.Send(ctx, &pulsar.ProducerMessage{Payload: payload})
	return errors.Trace(err)
}

// Close releases the producer and its client.
func (p *Publisher) Close() error {
	p.producer.Close()
	p.client.Close()
	return nil
}
