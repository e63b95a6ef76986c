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

// Package pulsar binds the messaging client capability to Apache Pulsar.
package pulsar

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/apache/pulsar-client-go/pulsar"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/wlifferth/PerfKitBenchmarker/messaging/client"
	"github.com/wlifferth/PerfKitBenchmarker/pkg/config"
	cerror "github.com/wlifferth/PerfKitBenchmarker/pkg/errors"
	"go.uber.org/zap"
)

type pulsarClient struct {
	client   pulsar.Client
	consumer pulsar.Consumer
}

// New opens a Pulsar client with an exclusive subscription on the configured
// topic.
func New(cfg *config.PulsarConfig) (client.Client, error) {
	c, err := pulsar.NewClient(pulsar.ClientOptions{
		URL:               cfg.BrokerURL,
		ConnectionTimeout: cfg.ConnectionTimeout.Duration(),
		OperationTimeout:  cfg.OperationTimeout.Duration(),
		Logger:            NewPulsarLogger(log.L()),
	})
	if err != nil {
		return nil, errors.Trace(err)
	}
	consumer, err := c.Subscribe(pulsar.ConsumerOptions{
		Topic:            cfg.Topic,
		SubscriptionName: cfg.Subscription,
		Type:             pulsar.Exclusive,
	})
	if err != nil {
		c.Close()
		return nil, errors.Trace(err)
	}
	log.Info("pulsar client opened",
		zap.String("url", cfg.BrokerURL),
		zap.String("topic", cfg.Topic),
		zap.String("subscription", cfg.Subscription))
	return &pulsarClient{client: c, consumer: consumer}, nil
}

// Pull implements client.Client.
func (c *pulsarClient) Pull(ctx context.Context, timeout time.Duration) (client.PullResult, error) {
	receiveCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	msg, err := c.consumer.Receive(receiveCtx)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return client.TimedOut(), nil
		}
		return client.TimedOut(), errors.Trace(err)
	}
	return client.Delivered(msg), nil
}

// Acknowledge implements client.Client.
func (c *pulsarClient) Acknowledge(ctx context.Context, msg client.Message) error {
	m, ok := msg.(pulsar.Message)
	if !ok {
		return cerror.ErrInvalidMessagePayload.GenWithStackByArgs("not a pulsar message")
	}
	return errors.Trace(c.consumer.Ack(m))
}

// DecodeSeq implements client.Client.
func (c *pulsarClient) DecodeSeq(msg client.Message) (uint64, error) {
	m, ok := msg.(pulsar.Message)
	if !ok {
		return 0, cerror.ErrInvalidMessagePayload.GenWithStackByArgs("not a pulsar message")
	}
	envelope, err := client.DecodeEnvelope(m.Payload())
	if err != nil {
		return 0, errors.Trace(err)
	}
	return envelope.Seq, nil
}

// Close implements client.Client.
func (c *pulsarClient) Close() error {
	c.consumer.Close()
	c.client.Close()
	return nil
}
