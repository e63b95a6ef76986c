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
	stderrors "errors"
	"time"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/wlifferth/PerfKitBenchmarker/messaging/client"
	"github.com/wlifferth/PerfKitBenchmarker/pkg/config"
	cerror "github.com/wlifferth/PerfKitBenchmarker/pkg/errors"
	"go.uber.org/zap"
)

// kafkaGoClient consumes through a kafka-go group reader and acknowledges by
// committing the delivered message.
type kafkaGoClient struct {
	reader *kafkago.Reader
}

func newKafkaGoClient(cfg *config.KafkaConfig) client.Client {
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers: cfg.BrokerEndpoints,
		GroupID: cfg.GroupID,
		Topic:   cfg.Topic,
		Dialer: &kafkago.Dialer{
			Timeout:   cfg.DialTimeout.Duration(),
			DualStack: true,
		},
	})
	log.Info("kafka-go client opened",
		zap.Strings("brokers", cfg.BrokerEndpoints),
		zap.String("topic", cfg.Topic),
		zap.String("groupID", cfg.GroupID))
	return &kafkaGoClient{reader: reader}
}

// Pull implements client.Client.
func (c *kafkaGoClient) Pull(ctx context.Context, timeout time.Duration) (client.PullResult, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	msg, err := c.reader.FetchMessage(fetchCtx)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return client.TimedOut(), nil
		}
		return client.TimedOut(), errors.Trace(err)
	}
	return client.Delivered(msg), nil
}

// Acknowledge implements client.Client.
func (c *kafkaGoClient) Acknowledge(ctx context.Context, msg client.Message) error {
	m, ok := msg.(kafkago.Message)
	if !ok {
		return cerror.ErrInvalidMessagePayload.GenWithStackByArgs("not a kafka-go message")
	}
	return errors.Trace(c.reader.CommitMessages(ctx, m))
}

// DecodeSeq implements client.Client.
func (c *kafkaGoClient) DecodeSeq(msg client.Message) (uint64, error) {
	m, ok := msg.(kafkago.Message)
	if !ok {
		return 0, cerror.ErrInvalidMessagePayload.GenWithStackByArgs("not a kafka-go message")
	}
	envelope, err := client.DecodeEnvelope(m.Value)
	if err != nil {
		return 0, errors.Trace(err)
	}
	return envelope.Seq, nil
}

// Close implements client.Client.
func (c *kafkaGoClient) Close() error {
	return errors.Trace(c.reader.Close())
}
