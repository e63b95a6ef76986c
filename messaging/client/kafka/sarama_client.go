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
	"github.com/pingcap/log"
	"github.com/wlifferth/PerfKitBenchmarker/messaging/client"
	"github.com/wlifferth/PerfKitBenchmarker/pkg/config"
	cerror "github.com/wlifferth/PerfKitBenchmarker/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// saramaClient consumes a single partition through sarama and acknowledges
// by committing offsets through the group offset manager.
type saramaClient struct {
	client        sarama.Client
	consumer      sarama.Consumer
	partConsumer  sarama.PartitionConsumer
	offsetManager sarama.OffsetManager
	partOffsets   sarama.PartitionOffsetManager
}

func newSaramaClient(cfg *config.KafkaConfig) (client.Client, error) {
	saramaCfg, err := newSaramaConfig(cfg)
	if err != nil {
		return nil, errors.Trace(err)
	}
	c := &saramaClient{}
	c.client, err = sarama.NewClient(cfg.BrokerEndpoints, saramaCfg)
	if err != nil {
		return nil, errors.Trace(err)
	}
	c.consumer, err = sarama.NewConsumerFromClient(c.client)
	if err != nil {
		return nil, multierr.Append(errors.Trace(err), c.Close())
	}
	c.partConsumer, err = c.consumer.ConsumePartition(cfg.Topic, cfg.Partition, sarama.OffsetNewest)
	if err != nil {
		return nil, multierr.Append(errors.Trace(err), c.Close())
	}
	c.offsetManager, err = sarama.NewOffsetManagerFromClient(cfg.GroupID, c.client)
	if err != nil {
		return nil, multierr.Append(errors.Trace(err), c.Close())
	}
	c.partOffsets, err = c.offsetManager.ManagePartition(cfg.Topic, cfg.Partition)
	if err != nil {
		return nil, multierr.Append(errors.Trace(err), c.Close())
	}
	log.Info("kafka client opened",
		zap.Strings("brokers", cfg.BrokerEndpoints),
		zap.String("topic", cfg.Topic),
		zap.Int32("partition", cfg.Partition),
		zap.String("groupID", cfg.GroupID))
	return c, nil
}

// Pull implements client.Client.
func (c *saramaClient) Pull(ctx context.Context, timeout time.Duration) (client.PullResult, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case msg, ok := <-c.partConsumer.Messages():
		if !ok {
			return client.TimedOut(), cerror.ErrWorkerChannelClosed.GenWithStack("kafka partition consumer closed")
		}
		return client.Delivered(msg), nil
	case <-timer.C:
		return client.TimedOut(), nil
	case <-ctx.Done():
		return client.TimedOut(), errors.Trace(ctx.Err())
	}
}

// Acknowledge implements client.Client.
func (c *saramaClient) Acknowledge(ctx context.Context, msg client.Message) error {
	m, ok := msg.(*sarama.ConsumerMessage)
	if !ok {
		return cerror.ErrInvalidMessagePayload.GenWithStackByArgs("not a sarama consumer message")
	}
	c.partOffsets.MarkOffset(m.Offset+1, "")
	return nil
}

// DecodeSeq implements client.Client.
func (c *saramaClient) DecodeSeq(msg client.Message) (uint64, error) {
	m, ok := msg.(*sarama.ConsumerMessage)
	if !ok {
		return 0, cerror.ErrInvalidMessagePayload.GenWithStackByArgs("not a sarama consumer message")
	}
	envelope, err := client.DecodeEnvelope(m.Value)
	if err != nil {
		return 0, errors.Trace(err)
	}
	return envelope.Seq, nil
}

// Close implements client.Client. It tolerates partially opened clients so
// the constructor can reuse it on its error paths.
func (c *saramaClient) Close() error {
	var err error
	if c.partOffsets != nil {
		err = multierr.Append(err, c.partOffsets.Close())
	}
	if c.offsetManager != nil {
		err = multierr.Append(err, c.offsetManager.Close())
	}
	if c.partConsumer != nil {
		err = multierr.Append(err, c.partConsumer.Close())
	}
	if c.consumer != nil {
		err = multierr.Append(err, c.consumer.Close())
	}
	if c.client != nil {
		err = multierr.Append(err, c.client.Close())
	}
	return errors.Trace(err)
}
