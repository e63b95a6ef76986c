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
	"bytes"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pingcap/errors"
	cerror "github.com/wlifferth/PerfKitBenchmarker/pkg/errors"
)

// Messaging backend types.
const (
	BackendKafka  = "kafka"
	BackendPulsar = "pulsar"
)

// Kafka client implementations.
const (
	KafkaClientSarama  = "sarama"
	KafkaClientKafkaGo = "kafka-go"
)

const (
	defaultPullTimeout = 30 * time.Second

	defaultKafkaVersion     = "2.4.0"
	defaultKafkaGroupID     = "msgsvc-receiver"
	defaultKafkaDialTimeout = 10 * time.Second

	defaultPulsarSubscription      = "msgsvc-receiver"
	defaultPulsarConnectionTimeout = 5 * time.Second
	defaultPulsarOperationTimeout  = 30 * time.Second
)

// Config is the receiver worker configuration. It is what the coordinator
// serializes into the configuration blob handed to the worker process.
type Config struct {
	Backend string `toml:"backend" json:"backend"`
	// PullTimeout bounds the total wait time of one reception round across
	// all pull attempts.
	PullTimeout TomlDuration  `toml:"pull-timeout" json:"pull-timeout"`
	Kafka       *KafkaConfig  `toml:"kafka" json:"kafka"`
	Pulsar      *PulsarConfig `toml:"pulsar" json:"pulsar"`
}

// KafkaConfig configs the Kafka binding of the messaging client.
type KafkaConfig struct {
	BrokerEndpoints []string     `toml:"broker-endpoints" json:"broker-endpoints"`
	Topic           string       `toml:"topic" json:"topic"`
	GroupID         string       `toml:"group-id" json:"group-id"`
	Partition       int32        `toml:"partition" json:"partition"`
	Version         string       `toml:"version" json:"version"`
	Client          string       `toml:"client" json:"client"`
	DialTimeout     TomlDuration `toml:"dial-timeout" json:"dial-timeout"`
}

// PulsarConfig configs the Pulsar binding of the messaging client.
type PulsarConfig struct {
	BrokerURL         string       `toml:"broker-url" json:"broker-url"`
	Topic             string       `toml:"topic" json:"topic"`
	Subscription      string       `toml:"subscription" json:"subscription"`
	ConnectionTimeout TomlDuration `toml:"connection-timeout" json:"connection-timeout"`
	OperationTimeout  TomlDuration `toml:"operation-timeout" json:"operation-timeout"`
}

// GetDefaultConfig returns the default configuration.
func GetDefaultConfig() *Config {
	return &Config{
		Backend:     BackendKafka,
		PullTimeout: TomlDuration(defaultPullTimeout),
		Kafka: &KafkaConfig{
			GroupID:     defaultKafkaGroupID,
			Version:     defaultKafkaVersion,
			Client:      KafkaClientSarama,
			DialTimeout: TomlDuration(defaultKafkaDialTimeout),
		},
		Pulsar: &PulsarConfig{
			Subscription:      defaultPulsarSubscription,
			ConnectionTimeout: TomlDuration(defaultPulsarConnectionTimeout),
			OperationTimeout:  TomlDuration(defaultPulsarOperationTimeout),
		},
	}
}

// Decode parses a serialized configuration blob, fills in defaults and
// validates the result. It must be applied before any client use.
func Decode(data []byte) (*Config, error) {
	cfg := GetDefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, cerror.WrapError(cerror.ErrInvalidReceiverConfig, err, "parse toml")
	}
	if err := cfg.ValidateAndAdjust(); err != nil {
		return nil, errors.Trace(err)
	}
	return cfg, nil
}

// Marshal serializes the configuration into a toml blob.
func (c *Config) Marshal() (string, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return "", cerror.WrapError(cerror.ErrInvalidReceiverConfig, err, "encode toml")
	}
	return buf.String(), nil
}

// ValidateAndAdjust validates the config and fills in default values.
func (c *Config) ValidateAndAdjust() error {
	if c.PullTimeout <= 0 {
		c.PullTimeout = TomlDuration(defaultPullTimeout)
	}
	switch c.Backend {
	case BackendKafka:
		return c.Kafka.validateAndAdjust()
	case BackendPulsar:
		return c.Pulsar.validateAndAdjust()
	default:
		return cerror.ErrUnsupportedBackend.GenWithStackByArgs(c.Backend)
	}
}

func (c *KafkaConfig) validateAndAdjust() error {
	if c == nil || len(c.BrokerEndpoints) == 0 {
		return cerror.ErrInvalidReceiverConfig.GenWithStackByArgs("kafka broker endpoints not set")
	}
	if c.Topic == "" {
		return cerror.ErrInvalidReceiverConfig.GenWithStackByArgs("kafka topic not set")
	}
	if c.GroupID == "" {
		c.GroupID = defaultKafkaGroupID
	}
	if c.Version == "" {
		c.Version = defaultKafkaVersion
	}
	switch c.Client {
	case "":
		c.Client = KafkaClientSarama
	case KafkaClientSarama, KafkaClientKafkaGo:
	default:
		return cerror.ErrUnsupportedKafkaClient.GenWithStackByArgs(c.Client)
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = TomlDuration(defaultKafkaDialTimeout)
	}
	return nil
}

func (c *PulsarConfig) validateAndAdjust() error {
	if c == nil || c.BrokerURL == "" {
		return cerror.ErrInvalidReceiverConfig.GenWithStackByArgs("pulsar broker url not set")
	}
	if c.Topic == "" {
		return cerror.ErrInvalidReceiverConfig.GenWithStackByArgs("pulsar topic not set")
	}
	if c.Subscription == "" {
		c.Subscription = defaultPulsarSubscription
	}
	if c.ConnectionTimeout <= 0 {
		c.ConnectionTimeout = TomlDuration(defaultPulsarConnectionTimeout)
	}
	if c.OperationTimeout <= 0 {
		c.OperationTimeout = TomlDuration(defaultPulsarOperationTimeout)
	}
	return nil
}

// TomlDuration is a duration with a custom json/text decoder. The text
// representation is the one accepted by time.ParseDuration.
type TomlDuration time.Duration

// UnmarshalText is used by toml decoding.
func (d *TomlDuration) UnmarshalText(text []byte) error {
	stdDuration, err := time.ParseDuration(string(text))
	if err != nil {
		return errors.Trace(err)
	}
	*d = TomlDuration(stdDuration)
	return nil
}

// MarshalText is used by toml encoding.
func (d TomlDuration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the standard library representation.
func (d TomlDuration) Duration() time.Duration {
	return time.Duration(d)
}
