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

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/pingcap/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wlifferth/PerfKitBenchmarker/messaging/client"
	"github.com/wlifferth/PerfKitBenchmarker/messaging/client/kafka"
	"github.com/wlifferth/PerfKitBenchmarker/messaging/client/pulsar"
	"github.com/wlifferth/PerfKitBenchmarker/messaging/coordinator"
	"github.com/wlifferth/PerfKitBenchmarker/messaging/worker"
	"github.com/wlifferth/PerfKitBenchmarker/pkg/config"
	cerror "github.com/wlifferth/PerfKitBenchmarker/pkg/errors"
	"github.com/wlifferth/PerfKitBenchmarker/pkg/logutil"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	var (
		configFile  string
		backend     string
		brokers     string
		topic       string
		rounds      int
		pullTimeout time.Duration
		outputFile  string
		logFile     string
		logLevel    string
		metricsAddr string
		pinnedCPUs  string
	)
	flag.StringVar(&configFile, "config", "", "receiver config file (toml), overrides the assembling flags")
	flag.StringVar(&backend, "backend", config.BackendKafka, "messaging backend, kafka or pulsar")
	flag.StringVar(&brokers, "brokers", "127.0.0.1:9092", "kafka broker addresses (comma separated) or pulsar service url")
	flag.StringVar(&topic, "topic", "", "topic to measure on, defaults to msgsvc-e2e-<uuid>")
	flag.IntVar(&rounds, "rounds", 100, "number of measurement rounds")
	flag.DurationVar(&pullTimeout, "pull-timeout", 30*time.Second, "per round deadline for receiving the expected message")
	flag.StringVar(&outputFile, "output", "latency-records.jsonl", "output file for latency records (JSONL)")
	flag.StringVar(&logFile, "log-file", "", "log file path, empty to log to stderr")
	flag.StringVar(&logLevel, "log-level", "info", "log level")
	flag.StringVar(&metricsAddr, "metrics-addr", "", "address to serve prometheus metrics on, empty to disable")
	flag.StringVar(&pinnedCPUs, "pin-cpu", "", "CPU ids to pin the receiver worker to (comma separated)")
	flag.Parse()

	err := logutil.InitLogger(&logutil.Config{
		Level: logLevel,
		File:  logFile,
	})
	if err != nil {
		log.Panic("init logger failed", zap.Error(err))
	}

	cfg := buildConfig(configFile, backend, brokers, topic, pullTimeout)
	blob, err := cfg.Marshal()
	if err != nil {
		log.Panic("serialize receiver config failed", zap.Error(err))
	}
	cpus, err := parseCPUList(pinnedCPUs)
	if err != nil {
		log.Panic("invalid -pin-cpu", zap.String("value", pinnedCPUs), zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	worker.InitMetrics(registry)
	if metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				log.Panic("cannot serve metrics", zap.Error(err))
			}
		}()
	}

	output, err := os.Create(outputFile)
	if err != nil {
		log.Panic("cannot create output file", zap.String("path", outputFile), zap.Error(err))
	}
	defer output.Close()

	publisher, err := openPublisher(cfg)
	if err != nil {
		log.Panic("cannot open publisher", zap.Error(err))
	}
	defer publisher.Close()

	coord := coordinator.New(publisher, coordinator.Options{
		Rounds:       rounds,
		RecordWriter: output,
	})
	in, out := coord.WorkerEndpoints()
	receiver := worker.New(in, out, worker.Options{
		SerializedConfig: []byte(blob),
		OpenClient:       openClient,
		Iterations:       rounds,
		PinnedCPUs:       cpus,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigterm := make(chan os.Signal, 1)
	signal.Notify(sigterm, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigterm:
			log.Info("terminating: via signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	var stats *coordinator.Stats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := receiver.Run(gctx)
		if cerror.ErrCoordinatorClosed.Equal(err) {
			// the coordinator finished first and tore the channel down
			return nil
		}
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = coord.Run(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Error("e2e measurement failed", zap.Error(err))
		os.Exit(1)
	}

	avgAckLatency := time.Duration(0)
	if succeeded := stats.Rounds - stats.Failures; succeeded > 0 {
		avgAckLatency = stats.TotalAckLatency / time.Duration(succeeded)
	}
	log.Info("e2e measurement finished",
		zap.Int("rounds", stats.Rounds),
		zap.Int("failures", stats.Failures),
		zap.Duration("avgAckLatency", avgAckLatency),
		zap.String("output", outputFile))
}

// buildConfig loads the receiver config from a file, or assembles it from
// the flags the way the coordinator would before spawning a worker.
func buildConfig(configFile, backend, brokers, topic string, pullTimeout time.Duration) *config.Config {
	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			log.Panic("cannot read config file", zap.String("path", configFile), zap.Error(err))
		}
		cfg, err := config.Decode(data)
		if err != nil {
			log.Panic("invalid config file", zap.String("path", configFile), zap.Error(err))
		}
		return cfg
	}

	if topic == "" {
		topic = fmt.Sprintf("msgsvc-e2e-%s", uuid.New().String())
	}
	cfg := config.GetDefaultConfig()
	cfg.Backend = backend
	cfg.PullTimeout = config.TomlDuration(pullTimeout)
	switch backend {
	case config.BackendKafka:
		cfg.Kafka.BrokerEndpoints = strings.Split(brokers, ",")
		cfg.Kafka.Topic = topic
		cfg.Kafka.GroupID = fmt.Sprintf("msgsvc_receiver_%s", uuid.New().String())
	case config.BackendPulsar:
		cfg.Pulsar.BrokerURL = brokers
		cfg.Pulsar.Topic = topic
		cfg.Pulsar.Subscription = fmt.Sprintf("msgsvc_receiver_%s", uuid.New().String())
	}
	if err := cfg.ValidateAndAdjust(); err != nil {
		log.Panic("invalid configuration", zap.Error(err))
	}
	return cfg
}

func openClient(cfg *config.Config) (client.Client, error) {
	switch cfg.Backend {
	case config.BackendKafka:
		return kafka.New(cfg.Kafka)
	case config.BackendPulsar:
		return pulsar.New(cfg.Pulsar)
	default:
		return nil, cerror.ErrUnsupportedBackend.GenWithStackByArgs(cfg.Backend)
	}
}

func openPublisher(cfg *config.Config) (coordinator.Publisher, error) {
	switch cfg.Backend {
	case config.BackendKafka:
		return kafka.NewPublisher(cfg.Kafka)
	case config.BackendPulsar:
		return pulsar.NewPublisher(cfg.Pulsar)
	default:
		return nil, cerror.ErrUnsupportedBackend.GenWithStackByArgs(cfg.Backend)
	}
}

func parseCPUList(value string) ([]int, error) {
	if value == "" {
		return nil, nil
	}
	var cpus []int
	for _, part := range strings.Split(value, ",") {
		cpu, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		cpus = append(cpus, cpu)
	}
	return cpus, nil
}
