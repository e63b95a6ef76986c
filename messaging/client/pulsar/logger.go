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
	"github.com/apache/pulsar-client-go/pulsar/log"
	"go.uber.org/zap"
)

// Logger adapts the global zap logger to the pulsar client's logger
// interface, so the client's internal logging lands in the worker log.
type Logger struct {
	zapLogger *zap.Logger
}

// NewPulsarLogger wraps a zap logger for the pulsar client.
func NewPulsarLogger(base *zap.Logger) *Logger {
	return &Logger{
		zapLogger: base.WithOptions(zap.AddCallerSkip(1)),
	}
}

// SubLogger returns a logger annotated with the given fields.
func (p *Logger) SubLogger(pulsarFields log.Fields) log.Logger {
	zapFields := make([]zap.Field, 0, len(pulsarFields))
	for k, v := range pulsarFields {
		zapFields = append(zapFields, zap.Any(k, v))
	}
	return &Logger{p.zapLogger.With(zapFields...)}
}

// WithFields implements log.Logger.
func (p *Logger) WithFields(fields log.Fields) log.Entry {
	return p.SubLogger(fields)
}

// WithField implements log.Logger.
func (p *Logger) WithField(name string, value interface{}) log.Entry {
	return &Logger{p.zapLogger.With(zap.Any(name, value))}
}

// WithError implements log.Logger.
func (p *Logger) WithError(err error) log.Entry {
	return &Logger{p.zapLogger.With(zap.Error(err))}
}

// Debug implements log.Logger.
func (p *Logger) Debug(args ...interface{}) {
	p.zapLogger.Sugar().Debug(args...)
}

// Info implements log.Logger.
func (p *Logger) Info(args ...interface{}) {
	p.zapLogger.Sugar().Info(args...)
}

// Warn implements log.Logger.
func (p *Logger) Warn(args ...interface{}) {
	p.zapLogger.Sugar().Warn(args...)
}

// Error implements log.Logger.
func (p *Logger) Error(args ...interface{}) {
	p.zapLogger.Sugar().Error(args...)
}

// Debugf implements log.Logger.
func (p *Logger) Debugf(format string, args ...interface{}) {
	p.zapLogger.Sugar().Debugf(format, args...)
}

// Infof implements log.Logger.
func (p *Logger) Infof(format string, args ...interface{}) {
	p.zapLogger.Sugar().Infof(format, args...)
}

// Warnf implements log.Logger.
func (p *Logger) Warnf(format string, args ...interface{}) {
	p.zapLogger.Sugar().Warnf(format, args...)
}

// Errorf implements log.Logger.
func (p *Logger) Errorf(format string, args ...interface{}) {
	p.zapLogger.Sugar().Errorf(format, args...)
}
