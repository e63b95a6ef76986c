// Copyright 2023 PingCAP, Inc.
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

package logutil

import (
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
)

// Config serializes the log related config in toml/json.
type Config struct {
	// Level is the log level, one of "debug", "info", "warn", "error".
	Level string `toml:"level" json:"level"`
	// File is the log file path. Leave empty to log to stderr.
	File string `toml:"file" json:"file"`
}

// InitLogger initializes the global logger. It should be called once, before
// any other log usage.
func InitLogger(cfg *Config) error {
	pcfg := &log.Config{
		Level: cfg.Level,
		File: log.FileLogConfig{
			Filename: cfg.File,
		},
	}
	logger, props, err := log.InitLogger(pcfg)
	if err != nil {
		return errors.Trace(err)
	}
	log.ReplaceGlobals(logger, props)
	return nil
}
