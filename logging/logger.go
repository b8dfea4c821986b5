// Copyright 2026 The Arcsearch Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logging builds the zap loggers used by the indexer CLI and the
// embedded search runtime.
package logging

import (
	"os"
	"strings"

	lumberjack "gopkg.in/natefinch/lumberjack.v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a console JSON logger at the given level. levelName is one
// of debug|info|warn|error, matching the --log-level CLI flag.
func New(levelName string) *zap.Logger {
	level := parseLevel(levelName)
	core := zapcore.NewCore(newEncoder(), zapcore.Lock(os.Stdout), level)
	return zap.New(core, zap.AddCaller())
}

// NewRotating builds a logger that tees console output with a rotating
// file sink, following the same lumberjack.Logger + zapcore.NewTee
// pairing the teacher uses for its own file logger.
func NewRotating(levelName, file string, maxSizeMB, maxAgeDays, maxBackups int) *zap.Logger {
	console := New(levelName)
	if file == "" {
		return console
	}

	level := parseLevel(levelName)
	writer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   file,
		MaxSize:    maxSizeMB,
		MaxAge:     maxAgeDays,
		MaxBackups: maxBackups,
		LocalTime:  true,
	})
	fileCore := zapcore.NewCore(newEncoder(), writer, level)

	teeCore := zapcore.NewTee(console.Core(), fileCore)
	return zap.New(teeCore, zap.AddCaller())
}

func parseLevel(name string) zapcore.Level {
	switch strings.ToLower(name) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func newEncoder() zapcore.Encoder {
	return zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	})
}
