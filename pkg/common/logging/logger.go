/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package logging provides module scoped loggers backed by zap.
//
//	Basic Flow:
//	1) Optionally initialize the backend with Initialize
//	2) Create new logger for specific module
//	3) Call log info
package logging

import (
	"sync"

	"go.uber.org/zap"
)

// Logger writes log records for one module. The module level is checked
// before each record is handed to the backend.
type Logger struct {
	module   string
	once     sync.Once
	instance *zap.SugaredLogger
}

var (
	backendMu sync.RWMutex
	backend   *zap.Logger
)

const loggerModule = "fabsdk/common"

// NewLogger creates and returns a Logger object based on the module name.
func NewLogger(module string) *Logger {
	// the zap instance is resolved lazily on first use
	return &Logger{module: module}
}

// Initialize replaces the zap backend used by every module logger.
// Loggers that already wrote a record keep the backend they were bound to.
func Initialize(l *zap.Logger) {
	backendMu.Lock()
	backend = l
	backendMu.Unlock()

	NewLogger(loggerModule).Debug("Logger backend initialized")
}

func currentBackend() *zap.Logger {
	backendMu.RLock()
	l := backend
	backendMu.RUnlock()
	if l != nil {
		return l
	}

	backendMu.Lock()
	defer backendMu.Unlock()
	if backend == nil {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		cfg.Encoding = "console"
		cfg.DisableStacktrace = true
		l, err := cfg.Build()
		if err != nil {
			l = zap.NewNop()
		}
		backend = l
	}
	return backend
}

func (l *Logger) logger() *zap.SugaredLogger {
	l.once.Do(func() {
		l.instance = currentBackend().Named(l.module).WithOptions(zap.AddCallerSkip(1)).Sugar()
	})
	return l.instance
}

func (l *Logger) enabled(level Level) bool {
	return IsEnabledFor(l.module, level)
}

// Fatal logs at CRITICAL and exits the process.
func (l *Logger) Fatal(args ...interface{}) {
	l.logger().Fatal(args...)
}

// Fatalf logs a formatted record at CRITICAL and exits the process.
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.logger().Fatalf(format, args...)
}

// Panic logs at CRITICAL and panics.
func (l *Logger) Panic(args ...interface{}) {
	l.logger().Panic(args...)
}

// Panicf logs a formatted record at CRITICAL and panics.
func (l *Logger) Panicf(format string, args ...interface{}) {
	l.logger().Panicf(format, args...)
}

// Debug calls Debug function of underlying logger
func (l *Logger) Debug(args ...interface{}) {
	if l.enabled(DEBUG) {
		l.logger().Debug(args...)
	}
}

// Debugf calls Debugf function of underlying logger
func (l *Logger) Debugf(format string, args ...interface{}) {
	if l.enabled(DEBUG) {
		l.logger().Debugf(format, args...)
	}
}

// Info calls Info function of underlying logger
func (l *Logger) Info(args ...interface{}) {
	if l.enabled(INFO) {
		l.logger().Info(args...)
	}
}

// Infof calls Infof function of underlying logger
func (l *Logger) Infof(format string, args ...interface{}) {
	if l.enabled(INFO) {
		l.logger().Infof(format, args...)
	}
}

// Warn calls Warn function of underlying logger
func (l *Logger) Warn(args ...interface{}) {
	if l.enabled(WARNING) {
		l.logger().Warn(args...)
	}
}

// Warnf calls Warnf function of underlying logger
func (l *Logger) Warnf(format string, args ...interface{}) {
	if l.enabled(WARNING) {
		l.logger().Warnf(format, args...)
	}
}

// Error calls Error function of underlying logger
func (l *Logger) Error(args ...interface{}) {
	if l.enabled(ERROR) {
		l.logger().Error(args...)
	}
}

// Errorf calls Errorf function of underlying logger
func (l *Logger) Errorf(format string, args ...interface{}) {
	if l.enabled(ERROR) {
		l.logger().Errorf(format, args...)
	}
}
