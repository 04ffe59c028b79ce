/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package logging

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Level defines all available log levels for log messages.
type Level int

// Log levels.
const (
	CRITICAL Level = iota
	ERROR
	WARNING
	INFO
	DEBUG
)

var levelNames = []string{
	"CRITICAL",
	"ERROR",
	"WARNING",
	"INFO",
	"DEBUG",
}

// String returns the name of the level.
func (l Level) String() string {
	if l < CRITICAL || int(l) >= len(levelNames) {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// moduleLevels maintains log levels based on module
type moduleLevels struct {
	sync.RWMutex
	levels map[string]Level
}

var levels = &moduleLevels{levels: make(map[string]Level)}

func (m *moduleLevels) get(module string) Level {
	m.RLock()
	defer m.RUnlock()

	level, exists := m.levels[module]
	if !exists {
		level, exists = m.levels[""]
		// no configuration exists, default to info
		if !exists {
			level = INFO
		}
	}
	return level
}

func (m *moduleLevels) set(module string, level Level) {
	m.Lock()
	m.levels[module] = level
	m.Unlock()
}

// SetLevel - setting log level for given module
//
//	Parameters:
//	module is module name, an empty module sets the default level
//	level is logging level
func SetLevel(module string, level Level) {
	levels.set(module, level)
}

// GetLevel - getting log level for given module
func GetLevel(module string) Level {
	return levels.get(module)
}

// IsEnabledFor - Check if given log level is enabled for given module
func IsEnabledFor(module string, level Level) bool {
	return level <= levels.get(module)
}

// LogLevel returns the log level from a string representation.
func LogLevel(level string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(name, level) {
			return Level(i), nil
		}
	}
	if strings.EqualFold(level, "WARN") {
		return WARNING, nil
	}
	return ERROR, errors.Errorf("logger: invalid log level [%s]", level)
}
