// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package log exposes the process-wide logger used by the gateway. Lines
// logged before Setup is called are buffered and replayed once the logger
// exists, so early startup (configuration loading, source registration) is
// never lost.
package log

import (
	"fmt"
	"strings"
	"sync"

	"github.com/cihub/seelog"
)

const logDateFormat = "2006-01-02 15:04:05 MST"

// KukurLogger is a thin wrapper around a seelog logger.
type KukurLogger struct {
	inner seelog.LoggerInterface
	level seelog.LogLevel
	l     sync.RWMutex
}

var (
	logger *KukurLogger

	// This buffer holds log lines sent before the logger is initialized.
	// It should be very short lived.
	logsBuffer           = []func(){}
	bufferLogsBeforeInit = true
	bufferMutex          sync.Mutex
)

// Setup configures the global logger. An empty or "-" path logs to stderr,
// anything else to a rolling file at that path.
func Setup(level string, path string) error {
	configTemplate := `<seelog minlevel="%s">
    <outputs formatid="common">`
	if path == "" || path == "-" {
		configTemplate += `<console />`
	} else {
		configTemplate += fmt.Sprintf(`<rollingfile type="size" filename="%s" maxsize="%d" maxrolls="1" />`, path, 10*1024*1024)
	}
	configTemplate += `</outputs>
    <formats>
        <format id="common" format="%%Date(%s) | %%LEVEL | (%%RelFile:%%Line) | %%Msg%%n"/>
    </formats>
</seelog>`
	config := fmt.Sprintf(configTemplate, strings.ToLower(level), logDateFormat)

	inner, err := seelog.LoggerFromConfigAsString(config)
	if err != nil {
		return err
	}
	inner.SetAdditionalStackDepth(2) //nolint:errcheck
	SetupLogger(inner, level)
	return nil
}

// SetupLogger installs a seelog logger as the global logger and replays the
// pre-init buffer.
func SetupLogger(inner seelog.LoggerInterface, level string) {
	lvl, ok := seelog.LogLevelFromString(strings.ToLower(level))
	if !ok {
		lvl = seelog.InfoLvl
	}
	logger = &KukurLogger{
		inner: inner,
		level: lvl,
	}

	bufferMutex.Lock()
	defer bufferMutex.Unlock()
	bufferLogsBeforeInit = false
	for _, logLine := range logsBuffer {
		logLine()
	}
	logsBuffer = []func(){}
}

func (sw *KukurLogger) shouldLog(level seelog.LogLevel) bool {
	sw.l.RLock()
	defer sw.l.RUnlock()
	return level >= sw.level
}

func (sw *KukurLogger) debug(s string) {
	sw.l.Lock()
	defer sw.l.Unlock()
	sw.inner.Debug(s)
}

func (sw *KukurLogger) info(s string) {
	sw.l.Lock()
	defer sw.l.Unlock()
	sw.inner.Info(s)
}

func (sw *KukurLogger) warn(s string) error {
	sw.l.Lock()
	defer sw.l.Unlock()
	return sw.inner.Warn(s)
}

func (sw *KukurLogger) error(s string) error {
	sw.l.Lock()
	defer sw.l.Unlock()
	return sw.inner.Error(s)
}

func (sw *KukurLogger) flush() {
	sw.l.Lock()
	defer sw.l.Unlock()
	sw.inner.Flush()
}

// bufferOrLog runs logLine now when the logger is up, buffers it otherwise.
func bufferOrLog(logLine func()) {
	bufferMutex.Lock()
	defer bufferMutex.Unlock()
	if bufferLogsBeforeInit && logger == nil {
		logsBuffer = append(logsBuffer, logLine)
		return
	}
	logLine()
}

// Debugf logs with format at the debug level.
func Debugf(format string, params ...interface{}) {
	bufferOrLog(func() {
		if logger != nil && logger.inner != nil && logger.shouldLog(seelog.DebugLvl) {
			logger.debug(fmt.Sprintf(format, params...))
		}
	})
}

// Infof logs with format at the info level.
func Infof(format string, params ...interface{}) {
	bufferOrLog(func() {
		if logger != nil && logger.inner != nil && logger.shouldLog(seelog.InfoLvl) {
			logger.info(fmt.Sprintf(format, params...))
		}
	})
}

// Warnf logs with format at the warn level.
func Warnf(format string, params ...interface{}) {
	bufferOrLog(func() {
		if logger != nil && logger.inner != nil && logger.shouldLog(seelog.WarnLvl) {
			logger.warn(fmt.Sprintf(format, params...)) //nolint:errcheck
		}
	})
}

// Errorf logs with format at the error level.
func Errorf(format string, params ...interface{}) {
	bufferOrLog(func() {
		if logger != nil && logger.inner != nil && logger.shouldLog(seelog.ErrorLvl) {
			logger.error(fmt.Sprintf(format, params...)) //nolint:errcheck
		}
	})
}

// Error logs its arguments at the error level.
func Error(v ...interface{}) {
	bufferOrLog(func() {
		if logger != nil && logger.inner != nil && logger.shouldLog(seelog.ErrorLvl) {
			logger.error(fmt.Sprint(v...)) //nolint:errcheck
		}
	})
}

// Flush flushes the underlying logger.
func Flush() {
	if logger != nil && logger.inner != nil {
		logger.flush()
	}
}
