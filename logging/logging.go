/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package logging provides the small leveled facade dix registers in the
// default resolver, decoupling libraries from any particular logging
// backend. A Logger is a value type wrapping a logr.Logger with a minimum
// level and an optional message prefix; decorating it is allocation-free on
// construction and suppressed levels skip all formatting work.
package logging

import (
	"fmt"
	"io"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
)

// Level orders log severities. Lower levels are chattier.
type Level int8

const (
	// LevelDebug marks diagnostic messages, mapped to logr verbosity 1.
	LevelDebug Level = iota
	// LevelInfo marks routine messages, mapped to logr verbosity 0.
	LevelInfo
	// LevelWarn marks suspicious-but-survivable conditions.
	LevelWarn
	// LevelError marks failures.
	LevelError
)

// String returns the conventional lowercase name of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("level(%d)", int8(l))
	}
}

// Logger is the leveled logging facade. The zero value discards everything;
// construct instances with New, NewWriter, or Discard.
type Logger struct {
	log    logr.Logger
	min    Level
	prefix string
}

// New wraps a logr.Logger at LevelDebug with no prefix.
func New(log logr.Logger) Logger {
	return Logger{log: log}
}

// NewWriter returns a Logger printing one line per message to w.
func NewWriter(w io.Writer) Logger {
	return New(funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintln(w, prefix, args)
			return
		}
		fmt.Fprintln(w, args)
	}, funcr.Options{Verbosity: 1}))
}

// Discard returns a Logger that drops every message.
func Discard() Logger {
	return New(logr.Discard())
}

// WithPrefix returns a copy whose messages carry "prefix: " in front.
// Prefixes compose left to right.
func (lg Logger) WithPrefix(prefix string) Logger {
	if lg.prefix != "" {
		prefix = lg.prefix + ": " + prefix
	}
	lg.prefix = prefix
	return lg
}

// WithLevel returns a copy suppressing every message below min.
func (lg Logger) WithLevel(min Level) Logger {
	lg.min = min
	return lg
}

// Enabled reports whether messages at l would be emitted. Callers with
// expensive arguments check this before building them.
func (lg Logger) Enabled(l Level) bool {
	return l >= lg.min
}

// Debug emits a diagnostic message with optional key/value pairs.
func (lg Logger) Debug(msg string, kv ...any) {
	if !lg.Enabled(LevelDebug) {
		return
	}
	lg.log.V(1).Info(lg.decorate(msg), kv...)
}

// Info emits a routine message with optional key/value pairs.
func (lg Logger) Info(msg string, kv ...any) {
	if !lg.Enabled(LevelInfo) {
		return
	}
	lg.log.Info(lg.decorate(msg), kv...)
}

// Warn emits a warning with optional key/value pairs.
func (lg Logger) Warn(msg string, kv ...any) {
	if !lg.Enabled(LevelWarn) {
		return
	}
	lg.log.Info(lg.decorate(msg), append(kv, "severity", LevelWarn.String())...)
}

// Error emits a failure with optional key/value pairs. err may be nil.
func (lg Logger) Error(err error, msg string, kv ...any) {
	if !lg.Enabled(LevelError) {
		return
	}
	lg.log.Error(err, lg.decorate(msg), kv...)
}

func (lg Logger) decorate(msg string) string {
	if lg.prefix == "" {
		return msg
	}
	return lg.prefix + ": " + msg
}
