// Copyright (C) 2021  Lukas Dietrich <lukas@lukasdietrich.com>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package log

import (
	"context"

	"github.com/rs/zerolog"
)

// Logger wraps a zerolog.Logger. It is handed to every component of the filter. Events started
// with one of the *Context methods carry the fields defined in the context.
type Logger struct {
	zerolog.Logger
}

// Nop returns a Logger that discards every event.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// TraceContext starts a new log event with trace level and appends fields defined in the context.
func (l *Logger) TraceContext(ctx context.Context) *zerolog.Event {
	return appendContextFields(ctx, l.Trace())
}

// DebugContext starts a new log event with debug level and appends fields defined in the context.
func (l *Logger) DebugContext(ctx context.Context) *zerolog.Event {
	return appendContextFields(ctx, l.Debug())
}

// InfoContext starts a new log event with info level and appends fields defined in the context.
func (l *Logger) InfoContext(ctx context.Context) *zerolog.Event {
	return appendContextFields(ctx, l.Info())
}

// WarnContext starts a new log event with warn level and appends fields defined in the context.
func (l *Logger) WarnContext(ctx context.Context) *zerolog.Event {
	return appendContextFields(ctx, l.Warn())
}

// ErrorContext starts a new log event with error level and appends fields defined in the context.
func (l *Logger) ErrorContext(ctx context.Context) *zerolog.Event {
	return appendContextFields(ctx, l.Error())
}
