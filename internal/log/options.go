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
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const outputSyslog = "syslog"

func init() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.file", "")
}

// Options configure the logger.
type Options struct {
	// Level is the minimum level of events written.
	Level string
	// File is the destination of events. An empty string means stderr, "syslog" means the local
	// syslog daemon using the mail facility. Any other value is a filename events are appended to.
	File string
}

// OptionsFromViper creates Options using the configuration from viper.
//
// `log.level` is the minimum level.
// `log.file` is the destination.
func OptionsFromViper() Options {
	return Options{
		Level: viper.GetString("log.level"),
		File:  viper.GetString("log.file"),
	}
}

// NewLogger creates a new logger writing json lines to the configured destination.
func NewLogger(opts Options) (*Logger, error) {
	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("unknown log level %q: %w", opts.Level, err)
	}

	w, err := openOutput(opts.File)
	if err != nil {
		return nil, fmt.Errorf("could not open log output %q: %w", opts.File, err)
	}

	logger := zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Caller().
		Logger()

	return &Logger{logger}, nil
}

func openOutput(file string) (io.Writer, error) {
	switch file {
	case "":
		return os.Stderr, nil
	case outputSyslog:
		return newSyslogWriter()
	default:
		return os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
	}
}
