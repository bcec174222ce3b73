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

//go:build !windows

package log

import (
	"io"
	"log/syslog"

	"github.com/rs/zerolog"
)

const syslogTag = "mailgate"

func newSyslogWriter() (io.Writer, error) {
	w, err := syslog.New(syslog.LOG_INFO|syslog.LOG_MAIL, syslogTag)
	if err != nil {
		return nil, err
	}

	return zerolog.SyslogLevelWriter(w), nil
}
