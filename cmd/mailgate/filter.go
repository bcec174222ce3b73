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

package main

import (
	"context"

	"github.com/lukasdietrich/mailgate/internal/delivery"
	"github.com/lukasdietrich/mailgate/internal/log"
	"github.com/lukasdietrich/mailgate/internal/mails"
)

type filterCommand struct {
	Mailman *delivery.Mailman
	Logger  *log.Logger
}

func (f *filterCommand) run(ctx context.Context, inv invocation) error {
	f.Logger.InfoContext(ctx).
		Str("sender", inv.Sender).
		Strs("recipients", inv.Recipients).
		Msg("filtering mail")

	envelope := mails.Envelope{
		From: inv.Sender,
		To:   inv.Recipients,
	}

	return f.Mailman.Deliver(ctx, envelope, inv.Input)
}
