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
	"fmt"
	"text/tabwriter"

	"github.com/lukasdietrich/mailgate/internal/addressbook"
	"github.com/lukasdietrich/mailgate/internal/pgp"
)

type lookupCommand struct {
	Book *addressbook.Book
	Keys pgp.Engine
}

func (l *lookupCommand) run(ctx context.Context, inv invocation) error {
	var known *addressbook.Set

	if !l.Book.KeymapOnly() {
		ids, err := l.Keys.KnownIdentifiers(ctx)
		if err != nil {
			return err
		}

		known = addressbook.Identifiers(ids)
	}

	result, err := l.Book.Classify(ctx, inv.Recipients, known)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(inv.Output, 0, 4, 2, ' ', 0)

	for _, entry := range append(result.OpenPGP, result.Plain...) {
		fmt.Fprintf(w, "%s\t%s\n", entry.Recipient, &entry)
	}

	return w.Flush()
}
