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

package mails

import (
	"github.com/emersion/go-message"
	"github.com/emersion/go-message/textproto"
)

// HeaderBuilder collects header fields that are written in the order they were added, with their
// names exactly as given.
type HeaderBuilder struct {
	fields [][]byte
}

// Add appends a field. Long values are folded.
func (b *HeaderBuilder) Add(name, value string) error {
	raw, err := formatField(name, value)
	if err != nil {
		return err
	}

	b.fields = append(b.fields, raw)
	return nil
}

// AddRaw appends a field formatted elsewhere, including its trailing line break.
func (b *HeaderBuilder) AddRaw(raw []byte) {
	b.fields = append(b.fields, append([]byte(nil), raw...))
}

// Header returns the collected fields.
func (b *HeaderBuilder) Header() message.Header {
	var header message.Header

	// a go-message header writes the most recently added field first
	for i := len(b.fields) - 1; i >= 0; i-- {
		header.AddRaw(b.fields[i])
	}

	return header
}

// formatField formats a field the way go-message does, but keeps the case of name.
func formatField(name, value string) ([]byte, error) {
	var scratch textproto.Header
	scratch.Add(name, value)

	raw, err := scratch.Raw(name)
	if err != nil {
		return nil, err
	}

	return append([]byte(name), raw[len(name):]...), nil
}
