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
	"fmt"
	"strings"

	"github.com/emersion/go-message"
	"github.com/spf13/viper"
)

const (
	// MarkEncrypted is the marker value of mails encrypted for at least one recipient.
	MarkEncrypted = "Encrypted by GPG Mailgate"
	// MarkNotEncrypted is the marker value of mails sent without any encryption.
	MarkNotEncrypted = "Not encrypted, public key not found"
)

func init() {
	viper.SetDefault("gate.add_header", false)
	viper.SetDefault("gate.header_name", "X-GPG-Mailgate")
}

// Marker is an optional header stating whether encryption was applied.
type Marker struct {
	Enabled bool
	Name    string
}

// MarkerFromViper creates a Marker using the configuration from viper.
//
// `gate.add_header` enables the marker.
// `gate.header_name` is the name of the header field.
func MarkerFromViper() Marker {
	return Marker{
		Enabled: viper.GetBool("gate.add_header"),
		Name:    viper.GetString("gate.header_name"),
	}
}

// Validate checks that an enabled marker has a usable field name.
func (m Marker) Validate() error {
	if !m.Enabled {
		return nil
	}

	if m.Name == "" || strings.ContainsAny(m.Name, ": \t\r\n") {
		return fmt.Errorf("invalid marker header name %q", m.Name)
	}

	return nil
}

// Mark sets the marker field to value, replacing any existing field of the same name. Nothing
// happens if the marker is disabled.
func (m Marker) Mark(header *message.Header, value string) {
	if !m.Enabled {
		return
	}

	header.Del(m.Name)

	if raw, err := formatField(m.Name, value); err == nil {
		header.AddRaw(raw)
	} else {
		header.Add(m.Name, value)
	}
}

// AddTo appends the marker field to b. Nothing happens if the marker is disabled.
func (m Marker) AddTo(b *HeaderBuilder, value string) error {
	if !m.Enabled {
		return nil
	}

	return b.Add(m.Name, value)
}
